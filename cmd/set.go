package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mkstore/store"
	"mkstore/store/literal"
)

var setPretty bool

func init() {
	setCmd.Flags().BoolVar(&setPretty, "pretty", false, "write large values one element per line")
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <file> <key> <value>",
	Short: "Write a single variable to a config file",
	Long: "Write a single variable to a config file. The value is a literal\n" +
		"(for example: 42, 'text', [1, 2], {'a': 1}). For .cfg files the key is\n" +
		"a JSON path and only that key is touched; for .mk files a variable\n" +
		"statement is stored.",
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		path := resolvePath(args[0])
		key := args[1]

		value, err := literal.Parse(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid value: %v\n", err)
			os.Exit(1)
		}

		s := store.New()
		defer s.Locker().ReleaseAll()

		if isRawFile(path) {
			err = s.UpdateJSON(path, key, value)
		} else {
			err = s.SaveToMKFile(path, key, value, setPretty)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated %s\n", path)
	},
}

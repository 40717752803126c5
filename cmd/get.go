package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mkstore/store"
	"mkstore/store/literal"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <file> <key>",
	Short: "Read a single variable from a config file",
	Long: "Read a single variable from a config file. For .cfg files the key is\n" +
		"a JSON path, for .mk files it is a script variable name.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		path := resolvePath(args[0])
		key := args[1]

		s := store.New()
		defer s.Locker().ReleaseAll()

		if isRawFile(path) {
			value, ok, err := s.LookupJSON(path, key, true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: %s has no key %q\n", path, key)
				os.Exit(1)
			}
			fmt.Println(value)
			return
		}

		value, err := s.LoadFromMKFile(path, key, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		rendered, err := literal.Render(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(rendered)
	},
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mkstore/store"
	"mkstore/store/literal"
)

var showFormat string

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "pretty", "output format: literal, pretty or yaml")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the value stored in a config file",
	Long:  "Parse the literal value stored in a config file and print it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := resolvePath(args[0])

		s := store.New()
		defer s.Locker().ReleaseAll()

		value, err := s.LoadObject(path, nil, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var out string
		switch showFormat {
		case "literal":
			out, err = literal.Render(value)
		case "pretty":
			out, err = literal.RenderPretty(value)
		case "yaml":
			var data []byte
			data, err = yaml.Marshal(value)
			out = string(data)
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", showFormat)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mkstore/internal/tui"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>...",
	Short: "Watch config files for external changes",
	Long: "Watch files or directories and show every external modification as\n" +
		"it happens. Press q to quit.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		paths := make([]string, len(args))
		for i, name := range args {
			paths[i] = resolvePath(name)
		}
		if err := tui.Run(paths); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

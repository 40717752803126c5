package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mkstore/store"
)

var (
	freeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func init() {
	rootCmd.AddCommand(locksCmd)
}

var locksCmd = &cobra.Command{
	Use:   "locks <file>...",
	Short: "Probe the lock state of config files",
	Long: "Probe each file's advisory lock without blocking and report whether\n" +
		"another process currently holds it.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		locker := store.NewLocker()
		defer locker.ReleaseAll()

		anyLocked := false
		for _, name := range args {
			path := resolvePath(name)
			ok, err := locker.TryAcquire(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if ok {
				locker.Release(path)
				fmt.Printf("%s %s\n", freeStyle.Render("free  "), pathStyle.Render(path))
			} else {
				anyLocked = true
				fmt.Printf("%s %s\n", lockedStyle.Render("locked"), pathStyle.Render(path))
			}
		}
		if anyLocked {
			os.Exit(2)
		}
	},
}

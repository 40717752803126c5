package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var configDir string

var rootCmd = &cobra.Command{
	Use:   "mkstore",
	Short: "Config file store with advisory locking",
	Long: "A command line tool for inspecting and editing config files that are\n" +
		"coordinated through exclusive advisory locks and written atomically.",
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`mkstore {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	return rootCmd.Execute()
}

func init() {
	defaultDir := os.Getenv("MKSTORE_CONFIG_DIR")
	if defaultDir == "" {
		defaultDir = "."
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "d", defaultDir,
		"directory holding the config files (env MKSTORE_CONFIG_DIR)")
}

// resolvePath turns a bare file name into a path under the config directory.
// Absolute paths and paths with separators are taken as given.
func resolvePath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	return filepath.Join(configDir, name)
}

// isRawFile reports whether path stores JSON rather than literals.
func isRawFile(path string) bool {
	return filepath.Ext(path) == ".cfg"
}

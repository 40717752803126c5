// Package tui provides a terminal user interface for watching config files
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mkstore/store"
)

// Run starts the watch TUI on the given files or directories
func Run(paths []string) error {
	if !isTerminal() {
		return fmt.Errorf("the watch TUI requires a terminal")
	}

	watcher, err := store.NewWatcher(nil)
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range paths {
		if err := watcher.Watch(path); err != nil {
			return err
		}
	}

	m := NewModel(watcher, paths)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()
	return err
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

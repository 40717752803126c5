package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"mkstore/store"
)

// ChangeMsg is sent for every modification reported by the watcher
type ChangeMsg store.ChangeEvent

// WatcherClosedMsg is sent when the watcher shuts down
type WatcherClosedMsg struct{}

// waitForChange blocks on the watcher's event channel
func waitForChange(w *store.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return WatcherClosedMsg{}
		}
		return ChangeMsg(ev)
	}
}

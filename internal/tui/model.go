package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"mkstore/store"
)

// logEntry is one observed modification
type logEntry struct {
	at    time.Time
	event store.ChangeEvent
}

// Model is the core state model for the watch TUI
type Model struct {
	watcher *store.Watcher
	paths   []string // Watched files and directories
	entries []logEntry

	keys    KeyMap
	spinner spinner.Model

	// Window size
	width  int
	height int

	// Scroll state for the event list
	scrollOffset int

	closed bool
}

// NewModel creates a new watch TUI model
func NewModel(watcher *store.Watcher, paths []string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		watcher: watcher,
		paths:   paths,
		keys:    DefaultKeyMap(),
		spinner: sp,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.watcher))
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.watcher.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.entries = nil
			m.scrollOffset = 0
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.scrollOffset < m.maxScroll() {
				m.scrollOffset++
			}
			return m, nil
		}
		return m, nil

	case ChangeMsg:
		m.entries = append(m.entries, logEntry{at: time.Now(), event: store.ChangeEvent(msg)})
		// Follow the newest entry unless the user scrolled away
		if m.scrollOffset == m.maxScroll()-1 {
			m.scrollOffset = m.maxScroll()
		}
		return m, waitForChange(m.watcher)

	case WatcherClosedMsg:
		m.closed = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// visibleLines returns how many event lines fit below the header
func (m Model) visibleLines() int {
	lines := m.height - 5
	if lines < 1 {
		return 10
	}
	return lines
}

func (m Model) maxScroll() int {
	over := len(m.entries) - m.visibleLines()
	if over < 0 {
		return 0
	}
	return over
}

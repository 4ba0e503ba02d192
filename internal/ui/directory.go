package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/renpy-helper/renpy-helper/internal/browse"
)

const noSubdirectoriesNotice = "No subdirectories found in this location."

// SelectDirectory lets the user walk the directory tree from start and
// returns the absolute path of the directory they select.
func SelectDirectory(ctx context.Context, start, title string, pageSize int) (string, error) {
	m, err := newDirectoryModel(start, title, pageSize)
	if err != nil {
		return "", err
	}
	final, err := runPrompt(ctx, m)
	if err != nil {
		return "", err
	}
	return final.selected, nil
}

type directoryModel struct {
	title    string
	pageSize int
	nav      *browse.Navigator
	choices  []browse.Choice
	cursor   int

	readErr  string
	notice   string
	selected string
	aborted  bool
	err      error
}

func newDirectoryModel(start, title string, pageSize int) (*directoryModel, error) {
	nav, err := browse.NewNavigator(start)
	if err != nil {
		return nil, err
	}
	m := &directoryModel{title: title, pageSize: pageSize, nav: nav}
	m.reload()
	if m.err != nil {
		return nil, m.err
	}
	return m, nil
}

// reload lists the current directory, climbing towards the root while it
// cannot be read.
func (m *directoryModel) reload() {
	m.readErr = ""
	m.notice = ""
	m.cursor = 0
	for {
		choices, err := m.nav.Choices()
		if err == nil {
			m.choices = choices
			if !browse.HasSubdirectories(choices) {
				m.notice = noSubdirectoriesNotice
			}
			return
		}
		m.readErr = err.Error()
		if browse.IsRoot(m.nav.Current) {
			m.err = err
			return
		}
		m.nav.Recover()
	}
}

func (m *directoryModel) wasAborted() bool { return m.aborted }
func (m *directoryModel) failure() error   { return m.err }

func (m *directoryModel) Init() tea.Cmd { return nil }

func (m *directoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if isAbortKey(key) {
		m.aborted = true
		return m, tea.Quit
	}

	last := len(m.choices) - 1
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < last {
			m.cursor++
		}
	case "pgup":
		m.cursor = max(m.cursor-m.pageSize, 0)
	case "pgdown":
		m.cursor = min(m.cursor+m.pageSize, last)
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = last
	case "enter":
		if len(m.choices) == 0 {
			return m, nil
		}
		selected, done := m.nav.Choose(m.choices[m.cursor].Value)
		if done {
			m.selected = selected
			return m, tea.Quit
		}
		m.reload()
		if m.err != nil {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *directoryModel) View() string {
	var b strings.Builder
	if m.selected != "" {
		fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(m.title), selectedStyle.Render(m.selected))
		return b.String()
	}

	b.WriteString(titleStyle.Render(m.title) + "\n")
	fmt.Fprintf(&b, "Current directory: %s\n", m.nav.Current)
	if m.readErr != "" {
		b.WriteString(errorStyle.Render("Error: "+m.readErr) + "\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n")

	start, end := window(m.cursor, len(m.choices), m.pageSize)
	for i := start; i < end; i++ {
		label := m.choices[i].Label
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+label) + "\n")
			continue
		}
		b.WriteString("  " + label + "\n")
	}
	if end-start < len(m.choices) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("(%d-%d of %d)", start+1, end, len(m.choices))) + "\n")
	}
	b.WriteString(dimStyle.Render("up/down move | enter choose | esc cancel") + "\n")
	return b.String()
}

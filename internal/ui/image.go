package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/renpy-helper/renpy-helper/internal/browse"
)

// SelectImage asks for an image path, suggesting matching directories and
// image files as the user types. initial pre-fills the input.
func SelectImage(ctx context.Context, title, initial string, exts []string, pageSize int) (string, error) {
	final, err := runPrompt(ctx, newImageModel(title, initial, exts, pageSize))
	if err != nil {
		return "", err
	}
	return final.selected, nil
}

type imageModel struct {
	title    string
	exts     []string
	pageSize int
	input    textinput.Model

	suggestions []string
	// cursor indexes suggestions; -1 means the typed text is used.
	cursor int

	validation string
	selected   string
	aborted    bool
}

func newImageModel(title, initial string, exts []string, pageSize int) *imageModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "path/to/image.png"
	ti.PromptStyle = cursorStyle
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()

	m := &imageModel{title: title, exts: exts, pageSize: pageSize, input: ti}
	m.refresh()
	return m
}

func (m *imageModel) wasAborted() bool { return m.aborted }
func (m *imageModel) failure() error   { return nil }

func (m *imageModel) refresh() {
	m.suggestions = browse.SearchFiles(m.input.Value(), m.exts)
	m.cursor = -1
}

// setValue replaces the input text and recomputes suggestions.
func (m *imageModel) setValue(v string) {
	m.input.SetValue(v)
	m.input.CursorEnd()
	m.refresh()
}

func (m *imageModel) current() string {
	if m.cursor >= 0 && m.cursor < len(m.suggestions) {
		return m.suggestions[m.cursor]
	}
	return m.input.Value()
}

func (m *imageModel) Init() tea.Cmd { return textinput.Blink }

func (m *imageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if isAbortKey(key) {
		m.aborted = true
		return m, tea.Quit
	}

	switch key.Type {
	case tea.KeyUp:
		if m.cursor >= 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyTab:
		if len(m.suggestions) == 0 {
			return m, nil
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.setValue(m.suggestions[m.cursor])
		m.validation = ""
		return m, nil
	case tea.KeyEnter:
		choice := m.current()
		if isDirSuggestion(choice) {
			m.setValue(choice)
			m.validation = ""
			return m, nil
		}
		if err := browse.ValidateImage(choice, m.exts); err != nil {
			m.validation = err.Error()
			return m, nil
		}
		m.selected = choice
		return m, tea.Quit
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.validation = ""
		m.refresh()
	}
	return m, cmd
}

func isDirSuggestion(s string) bool {
	return strings.HasSuffix(s, string(filepath.Separator)) && len(s) > 1
}

func (m *imageModel) View() string {
	var b strings.Builder
	if m.selected != "" {
		fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(m.title), selectedStyle.Render(m.selected))
		return b.String()
	}

	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.input.View() + "\n")
	if m.validation != "" {
		b.WriteString(errorStyle.Render(">> "+m.validation) + "\n")
	}

	focus := m.cursor
	if focus < 0 {
		focus = 0
	}
	start, end := window(focus, len(m.suggestions), m.pageSize)
	for i := start; i < end; i++ {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+m.suggestions[i]) + "\n")
			continue
		}
		b.WriteString("  " + m.suggestions[i] + "\n")
	}
	if end-start < len(m.suggestions) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("(%d-%d of %d)", start+1, end, len(m.suggestions))) + "\n")
	}
	b.WriteString(dimStyle.Render("type to filter | up/down pick | tab complete | enter confirm | esc cancel") + "\n")
	return b.String()
}

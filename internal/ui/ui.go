// Package ui provides the interactive terminal prompts.
package ui

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt with esc or ctrl+c.
var ErrAborted = errors.New("aborted")

// ErrNoTTY is returned by RequireTTY when prompts cannot be shown.
var ErrNoTTY = errors.New("interactive prompts require a terminal")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// RequireTTY returns ErrNoTTY unless both stdin and stdout are terminals.
func RequireTTY() error {
	if !IsTTY(os.Stdin) || !IsTTY(os.Stdout) {
		return ErrNoTTY
	}
	return nil
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// promptModel is implemented by every prompt so runPrompt can read the
// outcome once the program exits.
type promptModel interface {
	tea.Model
	wasAborted() bool
	failure() error
}

// runPrompt runs m until it quits and returns the final model.
func runPrompt[M promptModel](ctx context.Context, m M) (M, error) {
	program := tea.NewProgram(m, tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return m, ctx.Err()
		}
		return m, err
	}
	final, ok := finalModel.(M)
	if !ok {
		return m, errors.New("unexpected prompt model")
	}
	if final.wasAborted() {
		return final, ErrAborted
	}
	if err := final.failure(); err != nil {
		return final, err
	}
	return final, nil
}

// window returns the bounds of the page of size items that contains cursor.
func window(cursor, total, size int) (start, end int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start = (cursor / size) * size
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

func isAbortKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return true
	}
	return false
}

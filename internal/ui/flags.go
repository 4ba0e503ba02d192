package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// ErrNoFlags is returned when the flags input is blank.
var ErrNoFlags = errors.New("Please enter at least one flag")

// ParseFlags splits s into rembg flags using shell quoting rules, so
// `-m "u2net human seg"` yields two flags. Only quotes and backslashes are
// removed: ~, globs and braces stay as typed, and input that would expand
// ($VAR, $(cmd), a # comment) is rejected so the user can quote it.
func ParseFlags(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrNoFlags
	}

	var (
		fields  []string
		end     uint
		wordErr error
	)
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	err := parser.Words(strings.NewReader(s), func(w *syntax.Word) bool {
		field, err := unquoteWord(w)
		if err != nil {
			wordErr = err
			return false
		}
		fields = append(fields, field)
		end = w.End().Offset()
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	if wordErr != nil {
		return nil, fmt.Errorf("parsing flags: %w", wordErr)
	}
	if int(end) <= len(s) && strings.TrimSpace(s[end:]) != "" {
		return nil, fmt.Errorf("parsing flags: %q would be dropped as a comment; quote it to keep it", strings.TrimSpace(s[end:]))
	}
	if len(fields) == 0 {
		return nil, ErrNoFlags
	}
	return fields, nil
}

// unquoteWord performs quote removal on w without any expansion.
func unquoteWord(w *syntax.Word) (string, error) {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch part := part.(type) {
		case *syntax.Lit:
			sb.WriteString(unescape(part.Value, nil))
		case *syntax.SglQuoted:
			if !part.Dollar {
				sb.WriteString(part.Value)
				continue
			}
			val, _, err := expand.Format(nil, part.Value, nil)
			if err != nil {
				return "", err
			}
			sb.WriteString(val)
		case *syntax.DblQuoted:
			if part.Dollar {
				return "", fmt.Errorf("%s: $\"...\" strings are not supported", part.Pos())
			}
			for _, inner := range part.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return "", expansionError(inner)
				}
				sb.WriteString(unescape(lit.Value, func(b byte) bool {
					return b == '"' || b == '\\' || b == '$' || b == '`' || b == '\n'
				}))
			}
		default:
			return "", expansionError(part)
		}
	}
	return sb.String(), nil
}

// unescape drops the backslash before each byte that escapable accepts, or
// before every byte when escapable is nil. A backslash-newline pair is removed.
func unescape(s string, escapable func(byte) bool) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (escapable == nil || escapable(s[i+1])) {
			i++
			if s[i] == '\n' {
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func expansionError(part syntax.WordPart) error {
	return fmt.Errorf("%s: shell expansions are not supported; wrap the flag in single quotes to keep it as typed", part.Pos())
}

// JoinFlags renders flags for editing, quoting any that ParseFlags would
// otherwise split or reject.
func JoinFlags(flags []string) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		quoted, err := syntax.Quote(f, syntax.LangBash)
		if err != nil {
			quoted = "'" + strings.ReplaceAll(f, "'", `'\''`) + "'"
		}
		parts[i] = quoted
	}
	return strings.Join(parts, " ")
}

// PromptFlags asks for rembg flags, pre-filled with current.
func PromptFlags(ctx context.Context, current []string) ([]string, error) {
	final, err := runPrompt(ctx, newFlagsModel(current))
	if err != nil {
		return nil, err
	}
	return final.flags, nil
}

type flagsModel struct {
	input      textinput.Model
	validation string
	flags      []string
	aborted    bool
}

func newFlagsModel(current []string) *flagsModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = cursorStyle
	ti.SetValue(JoinFlags(current))
	ti.CursorEnd()
	ti.Focus()
	return &flagsModel{input: ti}
}

func (m *flagsModel) wasAborted() bool { return m.aborted }
func (m *flagsModel) failure() error   { return nil }

func (m *flagsModel) Init() tea.Cmd { return textinput.Blink }

func (m *flagsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if isAbortKey(key) {
			m.aborted = true
			return m, tea.Quit
		}
		if key.Type == tea.KeyEnter {
			flags, err := ParseFlags(m.input.Value())
			if err != nil {
				m.validation = err.Error()
				return m, nil
			}
			m.flags = flags
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *flagsModel) View() string {
	title := titleStyle.Render("Enter rembg flags (space-separated):")
	if m.flags != nil {
		return fmt.Sprintf("%s %s\n", title, selectedStyle.Render(JoinFlags(m.flags)))
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(m.input.View() + "\n")
	if m.validation != "" {
		b.WriteString(errorStyle.Render(">> "+m.validation) + "\n")
	}
	b.WriteString(dimStyle.Render("enter confirm | esc cancel") + "\n")
	return b.String()
}

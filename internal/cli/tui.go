package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/graph"
)

// pickEndpoints interactively fills in the missing endpoints of a
// layout request from the universe's program list. Already supplied
// endpoints are kept.
func pickEndpoints(u *graph.Universe, source, destination string) (string, string, error) {
	if source == "" {
		id, err := pickProgram(u, "Pick the source program")
		if err != nil {
			return "", "", err
		}
		source = id
	}
	if destination == "" {
		id, err := pickProgram(u, "Pick the destination program")
		if err != nil {
			return "", "", err
		}
		destination = id
	}
	return source, destination, nil
}

// pickProgram runs a filterable full-screen picker over the universe's
// programs and returns the chosen ID.
func pickProgram(u *graph.Universe, title string) (string, error) {
	if len(u.Nodes) == 0 {
		return "", errors.New(errors.ErrCodeInvalidDataset, "dataset has no programs")
	}

	m := pickerModel{title: title, nodes: u.Nodes}
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "run picker")
	}
	final, ok := out.(pickerModel)
	if !ok || final.choice == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, "no program selected")
	}
	return final.choice, nil
}

// pickerVisible caps how many rows the picker draws at once.
const pickerVisible = 12

var (
	stylePickerTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stylePickerCursor   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	stylePickerMatch    = lipgloss.NewStyle().Foreground(colorWhite)
	stylePickerDim      = lipgloss.NewStyle().Foreground(colorDim)
	stylePickerFilter   = lipgloss.NewStyle().Foreground(colorYellow)
	stylePickerSelected = lipgloss.NewStyle().Foreground(colorGreen)
)

// pickerModel is a minimal filter-as-you-type list. Typing narrows the
// candidate set by substring match over ID and label; enter confirms.
type pickerModel struct {
	title  string
	nodes  []graph.Node
	filter string
	cursor int
	choice string
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if matches := m.matches(); len(matches) > 0 {
			m.choice = matches[m.clampedCursor(matches)].ID
		}
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		m.cursor++
		return m, nil
	case tea.KeyBackspace:
		if m.filter != "" {
			m.filter = m.filter[:len(m.filter)-1]
			m.cursor = 0
		}
		return m, nil
	case tea.KeyRunes:
		m.filter += string(key.Runes)
		m.cursor = 0
		return m, nil
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(stylePickerTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(stylePickerDim.Render("type to filter · enter to select · esc to cancel"))
	b.WriteString("\n\n")
	if m.filter != "" {
		b.WriteString(stylePickerFilter.Render("/" + m.filter))
		b.WriteString("\n")
	}

	matches := m.matches()
	if len(matches) == 0 {
		b.WriteString(stylePickerDim.Render("  no match"))
		b.WriteString("\n")
		return b.String()
	}

	cursor := m.clampedCursor(matches)
	start := 0
	if cursor >= pickerVisible {
		start = cursor - pickerVisible + 1
	}
	end := min(start+pickerVisible, len(matches))

	for i := start; i < end; i++ {
		n := matches[i]
		line := n.ID
		if n.Label != "" && n.Label != n.ID {
			line += "  " + stylePickerDim.Render(n.Label)
		}
		if i == cursor {
			b.WriteString(stylePickerCursor.Render("> "))
			b.WriteString(stylePickerSelected.Render(line))
		} else {
			b.WriteString("  ")
			b.WriteString(stylePickerMatch.Render(line))
		}
		b.WriteString("\n")
	}
	if end < len(matches) {
		b.WriteString(stylePickerDim.Render(fmt.Sprintf("  … %d more", len(matches)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m pickerModel) matches() []graph.Node {
	if m.filter == "" {
		return m.nodes
	}
	needle := strings.ToLower(m.filter)
	var out []graph.Node
	for _, n := range m.nodes {
		if strings.Contains(strings.ToLower(n.ID), needle) ||
			strings.Contains(strings.ToLower(n.Label), needle) {
			out = append(out, n)
		}
	}
	return out
}

func (m pickerModel) clampedCursor(matches []graph.Node) int {
	if m.cursor >= len(matches) {
		return len(matches) - 1
	}
	return m.cursor
}

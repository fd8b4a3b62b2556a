package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helloworldx64/craftpacker/pkg/match"
)

// errPickerAborted is returned when the user quits the picker without
// confirming a selection.
var errPickerAborted = errors.New("selection aborted")

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickerModel - Interactive "download selected"
// =============================================================================

// PickerModel is the bubbletea model for choosing which matches to download.
// Everything starts checked.
type PickerModel struct {
	Results   []*match.Result
	Checked   []bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewPickerModel creates a picker over results with every row checked.
func NewPickerModel(results []*match.Result) PickerModel {
	checked := make([]bool, len(results))
	for i := range checked {
		checked[i] = true
	}
	return PickerModel{Results: results, Checked: checked, Height: 15}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Results)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Checked) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := m.count() < len(m.Checked)
			for i := range m.Checked {
				m.Checked[i] = all
			}
		case "enter":
			if m.count() == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Mods to Download"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ download  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Results))
	for i := m.Offset; i < end; i++ {
		r := m.Results[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[" + StyleSuccess.Render(iconSuccess) + "]"
		}
		line := fmt.Sprintf("%s%s %-28s %s", cursor, box, r.Package.Name, listDimStyle.Render(r.Label()))
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.Checked[i]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", m.count(), len(m.Results))))
	return b.String()
}

// Keys returns the input names of the checked rows, in list order.
func (m PickerModel) Keys() []string {
	var keys []string
	for i, r := range m.Results {
		if m.Checked[i] {
			keys = append(keys, r.Input)
		}
	}
	return keys
}

func (m PickerModel) count() int {
	n := 0
	for _, c := range m.Checked {
		if c {
			n++
		}
	}
	return n
}

// pickResults runs the picker and returns the chosen session keys.
func pickResults(results []*match.Result) ([]string, error) {
	final, err := tea.NewProgram(NewPickerModel(results)).Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	m := final.(PickerModel)
	if !m.Confirmed {
		return nil, errPickerAborted
	}
	return m.Keys(), nil
}

package cli

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/match"
)

func pickerResults() []*match.Result {
	return []*match.Result{
		{Input: "Sodium", Package: pkg("AANobbMI", "Sodium", deps.ChannelRelease)},
		{Input: "Lithium9", Package: pkg("gvQqBUqZ", "Lithium", deps.ChannelRelease), Strategy: match.Stripped},
		{Input: "Iris", Package: pkg("YL57xq9U", "Iris Shaders", deps.ChannelBeta)},
	}
}

func press(m PickerModel, keys ...tea.KeyMsg) (PickerModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(PickerModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPickerStartsAllChecked(t *testing.T) {
	m := NewPickerModel(pickerResults())
	if got := m.Keys(); !slices.Equal(got, []string{"Sodium", "Lithium9", "Iris"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestPickerToggle(t *testing.T) {
	m := NewPickerModel(pickerResults())
	m, _ = press(m, keyDown, runes("x"))

	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
	if got := m.Keys(); !slices.Equal(got, []string{"Sodium", "Iris"}) {
		t.Errorf("Keys() after toggle = %v", got)
	}

	m, cmd := press(m, keyEnter)
	if !m.Confirmed || cmd == nil {
		t.Error("enter should confirm and quit")
	}
}

func TestPickerCursorBounds(t *testing.T) {
	m := NewPickerModel(pickerResults())
	m, _ = press(m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after up at top", m.Cursor)
	}
	m, _ = press(m, keyDown, keyDown, keyDown, keyDown)
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d after moving past the end", m.Cursor)
	}
}

func TestPickerToggleAll(t *testing.T) {
	m := NewPickerModel(pickerResults())

	m, _ = press(m, runes("a"))
	if len(m.Keys()) != 0 {
		t.Errorf("Keys() = %v, want none after clearing all", m.Keys())
	}

	// Nothing checked: enter does nothing.
	m, cmd := press(m, keyEnter)
	if m.Confirmed || cmd != nil {
		t.Error("enter with nothing selected should be ignored")
	}

	m, _ = press(m, runes("a"))
	if len(m.Keys()) != 3 {
		t.Errorf("Keys() = %v, want all after checking all", m.Keys())
	}
}

func TestPickerQuit(t *testing.T) {
	m := NewPickerModel(pickerResults())
	m, cmd := press(m, keyEsc)
	if m.Confirmed {
		t.Error("esc should not confirm")
	}
	if cmd == nil {
		t.Error("esc should quit")
	}
}

func TestPickerScroll(t *testing.T) {
	m := NewPickerModel(pickerResults())
	m.Height = 2
	m, _ = press(m, keyDown, keyDown)
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
	m, _ = press(m, keyUp, keyUp)
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0", m.Offset)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	if got := next.(PickerModel).Height; got != 5 {
		t.Errorf("Height = %d, want minimum 5", got)
	}
}

func TestPickerView(t *testing.T) {
	m := NewPickerModel(pickerResults())
	m, _ = press(m, runes("x"))

	view := m.View()
	for _, want := range []string{"Select Mods to Download", "Sodium", "Lithium", "Iris Shaders", "2 of 3 selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumenlab/lumen/pkg/lighting"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestPreviewModelAdjustsLux(t *testing.T) {
	m := newPreviewModel(lighting.Dimensions{Width: 4, Height: 3}, 300, 900)
	if m.plan == nil || m.plan.FixtureCount != 4 {
		t.Fatalf("initial plan = %+v", m.plan)
	}

	next, _ := m.Update(key("up"))
	m = next.(PreviewModel)
	if m.Lux != 300+stepLux {
		t.Errorf("lux = %v, want %v", m.Lux, 300+stepLux)
	}
	if m.plan == nil {
		t.Fatal("plan not recomputed")
	}
	// More lux means at least as many fixtures.
	if m.plan.FixtureCount < 4 {
		t.Errorf("fixture count dropped to %d after raising lux", m.plan.FixtureCount)
	}
}

func TestPreviewModelSwitchesParam(t *testing.T) {
	m := newPreviewModel(lighting.Dimensions{Width: 4, Height: 3}, 300, 900)

	next, _ := m.Update(key("right"))
	m = next.(PreviewModel)
	if m.Param != paramLumens {
		t.Fatalf("param = %d, want lumens", m.Param)
	}

	next, _ = m.Update(key("down"))
	m = next.(PreviewModel)
	if m.Lumens != 900-stepLumens {
		t.Errorf("lumens = %v, want %v", m.Lumens, 900-stepLumens)
	}
}

func TestPreviewModelKeepsParamsPositive(t *testing.T) {
	m := newPreviewModel(lighting.Dimensions{Width: 4, Height: 3}, stepLux, 900)

	// One step down would reach zero, so the value must not move.
	next, _ := m.Update(key("down"))
	m = next.(PreviewModel)
	if m.Lux != stepLux {
		t.Errorf("lux = %v, want %v", m.Lux, stepLux)
	}
}

func TestPreviewModelQuits(t *testing.T) {
	m := newPreviewModel(lighting.Dimensions{Width: 4, Height: 3}, 300, 900)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestPreviewModelView(t *testing.T) {
	m := newPreviewModel(lighting.Dimensions{Width: 4, Height: 3}, 300, 900)
	view := m.View()
	if !strings.Contains(view, "lux 300") || !strings.Contains(view, "lumens 900") {
		t.Errorf("view missing parameters:\n%s", view)
	}
	if !strings.Contains(view, "4 fixtures") {
		t.Errorf("view missing stats:\n%s", view)
	}
}

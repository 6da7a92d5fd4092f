package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stacktile/pkg/config"
	"github.com/matzehuels/stacktile/pkg/wm"
)

func key(s string) tea.KeyMsg {
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, lm layoutModel, keys ...string) layoutModel {
	t.Helper()
	for _, k := range keys {
		next, _ := lm.Update(key(k))
		lm = next.(layoutModel)
	}
	return lm
}

func TestLayoutModelKeys(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		wantPoint string
		wantCur   bool
	}{
		{name: "open focuses the new window", keys: []string{"o"}, wantPoint: "window:0"},
		{name: "open splits right", keys: []string{"o", "o"}, wantPoint: "window:1"},
		{name: "navigate left", keys: []string{"o", "o", "h"}, wantPoint: "window:0"},
		{name: "close falls back", keys: []string{"o", "o", "x"}, wantPoint: "window:0"},
		{name: "cursor then clear", keys: []string{"o", "o", "H", "esc"}, wantPoint: "window:1"},
		{name: "cursor is kept", keys: []string{"o", "o", "L"}, wantPoint: "window:1", wantCur: true},
		{name: "unbound key is ignored", keys: []string{"o", "z"}, wantPoint: "window:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lm := newLayoutModel(wm.New(1200, 800), config.DefaultKeys)
			lm = press(t, lm, tt.keys...)

			if got := lm.m.Point().String(); got != tt.wantPoint {
				t.Errorf("point = %s, want %s", got, tt.wantPoint)
			}
			if _, ok := lm.m.Cursor(); ok != tt.wantCur {
				t.Errorf("cursor set = %v, want %v", ok, tt.wantCur)
			}
			if err := lm.m.Validate(); err != nil {
				t.Errorf("layout invalid: %v", err)
			}
		})
	}
}

func TestLayoutModelResizeKeys(t *testing.T) {
	lm := newLayoutModel(wm.New(1200, 800), config.DefaultKeys)
	lm = press(t, lm, "o", "o", "+")

	geom := lm.m.Geometry()
	w1 := geom[lm.m.Point()]
	if w1.Content.Width <= 600 {
		t.Errorf("grown width = %d, want more than 600", w1.Content.Width)
	}

	lm = press(t, lm, "=")
	geom = lm.m.Geometry()
	if w := geom[lm.m.Point()].Content.Width; w != 600 {
		t.Errorf("equalized width = %d, want 600", w)
	}
}

func TestLayoutModelQuit(t *testing.T) {
	lm := newLayoutModel(wm.New(1200, 800), config.DefaultKeys)
	if _, cmd := lm.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
	if _, cmd := lm.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("ctrl+c should quit")
	}
}

func TestLayoutModelConfigReload(t *testing.T) {
	lm := newLayoutModel(wm.New(1200, 800), config.DefaultKeys)

	cfg := config.Default()
	cfg.Keys["open"] = "n"
	next, _ := lm.Update(configMsg{cfg: cfg})
	lm = press(t, next.(layoutModel), "n", "o")

	if got := lm.m.Point().String(); got != "window:0" {
		t.Errorf("point = %s, want window:0 after one open", got)
	}
	if lm.status != "open" {
		t.Errorf("status = %q", lm.status)
	}

	next, _ = lm.Update(configMsg{err: errors.New("bad config")})
	lm = next.(layoutModel)
	if !strings.Contains(lm.View(), "bad config") {
		t.Error("view does not show the reload error")
	}
}

func TestLayoutModelView(t *testing.T) {
	lm := newLayoutModel(wm.New(1200, 800), config.DefaultKeys)
	next, _ := lm.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	lm = press(t, next.(layoutModel), "o")

	view := lm.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 12 {
		t.Errorf("view has %d lines, want 12", len(lines))
	}
	if !strings.Contains(view, "win 1") || !strings.Contains(view, "point window:0") {
		t.Errorf("view:\n%s", view)
	}
}

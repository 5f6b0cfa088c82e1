package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/store"
)

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter("2", "2024-05-01", "10", "")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Level != 2 || cfg.Last != 10 || cfg.CurveWindow != 1 || cfg.Since == nil {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	for _, bad := range [][4]string{
		{"x", "", "", ""},
		{"", "May 1", "", ""},
		{"", "", "-1", ""},
		{"", "", "", "0"},
	} {
		if _, err := parseFilter(bad[0], bad[1], bad[2], bad[3]); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if got := nextCurveWindow(1); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := nextCurveWindow(7); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := prevCurveWindow(10); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := prevCurveWindow(5); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestModelRendersOverview(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "beattype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	end := time.Now()
	_, err = st.InsertSession(context.Background(), model.SessionStats{
		StartedAt:      end.Add(-time.Minute),
		EndedAt:        end,
		Level:          1,
		Score:          420,
		MaxCombo:       9,
		WordsCompleted: 6,
		Accuracy:       88,
		DurationMs:     60000,
	}, []model.CharStats{{Char: "e", Hits: 4, ScoreSum: 3}})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}

	m := NewModel(st, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	if !strings.Contains(view, "Best Score") || !strings.Contains(view, "420") {
		t.Fatalf("expected score card in view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabSessions {
		t.Fatalf("expected sessions tab, got %d", m.activeTab)
	}
	if view := m.View(); !strings.Contains(view, "Combo") || !strings.Contains(view, "88.0%") {
		t.Fatalf("expected session row in view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabCharTable {
		t.Fatalf("expected char table tab, got %d", m.activeTab)
	}
	if view := m.View(); !strings.Contains(view, "Avg Offset") {
		t.Fatalf("expected char table header in view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabOverview {
		t.Fatalf("expected overview tab after moving left, got %d", m.activeTab)
	}
}

package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/beattype/internal/challenge"
	"github.com/verte-zerg/beattype/internal/generator"
	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/session"
	"github.com/verte-zerg/beattype/internal/store"
	"github.com/verte-zerg/beattype/internal/wordlist"
)

func TestModelPlaysAndSavesSession(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "beattype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	now := time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	src := challenge.NewLocal(nil, generator.NewSeeded(wordlist.FallbackAll(), 11), 1)
	sess := session.New(src, session.WithNow(clock), session.WithTicker(false))

	m := NewModel(Options{Session: sess, Store: st, Level: 1, Now: clock})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(startedMsg{err: sess.Start(context.Background(), 1)})
	if m.snap.Phase != session.PhaseRunning || m.snap.Word == "" {
		t.Fatalf("expected running session with a word, got %+v", m.snap)
	}

	var cmd tea.Cmd
	for _, p := range m.snap.Points {
		now = p.Expected
		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{p.Char}})
	}
	if cmd == nil {
		t.Fatalf("expected word completion command")
	}
	first := m.snap.Word
	m.Update(cmd())
	if m.snap.WordIndex != 1 || m.snap.WordsCompleted != 1 {
		t.Fatalf("expected second word after completion, got %+v (first %q)", m.snap, first)
	}
	if m.View() == "" {
		t.Fatalf("expected game view")
	}

	now = now.Add(5 * time.Second)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected end command")
	}
	m.Update(cmd())
	if m.Summary() == nil {
		t.Fatalf("expected summary after end")
	}
	if m.Summary().Score <= 0 {
		t.Fatalf("expected positive score, got %d", m.Summary().Score)
	}

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Score != m.Summary().Score {
		t.Fatalf("expected saved session, got %+v", sessions)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestModelStartFailureQuits(t *testing.T) {
	src := challenge.NewLocal(nil, generator.NewSeeded(wordlist.FallbackAll(), 1), 0)
	sess := session.New(src, session.WithTicker(false))
	m := NewModel(Options{Session: sess, Level: 42})

	_, cmd := m.Update(startedMsg{err: sess.Start(context.Background(), 42)})
	if cmd == nil || m.Err() == nil {
		t.Fatalf("expected start error and quit")
	}
}

package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "beattype.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		stats := model.SessionStats{
			StartedAt:      start,
			EndedAt:        end,
			Level:          1,
			LevelName:      "Pixelated Heartbeat",
			Tempo:          120,
			Pattern:        "1010",
			Score:          100 * (i + 1),
			MaxCombo:       4,
			WordsCompleted: 3,
			Accuracy:       80,
			Hits:           10,
			Misses:         1,
			DurationMs:     end.Sub(start).Milliseconds(),
		}
		charStats := []model.CharStats{
			{Char: "a", Hits: 5, ScoreSum: 4.5, AbsOffsetSumMs: 50},
			{Char: "b", Hits: 4, Misses: 1, ScoreSum: 2, AbsOffsetSumMs: 200},
		}
		id, err := st.InsertSession(ctx, stats, charStats)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Level:       1,
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window session ids: %v", report.WindowSessionIDs)
	}
	if len(report.CharAggsAll) != 2 {
		t.Fatalf("expected char aggregates for all sessions, got %d", len(report.CharAggsAll))
	}
	if len(report.Weakest) == 0 || report.Weakest[0] != "b" {
		t.Fatalf("expected b as weakest char, got %v", report.Weakest)
	}
}

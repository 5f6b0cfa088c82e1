// Package store handles SQLite persistence of finished game sessions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/beattype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to migrate database: %w", err), db.Close())
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			level INTEGER NOT NULL,
			level_name TEXT NOT NULL,
			tempo REAL NOT NULL,
			pattern TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_combo INTEGER NOT NULL,
			words_completed INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_char_stats (
			session_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			score_sum REAL NOT NULL,
			abs_offset_sum_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_level ON sessions(level);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its per-character stats. An
// empty UUID is filled in.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, chars []model.CharStats) (id int64, err error) {
	if stats.UUID == "" {
		stats.UUID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (uuid, started_at, ended_at, level, level_name, tempo, pattern, score, max_combo, words_completed, accuracy, hits, misses, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.UUID,
		stats.StartedAt.UTC().Format(timeLayout),
		stats.EndedAt.UTC().Format(timeLayout),
		stats.Level,
		stats.LevelName,
		stats.Tempo,
		stats.Pattern,
		stats.Score,
		stats.MaxCombo,
		stats.WordsCompleted,
		stats.Accuracy,
		stats.Hits,
		stats.Misses,
		stats.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	if len(chars) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_char_stats (session_id, char, hits, misses, score_sum, abs_offset_sum_ms)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, fmt.Errorf("failed to prepare char stats: %w", err)
		}
		defer stmt.Close()
		for _, cs := range chars {
			if _, err = stmt.ExecContext(ctx, id, cs.Char, cs.Hits, cs.Misses, cs.ScoreSum, cs.AbsOffsetSumMs); err != nil {
				return 0, fmt.Errorf("failed to insert char stats: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// HasSession reports whether a session with the given UUID exists.
func (s *Store) HasSession(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE uuid = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return n > 0, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest
// first. Last keeps only the most recent sessions.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	where, args := filterClause(cfg)
	query := fmt.Sprintf(`SELECT id, ended_at, level, score, max_combo, words_completed, accuracy, hits, misses, duration_ms
		FROM sessions
		WHERE %s`, where)
	if cfg.Last > 0 {
		query = fmt.Sprintf(`SELECT * FROM (%s ORDER BY ended_at DESC LIMIT ?) ORDER BY ended_at ASC`, query)
		args = append(args, cfg.Last)
	} else {
		query += ` ORDER BY ended_at ASC`
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Level, &agg.Score, &agg.MaxCombo, &agg.WordsCompleted,
			&agg.Accuracy, &agg.Hits, &agg.Misses, &agg.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if agg.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, fmt.Errorf("failed to parse session time: %w", err)
		}
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// SessionRecord is a full stored session with its character stats.
type SessionRecord struct {
	Stats model.SessionStats
	Chars []model.CharStats
}

// ListSessionRecords returns complete sessions matching cfg, oldest first.
func (s *Store) ListSessionRecords(ctx context.Context, cfg model.StatsConfig) ([]SessionRecord, error) {
	where, args := filterClause(cfg)
	query := fmt.Sprintf(`SELECT id, uuid, started_at, ended_at, level, level_name, tempo, pattern, score, max_combo,
		words_completed, accuracy, hits, misses, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	var ids []int64
	for rows.Next() {
		var id int64
		var st model.SessionStats
		var startedAt, endedAt string
		if err := rows.Scan(&id, &st.UUID, &startedAt, &endedAt, &st.Level, &st.LevelName, &st.Tempo, &st.Pattern,
			&st.Score, &st.MaxCombo, &st.WordsCompleted, &st.Accuracy, &st.Hits, &st.Misses, &st.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if st.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse session time: %w", err)
		}
		if st.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, fmt.Errorf("failed to parse session time: %w", err)
		}
		records = append(records, SessionRecord{Stats: st})
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	chars, err := s.listCharStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		records[i].Chars = chars[id]
	}
	return records, nil
}

func (s *Store) listCharStats(ctx context.Context, sessionIDs []int64) (map[int64][]model.CharStats, error) {
	result := map[int64][]model.CharStats{}
	if len(sessionIDs) == 0 {
		return result, nil
	}
	placeholders, args := inClause(sessionIDs)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT session_id, char, hits, misses, score_sum, abs_offset_sum_ms
		FROM session_char_stats
		WHERE session_id IN (%s)
		ORDER BY session_id, char`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list char stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var cs model.CharStats
		if err := rows.Scan(&id, &cs.Char, &cs.Hits, &cs.Misses, &cs.ScoreSum, &cs.AbsOffsetSumMs); err != nil {
			return nil, fmt.Errorf("failed to scan char stats: %w", err)
		}
		result[id] = append(result[id], cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list char stats: %w", err)
	}
	return result, nil
}

// ListCharAggregatesForSessions aggregates per-character stats across sessions.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(sessionIDs)
	query := fmt.Sprintf(`SELECT char, SUM(hits), SUM(misses), SUM(score_sum), SUM(abs_offset_sum_ms)
		FROM session_char_stats
		WHERE session_id IN (%s)
		GROUP BY char`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate char stats: %w", err)
	}
	defer rows.Close()

	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Hits, &agg.Misses, &agg.ScoreSum, &agg.AbsOffsetSumMs); err != nil {
			return nil, fmt.Errorf("failed to scan char stats: %w", err)
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to aggregate char stats: %w", err)
	}
	return result, nil
}

// BestScore returns the highest score recorded for a level. ok is false
// when the level has no sessions.
func (s *Store) BestScore(ctx context.Context, level int) (score int, ok bool, err error) {
	var best sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(score) FROM sessions WHERE level = ?`, level).Scan(&best); err != nil {
		return 0, false, fmt.Errorf("failed to read best score: %w", err)
	}
	if !best.Valid {
		return 0, false, nil
	}
	return int(best.Int64), true, nil
}

// Totals summarizes the whole history. Average accuracy weighs every
// session equally.
func (s *Store) Totals(ctx context.Context) (model.Totals, error) {
	var totals model.Totals
	var words sql.NullInt64
	var acc sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(words_completed), AVG(accuracy) FROM sessions`).
		Scan(&totals.Sessions, &words, &acc)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.Totals{}, fmt.Errorf("failed to read totals: %w", err)
	}
	totals.WordsCompleted = int(words.Int64)
	totals.AvgAccuracy = acc.Float64
	return totals, nil
}

func filterClause(cfg model.StatsConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Level > 0 {
		clauses = append(clauses, "level = ?")
		args = append(args, cfg.Level)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}

func inClause(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

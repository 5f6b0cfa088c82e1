// Package archive writes and reads session history as zstd-compressed JSON
// lines, one session per line.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/store"
)

// maxLine bounds a single decoded JSON line.
const maxLine = 4 << 20

type charRecord struct {
	Char           string  `json:"char"`
	Hits           int     `json:"hits"`
	Misses         int     `json:"misses"`
	ScoreSum       float64 `json:"score_sum"`
	AbsOffsetSumMs int64   `json:"abs_offset_sum_ms"`
}

type sessionRecord struct {
	UUID           string       `json:"uuid"`
	StartedAt      time.Time    `json:"started_at"`
	EndedAt        time.Time    `json:"ended_at"`
	Level          int          `json:"level"`
	LevelName      string       `json:"level_name"`
	Tempo          float64      `json:"bpm"`
	Pattern        string       `json:"rhythm_pattern"`
	Score          int          `json:"score"`
	MaxCombo       int          `json:"max_combo"`
	WordsCompleted int          `json:"words_completed"`
	Accuracy       float64      `json:"accuracy"`
	Hits           int          `json:"hits"`
	Misses         int          `json:"misses"`
	DurationMs     int64        `json:"duration_ms"`
	Chars          []charRecord `json:"chars,omitempty"`
}

// Export writes records to w and returns how many were written.
func Export(w io.Writer, records []store.SessionRecord) (int, error) {
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return 0, fmt.Errorf("create zstd encoder: %w", err)
	}
	enc := json.NewEncoder(encoder)
	for i, rec := range records {
		if err := enc.Encode(toRecord(rec)); err != nil {
			encoder.Close()
			return i, fmt.Errorf("encode session %s: %w", rec.Stats.UUID, err)
		}
	}
	if err := encoder.Close(); err != nil {
		return len(records), fmt.Errorf("finalize compression: %w", err)
	}
	return len(records), nil
}

// Import reads records written by Export.
func Import(r io.Reader) ([]store.SessionRecord, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	scanner := bufio.NewScanner(decoder)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	var out []store.SessionRecord
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec sessionRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", line, err)
		}
		out = append(out, fromRecord(rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

// ExportFile writes records to dir/beattype-<timestamp>.jsonl.zst and
// returns the path.
func ExportFile(dir string, records []store.SessionRecord, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("beattype-%s.jsonl.zst", now.UTC().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	if _, err := Export(f, records); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	return path, nil
}

// ImportFile reads an archive from path.
func ImportFile(path string) ([]store.SessionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	return Import(f)
}

func toRecord(rec store.SessionRecord) sessionRecord {
	s := rec.Stats
	out := sessionRecord{
		UUID:           s.UUID,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
		Level:          s.Level,
		LevelName:      s.LevelName,
		Tempo:          s.Tempo,
		Pattern:        s.Pattern,
		Score:          s.Score,
		MaxCombo:       s.MaxCombo,
		WordsCompleted: s.WordsCompleted,
		Accuracy:       s.Accuracy,
		Hits:           s.Hits,
		Misses:         s.Misses,
		DurationMs:     s.DurationMs,
	}
	for _, c := range rec.Chars {
		out.Chars = append(out.Chars, charRecord(c))
	}
	return out
}

func fromRecord(rec sessionRecord) store.SessionRecord {
	out := store.SessionRecord{Stats: model.SessionStats{
		UUID:           rec.UUID,
		StartedAt:      rec.StartedAt,
		EndedAt:        rec.EndedAt,
		Level:          rec.Level,
		LevelName:      rec.LevelName,
		Tempo:          rec.Tempo,
		Pattern:        rec.Pattern,
		Score:          rec.Score,
		MaxCombo:       rec.MaxCombo,
		WordsCompleted: rec.WordsCompleted,
		Accuracy:       rec.Accuracy,
		Hits:           rec.Hits,
		Misses:         rec.Misses,
		DurationMs:     rec.DurationMs,
	}}
	for _, c := range rec.Chars {
		out.Chars = append(out.Chars, model.CharStats(c))
	}
	return out
}

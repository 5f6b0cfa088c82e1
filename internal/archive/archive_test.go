package archive

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/store"
)

func sampleRecords() []store.SessionRecord {
	start := time.Date(2024, 8, 1, 18, 30, 0, 0, time.UTC)
	return []store.SessionRecord{
		{
			Stats: model.SessionStats{
				UUID: "a1", StartedAt: start, EndedAt: start.Add(time.Minute), Level: 1, LevelName: "Pixelated Heartbeat",
				Tempo: 120, Pattern: "1010", Score: 300, MaxCombo: 9, WordsCompleted: 6, Accuracy: 91.5, Hits: 30, Misses: 2, DurationMs: 60000,
			},
			Chars: []model.CharStats{{Char: "e", Hits: 5, Misses: 1, ScoreSum: 4.2, AbsOffsetSumMs: 210}},
		},
		{
			Stats: model.SessionStats{UUID: "b2", StartedAt: start.Add(time.Hour), EndedAt: start.Add(time.Hour + time.Minute), Level: 2, Tempo: 140, Pattern: "1011"},
		},
	}
}

func TestExportImport(t *testing.T) {
	var buf bytes.Buffer
	n, err := Export(&buf, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := Import(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestExportWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	_, err := Export(&buf, sampleRecords())
	require.NoError(t, err)

	plain, err := zstdDecode(t, buf.Bytes())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(plain), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"bpm":120`)
	assert.Contains(t, lines[0], `"rhythm_pattern":"1010"`)
	assert.NotContains(t, lines[1], `"chars"`)
}

func zstdDecode(t *testing.T, data []byte) (string, error) {
	t.Helper()
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return "", err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	return string(out), err
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := Import(strings.NewReader("not zstd"))
	assert.Error(t, err)
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 8, 2, 7, 5, 9, 0, time.UTC)
	path, err := ExportFile(dir, sampleRecords(), now)
	require.NoError(t, err)
	assert.Contains(t, path, "beattype-20240802-070509.jsonl.zst")
	_, err = os.Stat(path)
	require.NoError(t, err)

	got, err := ImportFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

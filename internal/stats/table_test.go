package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	cols := []column{{title: "Char"}, {title: "Timing", numeric: true}, {title: "Hits", numeric: true}}
	rows := [][]string{
		{"a", "97.5%", "12"},
		{"<space>", "8.0%"},
	}

	lines := formatTable(cols, rows)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	want := []string{
		"Char     Timing  Hits",
		"-------  ------  ----",
		"a         97.5%    12",
		"<space>    8.0%",
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d: expected %q, got %q", i, line, lines[i])
		}
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]column{{title: "C"}, {title: "N", numeric: true}}, [][]string{{"日", "1"}})
	if lines[2] != "日  1" {
		t.Fatalf("unexpected wide rune row: %q", lines[2])
	}
}

func TestFormatTableNoColumns(t *testing.T) {
	if lines := formatTable(nil, [][]string{{"x"}}); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}

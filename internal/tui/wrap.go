package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/beattype/internal/rhythm"
	"github.com/verte-zerg/beattype/internal/session"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

func gradeStyle(g rhythm.Grade) lipgloss.Style {
	switch g {
	case rhythm.GradePerfect:
		return perfectStyle
	case rhythm.GradeGood:
		return goodStyle
	case rhythm.GradeOkay:
		return okayStyle
	case rhythm.GradeBad:
		return badStyle
	default:
		return incorrectStyle
	}
}

// buildStyledLetters colors each letter of the current word: typed letters
// by timing grade, missed ones red until hit, the cursor underlined.
func buildStyledLetters(points []rhythm.TimingPoint, letters []session.LetterStatus, cursorIndex int) []styledRune {
	out := make([]styledRune, 0, len(points))
	for i, p := range points {
		style := pendingStyle
		if i < len(letters) {
			switch st := letters[i]; {
			case st.Done:
				style = gradeStyle(st.Grade)
			case st.Misses > 0:
				style = incorrectStyle
			case i == cursorIndex:
				style = currentWordStyle
			}
		}
		if i == cursorIndex {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(p.Char)),
			width:   runewidth.RuneWidth(p.Char),
			isSpace: p.Char == ' ',
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks runes into lines of at most width cells,
// preferring to break at spaces.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
			} else {
				out.WriteString(renderStyledRunes(line))
				line = line[:0]
			}
			out.WriteRune('\n')
			lineWidth = lineWidthOf(line)
			lastSpaceIdx = lastSpaceIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

// renderLane draws upcoming beats from beat onward: letters on the beats
// they are scheduled for, dots on free active beats, blanks on rests.
func renderLane(clock *rhythm.Clock, points []rhythm.TimingPoint, from int64, cells int) string {
	if clock == nil || cells <= 0 {
		return ""
	}
	byBeat := make(map[int64]rune, len(points))
	for _, p := range points {
		byBeat[p.Beat] = p.Char
	}
	var b strings.Builder
	for i := int64(0); i < int64(cells); i++ {
		beat := from + i
		cell := " "
		switch r, ok := byBeat[beat]; {
		case ok:
			cell = string(r)
		case clock.IsActive(beat):
			cell = "·"
		}
		if i == 0 {
			b.WriteString(pulseStyle.Render(cell))
		} else {
			b.WriteString(laneStyle.Render(cell))
		}
		b.WriteByte(' ')
	}
	return strings.TrimRight(b.String(), " ")
}

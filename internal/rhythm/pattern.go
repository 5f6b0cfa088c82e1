package rhythm

import (
	"strings"
)

// Pattern is a cyclic sequence of active and inactive beat slots.
// A Pattern always has at least one active slot.
type Pattern struct {
	slots []bool
}

// NewPattern validates and copies slots into a Pattern.
func NewPattern(slots []bool) (Pattern, error) {
	if len(slots) == 0 {
		return Pattern{}, configErrorf("pattern", "must contain at least one slot")
	}
	active := false
	for _, on := range slots {
		if on {
			active = true
			break
		}
	}
	if !active {
		return Pattern{}, configErrorf("pattern", "must contain at least one active slot")
	}
	out := make([]bool, len(slots))
	copy(out, slots)
	return Pattern{slots: out}, nil
}

// MustPattern is like NewPattern but panics on invalid input. Intended for
// package-level defaults.
func MustPattern(slots ...bool) Pattern {
	p, err := NewPattern(slots)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePattern parses strings such as "1010" or "x.x.". Spaces, commas and
// '|' separators are ignored.
func ParsePattern(s string) (Pattern, error) {
	slots := make([]bool, 0, len(s))
	for _, r := range s {
		switch r {
		case '1', 'x', 'X', '*':
			slots = append(slots, true)
		case '0', '.', '-', '_':
			slots = append(slots, false)
		case ' ', ',', '|', '\t':
			continue
		default:
			return Pattern{}, configErrorf("pattern", "unexpected character %q in %q", r, s)
		}
	}
	return NewPattern(slots)
}

// PatternFromInts converts a 0/1 slice, the form used by the challenge API.
func PatternFromInts(values []int) (Pattern, error) {
	slots := make([]bool, len(values))
	for i, v := range values {
		slots[i] = v != 0
	}
	return NewPattern(slots)
}

// Len returns the number of slots in one cycle.
func (p Pattern) Len() int {
	return len(p.slots)
}

// Valid reports whether p was built by one of the constructors.
func (p Pattern) Valid() bool {
	return len(p.slots) > 0
}

// Active reports whether the slot for beat is active.
func (p Pattern) Active(beat int64) bool {
	n := int64(len(p.slots))
	if n == 0 {
		return false
	}
	idx := beat % n
	if idx < 0 {
		idx += n
	}
	return p.slots[idx]
}

// ActiveCount returns the number of active slots in one cycle.
func (p Pattern) ActiveCount() int {
	count := 0
	for _, on := range p.slots {
		if on {
			count++
		}
	}
	return count
}

// Ints returns the pattern as 0/1 values.
func (p Pattern) Ints() []int {
	out := make([]int, len(p.slots))
	for i, on := range p.slots {
		if on {
			out[i] = 1
		}
	}
	return out
}

// String renders the pattern as "1010".
func (p Pattern) String() string {
	var b strings.Builder
	for _, on := range p.slots {
		if on {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

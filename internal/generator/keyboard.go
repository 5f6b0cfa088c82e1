package generator

import "strings"

// KeyPattern classifies how two adjacent keys are typed on a QWERTY layout.
type KeyPattern int

const (
	SameFinger KeyPattern = iota
	AlternatingHands
	Rolling
)

func (p KeyPattern) String() string {
	switch p {
	case SameFinger:
		return "same_finger"
	case AlternatingHands:
		return "alternating_hands"
	case Rolling:
		return "rolling"
	default:
		return "unknown"
	}
}

// KeyPair is one pattern found between two adjacent letters.
type KeyPair struct {
	Pattern KeyPattern
	Pair    string
}

var (
	fingerKeys = []string{
		"1qaz", "2wsx", "3edc", "45rtfgvb",
		"67yuhjnm", "8ik,", "9ol.", "0p;/",
	}
	leftHand  = "qwertasdfgzxcvb"
	rightHand = "yuiophjklnm"
	rolls     = []string{
		"qwe", "wer", "ert", "rty", "tyu", "yui", "uio", "iop",
		"asd", "sdf", "dfg", "fgh", "ghj", "hjk", "jkl",
		"zxc", "xcv", "cvb", "vbn", "bnm",
	}

	patternWeights = map[KeyPattern]float64{
		SameFinger:       2.0,
		AlternatingHands: -0.5,
		Rolling:          -0.3,
	}
)

// AnalyzeKeys reports every keyboard pattern between adjacent letters of
// word, ignoring case. A pair may match more than one pattern.
func AnalyzeKeys(word string) []KeyPair {
	runes := []rune(strings.ToLower(word))
	var pairs []KeyPair
	for i := 0; i+1 < len(runes); i++ {
		a, b := runes[i], runes[i+1]
		pair := string([]rune{a, b})
		if sameFinger(a, b) {
			pairs = append(pairs, KeyPair{Pattern: SameFinger, Pair: pair})
		}
		if alternatingHands(a, b) {
			pairs = append(pairs, KeyPair{Pattern: AlternatingHands, Pair: pair})
		}
		if rolling(a, b) {
			pairs = append(pairs, KeyPair{Pattern: Rolling, Pair: pair})
		}
	}
	return pairs
}

// keyboardScore is the summed pattern weight per letter of word.
func keyboardScore(word string, n int) float64 {
	if n == 0 {
		return 0
	}
	total := 0.0
	for _, p := range AnalyzeKeys(word) {
		total += patternWeights[p.Pattern]
	}
	return total / float64(n)
}

func sameFinger(a, b rune) bool {
	for _, keys := range fingerKeys {
		if strings.ContainsRune(keys, a) && strings.ContainsRune(keys, b) {
			return true
		}
	}
	return false
}

func alternatingHands(a, b rune) bool {
	left := strings.ContainsRune(leftHand, a) && strings.ContainsRune(rightHand, b)
	right := strings.ContainsRune(rightHand, a) && strings.ContainsRune(leftHand, b)
	return left || right
}

func rolling(a, b rune) bool {
	forward := string([]rune{a, b})
	backward := string([]rune{b, a})
	for _, roll := range rolls {
		if strings.Contains(roll, forward) || strings.Contains(roll, backward) {
			return true
		}
	}
	return false
}

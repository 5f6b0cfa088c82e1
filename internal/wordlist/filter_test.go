package wordlist

import "testing"

func TestFilterLetters(t *testing.T) {
	for _, word := range []string{"beat", "naïve", "Tempo"} {
		if !FilterLetters(word) {
			t.Fatalf("expected %q to pass", word)
		}
	}
	for _, word := range []string{"", "don’t", "co-op", "4/4"} {
		if FilterLetters(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilterASCII(t *testing.T) {
	if !FilterASCII("hello") {
		t.Fatalf("expected hello to pass")
	}
	for _, word := range []string{"résumé", "Hello", "co-op"} {
		if FilterASCII(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestApplyLengthAndLetters(t *testing.T) {
	words := []string{"a", "beat", "tempo", "syncopation", "off-beat"}
	got := Apply(words, FilterLetters, FilterLength(3, 10))
	if len(got) != 2 || got[0] != "beat" || got[1] != "tempo" {
		t.Fatalf("unexpected filter result: %v", got)
	}
}

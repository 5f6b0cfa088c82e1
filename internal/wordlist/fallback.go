package wordlist

// MinLevel and MaxLevel bound the difficulty levels.
const (
	MinLevel = 1
	MaxLevel = 5
)

var fallbackWords = map[int][]string{
	1: {
		"the", "and", "for", "are", "but", "not", "you", "all", "any",
		"can", "day", "get", "has", "him", "his", "how", "man", "new",
		"now", "old", "see", "two", "way", "who", "boy", "did", "its",
		"let", "put", "say", "she", "too", "was",
	},
	2: {
		"about", "after", "again", "below", "could", "every", "first",
		"found", "great", "house", "large", "learn", "never", "other",
		"place", "plant", "point", "right", "small", "sound", "spell",
		"still", "study", "their", "there", "these", "thing", "think",
	},
	3: {
		"algorithm", "function", "variable", "keyboard", "practice",
		"sequence", "pattern", "complete", "continue", "document",
		"exercise", "increase", "organize", "remember", "separate",
		"solution", "together", "category", "discover", "important",
	},
	4: {
		"programming", "development", "javascript", "experience",
		"challenge", "knowledge", "understand", "technology",
		"difference", "particular", "processing", "successful",
		"everything", "production", "collection", "commercial",
		"confidence", "generation", "population", "university",
	},
	5: {
		"asynchronous", "optimization", "inheritance", "polymorphism",
		"encapsulation", "authentication", "authorization", "configuration",
		"implementation", "initialization", "interpretation", "multiplication",
		"organization", "perpendicular", "sophisticated", "synchronization",
		"understanding", "visualization",
	},
}

// Fallback returns the built-in words for a level. Out-of-range levels are
// clamped.
func Fallback(level int) []string {
	level = ClampLevel(level)
	out := make([]string, len(fallbackWords[level]))
	copy(out, fallbackWords[level])
	return out
}

// FallbackAll returns every built-in word.
func FallbackAll() []string {
	var out []string
	for level := MinLevel; level <= MaxLevel; level++ {
		out = append(out, fallbackWords[level]...)
	}
	return out
}

// ClampLevel limits level to [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Package session runs one rhythm typing game: it anchors the beat clock,
// schedules words, judges keystrokes and aggregates the score.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/beattype/internal/challenge"
	"github.com/verte-zerg/beattype/internal/logging"
	"github.com/verte-zerg/beattype/internal/rhythm"
)

const (
	defaultWord   = "beat"
	submitTimeout = 5 * time.Second
)

var (
	// ErrNotRunning is returned by End outside the running phase.
	ErrNotRunning = errors.New("session is not running")
	// ErrAlreadyStarted is returned by Start after the idle phase.
	ErrAlreadyStarted = errors.New("session already started")
)

// Phase is the lifecycle state of a Session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// LetterStatus is the per-letter state shown to the player.
type LetterStatus struct {
	Grade  rhythm.Grade
	Done   bool
	Misses int
}

// CharTiming accumulates timing results for one character.
type CharTiming struct {
	Hits         int
	Misses       int
	ScoreSum     float64
	AbsOffsetSum time.Duration
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Phase          Phase
	Level          challenge.Level
	StartedAt      time.Time
	State          rhythm.State
	Word           string
	WordIndex      int
	LetterIndex    int
	WordDone       bool
	Points         []rhythm.TimingPoint
	Letters        []LetterStatus
	WordsCompleted int
	Last           *rhythm.Judgement
}

// Summary reports a finished session.
type Summary struct {
	Level          challenge.Level
	StartedAt      time.Time
	EndedAt        time.Time
	Score          int
	MaxCombo       int
	WordsCompleted int
	Accuracy       float64
	Hits           int
	Misses         int
	Chars          map[rune]CharTiming
	// Reported is the challenge service's own tally, nil when unavailable.
	Reported *challenge.EndResult
}

// Duration returns the session length.
func (s Summary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Option configures a Session.
type Option func(*Session)

// WithNow injects the time source.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithScorer overrides the timing scorer.
func WithScorer(scorer rhythm.Scorer) Option {
	return func(s *Session) { s.scorer = scorer }
}

// WithBasePoints overrides the points per hit.
func WithBasePoints(points int) Option {
	return func(s *Session) { s.basePoints = points }
}

// WithFallback sets the source used when the primary one fails.
func WithFallback(src challenge.Source) Option {
	return func(s *Session) { s.fallback = src }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTicker enables or disables the background beat ticker.
func WithTicker(enabled bool) Option {
	return func(s *Session) { s.tickEnabled = enabled }
}

// Session orchestrates one game. All state changes happen under a single
// lock, one event at a time; observers are called after the lock is
// released.
type Session struct {
	source      challenge.Source
	fallback    challenge.Source
	now         func() time.Time
	scorer      rhythm.Scorer
	basePoints  int
	logger      *slog.Logger
	tickEnabled bool

	mu             sync.Mutex
	phase          Phase
	level          challenge.Level
	clock          *rhythm.Clock
	agg            *rhythm.Aggregator
	startedAt      time.Time
	ticker         *ticker
	word           string
	wordOpen       bool
	scheduled      bool
	nextStart      int64
	points         []rhythm.TimingPoint
	letters        []LetterStatus
	letterIdx      int
	wordIndex      int
	wordScore      int
	wordsCompleted int
	chars          map[rune]*CharTiming
	last           *rhythm.Judgement

	submits *submitter

	beats  registry[Beat]
	scores registry[Snapshot]
	words  registry[challenge.WordResult]
	errs   registry[error]
}

// New returns an idle Session backed by source.
func New(source challenge.Source, opts ...Option) *Session {
	s := &Session{
		source:      source,
		now:         time.Now,
		scorer:      rhythm.NewScorer(rhythm.DefaultWindow),
		basePoints:  rhythm.DefaultBasePoints,
		logger:      logging.Discard(),
		tickEnabled: true,
		wordIndex:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnBeat subscribes to beat pulses. The callback runs on the ticker
// goroutine.
func (s *Session) OnBeat(fn func(Beat)) func() {
	return s.beats.add(fn)
}

// OnScoreChanged subscribes to state changes after every processed event.
func (s *Session) OnScoreChanged(fn func(Snapshot)) func() {
	return s.scores.add(fn)
}

// OnWordCompleted subscribes to finished or abandoned words.
func (s *Session) OnWordCompleted(fn func(challenge.WordResult)) func() {
	return s.words.add(fn)
}

// OnError subscribes to recovered errors such as network failures.
func (s *Session) OnError(fn func(error)) func() {
	return s.errs.add(fn)
}

// Start fetches the level from the source and begins the session.
func (s *Session) Start(ctx context.Context, level int) error {
	if s.Phase() != PhaseIdle {
		return ErrAlreadyStarted
	}
	lvl, err := s.source.StartSession(ctx, level)
	if err != nil {
		if !errors.Is(err, challenge.ErrNetwork) || s.fallback == nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		s.report("start session", err)
		lvl, err = s.fallback.StartSession(ctx, level)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
	} else if s.fallback != nil {
		if _, ferr := s.fallback.StartSession(ctx, level); ferr != nil {
			s.logger.Debug("fallback source has no matching level", "level", level, "err", ferr)
		}
	}
	return s.begin(ctx, lvl)
}

// StartWith begins the session with an explicit tempo and pattern.
func (s *Session) StartWith(ctx context.Context, tempo float64, pattern rhythm.Pattern) error {
	return s.begin(ctx, challenge.Level{Name: "custom", Tempo: tempo, Pattern: pattern})
}

func (s *Session) begin(ctx context.Context, lvl challenge.Level) error {
	now := s.now()
	clock, err := rhythm.NewClock(lvl.Tempo, lvl.Pattern, now)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.phase = PhaseRunning
	s.level = lvl
	s.clock = clock
	s.agg = rhythm.NewAggregator(s.basePoints)
	s.startedAt = now
	s.chars = map[rune]*CharTiming{}
	s.submits = newSubmitter(s.submit)
	if s.tickEnabled {
		s.ticker = newTicker(clock, s.now, s.beats.emit)
		s.ticker.start()
	}
	s.mu.Unlock()

	s.logger.Info("session started", "level", lvl.ID, "name", lvl.Name, "tempo", lvl.Tempo, "pattern", lvl.Pattern.String())
	s.SyncWord(s.FetchWord(ctx))
	return nil
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Clock returns the beat clock, or nil before Start.
func (s *Session) Clock() *rhythm.Clock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// SyncWord makes word the current word and schedules its letters. The first
// word starts at the next beat; later words start right after the previous
// word's last beat. Returns nil outside the running phase.
func (s *Session) SyncWord(word string) []rhythm.TimingPoint {
	s.mu.Lock()
	if s.phase != PhaseRunning {
		s.mu.Unlock()
		return nil
	}
	start := s.nextStart
	if !s.scheduled {
		start = s.clock.NextBeat(s.now())
		s.scheduled = true
	}
	points := rhythm.Schedule(s.clock, word, start)
	s.nextStart = rhythm.NextStartBeat(points, start)
	s.word = word
	s.wordOpen = true
	s.points = points
	s.letters = make([]LetterStatus, len(points))
	s.letterIdx = 0
	s.wordIndex++
	s.wordScore = 0
	s.agg.BeginWord()
	next := s.nextStart
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("word scheduled", "word", word, "start_beat", start, "next_start", next)
	s.scores.emit(snap)
	out := make([]rhythm.TimingPoint, len(points))
	copy(out, points)
	return out
}

// Keystroke judges one key press against the current letter. It reports
// false when the event was ignored: outside the running phase or when the
// current word has no pending letter. A wrong key is a miss and leaves the
// letter index unchanged.
func (s *Session) Keystroke(r rune, at time.Time) (rhythm.Judgement, bool) {
	s.mu.Lock()
	if s.phase != PhaseRunning || s.letterIdx >= len(s.points) {
		s.mu.Unlock()
		return rhythm.Judgement{}, false
	}
	point := s.points[s.letterIdx]
	j := s.scorer.Judge(point, r, at)
	ct := s.charTiming(point.Char)
	letter := &s.letters[s.letterIdx]
	if j.Hit {
		s.wordScore += s.agg.RecordHit(j.Score)
		letter.Grade = j.Grade
		letter.Done = true
		s.letterIdx++
		ct.Hits++
		ct.ScoreSum += j.Score
		ct.AbsOffsetSum += absDuration(j.Offset)
	} else {
		s.agg.RecordMiss()
		letter.Grade = rhythm.GradeMiss
		letter.Misses++
		ct.Misses++
	}
	s.last = &j
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.scores.emit(snap)
	return j, true
}

// FinishWord closes the current word and queues its result for submission
// without blocking. Results reach the source in finishing order. It reports
// false when no word is open.
func (s *Session) FinishWord() (challenge.WordResult, bool) {
	s.mu.Lock()
	if s.phase != PhaseRunning || !s.wordOpen {
		s.mu.Unlock()
		return challenge.WordResult{}, false
	}
	completed := s.letterIdx == len(s.points)
	if completed {
		s.wordsCompleted++
	}
	st := s.agg.State()
	points := make([]rhythm.TimingPoint, len(s.points))
	copy(points, s.points)
	result := challenge.WordResult{
		Word:         s.word,
		Score:        s.wordScore,
		Accuracy:     s.agg.WordAccuracy(),
		Combo:        st.Combo,
		Completed:    completed,
		TimingPoints: points,
	}
	s.wordOpen = false
	queue := s.submits
	s.mu.Unlock()

	queue.push(result)
	s.logger.Info("word finished", "word", result.Word, "completed", completed, "score", result.Score, "accuracy", result.Accuracy)
	s.words.emit(result)
	return result, true
}

// FetchWord asks the source for the next word, falling back to the
// fallback source and finally to a built-in word. It never fails.
func (s *Session) FetchWord(ctx context.Context) string {
	word, err := s.source.NextWord(ctx)
	if err == nil && strings.TrimSpace(word) != "" {
		return strings.TrimSpace(word)
	}
	if err != nil {
		s.report("fetch word", err)
	}
	if s.fallback != nil {
		if fw, ferr := s.fallback.NextWord(ctx); ferr == nil && strings.TrimSpace(fw) != "" {
			return strings.TrimSpace(fw)
		}
	}
	return defaultWord
}

// CompleteWord finishes the current word (complete or abandoned), fetches
// the next one and schedules it.
func (s *Session) CompleteWord(ctx context.Context) []rhythm.TimingPoint {
	if s.Phase() != PhaseRunning {
		return nil
	}
	s.FinishWord()
	return s.SyncWord(s.FetchWord(ctx))
}

// End stops the session, stops beat ticking before returning and reports
// the final statistics.
func (s *Session) End(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	if s.phase != PhaseRunning {
		s.mu.Unlock()
		return Summary{}, ErrNotRunning
	}
	s.phase = PhaseEnded
	t := s.ticker
	s.ticker = nil
	queue := s.submits
	st := s.agg.State()
	summary := Summary{
		Level:          s.level,
		StartedAt:      s.startedAt,
		EndedAt:        s.now(),
		Score:          st.Score,
		MaxCombo:       st.MaxCombo,
		WordsCompleted: s.wordsCompleted,
		Accuracy:       st.Accuracy,
		Hits:           st.Hits,
		Misses:         st.Misses,
		Chars:          make(map[rune]CharTiming, len(s.chars)),
	}
	for r, ct := range s.chars {
		summary.Chars[r] = *ct
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if t != nil {
		t.stop()
	}
	queue.close()
	if err := queue.wait(ctx); err != nil {
		s.logger.Warn("pending word submissions abandoned", "err", err)
	}

	reported, err := s.source.EndSession(ctx)
	if err != nil {
		s.report("end session", err)
	} else {
		summary.Reported = &reported
	}
	s.logger.Info("session ended", "score", summary.Score, "max_combo", summary.MaxCombo, "words", summary.WordsCompleted, "accuracy", summary.Accuracy)
	s.scores.emit(snap)
	return summary, nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:          s.phase,
		Level:          s.level,
		StartedAt:      s.startedAt,
		Word:           s.word,
		WordIndex:      s.wordIndex,
		LetterIndex:    s.letterIdx,
		WordDone:       s.wordOpen && s.letterIdx >= len(s.points),
		WordsCompleted: s.wordsCompleted,
	}
	if s.agg != nil {
		snap.State = s.agg.State()
	}
	if len(s.points) > 0 {
		snap.Points = make([]rhythm.TimingPoint, len(s.points))
		copy(snap.Points, s.points)
		snap.Letters = make([]LetterStatus, len(s.letters))
		copy(snap.Letters, s.letters)
	}
	if s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	return snap
}

func (s *Session) charTiming(r rune) *CharTiming {
	ct, ok := s.chars[r]
	if !ok {
		ct = &CharTiming{}
		s.chars[r] = ct
	}
	return ct
}

func (s *Session) submit(result challenge.WordResult) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	if err := s.source.SubmitWordResult(ctx, result); err != nil {
		s.report("submit word", err)
		if s.fallback != nil {
			if ferr := s.fallback.SubmitWordResult(ctx, result); ferr != nil {
				s.logger.Debug("fallback submit failed", "word", result.Word, "err", ferr)
			}
		}
	}
}

func (s *Session) report(op string, err error) {
	if errors.Is(err, challenge.ErrNetwork) {
		s.logger.Warn("challenge service failed; continuing offline", "op", op, "err", err)
	} else {
		s.logger.Error("challenge source failed", "op", op, "err", err)
	}
	s.errs.emit(fmt.Errorf("%s: %w", op, err))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

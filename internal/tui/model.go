// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/beattype/internal/logging"
	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/rhythm"
	"github.com/verte-zerg/beattype/internal/session"
	"github.com/verte-zerg/beattype/internal/store"
)

const (
	laneCells    = 16
	eventBuffer  = 64
	endTimeout   = 3 * time.Second
	fetchTimeout = 5 * time.Second
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	perfectStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	goodStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#36CFC9"))
	okayStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FADB14"))
	badStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#FA8C16"))
	pulseStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	laneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
)

type (
	startedMsg   struct{ err error }
	beatMsg      session.Beat
	errorMsg     struct{ err error }
	completedMsg struct{}
	endedMsg     struct {
		summary session.Summary
		err     error
	}
)

// Options configures the game model.
type Options struct {
	Session *session.Session
	Store   *store.Store
	Logger  *slog.Logger
	Level   int
	Now     func() time.Time
}

// Model implements the Bubble Tea game UI.
type Model struct {
	sess   *session.Session
	store  *store.Store
	logger *slog.Logger
	level  int
	now    func() time.Time

	events chan tea.Msg
	unsubs []func()

	width  int
	height int

	snap       session.Snapshot
	beat       session.Beat
	completing bool
	ending     bool
	bestScore  int
	hasBest    bool

	summary  *session.Summary
	startErr error
	errMsg   string
	notice   string
}

// NewModel constructs a game model around an idle session.
func NewModel(opts Options) *Model {
	m := &Model{
		sess:   opts.Session,
		store:  opts.Store,
		logger: opts.Logger,
		level:  opts.Level,
		now:    opts.Now,
		events: make(chan tea.Msg, eventBuffer),
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.unsubs = append(m.unsubs,
		m.sess.OnBeat(func(b session.Beat) { m.post(beatMsg(b)) }),
		m.sess.OnError(func(err error) { m.post(errorMsg{err: err}) }),
	)
	m.loadBest()
	return m
}

// post delivers an observer event to the program without blocking the
// session; events are dropped when the UI falls behind.
func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Err returns the error that prevented the session from starting.
func (m *Model) Err() error {
	return m.startErr
}

// Summary returns the finished session, or nil.
func (m *Model) Summary() *session.Summary {
	return m.summary
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	sess, level := m.sess, m.level
	return tea.Batch(m.listen(), func() tea.Msg {
		return startedMsg{err: sess.Start(context.Background(), level)}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case startedMsg:
		if msg.err != nil {
			m.startErr = msg.err
			m.errMsg = msg.err.Error()
			m.logger.Error("failed to start session", "err", msg.err)
			return m, tea.Quit
		}
		m.snap = m.sess.Snapshot()
		return m, nil
	case beatMsg:
		m.beat = session.Beat(msg)
		return m, m.listen()
	case errorMsg:
		m.notice = "offline: " + shortError(msg.err)
		return m, m.listen()
	case completedMsg:
		m.completing = false
		m.snap = m.sess.Snapshot()
		return m, nil
	case endedMsg:
		return m.handleEnded(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.summary != nil || m.errMsg != "" {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, m.end()
	case tea.KeyEnter, tea.KeyTab, tea.KeySpace:
		return m, m.complete()
	case tea.KeyRunes:
		return m, m.handleRunes(msg.Runes)
	}
	return m, nil
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	if m.sess.Phase() != session.PhaseRunning {
		return nil
	}
	for _, r := range runes {
		if _, ok := m.sess.Keystroke(r, m.now()); !ok {
			break
		}
	}
	m.snap = m.sess.Snapshot()
	if m.snap.WordDone {
		return m.complete()
	}
	return nil
}

// complete finishes the current word off the UI goroutine because fetching
// the next word may hit the network.
func (m *Model) complete() tea.Cmd {
	if m.completing || m.ending || m.sess.Phase() != session.PhaseRunning {
		return nil
	}
	m.completing = true
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		sess.CompleteWord(ctx)
		return completedMsg{}
	}
}

func (m *Model) end() tea.Cmd {
	if m.ending {
		return nil
	}
	if m.sess.Phase() != session.PhaseRunning {
		return tea.Quit
	}
	m.ending = true
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), endTimeout)
		defer cancel()
		summary, err := sess.End(ctx)
		return endedMsg{summary: summary, err: err}
	}
}

func (m *Model) handleEnded(msg endedMsg) (tea.Model, tea.Cmd) {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	if msg.err != nil {
		if errors.Is(msg.err, session.ErrNotRunning) {
			return m, tea.Quit
		}
		m.errMsg = msg.err.Error()
		return m, nil
	}
	m.summary = &msg.summary
	m.snap = m.sess.Snapshot()
	if msg.summary.Hits+msg.summary.Misses == 0 {
		return m, nil
	}
	m.saveSummary(msg.summary)
	return m, nil
}

func (m *Model) saveSummary(summary session.Summary) {
	if m.store == nil {
		return
	}
	stats, chars := sessionRecord(summary)
	if _, err := m.store.InsertSession(context.Background(), stats, chars); err != nil {
		m.logger.Error("failed to save session", "err", err)
		m.notice = "failed to save session"
		return
	}
	m.logger.Info("session saved", "uuid", stats.UUID, "score", stats.Score)
}

// sessionRecord converts a finished session into its stored form.
func sessionRecord(summary session.Summary) (model.SessionStats, []model.CharStats) {
	stats := model.SessionStats{
		UUID:           uuid.NewString(),
		StartedAt:      summary.StartedAt,
		EndedAt:        summary.EndedAt,
		Level:          summary.Level.ID,
		LevelName:      summary.Level.Name,
		Tempo:          summary.Level.Tempo,
		Pattern:        summary.Level.Pattern.String(),
		Score:          summary.Score,
		MaxCombo:       summary.MaxCombo,
		WordsCompleted: summary.WordsCompleted,
		Accuracy:       summary.Accuracy,
		Hits:           summary.Hits,
		Misses:         summary.Misses,
		DurationMs:     summary.Duration().Milliseconds(),
	}
	chars := make([]model.CharStats, 0, len(summary.Chars))
	for r, ct := range summary.Chars {
		chars = append(chars, model.CharStats{
			Char:           string(r),
			Hits:           ct.Hits,
			Misses:         ct.Misses,
			ScoreSum:       ct.ScoreSum,
			AbsOffsetSumMs: ct.AbsOffsetSum.Milliseconds(),
		})
	}
	return stats, chars
}

func (m *Model) loadBest() {
	if m.store == nil {
		return
	}
	best, ok, err := m.store.BestScore(context.Background(), m.level)
	if err != nil {
		m.logger.Warn("failed to load best score", "err", err)
		return
	}
	m.bestScore, m.hasBest = best, ok
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.errMsg != "":
		content = incorrectStyle.Render(m.errMsg) + "\n" + footerStyle.Render("press q to quit")
	case m.summary != nil:
		content = m.renderSummary()
	case m.snap.Phase != session.PhaseRunning:
		content = footerStyle.Render("starting...")
	default:
		content = m.renderGame()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) renderGame() string {
	contentWidth := max(1, int(float64(m.width)*0.70))
	letters := buildStyledLetters(m.snap.Points, m.snap.Letters, m.snap.LetterIndex)
	word := wrapStyledRunes(letters, contentWidth)

	lvl := m.snap.Level
	title := titleStyle.Render(fmt.Sprintf("%s  %.0f BPM  %s", lvl.Name, lvl.Tempo, renderPattern(lvl.Pattern, m.beat)))

	clock := m.sess.Clock()
	var lane string
	if clock != nil {
		lane = renderLane(clock, m.snap.Points, clock.CurrentBeat(m.now()), laneCells)
	}

	lines := []string{title, "", word, "", lane}
	if j := m.snap.Last; j != nil {
		lines = append(lines, "", gradeStyle(j.Grade).Render(describeJudgement(*j)))
	}
	return strings.Join(lines, "\n")
}

// renderPattern shows the rhythm pattern with the slot of the latest beat
// highlighted.
func renderPattern(p rhythm.Pattern, beat session.Beat) string {
	n := p.Len()
	if n == 0 {
		return ""
	}
	slot := int(((beat.Index % int64(n)) + int64(n)) % int64(n))
	var b strings.Builder
	for i := 0; i < n; i++ {
		mark := "○"
		if p.Active(int64(i)) {
			mark = "●"
		}
		if i == slot && !beat.At.IsZero() {
			b.WriteString(pulseStyle.Render(mark))
		} else {
			b.WriteString(laneStyle.Render(mark))
		}
	}
	return b.String()
}

func describeJudgement(j rhythm.Judgement) string {
	if !j.Hit {
		return fmt.Sprintf("miss: typed %q, wanted %q", j.Typed, j.Point.Char)
	}
	ms := j.Offset.Milliseconds()
	switch {
	case ms < 0:
		return fmt.Sprintf("%s  %dms early", j.Grade, -ms)
	case ms > 0:
		return fmt.Sprintf("%s  %dms late", j.Grade, ms)
	default:
		return j.Grade.String()
	}
}

func (m *Model) renderSummary() string {
	s := m.summary
	lines := []string{
		titleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("Score     %d", s.Score),
		fmt.Sprintf("Max combo %d", s.MaxCombo),
		fmt.Sprintf("Words     %d", s.WordsCompleted),
		fmt.Sprintf("Accuracy  %.1f%%", s.Accuracy),
		fmt.Sprintf("Duration  %s", s.Duration().Round(time.Second)),
	}
	if m.hasBest && s.Score > m.bestScore {
		lines = append(lines, "", perfectStyle.Render("New best score!"))
	}
	lines = append(lines, "", footerStyle.Render("press q to quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	if m.snap.Phase == session.PhaseIdle {
		return ""
	}
	st := m.snap.State
	segments := []string{
		fmt.Sprintf("Score %d", st.Score),
		fmt.Sprintf("Combo %d", st.Combo),
		fmt.Sprintf("Max %d", st.MaxCombo),
		fmt.Sprintf("Acc %.1f%%", st.Accuracy),
		fmt.Sprintf("Words %d", m.snap.WordsCompleted),
	}
	if m.hasBest {
		segments = append(segments, fmt.Sprintf("Best %d", m.bestScore))
	}
	if m.notice != "" {
		segments = append(segments, m.notice)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func shortError(err error) string {
	msg := err.Error()
	if len(msg) > 40 {
		return msg[:37] + "..."
	}
	return msg
}

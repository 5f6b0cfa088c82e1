// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/stats"
	"github.com/verte-zerg/beattype/internal/store"
)

const (
	tabOverview = iota
	tabSessions
	tabCharTable
)

const dateLayout = "2006-01-02"

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#B48EAD"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	sessions  table.Model
	charTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		tabs:     []string{"Overview", "Sessions", "Char Table"},
		overview: viewport.New(0, 0),
	}
	m.filterInputs = []textinput.Model{
		newFilterInput("Level: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.sessions = table.New(
		table.WithColumns(sessionColumns()),
		table.WithStyles(tableStyles()),
	)
	m.charTable = table.New(
		table.WithColumns(charColumns()),
		table.WithStyles(tableStyles()),
	)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "right", "l", "tab":
			m.selectTab(m.activeTab + 1)
			return m, tea.ClearScreen
		case "left", "h", "shift+tab":
			m.selectTab(m.activeTab - 1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m, m.startFilter()
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case tabSessions:
			m.sessions, cmd = m.sessions.Update(msg)
		case tabCharTable:
			m.charTable, cmd = m.charTable.Update(msg)
		default:
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs()+"\n"+m.renderFilterSummary(), m.width, headerHeight)
	var body string
	switch {
	case m.filterMode:
		body = m.renderFilterForm()
	case m.activeTab == tabSessions && len(m.report.Sessions) == 0:
		body = "No sessions found."
	case m.activeTab == tabSessions:
		body = m.sessions.View()
	case m.activeTab == tabCharTable && len(m.report.CharAggsAll) == 0:
		body = "No character stats found."
	case m.activeTab == tabCharTable:
		body = m.charTable.View()
	default:
		body = m.overview.View()
	}
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, fitLines(body, m.width, bodyHeight), footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range []*table.Model{&m.sessions, &m.charTable} {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	rows := stats.CharRows(report.CharAggsAll)
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row(r))
	}
	m.charTable.SetRows(tableRows)
	m.sessions.SetRows(sessionRows(report.Sessions))
	m.renderOverview()
}

func (m *Model) selectTab(idx int) {
	count := len(m.tabs)
	m.activeTab = (idx%count + count) % count
	m.sessions.Blur()
	m.charTable.Blur()
	switch m.activeTab {
	case tabSessions:
		m.sessions.Focus()
	case tabCharTable:
		m.charTable.Focus()
	}
}

// sessionRows lists sessions newest first.
func sessionRows(sessions []model.SessionAggregate) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		wpm, _ := stats.SessionMetrics(s)
		rows = append(rows, table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(s.Level),
			strconv.Itoa(s.Score),
			strconv.Itoa(s.MaxCombo),
			fmt.Sprintf("%.1f%%", s.Accuracy),
			strconv.Itoa(s.WordsCompleted),
			fmt.Sprintf("%.1f", wpm),
		})
	}
	return rows
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Level", Width: 5},
		{Title: "Score", Width: 7},
		{Title: "Combo", Width: 5},
		{Title: "Acc", Width: 6},
		{Title: "Words", Width: 5},
		{Title: "WPM", Width: 5},
	}
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	o := stats.Summarize(report.Sessions)
	cards := []string{
		metricCard("Sessions", strconv.Itoa(o.Sessions)),
		metricCard("Best Score", strconv.Itoa(o.BestScore)),
		metricCard("Avg Score", fmt.Sprintf("%.0f", o.AvgScore)),
		metricCard("Max Combo", strconv.Itoa(o.MaxCombo)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", o.AvgAccuracy)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", o.AvgWPM)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
		)
	}
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report.Sessions, window, width); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	out := summary + "\n\n" + buf.String()
	if len(report.Weakest) > 0 {
		out += headerStyle.Render("Off-beat chars: " + strings.Join(report.Weakest, " "))
	}
	return strings.TrimRight(out, "\n")
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func charColumns() []table.Column {
	widths := []int{7, 8, 16, 6, 7}
	cols := make([]table.Column, len(stats.CharHeaders))
	for i, title := range stats.CharHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFilterSummary() string {
	level := "any"
	if m.cfg.Level > 0 {
		level = strconv.Itoa(m.cfg.Level)
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return headerStyle.Render(fmt.Sprintf("Settings: level=%s  since=%s  last=%s  window=%d", level, since, last, m.cfg.CurveWindow))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	return input
}

func (m *Model) startFilter() tea.Cmd {
	m.filterMode = true
	m.filterError = ""
	values := []string{"", "", "", strconv.Itoa(m.cfg.CurveWindow)}
	if m.cfg.Level > 0 {
		values[0] = strconv.Itoa(m.cfg.Level)
	}
	if m.cfg.Since != nil {
		values[1] = m.cfg.Since.Format(dateLayout)
	}
	if m.cfg.Last > 0 {
		values[2] = strconv.Itoa(m.cfg.Last)
	}
	for i, v := range values {
		m.filterInputs[i].SetValue(v)
	}
	return m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filterInputs[0].Value(), m.filterInputs[1].Value(), m.filterInputs[2].Value(), m.filterInputs[3].Value())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx%count + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func parseFilter(levelInput, sinceInput, lastInput, windowInput string) (model.StatsConfig, error) {
	var cfg model.StatsConfig
	if v := strings.TrimSpace(levelInput); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil || level < 0 {
			return cfg, fmt.Errorf("invalid level (use 0 or positive integer)")
		}
		cfg.Level = level
	}
	if v := strings.TrimSpace(sinceInput); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	if v := strings.TrimSpace(lastInput); v != "" {
		last, err := strconv.Atoi(v)
		if err != nil || last < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = last
	}
	cfg.CurveWindow = 1
	if v := strings.TrimSpace(windowInput); v != "" {
		window, err := strconv.Atoi(v)
		if err != nil || window < 1 {
			return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = window
	}
	return cfg, nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}

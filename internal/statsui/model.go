// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keystride/internal/model"
	"github.com/verte-zerg/keystride/internal/stats"
	"github.com/verte-zerg/keystride/internal/store"
)

const (
	tabOverview = iota
	tabResults
	tabWeakChars
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("11"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("7")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("8"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	footerHintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	resultsTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Results", "Weak Chars"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.resultsTable = buildResultsTable(nil, 0, 1)
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
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabResults {
			m.resultsTable.Focus()
		} else {
			m.resultsTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabResults {
				m.resultsTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabResults {
				m.resultsTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabResults {
				var cmd tea.Cmd
				m.resultsTable, cmd = m.resultsTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	var body string
	if m.activeTab == tabResults {
		body = m.resultsTable.View()
	} else {
		body = m.viewports[m.activeTab].View()
	}
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	m.updateLayout()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.renderTabContents()
}

func (m *Model) updateLayout() {
	headerHeight := lipgloss.Height(m.renderHeader())
	footerHeight := 1
	bodyHeight := m.height - headerHeight - footerHeight - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.resultsTable = buildResultsTable(m.report.Results, m.width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	m.viewports[tabOverview].SetContent(m.renderOverview())
	m.viewports[tabWeakChars].SetContent(m.renderWeakChars())
}

func (m *Model) renderHeader() string {
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

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	return footerHintStyle.Render("←/→ switch tab · g/G top/bottom · q quit")
}

func (m *Model) renderOverview() string {
	results := m.report.Results
	if len(results) == 0 {
		return "no results yet"
	}
	summary := stats.Summarize(results)
	recent := stats.ExtractSeries(results, func(r model.ResultAggregate) float64 { return float64(r.NetWPM) })
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCard("Sessions", strconv.Itoa(summary.Count)),
		renderCard("Avg Net WPM", fmt.Sprintf("%.1f", summary.AvgNetWPM)),
		renderCard("Best Net WPM", strconv.Itoa(summary.BestNetWPM)),
		renderCard("Avg Accuracy", fmt.Sprintf("%.1f%%", summary.AvgAccuracy)),
		renderCard("Avg Consistency", fmt.Sprintf("%.1f%%", summary.AvgConsistency)),
		renderCard("Recent Net WPM", stats.Sparkline(recent)),
	)

	var buf bytes.Buffer
	window := m.cfg.CurveWindow
	if window <= 0 {
		window = 10
	}
	if err := stats.RenderCurves(&buf, results, window, m.width, plotHeight); err != nil {
		return cards + "\n\n" + errorStyle.Render(err.Error())
	}
	return cards + "\n\n" + buf.String()
}

func (m *Model) renderWeakChars() string {
	aggs := m.report.CharAggsWindow
	if len(aggs) == 0 {
		return "no per-character stats yet"
	}
	var buf bytes.Buffer
	if err := stats.RenderCharTable(&buf, aggs); err != nil {
		return errorStyle.Render(err.Error())
	}
	frequent := stats.TopCharsByFrequency(aggs, 10)
	return buf.String() + "\nMost practiced: " + strings.Join(frequent, " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func renderCard(title, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value))
}

func buildResultsTable(results []model.ResultAggregate, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Mode", Width: 8},
		{Title: "Net", Width: 5},
		{Title: "Raw", Width: 5},
		{Title: "Acc", Width: 5},
		{Title: "Cons", Width: 5},
		{Title: "Errs", Width: 5},
		{Title: "Time", Width: 7},
	}
	rows := make([]table.Row, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		rows = append(rows, table.Row{
			r.EndedAt.Format("2006-01-02 15:04"),
			r.Mode,
			strconv.Itoa(r.NetWPM),
			strconv.Itoa(r.RawWPM),
			strconv.Itoa(r.Accuracy) + "%",
			strconv.Itoa(r.Consistency) + "%",
			strconv.Itoa(r.Errors),
			fmt.Sprintf("%.1fs", float64(r.DurationMs)/1000),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
	)
	t.SetWidth(width)
	return t
}

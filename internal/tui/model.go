package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keystride/internal/content"
	"github.com/verte-zerg/keystride/internal/engine"
	"github.com/verte-zerg/keystride/internal/model"
	statsPkg "github.com/verte-zerg/keystride/internal/stats"
	"github.com/verte-zerg/keystride/internal/store"
)

// tickEvery is the UI tick cadence while a session is active. The engine
// decides internally which ticks trigger metrics or sample work.
const tickEvery = 33 * time.Millisecond

type tickMsg time.Time

// textMsg delivers the initial or post-restart reference text.
type textMsg struct {
	text string
	err  error
}

// chunkMsg delivers one streamed content chunk for a running session.
type chunkMsg struct {
	seq  uint64
	text string
	err  error
}

// Model implements the Bubble Tea typing UI on top of an engine session.
type Model struct {
	config   model.Config
	store    *store.Store
	provider content.Provider
	gen      *content.Generator // nil unless the provider is the local generator

	session *engine.Session

	width  int
	height int

	loading bool
	loadErr error
	ticking bool

	warning  string
	saveNote string

	fetchCancel context.CancelFunc

	lastWPM int
	lastAcc int
	hasLast bool

	weakSet map[rune]struct{}
}

// NewModel constructs a typing TUI model. gen may be nil when content comes
// from a remote provider.
func NewModel(cfg model.Config, st *store.Store, provider content.Provider, gen *content.Generator, weakSet map[rune]struct{}) *Model {
	m := &Model{
		config:   cfg,
		store:    st,
		provider: provider,
		gen:      gen,
		loading:  true,
		weakSet:  weakSet,
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadTextCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case textMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.loadErr = nil
		if m.session == nil {
			m.session = engine.NewSession(m.config, msg.text)
		} else {
			m.session.Reset(m.config, msg.text)
		}
		return m, nil
	case tickMsg:
		return m.handleTick(time.Time(msg))
	case chunkMsg:
		m.fetchCancel = nil
		if m.session == nil {
			return m, nil
		}
		if msg.err != nil {
			logErrf("content fetch failed: %v\n", msg.err)
		}
		effects := m.session.Apply(engine.ContentChunk{Seq: msg.seq, Text: msg.text, Err: msg.err})
		return m, m.handleEffects(effects)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelFetch()
		return m, tea.Quit
	case tea.KeyTab:
		return m, m.restart()
	}
	if m.loading || m.loadErr != nil || m.session == nil {
		return m, nil
	}
	if m.session.State().Terminal() {
		return m, nil
	}

	typed := m.session.Typed()
	var raw engine.RawInput
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if len(typed) == 0 {
			return m, nil
		}
		raw.Candidate = append([]rune{}, typed[:len(typed)-1]...)
	case tea.KeySpace:
		raw.Candidate = append(append([]rune{}, typed...), ' ')
		raw.Paste = msg.Paste
	case tea.KeyRunes:
		raw.Candidate = append(append([]rune{}, typed...), msg.Runes...)
		raw.Paste = msg.Paste
	default:
		return m, nil
	}

	effects := m.session.Apply(engine.Keystrokes{Raw: raw, At: time.Now()})
	cmd := m.handleEffects(effects)
	if !m.ticking && m.session.State() == engine.StateActive {
		m.ticking = true
		cmd = tea.Batch(cmd, tickCmd())
	}
	return m, cmd
}

func (m *Model) handleTick(at time.Time) (tea.Model, tea.Cmd) {
	if m.session == nil || m.session.State() != engine.StateActive {
		m.ticking = false
		return m, nil
	}
	effects := m.session.Apply(engine.Tick{At: at})
	cmd := m.handleEffects(effects)
	if m.session.State().Terminal() {
		m.ticking = false
		return m, cmd
	}
	return m, tea.Batch(cmd, tickCmd())
}

func (m *Model) handleEffects(effects []engine.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch eff := eff.(type) {
		case engine.FetchContent:
			cmds = append(cmds, m.fetchChunkCmd(eff.Seq))
		case engine.Warn:
			m.warning = "unusual input speed detected"
		case engine.Failed:
			// Rendered from session state.
		case engine.Finished:
			m.finishSession(eff.Result)
		}
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) request() content.Request {
	req := content.Request{
		Lang:       m.config.Lang,
		Source:     m.config.Source,
		Difficulty: m.config.Difficulty,
	}
	if m.config.TimeLimitSeconds == 0 && m.config.Words > 0 {
		// Fixed-length sessions size the text by the word budget.
		req.MinLength = m.config.Words * 5
	}
	return req
}

func (m *Model) loadTextCmd() tea.Cmd {
	provider := m.provider
	req := m.request()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), content.DefaultFetchTimeout)
		defer cancel()
		text, err := provider.Fetch(ctx, req)
		return textMsg{text: text, err: err}
	}
}

func (m *Model) fetchChunkCmd(seq uint64) tea.Cmd {
	m.cancelFetch()
	ctx, cancel := context.WithCancel(context.Background())
	m.fetchCancel = cancel
	provider := m.provider
	req := m.request()
	return func() tea.Msg {
		defer cancel()
		text, err := provider.Fetch(ctx, req)
		return chunkMsg{seq: seq, text: text, err: err}
	}
}

func (m *Model) cancelFetch() {
	if m.fetchCancel != nil {
		m.fetchCancel()
		m.fetchCancel = nil
	}
}

func (m *Model) restart() tea.Cmd {
	m.cancelFetch()
	m.loading = true
	m.loadErr = nil
	m.warning = ""
	m.saveNote = ""
	if m.session != nil {
		// Bumps the fetch sequence so late chunk completions are dropped.
		m.session.Reset(m.config, "")
	}
	if m.gen != nil {
		m.gen.SetWeakSet(m.weakSet)
	}
	return m.loadTextCmd()
}

func (m *Model) finishSession(res model.SessionResult) {
	m.lastWPM = res.NetWPM
	m.lastAcc = res.Accuracy
	m.hasLast = true

	if res.Flagged {
		m.saveNote = fmt.Sprintf("result flagged (%s) and not saved", res.FlagReason)
		return
	}

	ctx := context.Background()
	if _, err := m.store.InsertResult(ctx, res, m.session.CharStats()); err != nil {
		logErrf("failed to save result: %v\n", err)
		m.saveNote = "failed to save result"
		return
	}
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) refreshWeakSet() {
	ctx := context.Background()
	aggs, err := m.store.GetWeakChars(ctx, m.config.WeakWindow, m.config.Lang)
	if err != nil {
		logErrf("failed to load weak chars: %v\n", err)
		return
	}
	m.weakSet = statsPkg.SelectWeakChars(aggs, m.config.WeakTop)
	if m.gen != nil {
		m.gen.SetWeakSet(m.weakSet)
	}
}

func (m *Model) loadFooterStats() {
	ctx := context.Background()
	results, err := m.store.ListResults(ctx, model.StatsConfig{Lang: m.config.Lang})
	if err != nil {
		logErrf("failed to load result stats: %v\n", err)
		return
	}
	if len(results) == 0 {
		return
	}
	last := results[len(results)-1]
	m.lastWPM = last.NetWPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
}

// View implements tea.Model.
func (m *Model) View() string {
	switch {
	case m.loadErr != nil:
		return m.place(failedStyle.Render(fmt.Sprintf("failed to load text: %v", m.loadErr)) +
			"\n" + dimStyle.Render("tab to retry · esc to quit"))
	case m.loading || m.session == nil:
		return m.place(dimStyle.Render("loading text..."))
	case m.session.State() == engine.StateFailed:
		return m.place(m.renderFailed())
	case m.session.State() == engine.StateFinished:
		return m.place(m.renderFinished())
	default:
		return m.renderTyping()
	}
}

func (m *Model) renderTyping() string {
	reference := m.session.Reference()
	typed := m.session.Typed()
	cursor := -1
	if len(typed) < len(reference) {
		cursor = len(typed)
	}
	cells := buildCells(reference, typed, cursor)
	if m.width == 0 || m.height == 0 {
		return renderCells(cells)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapCells(cells, contentWidth)
	body := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)

	lines := []string{body}
	if m.warning != "" {
		lines = append(lines, warningStyle.Render("⚠ "+m.warning))
	}
	text := strings.Join(lines, "\n\n")

	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
	}
	bodyHeight := m.height - 1
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, text)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return placed + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	snap := m.session.Metrics()
	segments := []string{
		fmt.Sprintf("%d wpm", snap.NetWPM),
		fmt.Sprintf("%d%% acc", snap.Accuracy),
	}
	if limit := m.config.TimeLimitSeconds; limit > 0 {
		remaining := time.Duration(limit)*time.Second - snap.Elapsed
		if remaining < 0 {
			remaining = 0
		}
		segments = append(segments, fmt.Sprintf("%ds left", int(remaining.Seconds())))
	} else if n := len(m.session.Reference()); n > 0 {
		progress := len(m.session.Typed()) * 100 / n
		segments = append(segments, fmt.Sprintf("%d%%", progress))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("last %d wpm · %d%%", m.lastWPM, m.lastAcc))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderFailed() string {
	return failedStyle.Render("failed") + "\n\n" +
		dimStyle.Render("expert mode ends the session on the first uncorrected error") + "\n\n" +
		dimStyle.Render("tab to restart · esc to quit")
}

func (m *Model) renderFinished() string {
	res := m.session.Result()
	if res == nil {
		return ""
	}
	rows := []string{
		summaryRow("net wpm", fmt.Sprintf("%d", res.NetWPM)),
		summaryRow("raw wpm", fmt.Sprintf("%d", res.RawWPM)),
		summaryRow("accuracy", fmt.Sprintf("%d%%", res.Accuracy)),
		summaryRow("consistency", fmt.Sprintf("%d%%", res.Consistency)),
		summaryRow("errors", fmt.Sprintf("%d", res.Errors)),
		summaryRow("time", fmt.Sprintf("%.1fs", float64(res.DurationMs)/1000)),
	}
	card := summaryStyle.Render(strings.Join(rows, "\n"))
	out := card
	if m.saveNote != "" {
		out += "\n\n" + warningStyle.Render(m.saveNote)
	}
	out += "\n\n" + dimStyle.Render("tab to restart · esc to quit")
	return out
}

func summaryRow(label, value string) string {
	return summaryLabelStyle.Render(fmt.Sprintf("%-12s", label)) + value
}

func (m *Model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

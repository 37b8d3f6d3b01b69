// Package main provides the CLI entrypoint for keystride.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keystride/internal/config"
	"github.com/verte-zerg/keystride/internal/content"
	"github.com/verte-zerg/keystride/internal/model"
	"github.com/verte-zerg/keystride/internal/stats"
	"github.com/verte-zerg/keystride/internal/statsui"
	"github.com/verte-zerg/keystride/internal/store"
	"github.com/verte-zerg/keystride/internal/tui"
	"github.com/verte-zerg/keystride/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultMode        = "normal"
	defaultSource      = "words"
	defaultDifficulty  = "normal"
	defaultWords       = 50
	defaultCaps        = 0.3
	defaultPunct       = 0.3
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
)

const defaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

var (
	practiceLang       string
	practiceMode       string
	practiceSource     string
	practiceDifficulty string
	practiceTime       int
	practiceWords      int
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int

	contentHTTPEndpoint string
	contentWSEndpoint   string
	contentTimeoutMs    int

	statsLang        string
	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keystride",
		Short:         "TUI typing trainer with live performance measurement",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code (default: en)")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "correctness mode: normal, expert, or master")
	rootCmd.Flags().StringVar(&practiceSource, "source", defaultSource, "text source: words, code, or stress")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "difficulty: easy, normal, or hard")
	rootCmd.Flags().IntVar(&practiceTime, "time", 0, "time limit in seconds; 0 types a fixed text")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "word budget for fixed-length texts")
	rootCmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent results to compute weak chars")
	rootCmd.Flags().StringVar(&contentHTTPEndpoint, "http-endpoint", "", "fetch text over HTTP from this endpoint")
	rootCmd.Flags().StringVar(&contentWSEndpoint, "ws-endpoint", "", "fetch text over a WebSocket from this endpoint")
	rootCmd.Flags().IntVar(&contentTimeoutMs, "content-timeout-ms", 0, "remote content fetch timeout in milliseconds")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "source", &practiceSource, fileCfg.Practice.Source)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyIntConfig(cmd, "time", &practiceTime, fileCfg.Practice.Time)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applyStringConfig(cmd, "http-endpoint", &contentHTTPEndpoint, fileCfg.Content.HTTPEndpoint)
	applyStringConfig(cmd, "ws-endpoint", &contentWSEndpoint, fileCfg.Content.WSEndpoint)
	applyIntConfig(cmd, "content-timeout-ms", &contentTimeoutMs, fileCfg.Content.TimeoutMs)

	cfg := model.Config{
		Lang:             practiceLang,
		Mode:             model.Mode(practiceMode),
		Source:           practiceSource,
		Difficulty:       practiceDifficulty,
		TimeLimitSeconds: practiceTime,
		Words:            practiceWords,
		CapsPct:          practiceCaps,
		PunctPct:         practicePunct,
		PunctSet:         practicePunctSet,
		FocusWeak:        practiceFocusWeak,
		WeakTop:          practiceWeakTop,
		WeakFactor:       practiceWeakFactor,
		WeakWindow:       practiceWeakWindow,
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	weakSet := map[rune]struct{}{}
	if cfg.FocusWeak {
		aggs, err := st.GetWeakChars(context.Background(), cfg.WeakWindow, cfg.Lang)
		if err != nil {
			logErrf("failed to load weak chars: %v\n", err)
		} else {
			weakSet = stats.SelectWeakChars(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logErrln("no stats available for weak-char focus yet; using the normal generator")
			}
		}
	}

	provider, gen, closeProvider, err := buildProvider(cfg, weakSet)
	if err != nil {
		return err
	}
	defer closeProvider()

	m := tui.NewModel(cfg, st, provider, gen, weakSet)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildProvider picks the content source: a remote endpoint when configured,
// embedded snippets for the code source, and the word generator otherwise.
// gen is non-nil only for the generator so the TUI can refresh its weak set.
func buildProvider(cfg model.Config, weakSet map[rune]struct{}) (content.Provider, *content.Generator, func(), error) {
	noop := func() {}
	timeout := time.Duration(contentTimeoutMs) * time.Millisecond

	if contentWSEndpoint != "" {
		ws := content.NewWSProvider(contentWSEndpoint, timeout)
		return ws, nil, func() {
			if cerr := ws.Close(); cerr != nil {
				logErrf("failed to close content connection: %v\n", cerr)
			}
		}, nil
	}
	if contentHTTPEndpoint != "" {
		return content.NewHTTPProvider(contentHTTPEndpoint, timeout), nil, noop, nil
	}
	if cfg.Source == "code" {
		snippets, err := content.NewSnippets()
		if err != nil {
			return nil, nil, noop, fmt.Errorf("failed to load snippets: %w", err)
		}
		return snippets, nil, noop, nil
	}

	wordPath := config.DefaultWordListPath(cfg.Lang)
	words, err := wordlist.Load(wordPath, wordlist.FilterForLang(cfg.Lang))
	if err != nil {
		return nil, nil, noop, wordListLoadError(cfg.Lang, wordPath, err)
	}
	gen := content.NewGenerator(words, content.GeneratorOptions{
		CapsPct:    cfg.CapsPct,
		PunctPct:   cfg.PunctPct,
		PunctSet:   []rune(cfg.PunctSet),
		WeakSet:    weakSet,
		WeakFactor: cfg.WeakFactor,
	})
	return gen, gen, noop, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List installed word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	wordlistDir := config.DefaultWordListDir()
	entries, err := os.ReadDir(wordlistDir)
	if err != nil {
		if os.IsNotExist(err) {
			logErrf("No word lists found. Put <lang>.txt files under %s\n", wordlistDir)
			return fmt.Errorf("word list directory does not exist")
		}
		return fmt.Errorf("failed to read word list directory: %w", err)
	}
	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".txt") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".txt"))
	}
	if len(langs) == 0 {
		logErrf("No word lists found. Put <lang>.txt files under %s\n", wordlistDir)
		return fmt.Errorf("no word lists found")
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter: normal, expert, or master")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats to stdout instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsMode != "" && !model.Mode(statsMode).Valid() {
		return fmt.Errorf("--mode must be one of normal, expert, master")
	}

	cfg := model.StatsConfig{
		Lang:        statsLang,
		Mode:        statsMode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return printPlainStats(cmd, st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printPlainStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Results); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderCurves(out, report.Results, cfg.CurveWindow, stats.TerminalWidth(), 10); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	if err := stats.RenderCharTable(out, report.CharAggsWindow); err != nil {
		return fmt.Errorf("failed to render char table: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keystride configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lang = "en"             # Language code (default %q)
# mode = "normal"         # Correctness mode: normal, expert, or master
# source = "words"        # Text source: words, code, or stress
# difficulty = "normal"   # Difficulty: easy, normal, or hard
# time = 0                # Time limit in seconds; 0 types a fixed text
# words = %d              # Word budget for fixed-length texts
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set
# focus-weak = false      # Bias practice toward weak characters
# weak-top = %d           # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent results to compute weak chars

[content]
# http-endpoint = ""      # Fetch text over HTTP from this endpoint
# ws-endpoint = ""        # Fetch text over a WebSocket from this endpoint
# timeout-ms = 5000       # Remote content fetch timeout in milliseconds
`,
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if !cfg.Mode.Valid() {
		return fmt.Errorf("--mode must be one of normal, expert, master")
	}
	switch cfg.Source {
	case "words", "code", "stress":
	default:
		return fmt.Errorf("--source must be one of words, code, stress")
	}
	switch cfg.Difficulty {
	case "easy", "normal", "hard":
	default:
		return fmt.Errorf("--difficulty must be one of easy, normal, hard")
	}
	if cfg.TimeLimitSeconds < 0 {
		return fmt.Errorf("--time must be >= 0")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		"Run: keystride langs",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

// Package main provides the CLI entrypoint for beattype.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/beattype/internal/challenge"
	"github.com/verte-zerg/beattype/internal/config"
	"github.com/verte-zerg/beattype/internal/generator"
	"github.com/verte-zerg/beattype/internal/logging"
	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/rhythm"
	"github.com/verte-zerg/beattype/internal/session"
	"github.com/verte-zerg/beattype/internal/store"
	"github.com/verte-zerg/beattype/internal/tui"
	"github.com/verte-zerg/beattype/internal/wordlist"
)

const (
	defaultWindowMs   = 200
	defaultBasePoints = 10
	defaultMinLength  = 2
	defaultMaxLength  = 12
	defaultLogLevel   = "info"
	defaultVariance   = challenge.WeightedVariance
)

var (
	playLevel      int
	playAPIURL     string
	playWindowMs   int
	playBasePoints int
	playLevelsFile string
	playWordlist   string
	playMinLength  int
	playMaxLength  int
	playLogLevel   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "beattype",
		Short:         "Rhythm typing game for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playLevel, "level", 0, "level id (0 picks one from your history)")
	rootCmd.Flags().StringVar(&playAPIURL, "api-url", "", "challenge service base URL (empty plays offline)")
	rootCmd.Flags().IntVar(&playWindowMs, "window-ms", defaultWindowMs, "timing window in milliseconds")
	rootCmd.Flags().IntVar(&playBasePoints, "base-points", defaultBasePoints, "points for a perfect hit without combo")
	rootCmd.Flags().StringVar(&playLevelsFile, "levels-file", "", "YAML level pack (default: built-in levels)")
	rootCmd.Flags().StringVar(&playWordlist, "wordlist", "", "word list file, one word per line")
	rootCmd.Flags().IntVar(&playMinLength, "min-length", defaultMinLength, "minimum word length")
	rootCmd.Flags().IntVar(&playMaxLength, "max-length", defaultMaxLength, "maximum word length")
	rootCmd.Flags().StringVar(&playLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyPlayConfig(cmd, fileCfg.Play)

	cfg := model.Config{
		Level:      playLevel,
		APIURL:     playAPIURL,
		WindowMs:   playWindowMs,
		BasePoints: playBasePoints,
		LevelsFile: playLevelsFile,
		Wordlist:   playWordlist,
		MinLength:  playMinLength,
		MaxLength:  playMaxLength,
		LogLevel:   playLogLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("beattype needs an interactive terminal")
	}

	logger, logFile, err := logging.Open(config.DefaultLogPath(), logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	levels, err := config.LoadLevels(resolveLevelsPath(cfg))
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	words, err := loadWords(cfg)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	level := cfg.Level
	if level == 0 {
		level = autoLevel(context.Background(), st)
	}

	local := challenge.NewLocal(levels, generator.New(words), defaultVariance)
	var source challenge.Source = local
	opts := []session.Option{
		session.WithScorer(rhythm.NewScorer(time.Duration(cfg.WindowMs) * time.Millisecond)),
		session.WithBasePoints(cfg.BasePoints),
		session.WithLogger(logger),
	}
	if cfg.APIURL != "" {
		source = challenge.NewClient(cfg.APIURL, nil)
		opts = append(opts, session.WithFallback(local))
	}
	logger.Info("starting game", "level", level, "api_url", cfg.APIURL, "words", len(words))

	game := tui.NewModel(tui.Options{
		Session: session.New(source, opts...),
		Store:   st,
		Logger:  logger,
		Level:   level,
	})
	program := tea.NewProgram(game, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := game.Err(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

// autoLevel derives the starting level from lifetime totals.
func autoLevel(ctx context.Context, st *store.Store) int {
	totals, err := st.Totals(ctx)
	if err != nil {
		logErrf("failed to load totals: %v\n", err)
		return 1
	}
	return challenge.LevelFor(totals.WordsCompleted, totals.AvgAccuracy)
}

func resolveLevelsPath(cfg model.Config) string {
	if cfg.LevelsFile != "" {
		return cfg.LevelsFile
	}
	return config.DefaultLevelsPath()
}

// loadWords reads the configured word list. Without an explicit list a
// missing default file selects the built-in words.
func loadWords(cfg model.Config) ([]string, error) {
	path := cfg.Wordlist
	if path == "" {
		path = config.DefaultWordListPath()
	}
	words, err := wordlist.LoadWords(path)
	switch {
	case err == nil:
	case cfg.Wordlist == "" && errors.Is(err, fs.ErrNotExist):
		logErrln("No word list at " + path + "; using built-in words")
		words = wordlist.FallbackAll()
	default:
		return nil, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	filtered := wordlist.Apply(words, wordlist.FilterLetters, wordlist.FilterLength(cfg.MinLength, cfg.MaxLength))
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no words between %d and %d letters in %s", cfg.MinLength, cfg.MaxLength, path)
	}
	return filtered, nil
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
		if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyStringConfig(cmd, "levels-file", &playLevelsFile, fileCfg.Play.LevelsFile)
			levels, err := config.LoadLevels(resolveLevelsPath(model.Config{LevelsFile: playLevelsFile}))
			if err != nil {
				return fmt.Errorf("failed to load levels: %w", err)
			}
			return writeLevels(cmd.OutOrStdout(), levels, dump)
		},
	}
	cmd.Flags().StringVar(&playLevelsFile, "levels-file", "", "YAML level pack")
	cmd.Flags().BoolVar(&dump, "dump", false, "print levels as YAML")
	return cmd
}

func writeLevels(w io.Writer, levels []challenge.Level, dump bool) error {
	if dump {
		data, err := config.MarshalLevels(levels)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	for _, l := range levels {
		if _, err := fmt.Fprintf(w, "%2d  %-22s %5.0f BPM  %s\n", l.ID, l.Name, l.Tempo, l.Pattern); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyPlayConfig(cmd *cobra.Command, play config.PlayConfig) {
	applyIntConfig(cmd, "level", &playLevel, play.Level)
	applyStringConfig(cmd, "api-url", &playAPIURL, play.APIURL)
	applyIntConfig(cmd, "window-ms", &playWindowMs, play.WindowMs)
	applyIntConfig(cmd, "base-points", &playBasePoints, play.BasePoints)
	applyStringConfig(cmd, "levels-file", &playLevelsFile, play.LevelsFile)
	applyStringConfig(cmd, "wordlist", &playWordlist, play.Wordlist)
	applyIntConfig(cmd, "min-length", &playMinLength, play.MinLength)
	applyIntConfig(cmd, "max-length", &playMaxLength, play.MaxLength)
	applyStringConfig(cmd, "log-level", &playLogLevel, play.LogLevel)
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

func validateConfig(cfg model.Config) error {
	if cfg.Level < 0 {
		return fmt.Errorf("--level must be >= 0")
	}
	if cfg.WindowMs <= 0 {
		return fmt.Errorf("--window-ms must be > 0")
	}
	if cfg.BasePoints <= 0 {
		return fmt.Errorf("--base-points must be > 0")
	}
	if cfg.MinLength < 1 {
		return fmt.Errorf("--min-length must be >= 1")
	}
	if cfg.MaxLength < cfg.MinLength {
		return fmt.Errorf("--max-length must be >= --min-length")
	}
	if cfg.APIURL != "" && !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return fmt.Errorf("--api-url must start with http:// or https://")
	}
	return nil
}

func logErrf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func logErrln(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/beattype/internal/archive"
	"github.com/verte-zerg/beattype/internal/config"
	"github.com/verte-zerg/beattype/internal/model"
	"github.com/verte-zerg/beattype/internal/stats"
	"github.com/verte-zerg/beattype/internal/statsui"
	"github.com/verte-zerg/beattype/internal/store"
)

const (
	defaultCurveWindow = 5
	defaultTopChars    = 12
	defaultPlainWidth  = 80
)

var (
	statsLevel       int
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsChars       string
	statsPlain       bool

	exportDir string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLevel, "level", 0, "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsChars, "char", "", "characters to include in the char table")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats instead of opening the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return renderPlainStats(cmd.Context(), cmd.OutOrStdout(), st, cfg, terminalWidth())
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return model.StatsConfig{
		Level:       statsLevel,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Chars:       statsChars,
	}, nil
}

func renderPlainStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig, width int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return err
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	chars := splitChars(cfg.Chars)
	if len(chars) == 0 {
		chars = stats.TopCharsByFrequency(report.CharAggsAll, defaultTopChars)
	}
	if err := stats.RenderCharTable(w, stats.FilterChars(report.CharAggsAll, chars)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Weakest) > 0 {
		if _, err := fmt.Fprintf(w, "Off-beat chars: %s\n", strings.Join(report.Weakest, " ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	seen := map[rune]bool{}
	for _, r := range s {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, string(r))
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultPlainWidth
	}
	return width
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write session history to a zstd archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore(st)

			records, err := st.ListSessionRecords(cmd.Context(), model.StatsConfig{})
			if err != nil {
				return fmt.Errorf("failed to load sessions: %w", err)
			}
			dir := exportDir
			if dir == "" {
				dir = config.DefaultExportDir()
			}
			path, err := archive.ExportFile(dir, records, time.Now())
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			logErrf("Exported %d sessions to %s\n", len(records), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&exportDir, "output", "o", "", "output directory (default: XDG data dir)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <archive>",
		Short: "Restore sessions from an export archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := archive.ImportFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore(st)

			added, err := importRecords(cmd.Context(), st, records)
			if err != nil {
				return err
			}
			logErrf("Imported %d of %d sessions\n", added, len(records))
			return nil
		},
	}
}

// importRecords inserts records whose session id is not stored yet.
func importRecords(ctx context.Context, st *store.Store, records []store.SessionRecord) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	added := 0
	for _, rec := range records {
		if rec.Stats.UUID != "" {
			exists, err := st.HasSession(ctx, rec.Stats.UUID)
			if err != nil {
				return added, fmt.Errorf("failed to check session %s: %w", rec.Stats.UUID, err)
			}
			if exists {
				continue
			}
		}
		if _, err := st.InsertSession(ctx, rec.Stats, rec.Chars); err != nil {
			return added, fmt.Errorf("failed to insert session %s: %w", rec.Stats.UUID, err)
		}
		added++
	}
	return added, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/atengine/internal/ir"
	"github.com/roach88/atengine/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Reason   string // optional - filter timeline to one reason
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	ID        string `json:"id"`
	Table     string `json:"table"`
	Transport string `json:"transport"`
	Seq       int64  `json:"seq"`
	Exchanges int    `json:"exchanges"`
	Failed    int    `json:"failed"`
}

// TraceStats holds summary statistics for one session.
type TraceStats struct {
	Total  int `json:"total"`
	OK     int `json:"ok"`
	Failed int `json:"failed"`
}

// TraceResult is the detailed view of one session.
type TraceResult struct {
	Session  ir.Session     `json:"session"`
	Timeline []ir.Exchange  `json:"timeline"`
	Reasons  map[string]int `json:"reasons"`
	Stats    TraceStats     `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect the exchange journal",
		Long: `Inspect a journal written by 'atengine serve --db'.

Without --session every recorded session is listed with its exchange
and failure counts. With --session the exchanges of that session are
shown in order together with a count per failure reason.

Examples:
  atengine trace --db ./at.db
  atengine trace --db ./at.db --session 0190a3c4-...
  atengine trace --db ./at.db --session 0190a3c4-... --reason not_found
  atengine trace --db ./at.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID to show")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "only show exchanges with this reason")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Open would create an empty journal; a typo should fail instead.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, formatter)
	}
	return showSession(ctx, st, opts, formatter)
}

func listSessions(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	sessions, err := st.ReadSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		counts, err := st.CountByReason(ctx, sess.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count exchanges", err)
		}
		stats := statsFromCounts(counts)
		summaries = append(summaries, SessionSummary{
			ID:        sess.ID,
			Table:     sess.TableName,
			Transport: sess.Transport,
			Seq:       sess.Seq,
			Exchanges: stats.Total,
			Failed:    stats.Failed,
		})
	}

	if formatter.JSON() {
		return formatter.Success(summaries)
	}

	w := formatter.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-6s  %-36s  %-10s  %-20s  %9s  %6s\n", "SEQ", "SESSION", "TABLE", "TRANSPORT", "EXCHANGES", "FAILED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-6d  %-36s  %-10s  %-20s  %9d  %6d\n", s.Seq, s.ID, s.Table, s.Transport, s.Exchanges, s.Failed)
	}
	return nil
}

func showSession(ctx context.Context, st *store.Store, opts *TraceOptions, formatter *OutputFormatter) error {
	sess, err := st.ReadSession(ctx, opts.Session)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("session %q not found", opts.Session), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("session %q not found", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	exchanges, err := st.ReadExchanges(ctx, sess.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read exchanges", err)
	}
	counts, err := st.CountByReason(ctx, sess.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count exchanges", err)
	}

	result := TraceResult{
		Session:  sess,
		Timeline: filterByReason(exchanges, opts.Reason),
		Reasons:  counts,
		Stats:    statsFromCounts(counts),
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	printTrace(formatter, result)
	return nil
}

func filterByReason(exs []ir.Exchange, reason string) []ir.Exchange {
	if reason == "" {
		return exs
	}
	out := []ir.Exchange{}
	for _, ex := range exs {
		if ex.Reason == reason {
			out = append(out, ex)
		}
	}
	return out
}

// statsFromCounts relies on reason "none" marking exactly the OK exchanges.
func statsFromCounts(counts map[string]int) TraceStats {
	var stats TraceStats
	for reason, n := range counts {
		stats.Total += n
		if reason == "none" {
			stats.OK += n
		}
	}
	stats.Failed = stats.Total - stats.OK
	return stats
}

func printTrace(formatter *OutputFormatter, r TraceResult) {
	w := formatter.Writer
	fmt.Fprintf(w, "Session %s\n", r.Session.ID)
	fmt.Fprintf(w, "  table:     %s (%s)\n", r.Session.TableName, r.Session.TableHash)
	fmt.Fprintf(w, "  transport: %s\n", r.Session.Transport)
	fmt.Fprintf(w, "  engine:    %s (ir %s)\n", r.Session.EngineVersion, r.Session.IRVersion)
	fmt.Fprintln(w)

	if len(r.Timeline) == 0 {
		fmt.Fprintln(w, "No exchanges.")
	}
	for _, ex := range r.Timeline {
		status := "OK"
		if !ex.OK {
			status = "ERROR"
		}
		cmd := ex.Command
		if cmd == "" {
			cmd = "-"
		}
		fmt.Fprintf(w, "[%d] %-8s %-7s %-5s %s\n", ex.Seq, cmd, ex.Op, status, ex.Reason)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d exchanges, %d ok, %d failed\n", r.Stats.Total, r.Stats.OK, r.Stats.Failed)

	reasons := make([]string, 0, len(r.Reasons))
	for reason := range r.Reasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %-12s %d\n", reason, r.Reasons[reason])
	}
}

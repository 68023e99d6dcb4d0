package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/laneracer/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryEntry is one race in the history listing.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Seed       int64     `json:"seed"`
	Strategy   string    `json:"strategy"`
	Ticks      uint64    `json:"ticks"`
	State      string    `json:"state"`
	Winner     *int      `json:"winner"`
	Digest     string    `json:"digest"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded races",
		Long: `List the races recorded in a ledger, oldest first.

Examples:
  laneracer history --db ./races.db
  laneracer history --db ./races.db --limit 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many races (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListRaces(context.Background(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list races", err)
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, HistoryEntry{
			ID:         rec.ID,
			Seed:       rec.Seed,
			Strategy:   rec.Strategy,
			Ticks:      rec.Ticks,
			State:      rec.Outcome.State.String(),
			Winner:     winnerOf(rec.Outcome),
			Digest:     rec.Digest,
			RecordedAt: rec.RecordedAt,
		})
	}

	return out.Emit(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No races recorded.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSEED\tSTRATEGY\tTICKS\tRESULT\tDIGEST")
		for _, e := range entries {
			result := e.State
			if e.Winner != nil {
				result = fmt.Sprintf("car %d", *e.Winner)
			} else if e.State == "finished" {
				result = "no winner"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%.12s\n", e.ID, e.Seed, e.Strategy, e.Ticks, result, e.Digest)
		}
		_ = tw.Flush()
	})
}

// openExisting opens a ledger that must already exist. store.Open would
// create a fresh file for a mistyped path.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path), err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

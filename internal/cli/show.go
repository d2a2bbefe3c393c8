package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treeseq/forwardsim/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one archived run",
		Long: `Show the parameters, digests and table counts of one archived run.

Example:
  forwardsim show --db runs.db 01890a5d-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRun(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showRun(cmd *cobra.Command, opts *ShowOptions, runID string) error {
	configureLogging(opts.Verbose)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sum, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("run %s not found", runID), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Format == "json" {
		return out.JSON(sum)
	}

	writeRunSummaryText(out, sum)
	return nil
}

func writeRunSummaryText(out *OutputFormatter, sum *store.RunSummary) {
	fmt.Fprintf(out.Writer, "Run %s\n", sum.ID)
	fmt.Fprintf(out.Writer, "Scenario: %s (seed %d)\n", sum.ScenarioName, sum.Seed)
	fmt.Fprintf(out.Writer, "Genome: %g ticks, %d diploids, %d generations (split for %d)\n",
		sum.SequenceLength, sum.PopSize, sum.StartTime, sum.SplitTime)
	if len(sum.KeepIntervals) == 0 {
		fmt.Fprintln(out.Writer, "Retained windows: none")
	} else {
		windows := make([]string, len(sum.KeepIntervals))
		for i, iv := range sum.KeepIntervals {
			windows[i] = fmt.Sprintf("[%g, %g)", iv.Left, iv.Right)
		}
		fmt.Fprintf(out.Writer, "Retained windows: %s\n", strings.Join(windows, " "))
	}
	fmt.Fprintf(out.Writer, "Created: %s\n", sum.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	writeCountsText(out, "Full record", sum.FullDigest, sum.Full)
	writeCountsText(out, "Truncated record", sum.TruncatedDigest, sum.Truncated)
}

func writeCountsText(out *OutputFormatter, label, digest string, counts store.RecordCounts) {
	fmt.Fprintf(out.Writer, "%s:\n", label)
	fmt.Fprintf(out.Writer, "  nodes=%d edges=%d individuals=%d populations=%d sites=%d mutations=%d\n",
		counts.Nodes, counts.Edges, counts.Individuals, counts.Populations, counts.Sites, counts.Mutations)
	fmt.Fprintf(out.Writer, "  digest=%s\n", digest)
}

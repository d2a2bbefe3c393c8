package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treeseq/forwardsim/internal/harness"
	"github.com/treeseq/forwardsim/internal/scenario"
	"github.com/treeseq/forwardsim/internal/sim"
	"github.com/treeseq/forwardsim/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	ScenarioPath string
	Database     string

	Name           string
	SequenceLength float64
	PopSize        int
	StartTime      int
	SplitTime      int
	Keep           string
	Seed           int64
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulation and report both ancestry records",
		Long: `Run a forward-in-time simulation and print a summary of the full
and truncated ancestry records. Parameters come either from a scenario
file or from flags.

Example:
  forwardsim simulate --scenario scenarios/two_windows.yaml
  forwardsim simulate --pop-size 20 --sequence-length 100 --start-time 10 \
      --split-time 4 --keep 10:30,50:75 --seed 7 --db runs.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ScenarioPath, "scenario", "", "path to a scenario YAML file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the run in this SQLite database")
	cmd.Flags().StringVar(&opts.Name, "name", "adhoc", "run name when no scenario file is given")
	cmd.Flags().Float64Var(&opts.SequenceLength, "sequence-length", 100, "genome length in ticks")
	cmd.Flags().IntVar(&opts.PopSize, "pop-size", 20, "diploid individuals per generation")
	cmd.Flags().IntVar(&opts.StartTime, "start-time", 10, "generations to simulate")
	cmd.Flags().IntVar(&opts.SplitTime, "split-time", 0, "generations during which the split populations persist")
	cmd.Flags().StringVar(&opts.Keep, "keep", "", "retained windows as left:right pairs, comma separated")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts *SimulateOptions) error {
	configureLogging(opts.Verbose)

	sc, err := resolveScenario(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid simulation parameters", err)
	}

	slog.Info("simulation starting", "scenario", sc.Name, "seed", sc.Seed)
	res, err := harness.Run(sc)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	if errs := harness.Verify(res); len(errs) > 0 {
		for _, verr := range errs {
			slog.Error("record check failed", "error", verr)
		}
		return WrapExitError(ExitFailure, "records failed consistency checks", errs[0])
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var runID string
	if opts.Database != "" {
		runID, err = archiveRun(cmd.Context(), opts.Database, sc, res)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to archive run", err)
		}
		slog.Info("run archived", "db", opts.Database, "run_id", runID)
	}

	if opts.Format == "json" {
		payload := struct {
			RunID    string              `json:"run_id,omitempty"`
			Snapshot harness.RunSnapshot `json:"snapshot"`
		}{RunID: runID, Snapshot: res.Snapshot}
		return out.JSON(payload)
	}

	writeSnapshotText(out, res.Snapshot)
	if runID != "" {
		fmt.Fprintf(out.Writer, "Archived as run %s\n", runID)
	}
	return nil
}

// resolveScenario builds the run configuration from either a scenario
// file or the parameter flags.
func resolveScenario(opts *SimulateOptions) (*scenario.Scenario, error) {
	if opts.ScenarioPath != "" {
		return scenario.Load(opts.ScenarioPath)
	}

	keep, err := parseKeepIntervals(opts.Keep)
	if err != nil {
		return nil, err
	}
	sc := &scenario.Scenario{
		Name:           opts.Name,
		SequenceLength: opts.SequenceLength,
		PopSize:        opts.PopSize,
		StartTime:      opts.StartTime,
		SplitTime:      opts.SplitTime,
		KeepIntervals:  keep,
		Seed:           opts.Seed,
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// parseKeepIntervals parses "10:30,50:75" into retained windows.
// The empty string means no windows are retained.
func parseKeepIntervals(s string) ([]sim.Interval, error) {
	if strings.TrimSpace(s) == "" {
		return []sim.Interval{}, nil
	}
	parts := strings.Split(s, ",")
	keep := make([]sim.Interval, 0, len(parts))
	for _, part := range parts {
		bounds := strings.Split(strings.TrimSpace(part), ":")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("interval %q: want left:right", part)
		}
		left, err := strconv.ParseFloat(bounds[0], 64)
		if err != nil {
			return nil, fmt.Errorf("interval %q: bad left bound: %w", part, err)
		}
		right, err := strconv.ParseFloat(bounds[1], 64)
		if err != nil {
			return nil, fmt.Errorf("interval %q: bad right bound: %w", part, err)
		}
		keep = append(keep, sim.Interval{Left: left, Right: right})
	}
	return keep, nil
}

func archiveRun(ctx context.Context, path string, sc *scenario.Scenario, res *harness.Result) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	return st.SaveRun(ctx, sc.Name, sc.Params(), res.Full, res.Truncated)
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func writeSnapshotText(out *OutputFormatter, snap harness.RunSnapshot) {
	fmt.Fprintf(out.Writer, "Scenario: %s (seed %d)\n", snap.ScenarioName, snap.Seed)
	if len(snap.KeepIntervals) == 0 {
		fmt.Fprintln(out.Writer, "Retained windows: none")
	} else {
		windows := make([]string, len(snap.KeepIntervals))
		for i, iv := range snap.KeepIntervals {
			windows[i] = fmt.Sprintf("[%g, %g)", iv.Left, iv.Right)
		}
		fmt.Fprintf(out.Writer, "Retained windows: %s\n", strings.Join(windows, " "))
	}
	writeRecordText(out, "Full record", snap.Full)
	writeRecordText(out, "Truncated record", snap.Truncated)
}

func writeRecordText(out *OutputFormatter, label string, rec harness.RecordSnapshot) {
	fmt.Fprintf(out.Writer, "%s:\n", label)
	fmt.Fprintf(out.Writer, "  nodes=%d edges=%d individuals=%d populations=%d\n",
		rec.Nodes, rec.Edges, rec.Individuals, rec.Populations)
	fmt.Fprintf(out.Writer, "  sites=%d mutations=%d trees=%d samples=%d\n",
		rec.Sites, rec.Mutations, rec.Trees, rec.Samples)
	fmt.Fprintf(out.Writer, "  digest=%s\n", rec.Digest)
}

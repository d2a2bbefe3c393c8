package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeseq/forwardsim/internal/sim"
)

// executeCommand runs the CLI with the given args and captures stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// simulateArgs is a small fast configuration shared by the tests.
func simulateArgs(extra ...string) []string {
	args := []string{
		"simulate",
		"--sequence-length", "10",
		"--pop-size", "4",
		"--start-time", "3",
		"--split-time", "1",
		"--keep", "2:5",
		"--seed", "42",
	}
	return append(args, extra...)
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "--format", "xml", "simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSimulate_TextOutput(t *testing.T) {
	out, err := executeCommand(t, simulateArgs("--name", "window")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario: window (seed 42)")
	assert.Contains(t, out, "Retained windows: [2, 5)")
	assert.Contains(t, out, "Full record:")
	assert.Contains(t, out, "Truncated record:")
	assert.Regexp(t, regexp.MustCompile(`digest=[0-9a-f]{64}`), out)
}

func TestSimulate_JSONOutput(t *testing.T) {
	out, err := executeCommand(t, append(simulateArgs(), "--format", "json")...)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "payload should be an object")
	snapshot, ok := data["snapshot"].(map[string]interface{})
	require.True(t, ok, "payload should carry the run snapshot")
	assert.Equal(t, float64(42), snapshot["seed"])
}

func TestSimulate_Deterministic(t *testing.T) {
	first, err := executeCommand(t, simulateArgs()...)
	require.NoError(t, err)
	second, err := executeCommand(t, simulateArgs()...)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same flags must print the same summary")
}

func TestSimulate_ScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window.yaml")
	doc := strings.Join([]string{
		"name: from_file",
		"sequence_length: 10",
		"pop_size: 4",
		"start_time: 3",
		"split_time: 1",
		"keep_intervals:",
		"  - left: 2",
		"    right: 5",
		"seed: 42",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := executeCommand(t, "simulate", "--scenario", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: from_file (seed 42)")
}

func TestSimulate_RejectsBadParams(t *testing.T) {
	_, err := executeCommand(t, "simulate", "--pop-size", "3")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimulate_RejectsBadKeepSyntax(t *testing.T) {
	_, err := executeCommand(t, simulateArgs("--keep", "2-5")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimulate_ArchivesAndShowsRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, err := executeCommand(t, simulateArgs("--name", "window", "--db", dbPath)...)
	require.NoError(t, err)

	m := regexp.MustCompile(`Archived as run (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, "simulate output should name the archived run")
	runID := m[1]

	listed, err := executeCommand(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, listed, runID)
	assert.Contains(t, listed, "window")

	shown, err := executeCommand(t, "show", "--db", dbPath, runID)
	require.NoError(t, err)
	assert.Contains(t, shown, "Scenario: window (seed 42)")
	assert.Contains(t, shown, "Retained windows: [2, 5)")
}

func TestShow_UnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := executeCommand(t, "show", "--db", dbPath, "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRuns_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, err := executeCommand(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs archived.")
}

func TestParseKeepIntervals(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []sim.Interval
		wantErr bool
	}{
		{name: "empty", input: "", want: []sim.Interval{}},
		{name: "single", input: "2:5", want: []sim.Interval{{Left: 2, Right: 5}}},
		{
			name:  "multiple with spaces",
			input: "10:30, 50:75",
			want:  []sim.Interval{{Left: 10, Right: 30}, {Left: 50, Right: 75}},
		},
		{name: "missing colon", input: "2-5", wantErr: true},
		{name: "bad number", input: "a:5", wantErr: true},
		{name: "too many bounds", input: "1:2:3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeepIntervals(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}

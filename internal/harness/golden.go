package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/treeseq/forwardsim/internal/scenario"
)

// RunWithGolden executes a scenario and compares its snapshot against
// a golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// When the golden file has not been recorded yet and -update is not
// set, the test is skipped rather than failed, so fresh checkouts can
// still run the suite before fixtures are captured.
func RunWithGolden(t *testing.T, sc *scenario.Scenario) (*Result, error) {
	t.Helper()

	res, err := Run(sc)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, sc.Name, res.Snapshot); err != nil {
		return nil, err
	}
	return res, nil
}

// AssertGolden compares an already-built snapshot against the golden
// file named after the scenario.
func AssertGolden(t *testing.T, name string, snap RunSnapshot) error {
	t.Helper()

	data, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}

	golden := filepath.Join("testdata", "golden", name+".golden")
	if _, statErr := os.Stat(golden); os.IsNotExist(statErr) && !updateRequested() {
		t.Skipf("golden file %s not recorded; run with -update to capture it", golden)
		return nil
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

func updateRequested() bool {
	for _, arg := range os.Args {
		if arg == "-update" || arg == "--update" {
			return true
		}
	}
	return false
}

// Package scenario defines YAML-described simulation runs: named,
// reproducible parameter sets used by the test harness, the golden
// files and the CLI.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/treeseq/forwardsim/internal/sim"
)

// Scenario is one named simulation run.
//
// Example:
//
//	name: split-with-window
//	description: two-population split with a single keep window
//	sequence_length: 10
//	pop_size: 4
//	start_time: 3
//	split_time: 1
//	keep_intervals:
//	  - left: 2
//	    right: 5
//	seed: 42
type Scenario struct {
	// Name uniquely identifies the scenario; golden files are stored
	// under it.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	SequenceLength float64        `yaml:"sequence_length"`
	PopSize        int            `yaml:"pop_size"`
	StartTime      int            `yaml:"start_time"`
	SplitTime      int            `yaml:"split_time"`
	KeepIntervals  []sim.Interval `yaml:"keep_intervals,omitempty"`
	Seed           int64          `yaml:"seed"`
}

// Params converts the scenario into simulator parameters.
func (s *Scenario) Params() sim.Params {
	return sim.Params{
		SequenceLength: s.SequenceLength,
		PopSize:        s.PopSize,
		StartTime:      s.StartTime,
		SplitTime:      s.SplitTime,
		KeepIntervals:  s.KeepIntervals,
		Seed:           s.Seed,
	}
}

// Validate checks the scenario header and the simulation
// preconditions.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scenario name must not be empty")
	}
	if err := s.Params().Validate(); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return nil
}

// Load reads and validates one scenario file. Unknown YAML fields are
// rejected so a typoed parameter cannot silently fall back to its zero
// value.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadDir loads every *.yaml/*.yml scenario in a directory, sorted by
// filename for a stable order.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

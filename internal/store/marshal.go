package store

import (
	"encoding/json"
	"fmt"

	"github.com/treeseq/forwardsim/internal/sim"
	"github.com/treeseq/forwardsim/internal/tables"
)

// marshalIntervals converts retained windows to JSON TEXT for storage.
// A nil slice is stored as the empty array so reads never see null.
func marshalIntervals(keep []sim.Interval) (string, error) {
	if keep == nil {
		keep = []sim.Interval{}
	}
	data, err := json.Marshal(keep)
	if err != nil {
		return "", fmt.Errorf("marshal intervals: %w", err)
	}
	return string(data), nil
}

// unmarshalIntervals parses JSON TEXT back into retained windows.
func unmarshalIntervals(data string) ([]sim.Interval, error) {
	if data == "" {
		return []sim.Interval{}, nil
	}
	var keep []sim.Interval
	if err := json.Unmarshal([]byte(data), &keep); err != nil {
		return nil, fmt.Errorf("unmarshal intervals: %w", err)
	}
	return keep, nil
}

// marshalParents converts an individual's parent ids to JSON TEXT.
func marshalParents(parents []tables.IndividualID) (string, error) {
	if parents == nil {
		parents = []tables.IndividualID{}
	}
	data, err := json.Marshal(parents)
	if err != nil {
		return "", fmt.Errorf("marshal parents: %w", err)
	}
	return string(data), nil
}

// unmarshalParents parses JSON TEXT back into parent ids.
func unmarshalParents(data string) ([]tables.IndividualID, error) {
	if data == "" {
		return []tables.IndividualID{}, nil
	}
	var parents []tables.IndividualID
	if err := json.Unmarshal([]byte(data), &parents); err != nil {
		return nil, fmt.Errorf("unmarshal parents: %w", err)
	}
	return parents, nil
}

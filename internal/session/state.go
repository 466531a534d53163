// Package session implements the per-user expense entry flow as a pure
// state machine. Persistence and side effects belong to the caller, which
// executes the returned actions in order.
package session

import (
	"fmt"
	"time"

	"moneytrack/internal/core"
)

// Stage is the position of a user in the entry flow.
type Stage int

const (
	StageIdle Stage = iota
	StageAwaitingCategory
	StageAwaitingEntry
)

var stageNames = map[Stage]string{
	StageIdle:             "idle",
	StageAwaitingCategory: "awaiting_category",
	StageAwaitingEntry:    "awaiting_entry",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	name, ok := stageNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown stage %d", int(s))
	}
	return []byte(name), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", string(text))
}

// State is the persisted session record of one user.
// Category is set only in StageAwaitingEntry.
type State struct {
	Stage     Stage         `json:"stage"`
	Category  core.Category `json:"category,omitempty"`
	Version   int64         `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Idle returns the initial state.
func Idle() State {
	return State{Stage: StageIdle}
}

func (s State) IsIdle() bool {
	return s.Stage == StageIdle
}

// Equal compares the flow position, ignoring bookkeeping fields.
func (s State) Equal(o State) bool {
	return s.Stage == o.Stage && s.Category == o.Category
}

func (s State) advance(stage Stage, category core.Category, now time.Time) State {
	if s.Stage == stage && s.Category == category {
		return s
	}
	return State{
		Stage:     stage,
		Category:  category,
		Version:   s.Version + 1,
		UpdatedAt: now,
	}
}

func (s State) String() string {
	if s.Stage == StageAwaitingEntry {
		return fmt.Sprintf("%s(%s)", s.Stage, s.Category)
	}
	return s.Stage.String()
}

package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytrack/internal/core"
)

var now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func kinds(actions []Action) []ActionKind {
	out := make([]ActionKind, len(actions))
	for i, a := range actions {
		out[i] = a.Kind
	}
	return out
}

func TestTransition_FullEntryFlow(t *testing.T) {
	s := Idle()

	s, actions := Transition(s, Begin(now))
	assert.Equal(t, StageAwaitingCategory, s.Stage)
	assert.Equal(t, []ActionKind{ActPromptCategory}, kinds(actions))

	s, actions = Transition(s, Text("makanan", now))
	assert.Equal(t, StageAwaitingEntry, s.Stage)
	assert.Equal(t, core.Category("makanan"), s.Category)
	assert.Equal(t, []ActionKind{ActPromptEntry}, kinds(actions))

	s, actions = Transition(s, Text("15000 Lunch", now))
	assert.True(t, s.IsIdle())
	require.Equal(t, []ActionKind{ActCommit, ActConfirm, ActCheckDailyBudget}, kinds(actions))

	e := actions[0].Expense
	assert.Equal(t, int64(15000), e.Amount)
	assert.Equal(t, "Lunch", e.Description)
	assert.Equal(t, core.Category("makanan"), e.Category)
	assert.Equal(t, now, e.OccurredAt)
}

func TestTransition_InvalidEntryKeepsState(t *testing.T) {
	start := State{Stage: StageAwaitingEntry, Category: "makanan", Version: 3}

	inputs := []string{"abc Lunch", "0 Lunch", "-100 Lunch", "15000 x", "15000", "   "}
	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			s, actions := Transition(start, Text(text, now))
			assert.Equal(t, start, s)
			require.Len(t, actions, 1)
			assert.Equal(t, ActInvalidEntry, actions[0].Kind)
			assert.Error(t, actions[0].Err)
			for _, a := range actions {
				assert.NotEqual(t, ActCommit, a.Kind)
			}
		})
	}
}

func TestTransition_UnmatchedTextIsIgnored(t *testing.T) {
	tests := []struct {
		name  string
		state State
		text  string
	}{
		{"idle free text", Idle(), "hello"},
		{"idle category name", Idle(), "makanan"},
		{"unknown category", State{Stage: StageAwaitingCategory}, "sushi"},
		{"category wrong case", State{Stage: StageAwaitingCategory}, "Makanan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, actions := Transition(tt.state, Text(tt.text, now))
			assert.Equal(t, tt.state, s)
			assert.Empty(t, actions)
		})
	}
}

func TestTransition_MenuResetsFromAnyState(t *testing.T) {
	states := []State{
		Idle(),
		{Stage: StageAwaitingCategory, Version: 1},
		{Stage: StageAwaitingEntry, Category: "bensin", Version: 2},
	}
	for _, st := range states {
		t.Run(st.String(), func(t *testing.T) {
			s, actions := Transition(st, Menu(now))
			assert.True(t, s.IsIdle())
			assert.Empty(t, s.Category)
			assert.Equal(t, []ActionKind{ActShowMenu}, kinds(actions))
		})
	}
}

func TestTransition_VersionBumpsOnlyOnChange(t *testing.T) {
	s := Idle()
	s, _ = Transition(s, Begin(now))
	assert.Equal(t, int64(1), s.Version)
	assert.Equal(t, now, s.UpdatedAt)

	same, _ := Transition(s, Text("nothing", now.Add(time.Minute)))
	assert.Equal(t, s, same)

	s, _ = Transition(s, Begin(now))
	assert.Equal(t, int64(1), s.Version)
}

func TestState_JSON(t *testing.T) {
	s := State{Stage: StageAwaitingEntry, Category: "air", Version: 7, UpdatedAt: now}
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stage":"awaiting_entry"`)
	assert.Contains(t, string(raw), `"category":"air"`)

	var back State
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, s.Equal(back))
	assert.Equal(t, s.Version, back.Version)

	assert.Error(t, json.Unmarshal([]byte(`{"stage":"awaiting_entry:air"}`), &back))
}

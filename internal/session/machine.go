package session

import (
	"time"

	"moneytrack/internal/core"
)

type InputKind int

const (
	// InputText is free text typed by the user.
	InputText InputKind = iota
	// InputBegin starts a new expense entry.
	InputBegin
	// InputMenu returns to the main menu, discarding any entry in progress.
	InputMenu
)

type Input struct {
	Kind InputKind
	Text string
	Now  time.Time
}

func Text(text string, now time.Time) Input { return Input{Kind: InputText, Text: text, Now: now} }
func Begin(now time.Time) Input            { return Input{Kind: InputBegin, Now: now} }
func Menu(now time.Time) Input             { return Input{Kind: InputMenu, Now: now} }

type ActionKind int

const (
	ActPromptCategory ActionKind = iota + 1
	ActPromptEntry
	ActInvalidEntry
	ActCommit
	ActConfirm
	ActCheckDailyBudget
	ActShowMenu
)

func (k ActionKind) String() string {
	switch k {
	case ActPromptCategory:
		return "prompt_category"
	case ActPromptEntry:
		return "prompt_entry"
	case ActInvalidEntry:
		return "invalid_entry"
	case ActCommit:
		return "commit"
	case ActConfirm:
		return "confirm"
	case ActCheckDailyBudget:
		return "check_daily_budget"
	case ActShowMenu:
		return "show_menu"
	default:
		return "unknown"
	}
}

// Action is an effect requested by a transition.
//
// Expense is set for ActCommit and ActConfirm; Err for ActInvalidEntry.
// The caller must stop executing actions when an ActCommit fails.
type Action struct {
	Kind     ActionKind
	Category core.Category
	Expense  core.Expense
	Err      error
}

// Transition computes the next state for in. It never fails: text the
// machine does not recognise leaves the state unchanged and yields no
// actions, so the caller may route it elsewhere.
func Transition(s State, in Input) (State, []Action) {
	switch in.Kind {
	case InputMenu:
		return s.advance(StageIdle, "", in.Now), []Action{{Kind: ActShowMenu}}
	case InputBegin:
		return s.advance(StageAwaitingCategory, "", in.Now), []Action{{Kind: ActPromptCategory}}
	}

	switch s.Stage {
	case StageAwaitingCategory:
		category, ok := core.ParseCategory(in.Text)
		if !ok {
			return s, nil
		}
		return s.advance(StageAwaitingEntry, category, in.Now), []Action{{Kind: ActPromptEntry, Category: category}}

	case StageAwaitingEntry:
		amount, desc, err := core.ParseEntry(in.Text)
		if err != nil {
			return s, []Action{{Kind: ActInvalidEntry, Category: s.Category, Err: err}}
		}
		expense := core.Expense{
			Amount:      amount,
			Description: desc,
			Category:    s.Category,
			OccurredAt:  in.Now,
		}
		return s.advance(StageIdle, "", in.Now), []Action{
			{Kind: ActCommit, Category: s.Category, Expense: expense},
			{Kind: ActConfirm, Category: s.Category, Expense: expense},
			{Kind: ActCheckDailyBudget},
		}
	}

	return s, nil
}

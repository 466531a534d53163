package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"moneytrack/internal/core"
	"moneytrack/internal/session"
)

// Root path segments, one per entity kind.
const (
	ExpensesRoot  = "expenses"
	BudgetsRoot   = "budgets"
	SessionsRoot  = "sessions"
	UsersRoot     = "users"
	OwnersRoot    = "owners"
	DonationsRoot = "donations"
)

type expenseDoc struct {
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

type budgetDoc struct {
	Amount int64     `json:"amount"`
	SetAt  time.Time `json:"set_at"`
}

type userDoc struct {
	Name         string    `json:"name"`
	LastActivity time.Time `json:"last_activity"`
}

type donorDoc struct {
	AddedBy string    `json:"added_by"`
	Date    time.Time `json:"date"`
	Status  string    `json:"status"`
}

// ErrCorruptSession marks a stored session record that cannot be decoded.
var ErrCorruptSession = errors.New("corrupt session")

// Ledger is the typed view of a Store.
type Ledger struct {
	store Store
	clock func() time.Time
}

func New(store Store) *Ledger {
	return &Ledger{store: store, clock: time.Now}
}

// WithClock overrides the server timestamp source.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	l.clock = clock
	return l
}

func (l *Ledger) Store() Store {
	return l.store
}

// AddExpense appends e to the user's ledger and returns it with ID and CreatedAt set.
func (l *Ledger) AddExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	e.OwnerID = userID
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.CreatedAt = l.clock()
	raw, err := json.Marshal(expenseDoc{
		Amount:      e.Amount,
		Description: e.Description,
		Category:    string(e.Category),
		Date:        e.OccurredAt,
		CreatedAt:   e.CreatedAt,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("encode expense: %w", err)
	}
	id, err := l.store.Append(ctx, Join(ExpensesRoot, userID), raw)
	if err != nil {
		return core.Expense{}, fmt.Errorf("append expense: %w", err)
	}
	e.ID = id
	return e, nil
}

// Expenses returns the user's expenses in insertion order.
func (l *Ledger) Expenses(ctx context.Context, userID string) ([]core.Expense, error) {
	children, err := l.store.Children(ctx, Join(ExpensesRoot, userID))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(children))
	for _, c := range children {
		var doc expenseDoc
		if err := json.Unmarshal(c.Value, &doc); err != nil {
			return nil, fmt.Errorf("decode expense %s: %w", c.ID, err)
		}
		out = append(out, core.Expense{
			ID:          c.ID,
			OwnerID:     userID,
			Amount:      doc.Amount,
			Description: doc.Description,
			Category:    core.Category(doc.Category),
			OccurredAt:  doc.Date,
			CreatedAt:   doc.CreatedAt,
		})
	}
	return out, nil
}

// Expense returns a single expense.
func (l *Ledger) Expense(ctx context.Context, userID, id string) (core.Expense, bool, error) {
	raw, found, err := l.store.Read(ctx, Join(ExpensesRoot, userID, id))
	if err != nil || !found {
		return core.Expense{}, false, err
	}
	var doc expenseDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Expense{}, false, fmt.Errorf("decode expense %s: %w", id, err)
	}
	return core.Expense{
		ID:          id,
		OwnerID:     userID,
		Amount:      doc.Amount,
		Description: doc.Description,
		Category:    core.Category(doc.Category),
		OccurredAt:  doc.Date,
		CreatedAt:   doc.CreatedAt,
	}, true, nil
}

func (l *Ledger) RemoveExpenses(ctx context.Context, userID string, ids []string) error {
	for _, id := range ids {
		if err := l.store.Delete(ctx, Join(ExpensesRoot, userID, id)); err != nil {
			return fmt.Errorf("delete expense %s: %w", id, err)
		}
	}
	return nil
}

func (l *Ledger) RemoveAllExpenses(ctx context.Context, userID string) error {
	if err := l.store.Delete(ctx, Join(ExpensesRoot, userID)); err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}
	return nil
}

// Budget returns the user's budget for period; found is false when none is set.
func (l *Ledger) Budget(ctx context.Context, userID string, period core.Period) (core.Budget, bool, error) {
	raw, found, err := l.store.Read(ctx, Join(BudgetsRoot, userID, string(period)))
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("read budget: %w", err)
	}
	if !found {
		return core.Budget{}, false, nil
	}
	var doc budgetDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Budget{}, false, fmt.Errorf("decode budget: %w", err)
	}
	return core.Budget{Amount: doc.Amount, SetAt: doc.SetAt}, true, nil
}

// Budgets returns every configured budget of the user.
func (l *Ledger) Budgets(ctx context.Context, userID string) (map[core.Period]core.Budget, error) {
	out := make(map[core.Period]core.Budget, len(core.Periods))
	for _, p := range core.Periods {
		b, found, err := l.Budget(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		if found {
			out[p] = b
		}
	}
	return out, nil
}

// SetBudget overwrites the user's budget for period.
func (l *Ledger) SetBudget(ctx context.Context, userID string, period core.Period, amount int64) (core.Budget, error) {
	if !period.Valid() {
		return core.Budget{}, core.ErrInvalidPeriod
	}
	b := core.Budget{Amount: amount, SetAt: l.clock()}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	raw, err := json.Marshal(budgetDoc{Amount: b.Amount, SetAt: b.SetAt})
	if err != nil {
		return core.Budget{}, fmt.Errorf("encode budget: %w", err)
	}
	if err := l.store.Write(ctx, Join(BudgetsRoot, userID, string(period)), raw); err != nil {
		return core.Budget{}, fmt.Errorf("write budget: %w", err)
	}
	return b, nil
}

// Session returns the user's session, or the idle state when none exists yet.
func (l *Ledger) Session(ctx context.Context, userID string) (session.State, error) {
	raw, found, err := l.store.Read(ctx, Join(SessionsRoot, userID))
	if err != nil {
		return session.State{}, fmt.Errorf("read session: %w", err)
	}
	if !found {
		return session.Idle(), nil
	}
	var s session.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return session.State{}, fmt.Errorf("decode session: %w: %v", ErrCorruptSession, err)
	}
	return s, nil
}

func (l *Ledger) SaveSession(ctx context.Context, userID string, s session.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := l.store.Write(ctx, Join(SessionsRoot, userID), raw); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// TouchUser records the user's display name and last activity.
func (l *Ledger) TouchUser(ctx context.Context, userID, name string) error {
	fields := map[string]any{
		"last_activity": l.clock().UTC().Format(time.RFC3339Nano),
	}
	if name != "" {
		fields["name"] = name
	}
	if err := l.store.Patch(ctx, Join(UsersRoot, userID), fields); err != nil {
		return fmt.Errorf("patch user: %w", err)
	}
	return nil
}

// Users returns every known user ordered by id.
func (l *Ledger) Users(ctx context.Context) ([]core.UserProfile, error) {
	children, err := l.store.Children(ctx, UsersRoot)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]core.UserProfile, 0, len(children))
	for _, c := range children {
		var doc userDoc
		if err := json.Unmarshal(c.Value, &doc); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", c.ID, err)
		}
		out = append(out, core.UserProfile{ID: c.ID, Name: doc.Name, LastActivity: doc.LastActivity})
	}
	return out, nil
}

func (l *Ledger) IsOwner(ctx context.Context, userID string) (bool, error) {
	_, found, err := l.store.Read(ctx, Join(OwnersRoot, userID))
	if err != nil {
		return false, fmt.Errorf("read owner: %w", err)
	}
	return found, nil
}

func (l *Ledger) SetOwner(ctx context.Context, userID string) error {
	raw, _ := json.Marshal(map[string]any{"is_owner": true})
	if err := l.store.Write(ctx, Join(OwnersRoot, userID), raw); err != nil {
		return fmt.Errorf("write owner: %w", err)
	}
	return nil
}

func (l *Ledger) AddDonor(ctx context.Context, userID, addedBy string) (core.Donor, error) {
	d := core.Donor{UserID: userID, AddedBy: addedBy, Date: l.clock(), Status: "active"}
	raw, err := json.Marshal(donorDoc{AddedBy: d.AddedBy, Date: d.Date, Status: d.Status})
	if err != nil {
		return core.Donor{}, fmt.Errorf("encode donor: %w", err)
	}
	if err := l.store.Write(ctx, Join(DonationsRoot, userID), raw); err != nil {
		return core.Donor{}, fmt.Errorf("write donor: %w", err)
	}
	return d, nil
}

// RemoveDonor deletes the donor record; removed is false when it did not exist.
func (l *Ledger) RemoveDonor(ctx context.Context, userID string) (bool, error) {
	path := Join(DonationsRoot, userID)
	_, found, err := l.store.Read(ctx, path)
	if err != nil {
		return false, fmt.Errorf("read donor: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := l.store.Delete(ctx, path); err != nil {
		return false, fmt.Errorf("delete donor: %w", err)
	}
	return true, nil
}

// Donors returns the donor list ordered by user id.
func (l *Ledger) Donors(ctx context.Context) ([]core.Donor, error) {
	children, err := l.store.Children(ctx, DonationsRoot)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	out := make([]core.Donor, 0, len(children))
	for _, c := range children {
		var doc donorDoc
		if err := json.Unmarshal(c.Value, &doc); err != nil {
			return nil, fmt.Errorf("decode donor %s: %w", c.ID, err)
		}
		out = append(out, core.Donor{UserID: c.ID, AddedBy: doc.AddedBy, Date: doc.Date, Status: doc.Status})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

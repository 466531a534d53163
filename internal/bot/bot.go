package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moneytrack/internal/cache"
	"moneytrack/internal/core"
	"moneytrack/internal/ledger"
	"moneytrack/internal/log"
	"moneytrack/internal/ratelimit"
	"moneytrack/internal/services"
	"moneytrack/internal/session"
)

const (
	ownerCacheSize = 1024
	ownerCacheTTL  = 5 * time.Minute
	activeWindow   = 7 * 24 * time.Hour
)

// Config wires the bot to its services. Limiter and Export are optional.
type Config struct {
	Ledger    *ledger.Ledger
	Expenses  *services.ExpenseService
	Deletion  *services.DeletionService
	Reports   *services.ReportService
	Export    *services.ExportService
	Deliverer Deliverer
	Locks     *services.UserLocks
	Limiter   *ratelimit.Limiter
	// OwnerID is registered as owner when that user sends /start.
	OwnerID string
	// BroadcastConcurrency bounds parallel deliveries of /broadcast.
	BroadcastConcurrency int
	Logger               *log.Logger
}

type handlerFunc func(ctx context.Context, t *turn) error

// Bot handles events one at a time per user.
type Bot struct {
	ledger      *ledger.Ledger
	expenses    *services.ExpenseService
	deletion    *services.DeletionService
	reports     *services.ReportService
	export      *services.ExportService
	deliverer   Deliverer
	locks       *services.UserLocks
	limiter     *ratelimit.Limiter
	owners      *cache.LRUCache[bool]
	ownerID     string
	concurrency int
	now         func() time.Time
	logger      *log.Logger

	commands  map[string]handlerFunc
	menu      map[string]handlerFunc
	callbacks map[string]handlerFunc
}

// turn is the working state of one event: the session it started with,
// the session it leaves behind and the replies to deliver.
type turn struct {
	ev      Event
	now     time.Time
	session session.State
	next    session.State
	out     []outgoing
	// resetSession forces the session write even when next is unchanged.
	resetSession bool
}

type outgoing struct {
	to    string
	reply Reply
	// bestEffort replies go to third parties; their failures are only logged.
	bestEffort bool
}

func (t *turn) reply(r Reply) {
	t.out = append(t.out, outgoing{to: t.ev.UserID, reply: r})
}

func (t *turn) notify(userID string, r Reply) {
	t.out = append(t.out, outgoing{to: userID, reply: r, bestEffort: true})
}

func New(cfg Config) *Bot {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	locks := cfg.Locks
	if locks == nil {
		locks = services.NewUserLocks()
	}
	b := &Bot{
		ledger:      cfg.Ledger,
		expenses:    cfg.Expenses,
		deletion:    cfg.Deletion,
		reports:     cfg.Reports,
		export:      cfg.Export,
		deliverer:   cfg.Deliverer,
		locks:       locks,
		limiter:     cfg.Limiter,
		owners:      cache.NewLRUCache[bool](ownerCacheSize, ownerCacheTTL),
		ownerID:     cfg.OwnerID,
		concurrency: cfg.BroadcastConcurrency,
		now:         time.Now,
		logger:      logger.WithComponent(log.ComponentBot),
	}
	b.register()
	return b
}

// WithClock replaces the time source used for events without a timestamp.
func (b *Bot) WithClock(now func() time.Time) *Bot {
	b.now = now
	b.owners.WithClock(now)
	return b
}

// OwnerCache exposes the owner flag cache so it can be swept periodically.
func (b *Bot) OwnerCache() *cache.LRUCache[bool] {
	return b.owners
}

func (b *Bot) register() {
	b.commands = map[string]handlerFunc{
		"start":         b.handleStart,
		"menu":          b.handleMenu,
		"add":           b.handleAdd,
		"budget":        b.handleBudget,
		"help":          b.handleHelp,
		"qris":          b.handleQRIS,
		"broadcast":     b.ownerOnly(b.handleBroadcast),
		"adddonator":    b.ownerOnly(b.handleAddDonor),
		"removedonator": b.ownerOnly(b.handleRemoveDonor),
		"listdonator":   b.ownerOnly(b.handleListDonors),
		"stats":         b.ownerOnly(b.handleStats),
	}
	b.menu = map[string]handlerFunc{
		MenuAdd:        b.handleBegin,
		MenuHistory:    b.handleHistory,
		MenuToday:      b.handleDaily,
		MenuWeekly:     b.handleWeekly,
		MenuMonthly:    b.handleMonthly,
		MenuBudget:     b.handleBudgetHelp,
		MenuDelete:     b.handleDeleteOptions,
		MenuExport:     b.handleExport,
		MenuDonate:     b.handleDonate,
		MenuHelp:       b.handleHelp,
		MenuOwnerPanel: b.ownerOnly(b.handleOwnerPanel),
		MenuBack:       b.handleMenu,
	}
	b.callbacks = map[string]handlerFunc{
		CallbackBackToMenu:     b.handleMenu,
		CallbackDeleteToday:    b.handleDeleteToday,
		CallbackDeleteWeek:     b.handleDeleteWeek,
		CallbackDeleteAll:      b.handleDeleteAll,
		CallbackOwnerBroadcast: b.ownerOnly(b.handleBroadcastHelp),
		CallbackOwnerStats:     b.ownerOnly(b.handleStats),
		CallbackOwnerDonor:     b.ownerOnly(b.handleDonorHelp),
	}
}

// Handle processes ev to completion. Events of the same user never run
// concurrently; the session is persisted only when every write of the
// turn succeeded.
func (b *Bot) Handle(ctx context.Context, ev Event) error {
	if ev.UserID == "" {
		return errors.New("event without user")
	}
	start := time.Now()
	logger := b.logger.With(
		log.FieldEventID, ledger.NewID(),
		log.FieldUserID, ev.UserID,
		log.FieldEventKind, ev.Kind.String())
	ctx = log.NewContext(ctx, logger)
	defer func() {
		logger.DebugContext(ctx, "Event handled",
			log.FieldEventName, ev.Name,
			log.FieldDuration, time.Since(start).Milliseconds())
	}()

	if b.limiter != nil && !b.limiter.Allow(ev.UserID) {
		logger.WarnContext(ctx, "Event rate limited")
		return b.deliver(ctx, outgoing{to: ev.UserID, reply: plain(textRateLimited)})
	}

	unlock := b.locks.Lock(ev.UserID)
	defer unlock()

	t := &turn{ev: ev, now: ev.At}
	if t.now.IsZero() {
		t.now = b.now()
	}

	if err := b.ledger.TouchUser(ctx, ev.UserID, ev.DisplayName); err != nil {
		logger.ErrorContext(ctx, "Failed to record user activity", log.FieldError, err)
	}

	s, err := b.ledger.Session(ctx, ev.UserID)
	switch {
	case errors.Is(err, ledger.ErrCorruptSession):
		// Restart from idle and overwrite the record at the end of the turn.
		logger.WarnContext(ctx, "Discarding unreadable session", log.FieldError, err)
		s, t.resetSession = session.Idle(), true
	case err != nil:
		logger.ErrorContext(ctx, "Failed to load session", log.FieldError, err)
		_ = b.deliver(ctx, outgoing{to: ev.UserID, reply: plain(textStoreError)})
		return fmt.Errorf("load session: %w", err)
	}
	t.session, t.next = s, s

	if err := b.dispatch(ctx, t); err != nil {
		logger.ErrorContext(ctx, "Event failed",
			log.FieldEventName, ev.Name,
			log.FieldError, err)
		_ = b.deliver(ctx, outgoing{to: ev.UserID, reply: plain(textStoreError)})
		return err
	}

	// A failed session write after a successful commit still confirms the
	// commit; the user stays in the previous stage.
	var firstErr error
	if t.resetSession || t.next.Version != t.session.Version {
		if err := b.ledger.SaveSession(ctx, ev.UserID, t.next); err != nil {
			logger.ErrorContext(ctx, "Failed to save session",
				log.FieldStage, t.next.String(),
				log.FieldError, err)
			firstErr = fmt.Errorf("save session: %w", err)
		}
	}

	for _, o := range t.out {
		if err := b.deliver(ctx, o); err != nil && !o.bestEffort && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *Bot) dispatch(ctx context.Context, t *turn) error {
	switch t.ev.Kind {
	case EventCallback:
		if h, ok := b.callbacks[t.ev.Name]; ok {
			return h(ctx, t)
		}
		t.reply(withBack(textUnknown))
		return nil
	case EventCommand:
		if h, ok := b.commands[t.ev.Name]; ok {
			return h(ctx, t)
		}
	default:
		if h, ok := b.menu[strings.TrimSpace(t.ev.Payload)]; ok {
			return h(ctx, t)
		}
	}
	return b.advance(ctx, t, session.Text(t.ev.Text(), t.now))
}

// advance feeds in to the entry flow and runs the resulting actions in order.
func (b *Bot) advance(ctx context.Context, t *turn, in session.Input) error {
	next, actions := session.Transition(t.session, in)
	var committed core.Expense
	for _, a := range actions {
		switch a.Kind {
		case session.ActShowMenu:
			t.reply(mainMenu(b.isOwner(ctx, t.ev.UserID)))
		case session.ActPromptCategory:
			t.reply(categoryPrompt())
		case session.ActPromptEntry:
			t.reply(entryPrompt(a.Category))
		case session.ActInvalidEntry:
			log.FromContext(ctx).DebugContext(ctx, "Entry rejected",
				log.FieldCategory, string(a.Category),
				log.FieldError, a.Err)
			t.reply(invalidEntry())
		case session.ActCommit:
			saved, err := b.expenses.Commit(ctx, t.ev.UserID, a.Expense)
			if err != nil {
				return err
			}
			committed = saved
		case session.ActConfirm:
			t.reply(confirmation(committed))
		case session.ActCheckDailyBudget:
			alert, ok, err := b.expenses.DailyAlert(ctx, t.ev.UserID, t.now)
			if err != nil {
				log.FromContext(ctx).ErrorContext(ctx, "Daily budget check failed", log.FieldError, err)
				continue
			}
			if ok {
				t.reply(budgetAlert(alert))
			}
		}
	}
	t.next = next
	return nil
}

// isOwner consults the cached owner flag. Lookup failures count as not owner.
func (b *Bot) isOwner(ctx context.Context, userID string) bool {
	owner, err := b.owners.GetOrLoad(ctx, userID, func(ctx context.Context) (bool, error) {
		return b.ledger.IsOwner(ctx, userID)
	})
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Owner lookup failed", log.FieldError, err)
		return false
	}
	return owner
}

func (b *Bot) ownerOnly(h handlerFunc) handlerFunc {
	return func(ctx context.Context, t *turn) error {
		if !b.isOwner(ctx, t.ev.UserID) {
			t.reply(plain(textOwnerOnly))
			return nil
		}
		return h(ctx, t)
	}
}

func (b *Bot) deliver(ctx context.Context, o outgoing) error {
	if b.deliverer == nil {
		return errors.New("no deliverer configured")
	}
	if err := b.deliverer.Deliver(ctx, o.to, o.reply); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to deliver reply",
			log.FieldRecipient, o.to,
			log.FieldError, err)
		return fmt.Errorf("deliver to %s: %w", o.to, err)
	}
	return nil
}

// SendDailyReport pushes the scheduled daily report to recipient.
func (b *Bot) SendDailyReport(ctx context.Context, recipient string, v services.DailyView) error {
	return b.deliver(ctx, outgoing{to: recipient, reply: scheduledDaily(v)})
}

var _ services.DailyReportSender = (*Bot)(nil)

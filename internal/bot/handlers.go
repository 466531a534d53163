package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moneytrack/internal/core"
	"moneytrack/internal/log"
	"moneytrack/internal/services"
	"moneytrack/internal/session"
)

func (b *Bot) handleStart(ctx context.Context, t *turn) error {
	if b.ownerID != "" && t.ev.UserID == b.ownerID {
		if err := b.ledger.SetOwner(ctx, t.ev.UserID); err != nil {
			return fmt.Errorf("register owner: %w", err)
		}
		b.owners.Delete(t.ev.UserID)
		log.FromContext(ctx).InfoContext(ctx, "Owner registered")
	}
	t.reply(welcome(t.ev.DisplayName, b.isOwner(ctx, t.ev.UserID)))
	return nil
}

func (b *Bot) handleMenu(ctx context.Context, t *turn) error {
	return b.advance(ctx, t, session.Menu(t.now))
}

func (b *Bot) handleBegin(ctx context.Context, t *turn) error {
	return b.advance(ctx, t, session.Begin(t.now))
}

// handleAdd starts the guided flow; the old one-line form only gets a hint.
func (b *Bot) handleAdd(ctx context.Context, t *turn) error {
	if t.ev.Payload != "" {
		t.reply(addGuide())
		return nil
	}
	return b.handleBegin(ctx, t)
}

func (b *Bot) handleBudgetHelp(_ context.Context, t *turn) error {
	t.reply(budgetUsage())
	return nil
}

// handleBudget sets a budget from "/budget <daily|weekly|monthly> <amount>".
func (b *Bot) handleBudget(ctx context.Context, t *turn) error {
	args := strings.Fields(t.ev.Payload)
	if len(args) != 2 {
		t.reply(budgetUsage())
		return nil
	}
	period, err := core.ParsePeriod(strings.ToLower(args[0]))
	if err != nil {
		t.reply(budgetUsage())
		return nil
	}
	amount, err := core.ParseAmount(args[1])
	if err != nil {
		t.reply(budgetUsage())
		return nil
	}
	saved, err := b.expenses.SetBudget(ctx, t.ev.UserID, period, amount)
	if err != nil {
		if errors.Is(err, core.ErrInvalidBudget) {
			t.reply(budgetUsage())
			return nil
		}
		return err
	}
	t.reply(budgetSet(saved, period))
	return nil
}

func (b *Bot) handleHistory(ctx context.Context, t *turn) error {
	h, err := b.reports.History(ctx, t.ev.UserID)
	if err != nil {
		return err
	}
	t.reply(historyReport(h, b.reports.Location()))
	return nil
}

func (b *Bot) handleDaily(ctx context.Context, t *turn) error {
	v, err := b.reports.Daily(ctx, t.ev.UserID, t.now)
	if err != nil {
		return err
	}
	t.reply(dailyReport(v))
	return nil
}

func (b *Bot) handleWeekly(ctx context.Context, t *turn) error {
	v, err := b.reports.Weekly(ctx, t.ev.UserID, t.now)
	if err != nil {
		return err
	}
	t.reply(weeklyReport(v))
	return nil
}

func (b *Bot) handleMonthly(ctx context.Context, t *turn) error {
	v, err := b.reports.Monthly(ctx, t.ev.UserID, t.now)
	if err != nil {
		return err
	}
	t.reply(monthlyReport(v))
	return nil
}

func (b *Bot) handleDeleteOptions(_ context.Context, t *turn) error {
	t.reply(deleteOptions())
	return nil
}

func (b *Bot) handleDeleteToday(ctx context.Context, t *turn) error {
	r, err := b.deletion.DeleteToday(ctx, t.ev.UserID, t.now)
	if err != nil {
		return err
	}
	t.reply(deleted(r, "hari ini"))
	return nil
}

func (b *Bot) handleDeleteWeek(ctx context.Context, t *turn) error {
	r, err := b.deletion.DeleteWeek(ctx, t.ev.UserID, t.now)
	if err != nil {
		return err
	}
	t.reply(deleted(r, "minggu ini"))
	return nil
}

func (b *Bot) handleDeleteAll(ctx context.Context, t *turn) error {
	r, err := b.deletion.DeleteAll(ctx, t.ev.UserID)
	if err != nil {
		return err
	}
	t.reply(deletedAll(r))
	return nil
}

func (b *Bot) handleExport(ctx context.Context, t *turn) error {
	if !b.export.Enabled() {
		t.reply(withBack("❌ Ekspor belum dikonfigurasi."))
		return nil
	}
	f, w, err := b.export.Export(ctx, t.ev.UserID, t.now)
	switch {
	case errors.Is(err, services.ErrNothingToExport):
		t.reply(withBack("📭 Belum ada data pengeluaran untuk diekspor."))
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Export failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		t.reply(withBack("❌ Gagal mengekspor data. Coba lagi nanti."))
	default:
		t.reply(exported(f, w))
	}
	return nil
}

func (b *Bot) handleDonate(_ context.Context, t *turn) error {
	t.reply(donation())
	return nil
}

func (b *Bot) handleQRIS(_ context.Context, t *turn) error {
	t.reply(qris())
	return nil
}

func (b *Bot) handleHelp(_ context.Context, t *turn) error {
	t.reply(help())
	return nil
}

func (b *Bot) handleOwnerPanel(_ context.Context, t *turn) error {
	t.reply(ownerPanel())
	return nil
}

func (b *Bot) handleBroadcastHelp(_ context.Context, t *turn) error {
	t.reply(broadcastUsage())
	return nil
}

func (b *Bot) handleDonorHelp(_ context.Context, t *turn) error {
	t.reply(donorUsage())
	return nil
}

// handleBroadcast sends an announcement to every known user. One failed
// recipient never stops the others.
func (b *Bot) handleBroadcast(ctx context.Context, t *turn) error {
	msg := strings.TrimSpace(t.ev.Payload)
	if msg == "" {
		t.reply(broadcastUsage())
		return nil
	}
	users, err := b.ledger.Users(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	logger := log.FromContext(ctx).With(log.FieldOperation, log.OpBroadcast)
	announce := announcement(msg)
	res := services.FanOut(ctx, ids, b.concurrency, func(ctx context.Context, to string) error {
		return b.deliverer.Deliver(ctx, to, announce)
	}, logger)

	logger.InfoContext(ctx, "Broadcast finished",
		log.FieldCount, res.Attempted,
		"succeeded", res.Succeeded,
		"failed", len(res.Failed))
	t.reply(broadcastDone(res))
	return nil
}

func (b *Bot) handleAddDonor(ctx context.Context, t *turn) error {
	id := firstArg(t.ev.Payload)
	if id == "" {
		t.reply(donorUsage())
		return nil
	}
	if _, err := b.ledger.AddDonor(ctx, id, t.ev.UserID); err != nil {
		return err
	}
	t.reply(plain(fmt.Sprintf("✅ User %s berhasil ditambahkan sebagai donatur.", id)))
	t.notify(id, donorThanks())
	return nil
}

func (b *Bot) handleRemoveDonor(ctx context.Context, t *turn) error {
	id := firstArg(t.ev.Payload)
	if id == "" {
		t.reply(donorUsage())
		return nil
	}
	removed, err := b.ledger.RemoveDonor(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		t.reply(plain(fmt.Sprintf("📭 User %s tidak terdaftar sebagai donatur.", id)))
		return nil
	}
	t.reply(plain(fmt.Sprintf("✅ User %s berhasil dihapus dari daftar donatur.", id)))
	return nil
}

func (b *Bot) handleListDonors(ctx context.Context, t *turn) error {
	donors, err := b.ledger.Donors(ctx)
	if err != nil {
		return err
	}
	t.reply(donorList(donors, b.reports.Location()))
	return nil
}

func (b *Bot) handleStats(ctx context.Context, t *turn) error {
	s, err := b.stats(ctx, t)
	if err != nil {
		return err
	}
	t.reply(statsReply(s))
	return nil
}

func (b *Bot) stats(ctx context.Context, t *turn) (Stats, error) {
	users, err := b.ledger.Users(ctx)
	if err != nil {
		return Stats{}, err
	}
	donors, err := b.ledger.Donors(ctx)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Users: len(users), Donors: len(donors), At: t.now.In(b.reports.Location())}
	for _, u := range users {
		if !u.LastActivity.IsZero() && t.now.Sub(u.LastActivity) <= activeWindow {
			s.ActiveWeek++
		}
		expenses, err := b.ledger.Expenses(ctx, u.ID)
		if err != nil {
			return Stats{}, err
		}
		s.Transactions += len(expenses)
	}
	return s, nil
}

func firstArg(payload string) string {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

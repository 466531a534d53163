package worker

import (
	"context"
	"fmt"

	"moneytrack/internal/amqp"
	"moneytrack/internal/ledger"
	"moneytrack/internal/log"
	"moneytrack/internal/sheets"
)

// Consumer delivers commit events to a handler until ctx ends. *amqp.Client satisfies it.
type Consumer interface {
	ConsumeExpenseCommitted(ctx context.Context, handler func(context.Context, *amqp.ExpenseCommittedMessage) error) error
}

// SyncWorker mirrors committed expenses from the ledger into a spreadsheet tab.
type SyncWorker struct {
	ledger *ledger.Ledger
	sheets sheets.ExpenseWriter
	logger *log.Logger
}

func NewSyncWorker(l *ledger.Ledger, writer sheets.ExpenseWriter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		ledger: l,
		sheets: writer,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes commit events until ctx is done.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Sync worker consuming commit events")
	if err := consumer.ConsumeExpenseCommitted(ctx, w.HandleCommitted); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consume commit events: %w", err)
	}
	return nil
}

// HandleCommitted appends the committed expense to the sheet.
// An expense deleted before it was synced is skipped, not retried.
func (w *SyncWorker) HandleCommitted(ctx context.Context, msg *amqp.ExpenseCommittedMessage) error {
	w.logger.InfoContext(ctx, "Processing commit event",
		log.FieldUserID, msg.UserID,
		log.FieldExpenseID, msg.ExpenseID)

	e, found, err := w.ledger.Expense(ctx, msg.UserID, msg.ExpenseID)
	if err != nil {
		return fmt.Errorf("get expense from ledger: %w", err)
	}
	if !found {
		w.logger.WarnContext(ctx, "Expense no longer in ledger, skipping sync",
			log.FieldUserID, msg.UserID,
			log.FieldExpenseID, msg.ExpenseID)
		return nil
	}

	ref, err := w.sheets.Append(ctx, e)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	w.logger.InfoContext(ctx, "Synced expense to sheet",
		log.FieldExpenseID, e.ID,
		log.FieldSheetsRef, ref)
	return nil
}

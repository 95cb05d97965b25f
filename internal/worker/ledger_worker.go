package worker

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/ports"
	"expensetracker/internal/sheets"
)

// LedgerWorker mirrors a user's ledger to the exporter whenever one of
// their expenses changes. Every export is a full rewrite, so replays and
// out-of-order events converge to the same sheet.
type LedgerWorker struct {
	accounts ports.AccountStore
	expenses ports.ExpenseStore
	exporter sheets.LedgerExporter
	logger   *applog.Logger
}

func NewLedgerWorker(accounts ports.AccountStore, expenses ports.ExpenseStore, exporter sheets.LedgerExporter, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerWorker{
		accounts: accounts,
		expenses: expenses,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent is the amqp consumer callback. A returned error requeues the
// event.
func (w *LedgerWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	w.logger.DebugContext(ctx, "Handling expense event",
		applog.FieldEventType, event.Type,
		applog.FieldUserID, event.UserID,
		applog.FieldExpenseID, event.ExpenseID)
	return w.ExportUser(ctx, event.UserID)
}

// ExportUser reloads and exports one user's ledger. A user that no longer
// exists is skipped.
func (w *LedgerWorker) ExportUser(ctx context.Context, userID int64) error {
	user, err := w.accounts.UserByID(ctx, userID)
	if errors.Is(err, core.ErrUserNotFound) {
		w.logger.InfoContext(ctx, "Skipping export for deleted user", applog.FieldUserID, userID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	items, err := w.expenses.ListExpenses(ctx, userID)
	if err != nil {
		return fmt.Errorf("list expenses for user %d: %w", userID, err)
	}

	if err := w.exporter.ExportLedger(ctx, user, items); err != nil {
		w.logger.ErrorContext(ctx, "Ledger export failed",
			applog.FieldUserID, userID,
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		return fmt.Errorf("export ledger for user %d: %w", userID, err)
	}

	w.logger.InfoContext(ctx, "Ledger exported",
		applog.FieldUserID, userID,
		applog.FieldRowCount, len(items))
	return nil
}

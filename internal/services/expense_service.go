package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/ports"
)

// EventPublisher announces ledger changes; *amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error
}

// ExpenseInput is a validated-on-write expense payload.
type ExpenseInput struct {
	Date        core.Date
	Category    core.Category
	Amount      core.Money
	Description string
}

func (in ExpenseInput) expense(userID, id int64) core.Expense {
	return core.Expense{
		ID:          id,
		UserID:      userID,
		Date:        in.Date,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
	}
}

// ExpenseService orchestrates expense writes, aggregates and change events.
// A nil publisher disables events.
type ExpenseService struct {
	store     ports.ExpenseStore
	publisher EventPublisher
	logger    *applog.Logger
	log       *applog.StructuredLogger
}

func NewExpenseService(store ports.ExpenseStore, publisher EventPublisher, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentExpense)
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		log:       applog.NewStructuredLogger(logger),
	}
}

func (s *ExpenseService) Add(ctx context.Context, userID int64, in ExpenseInput) (int64, error) {
	e := in.expense(userID, 0)
	if err := e.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("add expense: %w", err)
	}
	s.log.LogExpenseChanged(ctx, applog.OpCreate, userID, id, e.Date.String(), string(e.Category), e.Amount.Cents)
	s.publish(ctx, amqp.ExpenseCreated, userID, id)
	return id, nil
}

func (s *ExpenseService) List(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

func (s *ExpenseService) ListByCategory(ctx context.Context, userID int64, c core.Category) ([]core.Expense, error) {
	if !c.Valid() {
		return nil, core.ErrInvalidCategory
	}
	return s.store.ListExpensesByCategory(ctx, userID, c)
}

func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, userID, id)
}

// Update overwrites the expense. It fails with core.ErrExpenseNotFound when
// id does not belong to userID.
func (s *ExpenseService) Update(ctx context.Context, userID, id int64, in ExpenseInput) error {
	e := in.expense(userID, id)
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, userID, e); err != nil {
		return fmt.Errorf("update expense %d: %w", id, err)
	}
	s.log.LogExpenseChanged(ctx, applog.OpUpdate, userID, id, e.Date.String(), string(e.Category), e.Amount.Cents)
	s.publish(ctx, amqp.ExpenseUpdated, userID, id)
	return nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Expense deleted", applog.FieldUserID, userID, applog.FieldExpenseID, id)
	s.publish(ctx, amqp.ExpenseDeleted, userID, id)
	return nil
}

func (s *ExpenseService) TotalForMonth(ctx context.Context, userID int64, month int) (core.Money, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Money{}, err
	}
	return s.store.TotalForMonth(ctx, userID, month)
}

func (s *ExpenseService) TotalForMonthOfYear(ctx context.Context, userID int64, year, month int) (core.Money, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Money{}, err
	}
	return s.store.TotalForMonthOfYear(ctx, userID, year, month)
}

func (s *ExpenseService) TotalForYear(ctx context.Context, userID int64, year int) (core.Money, error) {
	return s.store.TotalForYear(ctx, userID, year)
}

func (s *ExpenseService) CategorySummary(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	return s.store.CategorySummary(ctx, userID)
}

func (s *ExpenseService) MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error) {
	return s.store.MonthlySummary(ctx, userID)
}

func (s *ExpenseService) YearlySummary(ctx context.Context, userID int64) ([]core.YearTotal, error) {
	return s.store.YearlySummary(ctx, userID)
}

// Dashboard loads the three summaries concurrently.
func (s *ExpenseService) Dashboard(ctx context.Context, userID int64) (core.Dashboard, error) {
	var d core.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.ByCategory, err = s.store.CategorySummary(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.ByMonth, err = s.store.MonthlySummary(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.ByYear, err = s.store.YearlySummary(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return d, nil
}

// publish never fails the write; the ledger export catches up on the next
// event for the same user.
func (s *ExpenseService) publish(ctx context.Context, t amqp.EventType, userID, expenseID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(t, userID, expenseID)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			applog.FieldEventType, t,
			applog.FieldUserID, userID,
			applog.FieldExpenseID, expenseID,
			applog.FieldError, err)
	}
}

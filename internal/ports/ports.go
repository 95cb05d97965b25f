package ports

import (
	"context"

	"expensetracker/internal/core"
)

// Ports implemented by the storage backends.
type (
	// AccountStore persists users keyed by email.
	AccountStore interface {
		// CreateUser inserts u and returns it with its assigned ID.
		// Returns core.ErrDuplicateEmail when the email is taken.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		// UserByEmail returns core.ErrUserNotFound when no row matches.
		UserByEmail(ctx context.Context, email string) (core.User, error)
		UserByID(ctx context.Context, id int64) (core.User, error)
		UpdatePassword(ctx context.Context, id int64, passwordHash string) error
		// DeleteUser removes the user and every expense it owns.
		DeleteUser(ctx context.Context, id int64) error
	}

	// ExpenseStore persists expenses. Every method is scoped to an owner;
	// rows of other users behave as if they did not exist.
	ExpenseStore interface {
		AddExpense(ctx context.Context, e core.Expense) (int64, error)
		ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
		ListExpensesByCategory(ctx context.Context, userID int64, c core.Category) ([]core.Expense, error)
		GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
		// UpdateExpense overwrites date, category, amount and description.
		// Returns core.ErrExpenseNotFound when (userID, e.ID) matches no row.
		UpdateExpense(ctx context.Context, userID int64, e core.Expense) error
		DeleteExpense(ctx context.Context, userID, id int64) error

		ExpenseAggregator
	}

	// ExpenseAggregator computes read-side aggregates on demand.
	ExpenseAggregator interface {
		// TotalForMonth sums a calendar month across all years.
		TotalForMonth(ctx context.Context, userID int64, month int) (core.Money, error)
		TotalForMonthOfYear(ctx context.Context, userID int64, year, month int) (core.Money, error)
		TotalForYear(ctx context.Context, userID int64, year int) (core.Money, error)
		CategorySummary(ctx context.Context, userID int64) ([]core.CategoryTotal, error)
		MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error)
		YearlySummary(ctx context.Context, userID int64) ([]core.YearTotal, error)
	}

	// Pinger reports backend readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

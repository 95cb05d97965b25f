package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
)

const selectExpenseSQL = `SELECT id, user_id, date, category, amount_cents, description FROM expenses`

// AddExpense implements ports.ExpenseStore
func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, date, category, amount_cents, description) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Date.String(), string(e.Category), e.Amount.Cents, e.Description)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"user_id", e.UserID,
		"date", e.Date.String(),
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return id, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return r.queryExpenses(ctx, selectExpenseSQL+` WHERE user_id = ? ORDER BY id`, userID)
}

func (r *SQLiteRepository) ListExpensesByCategory(ctx context.Context, userID int64, c core.Category) ([]core.Expense, error) {
	return r.queryExpenses(ctx, selectExpenseSQL+` WHERE user_id = ? AND category = ? ORDER BY id`, userID, string(c))
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	items, err := r.queryExpenses(ctx, selectExpenseSQL+` WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return core.Expense{}, err
	}
	if len(items) == 0 {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	return items[0], nil
}

// UpdateExpense overwrites every mutable field of a row owned by userID.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID int64, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET date = ?, category = ?, amount_cents = ?, description = ? WHERE id = ? AND user_id = ?`,
		e.Date.String(), string(e.Category), e.Amount.Cents, e.Description, e.ID, userID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res, core.ErrExpenseNotFound)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := requireAffected(res, core.ErrExpenseNotFound); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e        core.Expense
			date     string
			category string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &date, &category, &e.Amount.Cents, &e.Description); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %d has malformed date %q: %w", e.ID, date, err)
		}
		e.Category = core.Category(category)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteRepository) sum(ctx context.Context, query string, args ...any) (core.Money, error) {
	var cents sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&cents)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents.Int64}, nil
}

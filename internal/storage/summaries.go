package storage

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
)

// TotalForMonth sums every expense of userID whose date falls in month,
// across all years.
func (r *SQLiteRepository) TotalForMonth(ctx context.Context, userID int64, month int) (core.Money, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Money{}, err
	}
	return r.sum(ctx,
		`SELECT SUM(amount_cents) FROM expenses WHERE user_id = ? AND CAST(strftime('%m', date) AS INTEGER) = ?`,
		userID, month)
}

func (r *SQLiteRepository) TotalForMonthOfYear(ctx context.Context, userID int64, year, month int) (core.Money, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Money{}, err
	}
	return r.sum(ctx,
		`SELECT SUM(amount_cents) FROM expenses WHERE user_id = ? AND strftime('%Y-%m', date) = ?`,
		userID, fmt.Sprintf("%04d-%02d", year, month))
}

func (r *SQLiteRepository) TotalForYear(ctx context.Context, userID int64, year int) (core.Money, error) {
	return r.sum(ctx,
		`SELECT SUM(amount_cents) FROM expenses WHERE user_id = ? AND strftime('%Y', date) = ?`,
		userID, fmt.Sprintf("%04d", year))
}

// CategorySummary returns one row per category present, in category order.
func (r *SQLiteRepository) CategorySummary(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) FROM expenses WHERE user_id = ? GROUP BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("query category summary: %w", err)
	}
	defer rows.Close()

	out := []core.CategoryTotal{}
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		out = append(out, core.CategoryTotal{Category: core.Category(category), Total: core.Money{Cents: cents}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category summary: %w", err)
	}
	core.SortCategoryTotals(out)
	return out, nil
}

// MonthlySummary returns one row per (year, month) with data, oldest first.
func (r *SQLiteRepository) MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', date) AS INTEGER) AS y,
		       CAST(strftime('%m', date) AS INTEGER) AS m,
		       SUM(amount_cents)
		FROM expenses
		WHERE user_id = ?
		GROUP BY y, m
		ORDER BY y, m`, userID)
	if err != nil {
		return nil, fmt.Errorf("query monthly summary: %w", err)
	}
	defer rows.Close()

	out := []core.MonthTotal{}
	for rows.Next() {
		var (
			mt    core.MonthTotal
			cents int64
		)
		if err := rows.Scan(&mt.Label.Year, &mt.Label.Month, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		mt.Total = core.Money{Cents: cents}
		out = append(out, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly summary: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) YearlySummary(ctx context.Context, userID int64) ([]core.YearTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', date) AS INTEGER) AS y, SUM(amount_cents)
		FROM expenses
		WHERE user_id = ?
		GROUP BY y
		ORDER BY y`, userID)
	if err != nil {
		return nil, fmt.Errorf("query yearly summary: %w", err)
	}
	defer rows.Close()

	out := []core.YearTotal{}
	for rows.Next() {
		var (
			yt    core.YearTotal
			cents int64
		)
		if err := rows.Scan(&yt.Year, &cents); err != nil {
			return nil, fmt.Errorf("scan yearly summary: %w", err)
		}
		yt.Total = core.Money{Cents: cents}
		out = append(out, yt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate yearly summary: %w", err)
	}
	return out, nil
}

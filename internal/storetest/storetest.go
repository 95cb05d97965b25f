// Package storetest holds the behaviour every storage backend must share.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/ports"
)

// Store is the union of ports a backend provides.
type Store interface {
	ports.AccountStore
	ports.ExpenseStore
}

// Run executes the contract suite; newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("duplicate email", func(t *testing.T) { testDuplicateEmail(t, newStore(t)) })
	t.Run("delete user cascades", func(t *testing.T) { testDeleteUser(t, newStore(t)) })
	t.Run("expense lifecycle", func(t *testing.T) { testExpenseLifecycle(t, newStore(t)) })
	t.Run("ownership", func(t *testing.T) { testOwnership(t, newStore(t)) })
	t.Run("reference scenario", func(t *testing.T) { testScenario(t, newStore(t)) })
	t.Run("aggregates across years", func(t *testing.T) { testAggregatesAcrossYears(t, newStore(t)) })
}

func mustUser(t *testing.T, s Store, email string) core.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), core.User{
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "hash",
		Gender:       core.Other,
		SecretHash:   "secret",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustAdd(t *testing.T, s Store, userID int64, date string, c core.Category, cents int64) int64 {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date %s: %v", date, err)
	}
	id, err := s.AddExpense(context.Background(), core.Expense{
		UserID:      userID,
		Date:        d,
		Category:    c,
		Amount:      core.Money{Cents: cents},
		Description: "test",
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	return id
}

func ids(items []core.Expense) []int64 {
	out := make([]int64, len(items))
	for i, e := range items {
		out[i] = e.ID
	}
	return out
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s, "a@example.com")
	if u.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := s.UserByEmail(ctx, "a@example.com")
	if err != nil || got.ID != u.ID || got.Gender != core.Other || got.Name != u.Name {
		t.Fatalf("UserByEmail = %+v, %v", got, err)
	}
	if _, err := s.UserByEmail(ctx, "missing@example.com"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.UserByID(ctx, u.ID+100); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := s.UpdatePassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, _ = s.UserByID(ctx, u.ID)
	if got.PasswordHash != "new-hash" {
		t.Fatalf("password not updated: %q", got.PasswordHash)
	}
	if err := s.UpdatePassword(ctx, u.ID+100, "x"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func testDuplicateEmail(t *testing.T, s Store) {
	ctx := context.Background()
	mustUser(t, s, "dup@example.com")
	_, err := s.CreateUser(ctx, core.User{Name: "x", Email: "dup@example.com", PasswordHash: "other", Gender: core.Male, SecretHash: "s"})
	if !errors.Is(err, core.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	got, _ := s.UserByEmail(ctx, "dup@example.com")
	if got.PasswordHash != "hash" {
		t.Fatalf("original password changed to %q", got.PasswordHash)
	}
}

func testDeleteUser(t *testing.T, s Store) {
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com")
	b := mustUser(t, s, "b@example.com")
	mustAdd(t, s, a.ID, "2024-01-01", core.Food, 100)
	keep := mustAdd(t, s, b.ID, "2024-01-01", core.Food, 100)

	if err := s.DeleteUser(ctx, a.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.UserByID(ctx, a.ID); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	if items, _ := s.ListExpenses(ctx, a.ID); len(items) != 0 {
		t.Fatalf("expenses of deleted user survived: %v", ids(items))
	}
	if items, _ := s.ListExpenses(ctx, b.ID); len(items) != 1 || items[0].ID != keep {
		t.Fatalf("other user's expenses affected: %v", ids(items))
	}
	if err := s.DeleteUser(ctx, a.ID); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("second delete expected ErrUserNotFound, got %v", err)
	}
}

func testExpenseLifecycle(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s, "a@example.com")
	first := mustAdd(t, s, u.ID, "2024-03-01", core.Food, 250)
	second := mustAdd(t, s, u.ID, "2024-03-02", core.Transport, 400)
	third := mustAdd(t, s, u.ID, "2024-03-03", core.Food, 50)

	items, err := s.ListExpenses(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if got := ids(items); len(got) != 3 || got[0] != first || got[1] != second || got[2] != third {
		t.Fatalf("unexpected list order %v", got)
	}

	food, _ := s.ListExpensesByCategory(ctx, u.ID, core.Food)
	if got := ids(food); len(got) != 2 || got[0] != first || got[1] != third {
		t.Fatalf("unexpected food list %v", got)
	}
	if bills, _ := s.ListExpensesByCategory(ctx, u.ID, core.Bills); len(bills) != 0 {
		t.Fatalf("expected no bills, got %v", ids(bills))
	}

	updated := core.Expense{
		ID:          second,
		Date:        core.NewDate(2024, 4, 5),
		Category:    core.Bills,
		Amount:      core.Money{Cents: 999},
		Description: "electricity",
	}
	if err := s.UpdateExpense(ctx, u.ID, updated); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	got, err := s.GetExpense(ctx, u.ID, second)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Date.String() != "2024-04-05" || got.Category != core.Bills || got.Amount.Cents != 999 || got.Description != "electricity" || got.UserID != u.ID {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.DeleteExpense(ctx, u.ID, first); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if err := s.DeleteExpense(ctx, u.ID, first); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("deleting twice expected ErrExpenseNotFound, got %v", err)
	}
	if err := s.DeleteExpense(ctx, u.ID, third+1000); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("deleting unknown id expected ErrExpenseNotFound, got %v", err)
	}
	items, _ = s.ListExpenses(ctx, u.ID)
	if got := ids(items); len(got) != 2 || got[0] != second || got[1] != third {
		t.Fatalf("unexpected survivors %v", got)
	}
	if _, err := s.GetExpense(ctx, u.ID, first); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("deleted expense still readable: %v", err)
	}
}

func testOwnership(t *testing.T, s Store) {
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com")
	b := mustUser(t, s, "b@example.com")
	id := mustAdd(t, s, a.ID, "2024-01-10", core.Food, 1000)

	if _, err := s.GetExpense(ctx, b.ID, id); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("foreign read expected ErrExpenseNotFound, got %v", err)
	}
	err := s.UpdateExpense(ctx, b.ID, core.Expense{ID: id, Date: core.NewDate(2020, 1, 1), Category: core.Others, Amount: core.Money{Cents: 1}})
	if !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("foreign update expected ErrExpenseNotFound, got %v", err)
	}
	if err := s.DeleteExpense(ctx, b.ID, id); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("foreign delete expected ErrExpenseNotFound, got %v", err)
	}
	got, err := s.GetExpense(ctx, a.ID, id)
	if err != nil || got.Amount.Cents != 1000 || got.Category != core.Food {
		t.Fatalf("owner's row changed: %+v, %v", got, err)
	}
	if items, _ := s.ListExpenses(ctx, b.ID); len(items) != 0 {
		t.Fatalf("b sees a's expenses: %v", ids(items))
	}
}

func testScenario(t *testing.T, s Store) {
	ctx := context.Background()
	a := mustUser(t, s, "a@example.com")
	other := mustUser(t, s, "b@example.com")
	mustAdd(t, s, a.ID, "2024-01-10", core.Food, 100000)
	mustAdd(t, s, a.ID, "2024-01-20", core.Food, 50000)
	mustAdd(t, s, a.ID, "2024-02-01", core.Bills, 200000)
	mustAdd(t, s, other.ID, "2024-01-15", core.Food, 777)

	jan, err := s.TotalForMonth(ctx, a.ID, 1)
	if err != nil || jan.Cents != 150000 {
		t.Fatalf("TotalForMonth(1) = %d, %v", jan.Cents, err)
	}
	if none, _ := s.TotalForMonth(ctx, a.ID, 3); none.Cents != 0 {
		t.Fatalf("TotalForMonth(3) = %d", none.Cents)
	}
	if _, err := s.TotalForMonth(ctx, a.ID, 13); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}

	cats, err := s.CategorySummary(ctx, a.ID)
	if err != nil {
		t.Fatalf("CategorySummary: %v", err)
	}
	if len(cats) != 2 || cats[0].Category != core.Food || cats[0].Total.Cents != 150000 ||
		cats[1].Category != core.Bills || cats[1].Total.Cents != 200000 {
		t.Fatalf("unexpected category summary %+v", cats)
	}

	months, err := s.MonthlySummary(ctx, a.ID)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if len(months) != 2 ||
		months[0].Label.String() != "Jan-2024" || months[0].Total.Cents != 150000 ||
		months[1].Label.String() != "Feb-2024" || months[1].Total.Cents != 200000 {
		t.Fatalf("unexpected monthly summary %+v", months)
	}

	// Repeated reads without writes are stable.
	again, _ := s.TotalForMonth(ctx, a.ID, 1)
	if again != jan {
		t.Fatalf("non-deterministic total: %v vs %v", again, jan)
	}
}

func testAggregatesAcrossYears(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s, "a@example.com")
	mustAdd(t, s, u.ID, "2023-05-01", core.Food, 100)
	mustAdd(t, s, u.ID, "2024-05-31", core.Transport, 200)
	mustAdd(t, s, u.ID, "2024-06-01", core.Others, 400)
	mustAdd(t, s, u.ID, "2022-12-31", core.Bills, 800)

	may, _ := s.TotalForMonth(ctx, u.ID, 5)
	if may.Cents != 300 {
		t.Fatalf("May across years = %d, want 300", may.Cents)
	}
	may24, _ := s.TotalForMonthOfYear(ctx, u.ID, 2024, 5)
	if may24.Cents != 200 {
		t.Fatalf("May 2024 = %d, want 200", may24.Cents)
	}
	y24, _ := s.TotalForYear(ctx, u.ID, 2024)
	if y24.Cents != 600 {
		t.Fatalf("2024 = %d, want 600", y24.Cents)
	}
	if y21, _ := s.TotalForYear(ctx, u.ID, 2021); y21.Cents != 0 {
		t.Fatalf("2021 = %d, want 0", y21.Cents)
	}

	years, err := s.YearlySummary(ctx, u.ID)
	if err != nil {
		t.Fatalf("YearlySummary: %v", err)
	}
	if len(years) != 3 || years[0].Year != 2022 || years[2].Year != 2024 || years[2].Total.Cents != 600 {
		t.Fatalf("unexpected yearly summary %+v", years)
	}

	cats, _ := s.CategorySummary(ctx, u.ID)
	if core.SumCategories(cats) != core.SumYears(years) {
		t.Fatalf("category sum %d != yearly sum %d", core.SumCategories(cats).Cents, core.SumYears(years).Cents)
	}

	months, _ := s.MonthlySummary(ctx, u.ID)
	for i := 1; i < len(months); i++ {
		if !months[i-1].Label.Before(months[i].Label) {
			t.Fatalf("monthly summary not chronological: %+v", months)
		}
	}
	if len(months) != 4 || months[0].Label.String() != "Dec-2022" {
		t.Fatalf("unexpected monthly summary %+v", months)
	}
}

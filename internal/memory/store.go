// Package memory is a process-local backend implementing the account and
// expense ports. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/ports"
)

type Store struct {
	mu          sync.Mutex
	users       []core.User
	expenses    []core.Expense
	nextUserID  int64
	nextExpense int64
}

var (
	_ ports.AccountStore = (*Store)(nil)
	_ ports.ExpenseStore = (*Store)(nil)
	_ ports.Pinger       = (*Store)(nil)
)

func New() *Store {
	return &Store{nextUserID: 1, nextExpense: 1}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.User{}, core.ErrDuplicateEmail
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (s *Store) UserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.userIndex(id); i >= 0 {
		return s.users[i], nil
	}
	return core.User{}, core.ErrUserNotFound
}

func (s *Store) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return core.ErrUserNotFound
	}
	s.users[i].PasswordHash = passwordHash
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return core.ErrUserNotFound
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	kept := s.expenses[:0]
	for _, e := range s.expenses {
		if e.UserID != id {
			kept = append(kept, e)
		}
	}
	s.expenses = kept
	return nil
}

func (s *Store) userIndex(id int64) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userIndex(e.UserID) < 0 {
		return 0, core.ErrUserNotFound
	}
	e.ID = s.nextExpense
	s.nextExpense++
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) ListExpenses(_ context.Context, userID int64) ([]core.Expense, error) {
	return s.filter(func(e core.Expense) bool { return e.UserID == userID }), nil
}

func (s *Store) ListExpensesByCategory(_ context.Context, userID int64, c core.Category) ([]core.Expense, error) {
	return s.filter(func(e core.Expense) bool { return e.UserID == userID && e.Category == c }), nil
}

func (s *Store) GetExpense(_ context.Context, userID, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.expenseIndex(userID, id); i >= 0 {
		return s.expenses[i], nil
	}
	return core.Expense{}, core.ErrExpenseNotFound
}

func (s *Store) UpdateExpense(_ context.Context, userID int64, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(userID, e.ID)
	if i < 0 {
		return core.ErrExpenseNotFound
	}
	cur := &s.expenses[i]
	cur.Date = e.Date
	cur.Category = e.Category
	cur.Amount = e.Amount
	cur.Description = e.Description
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.expenseIndex(userID, id)
	if i < 0 {
		return core.ErrExpenseNotFound
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

func (s *Store) expenseIndex(userID, id int64) int {
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			return i
		}
	}
	return -1
}

// filter returns a copy of the matching expenses in insertion order.
func (s *Store) filter(keep func(core.Expense) bool) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Expense{}
	for _, e := range s.expenses {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) total(keep func(core.Expense) bool) core.Money {
	var m core.Money
	for _, e := range s.filter(keep) {
		m = m.Add(e.Amount)
	}
	return m
}

func (s *Store) TotalForMonth(_ context.Context, userID int64, month int) (core.Money, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Money{}, err
	}
	return s.total(func(e core.Expense) bool {
		return e.UserID == userID && e.Date.Month() == month
	}), nil
}

func (s *Store) TotalForMonthOfYear(_ context.Context, userID int64, year, month int) (core.Money, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Money{}, err
	}
	return s.total(func(e core.Expense) bool {
		return e.UserID == userID && e.Date.Year() == year && e.Date.Month() == month
	}), nil
}

func (s *Store) TotalForYear(_ context.Context, userID int64, year int) (core.Money, error) {
	return s.total(func(e core.Expense) bool {
		return e.UserID == userID && e.Date.Year() == year
	}), nil
}

func (s *Store) CategorySummary(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	items, _ := s.ListExpenses(ctx, userID)
	sums := map[core.Category]core.Money{}
	for _, e := range items {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	out := make([]core.CategoryTotal, 0, len(sums))
	for c, m := range sums {
		out = append(out, core.CategoryTotal{Category: c, Total: m})
	}
	core.SortCategoryTotals(out)
	return out, nil
}

func (s *Store) MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error) {
	items, _ := s.ListExpenses(ctx, userID)
	sums := map[core.MonthLabel]core.Money{}
	for _, e := range items {
		l := core.MonthLabel{Year: e.Date.Year(), Month: e.Date.Month()}
		sums[l] = sums[l].Add(e.Amount)
	}
	out := make([]core.MonthTotal, 0, len(sums))
	for l, m := range sums {
		out = append(out, core.MonthTotal{Label: l, Total: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label.Before(out[j].Label) })
	return out, nil
}

func (s *Store) YearlySummary(ctx context.Context, userID int64) ([]core.YearTotal, error) {
	items, _ := s.ListExpenses(ctx, userID)
	sums := map[int]core.Money{}
	for _, e := range items {
		sums[e.Date.Year()] = sums[e.Date.Year()].Add(e.Amount)
	}
	out := make([]core.YearTotal, 0, len(sums))
	for y, m := range sums {
		out = append(out, core.YearTotal{Year: y, Total: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
)

const (
	insertUserSQL = `INSERT INTO users (name, email, password, gender, secret) VALUES (?, ?, ?, ?, ?)`
	selectUserSQL = `SELECT id, name, email, password, gender, secret FROM users`
)

// CreateUser implements ports.AccountStore. Uniqueness is left to the
// UNIQUE constraint so concurrent registrations cannot both succeed.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.Email, u.PasswordHash, string(u.Gender), u.SecretHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	u.ID = id

	slog.InfoContext(ctx, "User saved to SQLite", "user_id", id)
	return u, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserSQL+` WHERE email = ?`, email))
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserSQL+` WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var (
		u      core.User
		gender string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &gender, &u.SecretHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Gender = core.Gender(gender)
	return u, nil
}

func (r *SQLiteRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res, core.ErrUserNotFound)
}

// DeleteUser removes the user and its expenses in one transaction.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete user expenses: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := requireAffected(res, core.ErrUserNotFound); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}

	slog.InfoContext(ctx, "User deleted from SQLite", "user_id", id)
	return nil
}

// requireAffected maps a zero-row result to notFound.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

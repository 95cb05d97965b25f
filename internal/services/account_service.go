package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/ports"
)

// RegisterInput carries the raw registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Gender   string
	Secret   string
}

// AccountService handles registration, login, password reset and account
// deletion. Password and secret word are stored as bcrypt hashes.
type AccountService struct {
	store ports.AccountStore
	cost  int
	log   *applog.StructuredLogger
}

func NewAccountService(store ports.AccountStore, logger *applog.Logger) *AccountService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &AccountService{
		store: store,
		cost:  bcrypt.DefaultCost,
		log:   applog.NewStructuredLogger(logger.WithComponent(applog.ComponentAccount)),
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AccountService) WithHashCost(cost int) *AccountService {
	s.cost = cost
	return s
}

func (s *AccountService) hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return string(h), nil
}

func matches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Register validates the form in the order the user sees messages
// (password, then email) and creates the account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	if err := core.ValidatePassword(in.Password); err != nil {
		return core.User{}, err
	}
	email := strings.TrimSpace(in.Email)
	if err := core.ValidateEmail(email); err != nil {
		return core.User{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.User{}, core.ErrEmptyName
	}
	gender, err := core.ParseGender(in.Gender)
	if err != nil {
		return core.User{}, err
	}
	if err := core.ValidateSecret(in.Secret); err != nil {
		return core.User{}, err
	}

	pw, err := s.hash(in.Password)
	if err != nil {
		return core.User{}, err
	}
	secret, err := s.hash(in.Secret)
	if err != nil {
		return core.User{}, err
	}

	u, err := s.store.CreateUser(ctx, core.User{
		Name:         name,
		Email:        email,
		PasswordHash: pw,
		Gender:       gender,
		SecretHash:   secret,
	})
	if err != nil {
		s.log.LogAuth(ctx, applog.OpRegister, 0, err)
		return core.User{}, err
	}
	s.log.LogAuth(ctx, applog.OpRegister, u.ID, nil)
	return u, nil
}

// Authenticate returns core.ErrInvalidCredentials for an unknown email and
// for a wrong password alike.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	u, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrUserNotFound) {
		s.log.LogAuth(ctx, applog.OpLogin, 0, core.ErrInvalidCredentials)
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("authenticate: %w", err)
	}
	if !matches(u.PasswordHash, password) {
		s.log.LogAuth(ctx, applog.OpLogin, u.ID, core.ErrInvalidCredentials)
		return core.User{}, core.ErrInvalidCredentials
	}
	s.log.LogAuth(ctx, applog.OpLogin, u.ID, nil)
	return u, nil
}

// ResetPassword replaces the password when email and secret word match.
func (s *AccountService) ResetPassword(ctx context.Context, email, secret, newPassword string) error {
	if err := core.ValidatePassword(newPassword); err != nil {
		return err
	}
	u, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrUserNotFound) {
		s.log.LogAuth(ctx, applog.OpReset, 0, core.ErrResetFailed)
		return core.ErrResetFailed
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if !matches(u.SecretHash, secret) {
		s.log.LogAuth(ctx, applog.OpReset, u.ID, core.ErrResetFailed)
		return core.ErrResetFailed
	}

	pw, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, u.ID, pw); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	s.log.LogAuth(ctx, applog.OpReset, u.ID, nil)
	return nil
}

// DeleteAccount removes the account and its expenses when the secret word
// matches and returns the removed user's id.
func (s *AccountService) DeleteAccount(ctx context.Context, email, secret string) (int64, error) {
	u, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrUserNotFound) {
		return 0, core.ErrDeleteFailed
	}
	if err != nil {
		return 0, fmt.Errorf("delete account: %w", err)
	}
	if !matches(u.SecretHash, secret) {
		s.log.LogAuth(ctx, applog.OpDelete, u.ID, core.ErrDeleteFailed)
		return 0, core.ErrDeleteFailed
	}
	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		return 0, fmt.Errorf("delete account: %w", err)
	}
	s.log.LogAuth(ctx, applog.OpDelete, u.ID, nil)
	return u.ID, nil
}

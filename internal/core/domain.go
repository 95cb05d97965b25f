package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food      Category = "Food"
	Transport Category = "Transport"
	Bills     Category = "Bills"
	Others    Category = "Others"
)

const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

// DateLayout is the calendar date format used in forms, storage and the API.
const DateLayout = "2006-01-02"

type (
	Category string
	Gender   string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is an account. PasswordHash and SecretHash never leave the
	// services/storage layers.
	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		Gender       Gender
		SecretHash   string
	}

	Expense struct {
		ID          int64
		UserID      int64
		Date        Date
		Category    Category
		Amount      Money
		Description string
	}
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrResetFailed        = errors.New("incorrect email or secret word")
	ErrDeleteFailed       = errors.New("incorrect secret word")
	ErrUserNotFound       = errors.New("user not found")
	ErrExpenseNotFound    = errors.New("expense not found")

	ErrInvalidPassword  = errors.New("password must be a 6-digit number")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptySecret      = errors.New("empty secret word")
	ErrSecretTooLong    = errors.New("secret word too long (max 72 bytes)")
	ErrInvalidGender    = errors.New("invalid gender")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrDescriptionLimit = errors.New("description too long (max 200 characters)")
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{Food, Transport, Bills, Others}
}

// ParseCategory matches s exactly against the category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Index returns the position of c in Categories, or -1.
func (c Category) Index() int {
	for i, v := range Categories() {
		if v == c {
			return i
		}
	}
	return -1
}

func (c Category) String() string {
	return string(c)
}

func Genders() []Gender {
	return []Gender{Male, Female, Other}
}

func ParseGender(s string) (Gender, error) {
	g := Gender(strings.TrimSpace(s))
	for _, v := range Genders() {
		if v == g {
			return g, nil
		}
	}
	return "", ErrInvalidGender
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ValidatePassword enforces the 6-digit numeric password format.
func ValidatePassword(p string) error {
	if len(p) != 6 {
		return ErrInvalidPassword
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return ErrInvalidPassword
		}
	}
	return nil
}

// MaxSecretBytes is the longest secret word bcrypt can hash.
const MaxSecretBytes = 72

// ValidateSecret requires a non-empty secret word that bcrypt can hash.
func ValidateSecret(s string) error {
	switch {
	case s == "":
		return ErrEmptySecret
	case len(s) > MaxSecretBytes:
		return ErrSecretTooLong
	}
	return nil
}

// ValidateEmail applies the loose shape check: an "@" and a ".".
func ValidateEmail(e string) error {
	if !strings.Contains(e, "@") || !strings.Contains(e, ".") {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateMonth(m int) error {
	if m < 1 || m > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return ErrDescriptionLimit
	}
	return nil
}

package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expensetracker/internal/core"
)

// firstYear is the earliest year offered by the overview selector.
const firstYear = 2022

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends a 303 to target, or an HX-Redirect for htmx requests.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// withFlash appends a flash code to path.
func withFlash(path string, code flashCode) string {
	return path + "?" + url.Values{"msg": {string(code)}}.Encode()
}

type flashCode string

const (
	flashRegistered     flashCode = "registered"
	flashWelcome        flashCode = "welcome"
	flashPasswordReset  flashCode = "reset"
	flashLoggedOut      flashCode = "logout"
	flashAccountDeleted flashCode = "account-deleted"
	flashLoginFirst     flashCode = "login-first"
	flashAdded          flashCode = "added"
	flashUpdated        flashCode = "updated"
	flashDeleted        flashCode = "deleted"
	flashNotFound       flashCode = "not-found"
)

// flashMessage resolves a ?msg= code. Only known codes render, so the query
// string cannot inject text. warn marks messages shown as errors.
func flashMessage(code string, name string) (msg string, warn bool) {
	switch flashCode(code) {
	case flashRegistered:
		return "Registration successful. You can now login.", false
	case flashWelcome:
		return "Welcome, " + name + "!", false
	case flashPasswordReset:
		return "Password reset successful. You can now log in with your new password.", false
	case flashLoggedOut:
		return "Logged out successfully.", false
	case flashAccountDeleted:
		return "Account deleted successfully.", false
	case flashLoginFirst:
		return "Please login first.", true
	case flashAdded:
		return "Expense added.", false
	case flashUpdated:
		return "Expense updated.", false
	case flashDeleted:
		return "Expense deleted.", false
	case flashNotFound:
		return "Expense not found.", true
	}
	return "", false
}

// userMessage maps a service error to the text shown to the user and the
// response status.
func userMessage(err error) (string, int) {
	switch {
	case errors.Is(err, core.ErrInvalidPassword):
		return "Password must be a 6-digit number.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidEmail):
		return "Invalid email format.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidCredentials):
		return "Invalid email or password.", http.StatusUnauthorized
	case errors.Is(err, core.ErrResetFailed):
		return "Incorrect email or secret word.", http.StatusUnauthorized
	case errors.Is(err, core.ErrDeleteFailed):
		return "Incorrect secret word.", http.StatusUnauthorized
	case errors.Is(err, core.ErrDuplicateEmail):
		return "Email already registered.", http.StatusConflict
	case errors.Is(err, core.ErrEmptyName):
		return "Name is required.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptySecret):
		return "Secret word is required.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrSecretTooLong):
		return "Secret word must be at most 72 characters.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidGender):
		return "Please choose a gender.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidCategory):
		return "Invalid category.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a non-negative number.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidDate):
		return "Invalid date.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidMonth):
		return "Month must be between 1 and 12.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDescriptionLimit):
		return "Description must be at most 200 characters.", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrExpenseNotFound):
		return "Expense not found.", http.StatusNotFound
	}
	return "Something went wrong. Please try again.", http.StatusInternalServerError
}

type monthOption struct {
	Number int
	Name   string
}

func monthOptions() []monthOption {
	out := make([]monthOption, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, monthOption{Number: int(m), Name: m.String()})
	}
	return out
}

// yearOptions lists firstYear through 2030, extended to the current year.
func yearOptions(now time.Time) []int {
	last := max(2030, now.Year())
	out := make([]int, 0, last-firstYear+1)
	for y := firstYear; y <= last; y++ {
		out = append(out, y)
	}
	return out
}

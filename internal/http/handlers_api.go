package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

type apiError struct {
	Error string `json:"error"`
}

type apiExpense struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Category    core.Category   `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func toAPIExpense(e core.Expense) apiExpense {
	return apiExpense{
		ID:          e.ID,
		Date:        e.Date.String(),
		Category:    e.Category,
		Amount:      e.Amount.Decimal(),
		Description: e.Description,
	}
}

type apiCategoryTotal struct {
	Category core.Category   `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type apiMonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type apiYearTotal struct {
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

type apiSummary struct {
	Currency   string             `json:"currency"`
	ByCategory []apiCategoryTotal `json:"by_category"`
	ByMonth    []apiMonthTotal    `json:"by_month"`
	ByYear     []apiYearTotal     `json:"by_year"`
	Month      *apiPeriodTotal    `json:"month,omitempty"`
}

type apiPeriodTotal struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// apiFail writes err as JSON, logging unexpected failures.
func (s *Server) apiFail(w http.ResponseWriter, r *http.Request, err error, op string) {
	msg, status := userMessage(err)
	if status == http.StatusInternalServerError {
		s.log.LogError(r.Context(), "API request failed", err, op, sessionUser(currentUser(r)))
	}
	writeJSON(w, status, apiError{Error: msg})
}

func (s *Server) apiListExpenses(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)

	var (
		items []core.Expense
		err   error
	)
	filter := strings.TrimSpace(r.URL.Query().Get("category"))
	if filter == "" || filter == filterAll {
		items, err = s.expenses.List(r.Context(), sess.UserID)
	} else {
		var c core.Category
		if c, err = core.ParseCategory(filter); err == nil {
			items, err = s.expenses.ListByCategory(r.Context(), sess.UserID, c)
		}
	}
	if err != nil {
		s.apiFail(w, r, err, applog.OpList)
		return
	}

	out := make([]apiExpense, 0, len(items))
	for _, e := range items {
		out = append(out, toAPIExpense(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiCreateExpense(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid request body."})
		return
	}
	in, err := ParseExpenseInput(parser.Get)
	if err != nil {
		s.apiFail(w, r, err, applog.OpCreate)
		return
	}
	id, err := s.expenses.Add(r.Context(), sess.UserID, in)
	if err != nil {
		s.apiFail(w, r, err, applog.OpCreate)
		return
	}

	e, err := s.expenses.Get(r.Context(), sess.UserID, id)
	if err != nil {
		s.apiFail(w, r, err, applog.OpRead)
		return
	}
	w.Header().Set("Location", "/api/v1/expenses/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, toAPIExpense(e))
}

func (s *Server) apiUpdateExpense(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)

	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.apiFail(w, r, err, applog.OpUpdate)
		return
	}
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid request body."})
		return
	}
	in, err := ParseExpenseInput(parser.Get)
	if err == nil {
		err = s.expenses.Update(r.Context(), sess.UserID, id, in)
	}
	if err != nil {
		s.apiFail(w, r, err, applog.OpUpdate)
		return
	}

	e, err := s.expenses.Get(r.Context(), sess.UserID, id)
	if err != nil {
		s.apiFail(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, toAPIExpense(e))
}

func (s *Server) apiDeleteExpense(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)

	id, err := ParseID(chi.URLParam(r, "id"))
	if err == nil {
		err = s.expenses.Delete(r.Context(), sess.UserID, id)
	}
	if err != nil {
		s.apiFail(w, r, err, applog.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiSummary returns the dashboard aggregates. With ?month= (and optional
// ?year=) it adds the total for that month of that year.
func (s *Server) apiSummary(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)

	dash, err := s.expenses.Dashboard(r.Context(), sess.UserID)
	if err != nil {
		s.apiFail(w, r, err, applog.OpRead)
		return
	}

	out := apiSummary{
		Currency:   s.currency,
		ByCategory: make([]apiCategoryTotal, 0, len(dash.ByCategory)),
		ByMonth:    make([]apiMonthTotal, 0, len(dash.ByMonth)),
		ByYear:     make([]apiYearTotal, 0, len(dash.ByYear)),
	}
	for _, c := range dash.ByCategory {
		out.ByCategory = append(out.ByCategory, apiCategoryTotal{Category: c.Category, Total: c.Total.Decimal()})
	}
	for _, m := range dash.ByMonth {
		out.ByMonth = append(out.ByMonth, apiMonthTotal{Month: m.Label.String(), Total: m.Total.Decimal()})
	}
	for _, y := range dash.ByYear {
		out.ByYear = append(out.ByYear, apiYearTotal{Year: y.Year, Total: y.Total.Decimal()})
	}

	if r.URL.Query().Has("month") {
		params := ParseMonthParams(r.URL.Query(), s.now())
		total, err := s.expenses.TotalForMonthOfYear(r.Context(), sess.UserID, params.Year, params.Month)
		if err != nil {
			s.apiFail(w, r, err, applog.OpRead)
			return
		}
		out.Month = &apiPeriodTotal{Year: params.Year, Month: params.Month, Total: total.Decimal()}
	}

	writeJSON(w, http.StatusOK, out)
}

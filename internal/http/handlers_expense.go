package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

// filterAll lists every category in the expenses filter.
const filterAll = "All"

type expenseFormData struct {
	ID          int64
	Date        string
	Category    string
	Amount      string
	Description string
	Categories  []core.Category
}

func newExpenseForm(e core.Expense) expenseFormData {
	return expenseFormData{
		ID:          e.ID,
		Date:        e.Date.String(),
		Category:    string(e.Category),
		Amount:      e.Amount.String(),
		Description: e.Description,
		Categories:  core.Categories(),
	}
}

type expensesData struct {
	Filter   string
	Filters  []string
	Expenses []core.Expense
	Actions  []Action
	Months   []monthOption
	Years    []int
	Overview overviewData
}

func categoryFilters() []string {
	out := []string{filterAll}
	for _, c := range core.Categories() {
		out = append(out, string(c))
	}
	return out
}

func (s *Server) handleNewExpense(w http.ResponseWriter, r *http.Request) {
	form := newExpenseForm(core.Expense{Date: core.Date{Time: s.now()}, Category: core.Food})
	form.Amount = ""
	s.render(w, r, http.StatusOK, "expense_form", s.newPage(r, "Add Expense", ViewAddExpense, form))
}

// handleListExpenses renders the expenses page, or only the table for an
// htmx filter change.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)
	filter := strings.TrimSpace(r.URL.Query().Get("category"))
	if filter == "" {
		filter = filterAll
	}

	data := expensesData{
		Filter:  filter,
		Filters: categoryFilters(),
		Actions: Actions(),
		Months:  monthOptions(),
		Years:   yearOptions(s.now()),
	}

	var (
		items []core.Expense
		err   error
	)
	if filter == filterAll {
		items, err = s.expenses.List(r.Context(), sess.UserID)
	} else {
		var c core.Category
		if c, err = core.ParseCategory(filter); err == nil {
			items, err = s.expenses.ListByCategory(r.Context(), sess.UserID, c)
		}
	}

	status := http.StatusOK
	var errMsg string
	if err != nil {
		errMsg, status = userMessage(err)
		if status == http.StatusInternalServerError {
			s.log.LogError(r.Context(), "List expenses failed", err, applog.OpList, sessionUser(sess))
		}
	}
	data.Expenses = items

	if isHTMX(r) && r.Header.Get("HX-Target") == "expense-table" {
		if err != nil {
			ErrorResponse(status, errMsg).Write(w)
			return
		}
		s.renderPartial(w, r, http.StatusOK, "expense_table", data)
		return
	}

	params := ParseMonthParams(r.URL.Query(), s.now())
	data.Overview = s.overview(r, sess.UserID, params)

	p := s.newPage(r, "View Expenses", ViewExpenses, data)
	if errMsg != "" {
		p.Error = errMsg
	}
	s.render(w, r, status, "expenses", p)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := currentUser(r)

	in, err := ParseExpenseInput(r.PostForm.Get)
	var id int64
	if err == nil {
		id, err = s.expenses.Add(r.Context(), sess.UserID, in)
	}
	if err != nil {
		s.rerenderForm(w, r, 0, err, "Add Expense", ViewAddExpense)
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().
			TriggerExpenseCreated(id).
			TriggerFormReset().
			TriggerSuccessNotification("Expense added.").
			Redirect(withFlash(ViewAddExpense.Path(), flashAdded)).
			Write(w)
		return
	}
	redirect(w, r, withFlash(ViewAddExpense.Path(), flashAdded))
}

// handleManageExpense dispatches the manage form's action for the selected
// expense.
func (s *Server) handleManageExpense(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)
	q := r.URL.Query()

	action, err := ParseAction(q.Get("action"))
	if err != nil {
		BadRequestError("Choose Edit or Delete.").Write(w)
		return
	}

	id, err := ParseID(q.Get("id"))
	var e core.Expense
	if err == nil {
		e, err = s.expenses.Get(r.Context(), sess.UserID, id)
	}
	if errors.Is(err, core.ErrExpenseNotFound) {
		redirect(w, r, withFlash(ViewExpenses.Path(), flashNotFound))
		return
	}
	if err != nil {
		s.internalError(w, r, "Load expense failed", err, applog.OpRead)
		return
	}

	switch action {
	case ActionEdit:
		s.render(w, r, http.StatusOK, "expense_form", s.newPage(r, "Edit Expense", ViewExpenses, newExpenseForm(e)))
	case ActionDelete:
		s.render(w, r, http.StatusOK, "manage_delete", s.newPage(r, "Delete Expense", ViewExpenses, newExpenseForm(e)))
	}
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := currentUser(r)

	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		NotFoundError("Expense not found.").Write(w)
		return
	}

	in, err := ParseExpenseInput(r.PostForm.Get)
	if err == nil {
		err = s.expenses.Update(r.Context(), sess.UserID, id, in)
	}
	if err != nil {
		if errors.Is(err, core.ErrExpenseNotFound) {
			NotFoundError("Expense not found.").Write(w)
			return
		}
		s.rerenderForm(w, r, id, err, "Edit Expense", ViewExpenses)
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().
			TriggerExpenseUpdated(id).
			Redirect(withFlash(ViewExpenses.Path(), flashUpdated)).
			Write(w)
		return
	}
	redirect(w, r, withFlash(ViewExpenses.Path(), flashUpdated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	sess := currentUser(r)

	id, err := ParseID(chi.URLParam(r, "id"))
	if err == nil {
		err = s.expenses.Delete(r.Context(), sess.UserID, id)
	}
	if err != nil {
		if errors.Is(err, core.ErrExpenseNotFound) {
			NotFoundError("Expense not found.").Write(w)
			return
		}
		s.internalError(w, r, "Delete expense failed", err, applog.OpDelete)
		return
	}

	if isHTMX(r) {
		NewHTMXResponse().
			TriggerExpenseDeleted(id).
			Redirect(withFlash(ViewExpenses.Path(), flashDeleted)).
			Write(w)
		return
	}
	redirect(w, r, withFlash(ViewExpenses.Path(), flashDeleted))
}

// rerenderForm shows the add/edit form again with the submitted values and
// the error message.
func (s *Server) rerenderForm(w http.ResponseWriter, r *http.Request, id int64, err error, title string, view View) {
	msg, status := userMessage(err)
	if status == http.StatusInternalServerError {
		op := applog.OpCreate
		if id != 0 {
			op = applog.OpUpdate
		}
		s.log.LogError(r.Context(), "Save expense failed", err, op, sessionUser(currentUser(r)))
	}

	if isHTMX(r) {
		ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
		return
	}

	form := expenseFormData{
		ID:          id,
		Date:        r.PostForm.Get("date"),
		Category:    r.PostForm.Get("category"),
		Amount:      r.PostForm.Get("amount"),
		Description: r.PostForm.Get("description"),
		Categories:  core.Categories(),
	}
	p := s.newPage(r, title, view, form)
	p.Error = msg
	s.render(w, r, status, "expense_form", p)
}

// compile-time check that the services satisfy the handler interfaces.
var (
	_ AccountService = (*services.AccountService)(nil)
	_ ExpenseService = (*services.ExpenseService)(nil)
)

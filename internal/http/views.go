package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"expensetracker/internal/session"
)

// View is an entry of the logged-in menu.
type View int

const (
	ViewNone View = iota
	ViewAddExpense
	ViewExpenses
	ViewCharts
)

// Views returns the menu in display order.
func Views() []View {
	return []View{ViewAddExpense, ViewExpenses, ViewCharts}
}

func (v View) Label() string {
	switch v {
	case ViewAddExpense:
		return "Add Expense"
	case ViewExpenses:
		return "View Expenses"
	case ViewCharts:
		return "Charts"
	}
	return ""
}

func (v View) Path() string {
	switch v {
	case ViewAddExpense:
		return "/expenses/new"
	case ViewExpenses:
		return "/expenses"
	case ViewCharts:
		return "/charts"
	}
	return "/"
}

// Action is what the manage form does with the selected expense.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

func Actions() []Action {
	return []Action{ActionEdit, ActionDelete}
}

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionEdit, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

func (a Action) Label() string {
	switch a {
	case ActionEdit:
		return "Edit"
	case ActionDelete:
		return "Delete"
	}
	return string(a)
}

// page is the data every full page template receives.
type page struct {
	Title   string
	View    View
	Menu    []View
	Session *session.Session
	Flash   string
	Error   string
	Data    any
}

// renderer holds one template set per page, each sharing the layout and
// partials.
type renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

const (
	layoutFile   = "templates/layout.html"
	partialsFile = "templates/partials.html"
)

func loadTemplates(fsys fs.FS) (*renderer, error) {
	base, err := template.ParseFS(fsys, layoutFile, partialsFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	rd := &renderer{pages: make(map[string]*template.Template), partials: base}
	for _, f := range files {
		if f == layoutFile || f == partialsFile {
			continue
		}
		t, err := template.Must(base.Clone()).ParseFS(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		rd.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return rd, nil
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (rd *renderer) render(w http.ResponseWriter, status int, name string, p page) error {
	t, ok := rd.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	writeHTML(w, status, buf.Bytes())
	return nil
}

func (rd *renderer) partial(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := rd.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render partial %s: %w", name, err)
	}
	writeHTML(w, status, buf.Bytes())
	return nil
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

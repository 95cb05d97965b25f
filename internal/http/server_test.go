package http

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"golang.org/x/crypto/bcrypt"

	applog "expensetracker/internal/log"
	"expensetracker/internal/memory"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	store := memory.New()
	logger := quietLogger()
	sessions := session.NewStore(session.Config{}, logger)
	t.Cleanup(sessions.Stop)

	srv, err := NewServer(Options{
		Accounts:           services.NewAccountService(store, logger).WithHashCost(bcrypt.MinCost),
		Expenses:           services.NewExpenseService(store, nil, logger),
		Sessions:           sessions,
		Health:             store,
		Logger:             logger,
		Currency:           "MMK",
		RateLimitPerMinute: rateLimit,
		Now:                func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(srv.limiter.Stop)
	return srv
}

// browser replays requests against the handler, keeping the session cookie.
type browser struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newBrowser(t *testing.T, srv *Server) *browser {
	return &browser{t: t, h: srv.Handler}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	req.RemoteAddr = "192.0.2.10:5000"
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			if c.MaxAge < 0 {
				b.cookie = nil
			} else {
				b.cookie = c
			}
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return b.do(req)
}

func registration(name, email string) url.Values {
	return url.Values{
		"name":     {name},
		"email":    {email},
		"password": {"123456"},
		"gender":   {"Female"},
		"secret":   {"mango"},
	}
}

// signUp registers and logs in a user.
func signUp(t *testing.T, b *browser, name, email string) {
	t.Helper()
	if rec := b.post("/register", registration(name, email)); rec.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body)
	}
	if rec := b.post("/login", url.Values{"email": {email}, "password": {"123456"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}
	if b.cookie == nil {
		t.Fatal("login did not set a session cookie")
	}
}

func addExpense(t *testing.T, b *browser, date, category, amount, desc string) {
	t.Helper()
	rec := b.post("/expenses", url.Values{
		"date": {date}, "category": {category}, "amount": {amount}, "description": {desc},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("add expense status = %d: %s", rec.Code, rec.Body)
	}
}

func assertContains(t *testing.T, rec *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("body missing %q:\n%s", w, body)
		}
	}
}

func TestHealthAndReady(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := b.get(path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		var body map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if body["status"] != "ok" && body["status"] != "ready" {
			t.Fatalf("%s status field = %v", path, body["status"])
		}
	}
}

func TestReadyWithoutStore(t *testing.T) {
	srv := newTestServer(t, 100)
	srv.health = nil
	if rec := newBrowser(t, srv).get("/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	rec := newBrowser(t, newTestServer(t, 100)).get("/login")
	if rec.Header().Get("Content-Security-Policy") == "" || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing headers: %v", rec.Header())
	}
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))

	for _, path := range []string{"/expenses", "/expenses/new", "/charts", "/ui/overview", "/account/delete"} {
		rec := b.get(path)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login?msg=login-first" {
			t.Errorf("%s: status=%d location=%q", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	rec := b.get("/login?msg=login-first")
	assertContains(t, rec, "Please login first.")

	if rec := b.get("/api/v1/expenses"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("api status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/charts", nil)
	req.Header.Set("HX-Request", "true")
	if rec := b.do(req); rec.Header().Get("HX-Redirect") == "" {
		t.Fatal("htmx request should get HX-Redirect")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))

	tests := []struct {
		name   string
		form   url.Values
		status int
		want   string
	}{
		{"short password", func() url.Values { f := registration("Alice", "a@example.com"); f.Set("password", "12345"); return f }(), http.StatusUnprocessableEntity, "Password must be a 6-digit number."},
		{"letters in password", func() url.Values { f := registration("Alice", "a@example.com"); f.Set("password", "12a456"); return f }(), http.StatusUnprocessableEntity, "Password must be a 6-digit number."},
		{"bad email", registration("Alice", "alice-at-example"), http.StatusUnprocessableEntity, "Invalid email format."},
		{"no name", registration("", "a@example.com"), http.StatusUnprocessableEntity, "Name is required."},
		{"long secret", func() url.Values { f := registration("Alice", "a@example.com"); f.Set("secret", strings.Repeat("s", 73)); return f }(), http.StatusUnprocessableEntity, "Secret word must be at most 72 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.post("/register", tt.form)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			assertContains(t, rec, tt.want)
		})
	}

	rec := b.post("/register", registration("Alice", "a@example.com"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login?msg=registered" {
		t.Fatalf("register: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	assertContains(t, b.get("/login?msg=registered"), "Registration successful. You can now login.")

	rec = b.post("/register", registration("Alice Again", "a@example.com"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	assertContains(t, rec, "Email already registered.")

	for _, creds := range []url.Values{
		{"email": {"a@example.com"}, "password": {"654321"}},
		{"email": {"nobody@example.com"}, "password": {"123456"}},
	} {
		rec := b.post("/login", creds)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("bad login status = %d", rec.Code)
		}
		assertContains(t, rec, "Invalid email or password.")
	}
	if b.cookie != nil {
		t.Fatal("failed login must not set a session")
	}

	rec = b.post("/login", url.Values{"email": {"a@example.com"}, "password": {"123456"}})
	if rec.Code != http.StatusSeeOther || b.cookie == nil {
		t.Fatalf("login: status=%d cookie=%v", rec.Code, b.cookie)
	}
	if !b.cookie.HttpOnly || b.cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("cookie flags: %+v", b.cookie)
	}
	assertContains(t, b.get(rec.Header().Get("Location")), "Welcome, Alice!", "Add New Expense", "Alice's Expense Tracker")

	if rec := b.get("/"); rec.Header().Get("Location") != "/expenses/new" {
		t.Fatalf("index redirect = %q", rec.Header().Get("Location"))
	}

	rec = b.post("/logout", nil)
	if rec.Header().Get("Location") != "/login?msg=logout" || b.cookie != nil {
		t.Fatalf("logout: location=%q cookie=%v", rec.Header().Get("Location"), b.cookie)
	}
	if rec := b.get("/expenses"); rec.Code != http.StatusSeeOther {
		t.Fatalf("after logout status = %d", rec.Code)
	}
}

func TestForgotPassword(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))
	b.post("/register", registration("Alice", "a@example.com"))

	rec := b.post("/forgot-password", url.Values{"email": {"a@example.com"}, "secret": {"mango"}, "new_password": {"12"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short password status = %d", rec.Code)
	}
	assertContains(t, rec, "Password must be a 6-digit number.")

	rec = b.post("/forgot-password", url.Values{"email": {"a@example.com"}, "secret": {"kiwi"}, "new_password": {"999999"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret status = %d", rec.Code)
	}
	assertContains(t, rec, "Incorrect email or secret word.")

	rec = b.post("/forgot-password", url.Values{"email": {"a@example.com"}, "secret": {"mango"}, "new_password": {"999999"}})
	if rec.Header().Get("Location") != "/login?msg=reset" {
		t.Fatalf("reset location = %q", rec.Header().Get("Location"))
	}
	if rec := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {"999999"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login with new password: %d", rec.Code)
	}
}

func TestDeleteAccount(t *testing.T) {
	srv := newTestServer(t, 100)
	b := newBrowser(t, srv)
	signUp(t, b, "Alice", "a@example.com")
	addExpense(t, b, "2024-01-05", "Food", "10", "")

	// a second browser logged in as the same user
	other := newBrowser(t, srv)
	other.post("/login", url.Values{"email": {"a@example.com"}, "password": {"123456"}})

	rec := b.post("/account/delete", url.Values{"secret": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret status = %d", rec.Code)
	}
	assertContains(t, rec, "Incorrect secret word.")

	rec = b.post("/account/delete", url.Values{"secret": {"mango"}})
	if rec.Header().Get("Location") != "/login?msg=account-deleted" {
		t.Fatalf("delete location = %q", rec.Header().Get("Location"))
	}
	if rec := other.get("/expenses"); rec.Code != http.StatusSeeOther {
		t.Fatalf("other session survived account deletion: %d", rec.Code)
	}
	if rec := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {"123456"}}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted account can log in: %d", rec.Code)
	}
	if srv.sessions.Len() != 0 {
		t.Fatalf("sessions left: %d", srv.sessions.Len())
	}
}

func TestExpenseLifecycle(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))
	signUp(t, b, "Alice", "a@example.com")

	rec := b.post("/expenses", url.Values{"date": {"2024-01-05"}, "category": {"Food"}, "amount": {"-1"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative amount status = %d", rec.Code)
	}
	assertContains(t, rec, "Amount must be a non-negative number.")

	addExpense(t, b, "2024-01-05", "Food", "1000", "groceries")
	addExpense(t, b, "2024-02-01", "Bills", "2000", "rent")

	rec = b.get("/expenses")
	assertContains(t, rec, "groceries", "rent", "1000.00", "Total Overview")

	rec = b.get("/expenses?category=Bills")
	if strings.Contains(rec.Body.String(), "groceries") {
		t.Fatal("Bills filter shows Food expense")
	}
	assertContains(t, rec, "rent")

	req := httptest.NewRequest(http.MethodGet, "/expenses?category=Food", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "expense-table")
	rec = b.do(req)
	if strings.Contains(rec.Body.String(), "<html") {
		t.Fatal("htmx filter should render only the table")
	}
	assertContains(t, rec, `id="expense-table"`, "groceries")

	if rec := b.get("/expenses?category=Rent"); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown category status = %d", rec.Code)
	}

	rec = b.get("/expenses/manage?id=1&action=edit")
	if rec.Code != http.StatusOK {
		t.Fatalf("manage edit status = %d", rec.Code)
	}
	assertContains(t, rec, "Edit Expense #1", `value="2024-01-05"`, `value="1000.00"`, `value="groceries"`)

	rec = b.post("/expenses/1", url.Values{"date": {"2024-01-06"}, "category": {"Transport"}, "amount": {"1500"}, "description": {"taxi"}})
	if rec.Header().Get("Location") != "/expenses?msg=updated" {
		t.Fatalf("update: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	assertContains(t, b.get("/expenses?msg=updated"), "Expense updated.", "taxi", "1500.00")

	rec = b.post("/expenses/1", url.Values{"date": {"bad"}, "category": {"Transport"}, "amount": {"1"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid update status = %d", rec.Code)
	}
	assertContains(t, rec, "Invalid date.")

	rec = b.get("/expenses/manage?id=2&action=delete")
	assertContains(t, rec, "Confirm Delete", "/expenses/2/delete")

	if rec := b.get("/expenses/manage?id=2&action=archive"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown action status = %d", rec.Code)
	}

	rec = b.post("/expenses/2/delete", nil)
	if rec.Header().Get("Location") != "/expenses?msg=deleted" {
		t.Fatalf("delete location = %q", rec.Header().Get("Location"))
	}
	if rec := b.post("/expenses/2/delete", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
	rec = b.get("/expenses")
	if strings.Contains(rec.Body.String(), "rent") {
		t.Fatal("deleted expense still listed")
	}
}

func TestHTMXCreateTriggers(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))
	signUp(t, b, "Alice", "a@example.com")

	form := url.Values{"date": {"2024-01-05"}, "category": {"Food"}, "amount": {"5"}}
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := b.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	trigger := rec.Header().Get("HX-Trigger")
	for _, want := range []string{EventExpenseCreated, EventExpenseChanged, "form:reset"} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %s: %s", want, trigger)
		}
	}
}

func TestExpenseOwnership(t *testing.T) {
	srv := newTestServer(t, 100)
	alice := newBrowser(t, srv)
	signUp(t, alice, "Alice", "a@example.com")
	addExpense(t, alice, "2024-01-05", "Food", "1000", "alice lunch")

	bob := newBrowser(t, srv)
	signUp(t, bob, "Bob", "b@example.com")

	if rec := bob.get("/expenses"); strings.Contains(rec.Body.String(), "alice lunch") {
		t.Fatal("bob sees alice's expense")
	}
	if rec := bob.get("/expenses/manage?id=1&action=edit"); rec.Header().Get("Location") != "/expenses?msg=not-found" {
		t.Fatalf("manage other user's expense: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	form := url.Values{"date": {"2024-01-05"}, "category": {"Food"}, "amount": {"1"}}
	if rec := bob.post("/expenses/1", form); rec.Code != http.StatusNotFound {
		t.Fatalf("update other user's expense: %d", rec.Code)
	}
	if rec := bob.post("/expenses/1/delete", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete other user's expense: %d", rec.Code)
	}
	if rec := bob.sendJSON(http.MethodDelete, "/api/v1/expenses/1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("api delete other user's expense: %d", rec.Code)
	}

	assertContains(t, alice.get("/expenses"), "alice lunch", "1000.00")
}

func TestOverview(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))
	signUp(t, b, "Alice", "a@example.com")
	addExpense(t, b, "2024-01-05", "Food", "1000", "")
	addExpense(t, b, "2024-01-20", "Food", "500", "")
	addExpense(t, b, "2024-02-01", "Bills", "2000", "")
	addExpense(t, b, "2023-01-15", "Others", "250", "")

	tests := []struct {
		query  string
		status int
		want   []string
	}{
		{"month=1&year=2024", http.StatusOK, []string{"Monthly Total (January)", "1,750 MMK", "3,500 MMK"}},
		{"month=2&year=2023", http.StatusOK, []string{"2,000 MMK", "250 MMK"}},
		{"month=6&year=2030", http.StatusOK, []string{"0 MMK"}},
		{"month=13&year=2024", http.StatusUnprocessableEntity, []string{"Month must be between 1 and 12."}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := b.get("/ui/overview?" + tt.query)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			assertContains(t, rec, tt.want...)
		})
	}

	// defaults to the current month and year (March 2024)
	assertContains(t, b.get("/ui/overview"), "Monthly Total (March)", "Yearly Total (2024)")
}

func TestChartsPage(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))
	signUp(t, b, "Alice", "a@example.com")

	assertContains(t, b.get("/charts"), "No category data available.", "No monthly data available.")
	for _, path := range []string{"/charts/category.png", "/charts/monthly.png"} {
		if rec := b.get(path); rec.Code != http.StatusNotFound {
			t.Fatalf("%s with no data: %d", path, rec.Code)
		}
	}

	addExpense(t, b, "2024-01-05", "Food", "1000", "")
	addExpense(t, b, "2024-01-20", "Food", "500", "")
	addExpense(t, b, "2024-02-01", "Bills", "2000", "")

	rec := b.get("/charts")
	assertContains(t, rec, "Food: 1,500 MMK (43%)", "Bills: 2,000 MMK (57%)", "Jan-2024", "Feb-2024", "#ff6384", "category_chart.png", "Largest category: Bills (57%)")

	for _, path := range []string{"/charts/category.png", "/charts/monthly.png"} {
		rec := b.get(path)
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("%s: status=%d type=%q", path, rec.Code, rec.Header().Get("Content-Type"))
		}
		if _, err := png.Decode(rec.Body); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
}

func TestAPI(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 100))
	signUp(t, b, "Alice", "a@example.com")

	rec := b.sendJSON(http.MethodPost, "/api/v1/expenses", `{"date":"2024-01-05","category":"Food","amount":12.5,"description":"tea"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created apiExpense
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == 0 || created.Amount.String() != "12.5" || rec.Header().Get("Location") == "" {
		t.Fatalf("created = %+v", created)
	}

	if rec := b.sendJSON(http.MethodPost, "/api/v1/expenses", `{"date":"2024-01-05","category":"Food","amount":-1}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid create status = %d", rec.Code)
	}
	if rec := b.sendJSON(http.MethodPost, "/api/v1/expenses", `{"date":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", rec.Code)
	}

	rec = b.sendJSON(http.MethodPut, "/api/v1/expenses/1", `{"date":"2024-02-01","category":"Bills","amount":"20"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	if rec := b.sendJSON(http.MethodPut, "/api/v1/expenses/99", `{"date":"2024-02-01","category":"Bills","amount":"20"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing status = %d", rec.Code)
	}

	rec = b.get("/api/v1/expenses?category=Bills")
	var list []apiExpense
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil || len(list) != 1 || list[0].Category != "Bills" {
		t.Fatalf("list = %+v, %v", list, err)
	}

	rec = b.get("/api/v1/summary?month=2&year=2024")
	var summary apiSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Currency != "MMK" || len(summary.ByMonth) != 1 || summary.ByMonth[0].Month != "Feb-2024" {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Month == nil || summary.Month.Total.String() != "20" {
		t.Fatalf("month total = %+v", summary.Month)
	}

	if rec := b.sendJSON(http.MethodDelete, "/api/v1/expenses/1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = b.get("/api/v1/expenses")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("list after delete = %s", rec.Body)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	b := newBrowser(t, newTestServer(t, 2))
	creds := url.Values{"email": {"x@example.com"}, "password": {"000000"}}

	b.post("/login", creds)
	b.post("/login", creds)
	rec := b.post("/login", creds)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third POST status = %d, want 429", rec.Code)
	}
	if rec := b.get("/login"); rec.Code != http.StatusOK {
		t.Fatalf("GET must not be limited: %d", rec.Code)
	}
}

func TestNewServerTemplateError(t *testing.T) {
	sessions := session.NewStore(session.Config{}, quietLogger())
	defer sessions.Stop()

	_, err := NewServer(Options{
		Sessions:  sessions,
		Logger:    quietLogger(),
		Templates: fstest.MapFS{},
	})
	if err == nil {
		t.Fatal("expected error for missing templates")
	}
}

func TestViewsAndActions(t *testing.T) {
	paths := map[View]string{ViewAddExpense: "/expenses/new", ViewExpenses: "/expenses", ViewCharts: "/charts"}
	for _, v := range Views() {
		if v.Path() != paths[v] || v.Label() == "" {
			t.Errorf("view %d: path=%q label=%q", v, v.Path(), v.Label())
		}
	}

	for _, s := range []string{"edit", " Delete "} {
		if _, err := ParseAction(s); err != nil {
			t.Errorf("ParseAction(%q): %v", s, err)
		}
	}
	if _, err := ParseAction("archive"); err == nil {
		t.Error("ParseAction(archive) should fail")
	}
}

func TestYearOptions(t *testing.T) {
	years := yearOptions(testNow)
	if years[0] != 2022 || years[len(years)-1] != 2030 {
		t.Fatalf("years = %v", years)
	}
	years = yearOptions(time.Date(2033, 1, 1, 0, 0, 0, 0, time.UTC))
	if years[len(years)-1] != 2033 {
		t.Fatalf("years should extend to the current year: %v", years)
	}
}

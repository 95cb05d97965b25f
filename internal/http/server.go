package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/ports"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	appweb "expensetracker/web"
)

// AccountService is the account surface the handlers need.
type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (core.User, error)
	Authenticate(ctx context.Context, email, password string) (core.User, error)
	ResetPassword(ctx context.Context, email, secret, newPassword string) error
	DeleteAccount(ctx context.Context, email, secret string) (int64, error)
}

// ExpenseService is the expense surface the handlers need.
type ExpenseService interface {
	Add(ctx context.Context, userID int64, in services.ExpenseInput) (int64, error)
	List(ctx context.Context, userID int64) ([]core.Expense, error)
	ListByCategory(ctx context.Context, userID int64, c core.Category) ([]core.Expense, error)
	Get(ctx context.Context, userID, id int64) (core.Expense, error)
	Update(ctx context.Context, userID, id int64, in services.ExpenseInput) error
	Delete(ctx context.Context, userID, id int64) error
	TotalForMonth(ctx context.Context, userID int64, month int) (core.Money, error)
	TotalForMonthOfYear(ctx context.Context, userID int64, year, month int) (core.Money, error)
	TotalForYear(ctx context.Context, userID int64, year int) (core.Money, error)
	CategorySummary(ctx context.Context, userID int64) ([]core.CategoryTotal, error)
	MonthlySummary(ctx context.Context, userID int64) ([]core.MonthTotal, error)
	Dashboard(ctx context.Context, userID int64) (core.Dashboard, error)
}

type Options struct {
	Addr     string
	Accounts AccountService
	Expenses ExpenseService
	Sessions *session.Store
	// Health is pinged by /readyz; nil reports the store as not configured.
	Health ports.Pinger
	Logger *applog.Logger

	Currency           string
	CORSAllowedOrigins []string
	RateLimitPerMinute int

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
	Now       func() time.Time
}

type Server struct {
	http.Server
	accounts AccountService
	expenses ExpenseService
	sessions *session.Store
	health   ports.Pinger
	views    *renderer
	logger   *applog.Logger
	log      *applog.StructuredLogger
	currency string
	now      func() time.Time
	started  time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer parses templates and wires routes, returning a ready-to-run
// server.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Templates == nil {
		opts.Templates = appweb.TemplatesFS
	}
	if opts.Static == nil {
		opts.Static = appweb.StaticFS
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	views, err := loadTemplates(opts.Templates)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		Server:   http.Server{Addr: opts.Addr, ReadHeaderTimeout: 10 * time.Second},
		accounts: opts.Accounts,
		expenses: opts.Expenses,
		sessions: opts.Sessions,
		health:   opts.Health,
		views:    views,
		logger:   logger,
		log:      applog.NewStructuredLogger(logger),
		currency: opts.Currency,
		now:      opts.Now,
		started:  opts.Now(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(opts.Logger),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ClientIP)

	static, err := fs.Sub(opts.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	s.Handler = s.routes(static, opts.CORSAllowedOrigins)
	return s, nil
}

func (s *Server) routes(static fs.FS, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(applog.Middleware(s.logger))
	r.Use(s.tracer.Middleware)
	r.Use(s.detector.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.sessions.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ClientIP, s.handleRateLimited))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.With(security.StaticAssets(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleIndex)
	r.Get("/register", s.handleRegisterForm)
	r.Post("/register", s.handleRegister)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/forgot-password", s.handleForgotForm)
	r.Post("/forgot-password", s.handleForgot)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/account/delete", s.handleDeleteAccountForm)
		r.Post("/account/delete", s.handleDeleteAccount)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleCreateExpense)
		r.Get("/expenses/new", s.handleNewExpense)
		r.Get("/expenses/manage", s.handleManageExpense)
		r.Post("/expenses/{id}", s.handleUpdateExpense)
		r.Post("/expenses/{id}/delete", s.handleDeleteExpense)

		r.Get("/ui/overview", s.handleOverview)
		r.Get("/charts", s.handleCharts)
		r.Get("/charts/category.png", s.handleCategoryChart)
		r.Get("/charts/monthly.png", s.handleMonthlyChart)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{trace.HeaderRequestID},
			AllowCredentials: len(origins) > 0,
			MaxAge:           300,
		}))
		r.Use(s.requireAPISession)

		r.Get("/expenses", s.apiListExpenses)
		r.Post("/expenses", s.apiCreateExpense)
		r.Put("/expenses/{id}", s.apiUpdateExpense)
		r.Delete("/expenses/{id}", s.apiDeleteExpense)
		r.Get("/summary", s.apiSummary)
	})

	return r
}

// requireSession sends anonymous visitors to the login page.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			redirect(w, r, withFlash("/login", flashLoginFirst))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "login required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	const msg = "Too many requests. Please try again later."
	ErrorResponse(http.StatusTooManyRequests, msg).
		TriggerNotification(NotificationWarning, msg, 5000).
		Write(w)
}

// currentUser returns the session; routes behind requireSession always
// have one.
func currentUser(r *http.Request) session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

// newPage fills the layout fields shared by every page.
func (s *Server) newPage(r *http.Request, title string, view View, data any) page {
	p := page{Title: title, View: view, Data: data}
	name := ""
	if sess, ok := session.FromContext(r.Context()); ok {
		p.Session = &sess
		p.Menu = Views()
		name = sess.Name
	}
	if msg, warn := flashMessage(r.URL.Query().Get("msg"), name); msg != "" {
		if warn {
			p.Error = msg
		} else {
			p.Flash = msg
		}
	}
	return p
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	if err := s.views.render(w, status, name, p); err != nil {
		s.log.LogError(r.Context(), "Template execution failed", err, applog.OpRender,
			applog.NewFields().WithComponent(applog.ComponentTemplate))
		InternalServerError("Something went wrong. Please try again.").Write(w)
	}
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := s.views.partial(w, status, name, data); err != nil {
		s.log.LogError(r.Context(), "Partial execution failed", err, applog.OpRender,
			applog.NewFields().WithComponent(applog.ComponentTemplate))
		InternalServerError("Something went wrong. Please try again.").Write(w)
	}
}

// internalError logs err and renders the generic failure message.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	s.log.LogError(r.Context(), msg, err, op, applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
	msgText, status := userMessage(err)
	ErrorResponse(status, msgText).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.FromContext(r.Context()); ok {
		http.Redirect(w, r, ViewAddExpense.Path(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady pings the store and reports session and limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	switch {
	case s.health == nil:
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.health.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}
	checks["sessions"] = s.sessions.Len()
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Hits(),
	}
	checks["suspicious_requests"] = s.detector.SuspiciousCount()

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	})
	return err
}

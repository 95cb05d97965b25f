// Package session keeps logged-in users server side. A session is keyed by
// a random UUID carried in an HttpOnly cookie.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

const (
	CookieName = "expensetracker_session"

	defaultMaxSessions = 10000
	sweepInterval      = time.Minute
)

var ErrNoSession = errors.New("no session")

// Session is the per-login state handed to handlers.
type Session struct {
	ID        string
	UserID    int64
	Name      string
	Email     string
	CreatedAt time.Time
}

type Config struct {
	// MaxSessions bounds the store; the least recently used session is
	// evicted beyond it.
	MaxSessions int
	// IdleTimeout expires sessions unused for that long. Zero keeps them
	// until logout or eviction.
	IdleTimeout  time.Duration
	SecureCookie bool
}

type Store struct {
	sessions *cache.LRUCache[Session]
	manager  *cache.Manager
	secure   bool
	logger   *applog.Logger
}

func NewStore(cfg Config, logger *applog.Logger) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentSession)

	s := &Store{
		sessions: cache.NewLRUCache[Session](cfg.MaxSessions, cfg.IdleTimeout),
		secure:   cfg.SecureCookie,
		logger:   logger,
	}
	s.manager = cache.NewManager(func(n int) {
		logger.Debug("Expired idle sessions", applog.FieldSessionCount, n)
	})
	s.manager.Register(s.sessions)
	if cfg.IdleTimeout > 0 {
		s.manager.StartCleanup(sweepInterval)
	}
	return s
}

// Create starts a session for u.
func (s *Store) Create(u core.User) Session {
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: time.Now(),
	}
	s.sessions.Set(sess.ID, sess)
	return sess
}

func (s *Store) Get(id string) (Session, bool) {
	if id == "" {
		return Session{}, false
	}
	return s.sessions.Get(id)
}

func (s *Store) Destroy(id string) {
	s.sessions.Delete(id)
}

// DestroyUser ends every session of userID, e.g. after account deletion.
func (s *Store) DestroyUser(userID int64) int {
	return s.sessions.DeleteFunc(func(sess Session) bool { return sess.UserID == userID })
}

func (s *Store) Len() int {
	return s.sessions.Size()
}

// Stop halts the background sweeper.
func (s *Store) Stop() {
	s.manager.Stop()
}

// Login creates a session and sets its cookie.
func (s *Store) Login(w http.ResponseWriter, u core.User) Session {
	sess := s.Create(u)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Logout destroys the request's session, if any, and expires the cookie.
func (s *Store) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		s.Destroy(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware attaches the session named by the cookie to the request
// context. Unknown or expired cookies are ignored.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil {
			if sess, ok := s.Get(c.Value); ok {
				ctx := NewContext(r.Context(), sess)
				ctx = applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, sess.UserID))
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey struct{}

func NewContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}

package api

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/metrics"
	"github.com/vikrantan5/FitSphere-sub000/internal/session"
)

// Constants for context keys
const (
	ContextSessionIDKey = "sessionID"
	ContextSessionKey   = "session"
)

// CookieSettings control the browser session cookie.
type CookieSettings struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// SessionMiddleware makes sure every browser carries a session id cookie.
// The id only namespaces server side state; it grants nothing by itself.
func SessionMiddleware(cfg CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.Name)
		if err == nil {
			_, err = uuid.Parse(sid)
		}
		if err != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Name, sid, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		}
		c.Set(ContextSessionIDKey, sid)
		c.Next()
	}
}

// AccessMiddleware loads the session and applies the route guard. An empty
// required role admits any signed-in user.
func AccessMiddleware(sessions *session.Manager, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Load(c.Request.Context(), getSessionID(c))
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			log.Printf("ERROR: Failed to load session: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to load session")
			return
		}

		access := session.ResolveAccess(sess, required)
		if !access.Allowed {
			code := http.StatusUnauthorized
			if sess.Valid() {
				code = http.StatusForbidden
			}
			abortWithRedirect(c, code, "Please log in to continue", access.RedirectTo)
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// SessionLimiter hands out one token bucket per browser session.
type SessionLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSessionLimiter allows limit requests per second with the given burst.
func NewSessionLimiter(limit float64, burst int) *SessionLimiter {
	return &SessionLimiter{
		limit:    rate.Limit(limit),
		burst:    burst,
		idle:     10 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

// Allow reports whether sid may make another request now.
func (l *SessionLimiter) Allow(sid string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	v, ok := l.visitors[sid]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[sid] = v
	}
	v.lastSeen = now

	// Drop idle sessions opportunistically.
	if len(l.visitors) > 1024 {
		for id, other := range l.visitors {
			if now.Sub(other.lastSeen) > l.idle {
				delete(l.visitors, id)
			}
		}
	}
	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware rejects requests over the session's budget.
func RateLimitMiddleware(l *SessionLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.limit <= 0 {
			c.Next()
			return
		}
		if !l.Allow(getSessionID(c)) {
			if m != nil {
				m.RateLimited.Inc()
			}
			abortWithError(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

func abortWithRedirect(c *gin.Context, code int, message, redirect string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message, "redirect": redirect})
}

// getSessionID returns the browser session id set by SessionMiddleware.
func getSessionID(c *gin.Context) string {
	return c.GetString(ContextSessionIDKey)
}

// getSession returns the session loaded by AccessMiddleware.
func getSession(c *gin.Context) (domain.Session, error) {
	raw, exists := c.Get(ContextSessionKey)
	if !exists {
		return domain.Session{}, session.ErrNoSession
	}
	sess, ok := raw.(domain.Session)
	if !ok {
		return domain.Session{}, errors.New("invalid session type in context")
	}
	return sess, nil
}

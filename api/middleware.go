package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"mentorship/apperr"
	"mentorship/mentee"
	"mentorship/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ctxKey int

const (
	mentorKey ctxKey = iota
	menteeKey
)

const menteeAuthPath = "/api/mentee/auth"

// mentorOnly requires a valid mentor session cookie.
func (a *API) mentorOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := session.MentorToken(r)
		if token == "" {
			a.Response(w, http.StatusUnauthorized, "authentication required")
			return
		}
		mentorID, err := a.signer.Parse(token)
		if err != nil {
			a.Response(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), mentorKey, mentorID)))
	}
}

func mentorFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(mentorKey).(uuid.UUID)
	return id
}

// menteeOnly resolves the mentee credential cookie and sends unknown callers
// to the authentication entry point.
func (a *API) menteeOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := a.mentees.ResolveToken(r.Context(), session.ReadCredential(r))
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				http.Redirect(w, r, menteeAuthPath, http.StatusSeeOther)
				return
			}
			a.Error(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), menteeKey, m)))
	}
}

func menteeFrom(ctx context.Context) mentee.Mentee {
	m, _ := ctx.Value(menteeKey).(mentee.Mentee)
	return m
}

// idleLimiterTTL is how long a client's bucket survives without requests.
// A bucket idle that long has refilled completely, so dropping it loses nothing.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client address and sweeps idle ones.
type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	perMin    int
	now       func() time.Time
	lastSweep time.Time
}

func newIPLimiter(perMinute int, now func() time.Time) *ipLimiter {
	return &ipLimiter{limiters: make(map[string]*clientLimiter), perMin: perMinute, now: now, lastSweep: now()}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= idleLimiterTTL {
		l.sweep(now)
	}

	c, ok := l.limiters[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)}
		l.limiters[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *ipLimiter) sweep(now time.Time) {
	for ip, c := range l.limiters {
		if now.Sub(c.lastSeen) >= idleLimiterTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (a *API) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !a.limiter.allow(ip) {
			a.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			a.Response(w, http.StatusTooManyRequests, "too many attempts, try again later")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

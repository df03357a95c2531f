// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/normalize"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxKeys bounds memory per limiter; the least recently seen keys are
// dropped first.
const maxKeys = 10000

// Limiter counts attempts per key in fixed windows. A window opens on the
// first attempt and the entry expires with it. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	windows *expirable.LRU[string, *int]
}

// New returns a limiter allowing limit attempts per key per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		windows: expirable.NewLRU[string, *int](maxKeys, nil, window),
	}
}

// Allow records an attempt for key and reports whether it is within limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.windows.Get(key)
	if !ok {
		first := 1
		l.windows.Add(key, &first)
		return true
	}
	if *n >= l.limit {
		return false
	}
	*n++
	return true
}

// Remaining returns how many attempts key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.windows.Peek(key)
	if !ok {
		return l.limit
	}
	if left := l.limit - *n; left > 0 {
		return left
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.windows.Remove(key)
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are
// already folded into RemoteAddr by chi's RealIP middleware when the
// service sits behind a proxy; reading them here would let a client pick
// its own bucket.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles credential issuing per client IP and per account
// email, so neither a single client nor a distributed guesser can hammer
// one account.
type LoginLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email per
// 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, emailLimit int, emailWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(ipLimit, ipWindow),
		byEmail: New(emailLimit, emailWindow),
	}
}

func emailKey(email string) string {
	return normalize.Email(email)
}

// Check records an attempt and returns RATE_LIMITED when either limit is
// exhausted.
func (ll *LoginLimiter) Check(r *http.Request, email string) error {
	if !ll.byIP.Allow(ClientIP(r)) {
		return apperr.ErrRateLimited.WithMessage("Too many login attempts. Please wait a minute before trying again.")
	}
	if k := emailKey(email); k != "" && !ll.byEmail.Allow(k) {
		return apperr.ErrRateLimited.WithMessage("Too many login attempts for this account. Please wait a few minutes.")
	}
	return nil
}

// ResetEmail clears the per-account counter after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if k := emailKey(email); k != "" {
		ll.byEmail.Reset(k)
	}
}

// Package timeouts holds the deadlines applied to store work done on behalf
// of a request.
//
// Every lifecycle operation is synchronous store I/O; a request that runs
// past its deadline is reported as a retryable TIMEOUT failure, and the
// store transaction it was running rolls back with the context.
//
//   - Ping: health checks against both stores
//   - Request: a single lifecycle operation (apply, cancel, list, resolve)
//   - Bulk: bulk contact assignment, which locks many rows
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing    = 2 * time.Second
	DefaultRequest = 8 * time.Second
	DefaultBulk    = 10 * time.Second

	// MinRequest and MaxRequest bound the configurable request deadline.
	MinRequest = 5 * time.Second
	MaxRequest = 10 * time.Second
)

var mu sync.RWMutex

var (
	ping    = DefaultPing
	request = DefaultRequest
	bulk    = DefaultBulk
)

// Ping returns the timeout for store connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Request returns the timeout for one lifecycle operation.
func Request() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return request
}

// Bulk returns the timeout for bulk assignment batches.
func Bulk() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return bulk
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping    time.Duration
	Request time.Duration
	Bulk    time.Duration
}

// Configure applies cfg. Request is clamped to [MinRequest, MaxRequest].
// Call during startup before handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Request > 0 {
		request = ClampRequest(cfg.Request)
	}
	if cfg.Bulk > 0 {
		bulk = cfg.Bulk
	}
}

// ClampRequest bounds d to the allowed request deadline range.
func ClampRequest(d time.Duration) time.Duration {
	if d < MinRequest {
		return MinRequest
	}
	if d > MaxRequest {
		return MaxRequest
	}
	return d
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	request = DefaultRequest
	bulk = DefaultBulk
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Request: request, Bulk: bulk}
}

// WithTimeout derives a context with timeout whose cancel func logs a
// warning when the deadline was the reason the operation ended.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Bulk(), h.Log, "bulk assign")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}

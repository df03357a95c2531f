package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure_ClampsRequest(t *testing.T) {
	defer Reset()

	Configure(Config{Request: time.Second})
	if got := Request(); got != MinRequest {
		t.Errorf("Request() = %v, want %v", got, MinRequest)
	}

	Configure(Config{Request: time.Minute})
	if got := Request(); got != MaxRequest {
		t.Errorf("Request() = %v, want %v", got, MaxRequest)
	}

	Configure(Config{Request: 6 * time.Second})
	if got := Request(); got != 6*time.Second {
		t.Errorf("Request() = %v, want 6s", got)
	}
}

func TestConfigure_ZeroKeepsCurrent(t *testing.T) {
	defer Reset()

	Configure(Config{Bulk: 20 * time.Second})
	Configure(Config{})

	cur := Current()
	if cur.Bulk != 20*time.Second {
		t.Errorf("Bulk = %v, want 20s", cur.Bulk)
	}
	if cur.Ping != DefaultPing {
		t.Errorf("Ping = %v, want default", cur.Ping)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test op")
	defer cancel()

	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}

// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: the uuid of the users row an event is about
//   - ActorID / actorID / actor_id: the uuid of the identity that acted

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	LevelAll = "all" // MongoDB + zap
	LevelDB  = "db"  // MongoDB only
	LevelLog = "log" // zap only
	LevelOff = "off"
)

// ValidLevel reports whether s is one of the destination settings.
func ValidLevel(s string) bool {
	switch s {
	case LevelAll, LevelDB, LevelLog, LevelOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls login and registration events.
	Auth string
	// Admin controls approval, assignment, application and call log changes.
	Admin string
}

// Sink persists events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to the sink and to zap according to Config.
// A nil *Logger is a no-op, so tests and optional wiring can pass nil.
type Logger struct {
	store  Sink
	zapLog *zap.Logger
	config Config
}

func New(store Sink, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

type clientKey struct{}

type client struct {
	ip        string
	userAgent string
}

// Middleware stores the client address and user agent on the request
// context so events raised below the handler carry them. Mount it after
// chi's RealIP.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := client{ip: ratelimit.ClientIP(r), userAgent: r.UserAgent()}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, c)))
	})
}

func clientFrom(ctx context.Context) client {
	c, _ := ctx.Value(clientKey{}).(client)
	return c
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the setting for its category. Unknown
// categories are recorded everywhere.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := LevelAll
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == LevelOff {
		return
	}

	if event.IP == "" && event.UserAgent == "" {
		c := clientFrom(ctx)
		event.IP, event.UserAgent = c.ip, c.userAgent
	}

	if setting == LevelAll || setting == LevelLog {
		l.logToZap(event)
	}
	if (setting == LevelAll || setting == LevelDB) && l.store != nil {
		// Recorded even when the request context is already done.
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Ping())
		defer cancel()
		if err := l.store.Log(wctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

// --- Authentication events ---

func (l *Logger) LoginSuccess(ctx context.Context, userID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

func (l *Logger) LoginFailedUnknownEmail(ctx context.Context, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUnknownEmail,
		FailureReason: "unknown email",
		Details:       map[string]string{"attempted_email": email},
	})
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, userID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        userID,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	})
}

func (l *Logger) LoginFailedUnapproved(ctx context.Context, userID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUnapproved,
		UserID:        userID,
		FailureReason: "pending approval",
		Details:       map[string]string{"email": email},
	})
}

func (l *Logger) LoginFailedRateLimit(ctx context.Context, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limited",
		Details:       map[string]string{"attempted_email": email},
	})
}

func (l *Logger) UserRegistered(ctx context.Context, userID, role string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserRegistered,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"role": role},
	})
}

// --- Admin events ---

// ApprovalChanged records an approve (approved=true) or revoke call.
// changed is false when the identity was already in that state.
func (l *Logger) ApprovalChanged(ctx context.Context, actorID, userID string, approved, changed bool) {
	eventType := audit.EventUserApproved
	if !approved {
		eventType = audit.EventUserApprovalRevoked
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		UserID:    userID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"changed": strconv.FormatBool(changed)},
	})
}

func (l *Logger) ContactsAssigned(ctx context.Context, actorID, callerID string, requested int, assigned int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventContactsAssigned,
		UserID:    callerID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"requested": strconv.Itoa(requested),
			"assigned":  strconv.FormatInt(assigned, 10),
		},
	})
}

func (l *Logger) ContactsUnassigned(ctx context.Context, actorID string, requested int, unassigned int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventContactsUnassigned,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"requested":  strconv.Itoa(requested),
			"unassigned": strconv.FormatInt(unassigned, 10),
		},
	})
}

func (l *Logger) ApplicationStatusChanged(ctx context.Context, actorID, studentID, applicationID, from, to string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventApplicationStatusChanged,
		UserID:    studentID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"application_id": applicationID,
			"from":           from,
			"to":             to,
		},
	})
}

func (l *Logger) ApplicationWithdrawn(ctx context.Context, actorID, studentID, jobID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventApplicationWithdrawn,
		UserID:    studentID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"job_id": jobID},
	})
}

func (l *Logger) CallLogCreated(ctx context.Context, actorID, callID, contactID string) {
	l.callLogEvent(ctx, audit.EventCallLogCreated, actorID, "", callID, contactID)
}

func (l *Logger) CallLogUpdated(ctx context.Context, actorID, ownerID, callID string) {
	l.callLogEvent(ctx, audit.EventCallLogUpdated, actorID, ownerID, callID, "")
}

func (l *Logger) CallLogDeleted(ctx context.Context, actorID, ownerID, callID string) {
	l.callLogEvent(ctx, audit.EventCallLogDeleted, actorID, ownerID, callID, "")
}

func (l *Logger) callLogEvent(ctx context.Context, eventType, actorID, ownerID, callID, contactID string) {
	details := map[string]string{"call_id": callID}
	if contactID != "" {
		details["contact_id"] = contactID
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		UserID:    ownerID,
		ActorID:   actorID,
		Success:   true,
		Details:   details,
	})
}

// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, log level and CORS; everything the placement portal itself
// needs lives here.
type AppConfig struct {
	// MongoDB holds job postings and applications.
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64

	// Postgres holds users, HR contacts and call logs.
	PostgresDSN      string
	PostgresMaxConns int32
	PostgresMinConns int32

	// Bearer credentials
	JWTSecret  string        // HMAC key, at least 32 bytes
	JWTIssuer  string        // iss claim; blank skips the check
	TokenTTL   time.Duration // lifetime of issued tokens
	BcryptCost int

	// Identity cache. TTL never exceeds TokenTTL so a revoked identity is
	// not served for longer than a token it could present.
	IdentityCacheSize int
	IdentityCacheTTL  time.Duration

	RequestTimeout time.Duration
	BulkTimeout    time.Duration

	// Audit destinations per category: all, db, log or off.
	AuditAuth  string
	AuditAdmin string

	// AdminEmail, when set, is promoted to an approved admin on startup.
	AdminEmail string
}

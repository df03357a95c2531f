// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	applicationsfeature "github.com/dalemusser/placementhub/internal/app/features/applications"
	calllogsfeature "github.com/dalemusser/placementhub/internal/app/features/calllogs"
	contactsfeature "github.com/dalemusser/placementhub/internal/app/features/contacts"
	dashboardfeature "github.com/dalemusser/placementhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/placementhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/placementhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/placementhub/internal/app/features/login"
	usersfeature "github.com/dalemusser/placementhub/internal/app/features/users"
	"github.com/dalemusser/placementhub/internal/app/lifecycle/applicationmgr"
	"github.com/dalemusser/placementhub/internal/app/lifecycle/assignmentmgr"
	applicationstore "github.com/dalemusser/placementhub/internal/app/store/applications"
	auditstore "github.com/dalemusser/placementhub/internal/app/store/audit"
	calllogstore "github.com/dalemusser/placementhub/internal/app/store/calllogs"
	contactstore "github.com/dalemusser/placementhub/internal/app/store/hrcontacts"
	jobstore "github.com/dalemusser/placementhub/internal/app/store/jobs"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every request except /auth and /health
// passes through the gate: bearer credential, identity lookup, role check.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	verifier, err := auth.NewVerifier(appCfg.JWTSecret, appCfg.JWTIssuer)
	if err != nil {
		logger.Error("credential verifier init failed", zap.Error(err))
		return nil, err
	}
	issuer := auth.NewIssuer(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.TokenTTL)

	// Relational store
	tx := txn.NewManager(deps.Postgres)
	users := userstore.New(deps.Postgres)
	contacts := contactstore.New(deps.Postgres)
	calls := calllogstore.New(deps.Postgres)
	fetcher := userstore.NewFetcher(users, appCfg.IdentityCacheSize, appCfg.IdentityCacheTTL)

	// Document store
	apps := applicationstore.New(deps.MongoDatabase)
	jobs := jobstore.New(deps.MongoDatabase)
	audits := auditstore.New(deps.MongoDatabase)

	al := auditlog.New(audits, logger, auditlog.Config{
		Auth:  appCfg.AuditAuth,
		Admin: appCfg.AuditAdmin,
	})

	gate := auth.NewGate(verifier, fetcher, logger)
	appMgr := applicationmgr.New(apps, jobs, users, al, logger)
	assignMgr := assignmentmgr.New(tx, contacts, users, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auditlog.Middleware)
	r.Use(middleware.Recoverer)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(healthfeature.MongoPinger{Client: deps.MongoClient}, deps.Postgres, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Credential issuing
	loginHandler := loginfeature.NewHandler(users, issuer, ratelimit.NewLoginLimiter(), al, appCfg.BcryptCost, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))

	r.Mount("/applications", applicationsfeature.Routes(applicationsfeature.NewHandler(appMgr, logger), gate))
	r.Mount("/contacts", contactsfeature.Routes(contactsfeature.NewHandler(assignMgr, al, logger), gate))
	r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(users, fetcher, al, logger), gate))
	r.Mount("/call-logs", calllogsfeature.Routes(calllogsfeature.NewHandler(tx, calls, contacts, al, logger), gate))
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(contacts, calls, logger), gate))

	return r, nil
}

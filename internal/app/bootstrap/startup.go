// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Request: appCfg.RequestTimeout,
		Bulk:    appCfg.BulkTimeout,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("request", cur.Request),
		zap.Duration("bulk", cur.Bulk))

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, userstore.New(deps.Postgres), appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

type adminPromoter interface {
	PromoteAdmin(ctx context.Context, email string) (models.Identity, error)
}

// ensureAdmin promotes the configured email to an approved admin. The
// account must already be registered; a missing account only warns so a
// fresh deployment can start, register, and pick up the promotion on the
// next restart.
func ensureAdmin(ctx context.Context, users adminPromoter, email string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Request())
	defer cancel()

	who, err := users.PromoteAdmin(ctx, email)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			logger.Warn("admin_email is not registered; skipping promotion", zap.String("email", email))
			return nil
		}
		return fmt.Errorf("promote admin %q: %w", email, err)
	}
	logger.Info("admin ensured", zap.String("user_id", who.ID), zap.String("email", who.Email))
	return nil
}

// Command migrate applies the Postgres schema for users, HR contacts and
// call logs.
//
//	migrate [-dsn DSN] [-dir DIR] up|down|version
//
// The DSN defaults to PLACEMENTHUB_POSTGRES_DSN. Without -dir the embedded
// migrations are used.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dalemusser/placementhub/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

func main() {
	var (
		dsn = flag.String("dsn", os.Getenv("PLACEMENTHUB_POSTGRES_DSN"), "Postgres connection string")
		dir = flag.String("dir", "", "directory containing migration files (default: embedded)")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}
	if *dsn == "" {
		logger.Fatal("no DSN: pass -dsn or set PLACEMENTHUB_POSTGRES_DSN")
	}

	m, err := newMigrate(*dir, *dsn)
	if err != nil {
		logger.Fatal("create migrate instance", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, action, logger); err != nil {
		logger.Fatal("migration failed", zap.String("action", action), zap.Error(err))
	}
	logger.Info("migration completed", zap.String("action", action))
}

func newMigrate(dir, dsn string) (*migrate.Migrate, error) {
	if dir == "" {
		src, err := iofs.New(migrations.FS, ".")
		if err != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", err)
		}
		return migrate.NewWithSourceInstance("iofs", src, dsn)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	return migrate.New("file://"+filepath.ToSlash(absDir), dsn)
}

func run(m *migrate.Migrate, action string, logger *zap.Logger) error {
	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info("no migration applied")
				return nil
			}
			return err
		}
		logger.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

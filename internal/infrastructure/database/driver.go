package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
)

const pingTimeout = 5 * time.Second

// NewDriver opens the configured database and returns an ent SQL driver for
// the query builders used by the repositories.
func NewDriver(cfg *config.Config, logger *logrus.Logger) (dialect.Driver, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}

	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database dsn: %w", err)
	}

	return Open(driver, dsn, cfg.Database.LogSQL, logger)
}

// Open is NewDriver without the config lookup.
func Open(driver, dsn string, logSQL bool, logger *logrus.Logger) (dialect.Driver, func(), error) {
	var (
		drv *entsql.Driver
		err error
	)
	switch driver {
	case "sqlite3":
		drv, err = openSQLite(dsn)
	case "postgres":
		drv, err = openPostgres(dsn)
	case "pgx":
		drv, err = openPgx(dsn, logSQL, logger)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = drv.Close()
	}
	if logSQL && logger != nil && driver != "pgx" {
		return dialect.DebugWithContext(drv, func(ctx context.Context, args ...any) {
			logger.WithContext(ctx).Debug(args...)
		}), cleanup, nil
	}
	return drv, cleanup, nil
}

func openSQLite(dsn string) (*entsql.Driver, error) {
	rawDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	return entsql.OpenDB(dialect.SQLite, rawDB), nil
}

func openPostgres(dsn string) (*entsql.Driver, error) {
	rawDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := ping(rawDB); err != nil {
		return nil, err
	}
	return entsql.OpenDB(dialect.Postgres, rawDB), nil
}

func openPgx(dsn string, logSQL bool, logger *logrus.Logger) (*entsql.Driver, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	if logSQL && logger != nil {
		connCfg.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(ctx context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				logger.WithContext(ctx).WithFields(logrus.Fields(data)).WithField("pgx_level", lvl.String()).Debug(msg)
			}),
			LogLevel: tracelog.LogLevelDebug,
		}
	}
	rawDB := stdlib.OpenDB(*connCfg)
	if err := ping(rawDB); err != nil {
		return nil, err
	}
	return entsql.OpenDB(dialect.Postgres, rawDB), nil
}

func ping(rawDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}

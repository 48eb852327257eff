package database

import (
	"context"
	"fmt"
	"time"

	"questa-search/internal/config"
	"questa-search/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver
	"go.uber.org/zap"
)

// Dialects accepted in db.driver.
const (
	DialectSQLite = "sqlite"
	DialectOracle = "oracle"
)

func init() {
	// go-ora takes positional :name parameters; sqlx does not know the driver by default.
	sqlx.BindDriver(DialectOracle, sqlx.NAMED)
	sqlx.BindDriver(SQLiteDriverName, sqlx.QUESTION)
}

// DriverName maps a configured dialect to its database/sql driver name.
func DriverName(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite, "":
		return SQLiteDriverName, nil
	case DialectOracle:
		return DialectOracle, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", dialect)
	}
}

// NewSQLXDB opens and pings the database described by cfg.
func NewSQLXDB(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if driverName == SQLiteDriverName {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	if driverName == SQLiteDriverName {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			logger.Get().Warn("Could not enable WAL mode", zap.Error(err))
		}
	}

	logger.Get().Info("Connected to database",
		zap.String("driver", driverName),
		zap.String("build_mode", BuildMode),
	)
	return db, nil
}

package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver, registered as "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver, registered as "oracle"
	"go.uber.org/zap"
)

// Driver names as registered by the imported drivers.
const (
	DriverPostgres = "pgx"
	DriverOracle   = "oracle"
)

// NewSQLXDB opens and pings a database through sqlx.
func NewSQLXDB(ctx context.Context, driver, dsn string, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	// 연결 테스트
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("Connected to database", zap.String("driver", driver))
	return db, nil
}

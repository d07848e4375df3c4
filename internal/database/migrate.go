package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// scheme
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/oracle/*.sql
var migrationFiles embed.FS

// oraNameInUse is raised when CREATE finds an existing object.
const oraNameInUse = "ORA-00955"

// PostgresMigrationURL rewrites a postgres:// DSN to the scheme of the pgx/v5 migrate driver.
func PostgresMigrationURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

func newPostgresMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations/postgres")
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, PostgresMigrationURL(dsn))
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending PostgreSQL migration.
func RunMigrations(dsn string, logger *zap.Logger) error {
	m, err := newPostgresMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("could not apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Migrations completed successfully", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// RollbackMigrations reverts the last applied PostgreSQL migration.
func RollbackMigrations(dsn string, logger *zap.Logger) error {
	m, err := newPostgresMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("could not roll back migration: %w", err)
	}
	logger.Info("Rolled back one migration")
	return nil
}

// ApplyOracleSchema runs the embedded Oracle DDL files in name order. Objects that
// already exist are skipped, so it can run on every deploy.
func ApplyOracleSchema(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	files, err := OracleSchemaFiles()
	if err != nil {
		return err
	}

	for _, name := range files {
		content, err := fs.ReadFile(migrationFiles, "migrations/oracle/"+name)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		stmt := strings.TrimSuffix(strings.TrimSpace(string(content)), ";")
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), oraNameInUse) {
				logger.Info("Skipped existing object", zap.String("file", name))
				continue
			}
			return fmt.Errorf("could not execute migration %s: %w", name, err)
		}
		logger.Info("Executed migration", zap.String("file", name))
	}

	logger.Info("Oracle schema applied")
	return nil
}

// OracleSchemaFiles lists the embedded Oracle DDL files in execution order.
func OracleSchemaFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations/oracle")
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

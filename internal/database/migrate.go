package database

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"questa-search/database/migrations"
	"questa-search/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// RunMigrations brings the questions schema up to date for the given dialect.
func RunMigrations(db *sqlx.DB, dialect string) error {
	switch dialect {
	case DialectSQLite, "":
		return migrateSQLite(db)
	case DialectOracle:
		return runUpScripts(db, migrations.FS, DialectOracle)
	default:
		return fmt.Errorf("unsupported database driver %q", dialect)
	}
}

// RollbackMigrations reverts every applied migration. Only SQLite tracks versions.
func RollbackMigrations(db *sqlx.DB, dialect string) error {
	if dialect != DialectSQLite && dialect != "" {
		return fmt.Errorf("rollback is not supported for %q", dialect)
	}
	m, err := newSQLiteMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not roll back migrations: %w", err)
	}
	return nil
}

func newSQLiteMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, DialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, DialectSQLite, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	return m, nil
}

func migrateSQLite(db *sqlx.DB) error {
	m, err := newSQLiteMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Get().Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("could not run migrations: %w", err)
	}
	version, _, _ := m.Version()
	logger.Get().Info("Migrations completed successfully", zap.Uint("version", version))
	return nil
}

// runUpScripts executes every *.up.sql file of dir in name order, one statement at a time.
// Objects that already exist are skipped so the runner can be re-run.
func runUpScripts(db *sqlx.DB, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.Exec(stmt); err != nil {
				if isAlreadyExists(err) {
					logger.Get().Debug("Skipping existing object", zap.String("migration", name))
					continue
				}
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}
		logger.Get().Info("Executed migration", zap.String("migration", name))
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// ORA-00955: name is already used by an existing object.
// ORA-01430: column being added already exists in table.
func isAlreadyExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "ORA-00955") || strings.Contains(msg, "ORA-01430")
}

// Package database handles connection management and migration execution
// for the two supported backends: PostgreSQL (via pgx) and SQLite (via the
// pure-Go modernc driver). Connect returns a ready-to-use *sqlx.DB pool and
// Migrate applies the embedded goose migrations for the chosen dialect.
package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported values for the driver argument of Connect and Migrate.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// sqlDriverName maps a configured driver to the name registered with
// database/sql.
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SQLiteDSN builds a modernc DSN for the database file at path with foreign
// keys enforced and timestamps written in a sortable, parseable layout.
// Use ":memory:" for a private in-memory database.
func SQLiteDSN(path string) string {
	if path == ":memory:" {
		return ":memory:?_pragma=foreign_keys(on)&_time_format=sqlite"
	}
	return "file:" + path + "?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_time_format=sqlite"
}

// Connect opens a connection pool for driver using dsn and verifies it with
// a ping before returning.
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	name, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	switch driver {
	case DriverPostgres:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	case DriverSQLite:
		// A single connection serialises writers and keeps ":memory:" one database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// Migrate runs all pending goose migrations for driver from the embedded
// SQL files under migrations/<driver>.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	var dialect string
	switch driver {
	case DriverPostgres:
		dialect = "postgres"
	case DriverSQLite:
		dialect = "sqlite3"
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(&gooseLogger{log: slog.Default()})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, "migrations/"+driver); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "driver", driver)
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Fatalf logs only; goose returns the error to the caller.
func (g *gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

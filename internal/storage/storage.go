package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB wraps a sql.DB for the match archive.
type DB struct {
	conn *sql.DB
	log  zerolog.Logger
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct{ log zerolog.Logger }

func (g gooseLogger) Printf(format string, v ...any) { g.log.Debug().Msgf(format, v...) }
func (g gooseLogger) Fatalf(format string, v ...any) { g.log.Fatal().Msgf(format, v...) }

// Open opens (or creates) the SQLite archive at path and migrates it to the
// latest schema. ":memory:" gives a private in-memory archive.
func Open(path string, log zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps pragmas and in-memory databases consistent.
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set %q: %w", pragma, err)
		}
	}

	if err := migrate(conn, log); err != nil {
		conn.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("archive opened")
	return &DB{conn: conn, log: log}, nil
}

func migrate(conn *sql.DB, log zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Package sqlite implements the device contact store on an embedded
// sqlite database with a denormalized data table, one row per kind record.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a sqlite-backed contact store. It is safe for concurrent reads;
// writes serialize on the database's own locking.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Foreign keys are enabled so
// deleting a contact root cascades over its data rows.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(logger *slog.Logger) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	dbDriver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	m.Log = &migrateLogger{logger: logger}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GroupTitle returns every title recorded for the group id.
func (s *Store) GroupTitle(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM groups WHERE id = ?`, groupID)
	if err != nil {
		return nil, fmt.Errorf("group titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// EnsureGroup resolves a title to its group id, inserting the group row
// when no group with that title exists yet.
func (s *Store) EnsureGroup(ctx context.Context, title string) (string, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM groups WHERE title = ? LIMIT 1`, title).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := s.db.ExecContext(ctx, `INSERT INTO groups (title) VALUES (?)`, title)
		if err != nil {
			return "", fmt.Errorf("insert group: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return "", err
		}
	case err != nil:
		return "", fmt.Errorf("lookup group: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// Avatar returns the stored photo blob, or nil when the contact has none.
// The store keeps a single resolution, so highRes does not change the result.
func (s *Store) Avatar(ctx context.Context, identifier string, highRes bool) ([]byte, error) {
	var photo []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT photo FROM data WHERE contact_id = ? AND kind = 'photo' ORDER BY id DESC LIMIT 1`,
		identifier,
	).Scan(&photo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	return photo, nil
}

// displayName composes the derived display name from structured name parts.
func displayName(given, middle, family string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{given, middle, family} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

// digits strips everything but decimal digits, the normalization used for
// phone reverse lookups.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info("migrate: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool { return false }

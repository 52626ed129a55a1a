// Package store implements the relational store for Bible text, reading
// lists and tags. It speaks plain database/sql and supports two drivers:
// embedded SQLite (the self-hosted default) and PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/jogodabiblia/biblia/core/errors"
	"github.com/jogodabiblia/biblia/core/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the database backend.
type Config struct {
	Driver string // "sqlite" or "postgres"
	DSN    string // file path / ":memory:" for sqlite, connection URL for postgres
}

// Store wraps a SQL database with the schema and queries of the Bible
// service. All methods are safe for concurrent use; *sql.DB pools.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens the configured database. It does not create the schema;
// call Migrate for that.
func Open(cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		return &Store{db: db, driver: DriverSQLite}, nil
	case DriverPostgres:
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres database: %w", err)
		}
		return &Store{db: db, driver: DriverPostgres}, nil
	default:
		return nil, &errors.ValidationError{Field: "driver", Value: cfg.Driver, Message: "must be sqlite or postgres"}
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the active driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind rewrites "?" placeholders to "$N" for PostgreSQL. Queries are
// written in SQLite style and rebound on the way out.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// insertID runs an INSERT and returns the generated id, papering over
// the LastInsertId gap in the postgres driver with RETURNING.
func (s *Store) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Testament is one of the two halves of the canon.
type Testament struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is one canonical book of the Bible.
type Book struct {
	ID          int64  `json:"id"`
	Position    int    `json:"position"`
	Name        string `json:"name"`
	Abbrev      string `json:"abbrev"`
	TestamentID int64  `json:"testament_id"`
}

// Version is one Bible translation, e.g. ARA.
type Version struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbrev       string `json:"abbrev"`
	Active       bool   `json:"active"`
	SourceDigest string `json:"source_digest,omitempty"`
}

// Verse is a single verse of one version.
type Verse struct {
	ID        int64  `json:"id"`
	Chapter   int    `json:"chapter"`
	Number    int    `json:"number"`
	Text      string `json:"text"`
	BookID    int64  `json:"book_id"`
	VersionID int64  `json:"version_id"`
}

// ChapterCount records how many verses a chapter of a book has.
type ChapterCount struct {
	BookID     int64 `json:"book_id"`
	Chapter    int   `json:"chapter"`
	VerseCount int   `json:"verse_count"`
}

// ReadingList is a user-curated list of references with free-form content.
type ReadingList struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Tag is a user label that can be attached to verses.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

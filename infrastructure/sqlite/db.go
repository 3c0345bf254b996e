package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// DB holds a single-connection writer and a pooled read-only handle.
// Screenshot blobs are large, so reads never queue behind an ingest.
type DB struct {
	WriteSQL *sql.DB
	ReadSQL  *sql.DB
	W        *bun.DB
	R        *bun.DB
}

// Options tunes the read pool. Zero values fall back to defaults.
type Options struct {
	ReadConns   int
	BusyTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReadConns <= 0 {
		o.ReadConns = 8
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = 5 * time.Second
	}
	return o
}

// OpenDB opens path with default options.
func OpenDB(path string) (*DB, error) {
	return OpenDBWithOptions(path, Options{})
}

// OpenDBWithOptions opens the writer with immediate transactions and the
// reader with query_only enforced.
func OpenDBWithOptions(path string, opts Options) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	opts = opts.withDefaults()
	busy := opts.BusyTimeout.Milliseconds()

	wsql, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_txlock=immediate&_journal_mode=WAL", path, busy))
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	wsql.SetMaxOpenConns(1)
	wsql.SetConnMaxLifetime(15 * time.Minute)

	// The writer creates the file; the read-only handle cannot.
	if err := wsql.Ping(); err != nil {
		wsql.Close()
		return nil, fmt.Errorf("ping write db: %w", err)
	}

	rsql, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_query_only=1", path, busy))
	if err != nil {
		wsql.Close()
		return nil, fmt.Errorf("open read db: %w", err)
	}
	rsql.SetMaxOpenConns(opts.ReadConns)
	rsql.SetConnMaxIdleTime(5 * time.Minute)
	rsql.SetConnMaxLifetime(15 * time.Minute)

	if _, err := rsql.Exec("PRAGMA query_only = ON"); err != nil {
		wsql.Close()
		rsql.Close()
		return nil, fmt.Errorf("enable read query_only: %w", err)
	}

	return &DB{
		WriteSQL: wsql,
		ReadSQL:  rsql,
		W:        bun.NewDB(wsql, sqlitedialect.New()),
		R:        bun.NewDB(rsql, sqlitedialect.New()),
	}, nil
}

// Close closes both handles and reports the first failure.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var errs []error
	if db.W != nil {
		errs = append(errs, db.W.Close())
	}
	if db.R != nil {
		errs = append(errs, db.R.Close())
	}
	return errors.Join(errs...)
}

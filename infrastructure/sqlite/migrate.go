package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// ApplyMigrations executes *.sql files in lexical order, skipping files
// already recorded in schema_migrations.
//
// If migrationsDir is empty, embedded migrations are applied.
func ApplyMigrations(ctx context.Context, db *DB, migrationsDir string) error {
	if strings.TrimSpace(migrationsDir) == "" {
		return ApplyEmbeddedMigrations(ctx, db)
	}
	return applyMigrationsFromFS(ctx, db, os.DirFS(migrationsDir), ".")
}

// ApplyEmbeddedMigrations applies the migrations compiled into the binary.
func ApplyEmbeddedMigrations(ctx context.Context, db *DB) error {
	return applyMigrationsFromFS(ctx, db, embeddedMigrations, "migrations")
}

func applyMigrationsFromFS(ctx context.Context, db *DB, fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && path.Ext(entry.Name()) == ".sql" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if _, err := db.WriteSQL.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  name TEXT PRIMARY KEY,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, name := range names {
		sqlBytes, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applySingleMigration(ctx, db, name, string(sqlBytes)); err != nil {
			return err
		}
	}
	return nil
}

func applySingleMigration(ctx context.Context, db *DB, name, sqlText string) error {
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var seen int
		if err := tx.NewRaw(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name).Scan(ctx, &seen); err != nil {
			return err
		}
		if seen > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES (?)`, name)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

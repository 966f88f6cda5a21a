// Package sqlitemigrate applies embedded SQL migrations to a sqlite database.
//
// Migration files run in lexical filename order and are recorded in a
// schema_migrations ledger, so reapplying the same file set is a no-op. Files
// may carry sql-migrate style "-- +migrate Up" / "-- +migrate Down" markers;
// only the Up section runs.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ledgerTable = "schema_migrations"

// ApplyMigrations executes the .sql files under migrationRoot at most once
// each. An empty root reads from the top of migrationFS.
func ApplyMigrations(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, migrationRoot string) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}

	readRoot := strings.TrimSpace(migrationRoot)
	if readRoot == "" {
		readRoot = "."
	}

	files, err := listMigrationFiles(migrationFS, readRoot)
	if err != nil {
		return err
	}
	if err := ensureLedger(ctx, sqlDB); err != nil {
		return err
	}

	for _, file := range files {
		if err := applyMigration(ctx, sqlDB, migrationFS, readRoot, file); err != nil {
			return err
		}
	}
	return nil
}

func listMigrationFiles(migrationFS fs.FS, readRoot string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, readRoot)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func ensureLedger(ctx context.Context, sqlDB *sql.DB) error {
	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, ledgerTable)
	if _, err := sqlDB.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

func applyMigration(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, readRoot, file string) error {
	// Ledger keys keep the root prefix so the same filename under two roots
	// stays distinct.
	key := file
	if readRoot != "." {
		key = filepath.ToSlash(filepath.Join(readRoot, file))
	}

	content, err := fs.ReadFile(migrationFS, filepath.Join(readRoot, file))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	applied, err := isApplied(ctx, sqlDB, key)
	if err != nil {
		return fmt.Errorf("check migration %s: %w", file, err)
	}
	if applied {
		return nil
	}

	upSQL := ExtractUpMigration(string(content))
	if strings.TrimSpace(upSQL) == "" {
		return nil
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction %s: %w", file, err)
	}

	if _, err := tx.ExecContext(ctx, upSQL); err != nil {
		if !IsAlreadyExistsError(err) {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", ledgerTable),
		key,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}
	return nil
}

// ExtractUpMigration returns the SQL between the "-- +migrate Up" marker and
// the "-- +migrate Down" marker. Content without markers passes through whole.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

// IsAlreadyExistsError reports whether err is sqlite reporting that the DDL
// already ran, which the ledger treats as success.
func IsAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

func isApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int
	row := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+ledgerTable+" WHERE name = ?", name)
	err := row.Scan(&found)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Package migrations applies the embedded PostgreSQL schema for the player store.
package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the migrations shipped with the binary
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// MigrationFile is one schema version with its up script and optional down script
type MigrationFile struct {
	Version string
	Name    string
	Up      string
	Down    string
}

// Checksum is the SHA256 of the up script
func (f MigrationFile) Checksum() string {
	return calculateChecksum([]byte(f.Up))
}

// MigrationStatus reports whether a version has been applied
type MigrationStatus struct {
	Version string
	Name    string
	Applied bool
	// Drifted is set when the applied checksum no longer matches the file
	Drifted bool
}

// Migrator handles database schema migrations
type Migrator struct {
	db    *sql.DB
	files fs.FS
}

// NewMigrator creates a migrator over the embedded migrations
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db, files: Files()}
}

// NewMigratorFS creates a migrator over an arbitrary set of migration files
func NewMigratorFS(db *sql.DB, files fs.FS) *Migrator {
	return &Migrator{db: db, files: files}
}

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// Up executes all pending migrations and returns the versions it applied
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := LoadMigrations(m.files)
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}

	var done []string
	for _, file := range files {
		if _, ok := applied[file.Version]; ok {
			continue
		}
		if err := m.applyMigration(ctx, file); err != nil {
			return done, fmt.Errorf("failed to apply migration %s: %w", file.Version, err)
		}
		log.Printf("[Migrate] Applied migration: %s_%s", file.Version, file.Name)
		done = append(done, file.Version)
	}

	return done, nil
}

// Down rolls back the most recently applied migration and returns its version
func (m *Migrator) Down(ctx context.Context) (string, error) {
	var version string
	err := m.db.QueryRowContext(ctx, `
		SELECT version FROM schema_migrations
		ORDER BY version DESC LIMIT 1`).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no migrations to rollback")
		}
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	files, err := LoadMigrations(m.files)
	if err != nil {
		return "", fmt.Errorf("failed to find migration files: %w", err)
	}
	var file *MigrationFile
	for i := range files {
		if files[i].Version == version {
			file = &files[i]
		}
	}
	if file == nil || file.Down == "" {
		return "", fmt.Errorf("migration %s has no down script", version)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, file.Down); err != nil {
		return "", fmt.Errorf("failed to execute down migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return "", fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	log.Printf("[Migrate] Rolled back migration: %s", version)
	return version, nil
}

// Status lists every known migration and whether it has been applied
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to ensure migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := LoadMigrations(m.files)
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}

	out := make([]MigrationStatus, 0, len(files))
	for _, file := range files {
		checksum, ok := applied[file.Version]
		out = append(out, MigrationStatus{
			Version: file.Version,
			Name:    file.Name,
			Applied: ok,
			Drifted: ok && checksum != file.Checksum(),
		})
	}
	return out, nil
}

// getAppliedMigrations returns the checksum recorded for each applied version
func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]string, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version, checksum FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		applied[version] = checksum
	}

	return applied, rows.Err()
}

// calculateChecksum computes SHA256 checksum of migration content
func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// LoadMigrations reads NNN_name.sql and NNN_name.down.sql pairs from the root of files,
// sorted by version. Files without a version prefix are skipped.
func LoadMigrations(files fs.FS) ([]MigrationFile, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]*MigrationFile)
	for _, entry := range entries {
		base := entry.Name()
		if entry.IsDir() || path.Ext(base) != ".sql" {
			continue
		}

		stem := strings.TrimSuffix(base, ".sql")
		down := strings.HasSuffix(stem, ".down")
		stem = strings.TrimSuffix(stem, ".down")

		parts := strings.SplitN(stem, "_", 2)
		if len(parts) < 2 || parts[0] == "" {
			continue
		}

		data, err := fs.ReadFile(files, base)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", base, err)
		}

		file, ok := byVersion[parts[0]]
		if !ok {
			file = &MigrationFile{Version: parts[0], Name: parts[1]}
			byVersion[parts[0]] = file
		}
		if down {
			file.Down = string(data)
		} else {
			file.Up = string(data)
		}
	}

	out := make([]MigrationFile, 0, len(byVersion))
	for _, file := range byVersion {
		if file.Up == "" {
			return nil, fmt.Errorf("migration %s has a down script but no up script", file.Version)
		}
		out = append(out, *file)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Version < out[j].Version
	})
	return out, nil
}

// applyMigration executes a single migration inside a transaction and records its checksum
func (m *Migrator) applyMigration(ctx context.Context, file MigrationFile) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, file.Up); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", file.Version, file.Checksum())
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

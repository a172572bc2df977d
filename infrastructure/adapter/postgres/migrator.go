package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	MigrationUp   = "up"
	MigrationDown = "down"
)

type MigrationFile struct {
	Version int
	Name    string
	Path    string
	Kind    string
}

// Migrator applies numbered .up.sql/.down.sql files and records them in
// schema_migrations.
type Migrator struct {
	db     *sql.DB
	dir    string
	logger *logrus.Logger
}

func NewMigrator(db *sql.DB, dir string, log *logrus.Logger) *Migrator {
	return &Migrator{db: db, dir: dir, logger: log}
}

func (m *Migrator) Up(ctx context.Context) error {
	files, err := LoadMigrationFiles(m.dir)
	if err != nil {
		return err
	}
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}

	for _, f := range files {
		if f.Kind != MigrationUp {
			continue
		}
		applied, err := m.applied(ctx, f.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		m.logger.WithFields(logrus.Fields{"version": f.Version, "name": f.Name}).Info("Applying migration")
		if err := m.exec(ctx, f.Path); err != nil {
			return fmt.Errorf("failed applying %s: %w", f.Path, err)
		}
		_, err = m.db.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)`,
			f.Version, f.Name, time.Now().UTC())
		if err != nil {
			return err
		}
	}
	return nil
}

// Down reverts every applied migration, newest first.
func (m *Migrator) Down(ctx context.Context) error {
	files, err := LoadMigrationFiles(m.dir)
	if err != nil {
		return err
	}
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}

	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		if f.Kind != MigrationDown {
			continue
		}
		applied, err := m.applied(ctx, f.Version)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}

		m.logger.WithFields(logrus.Fields{"version": f.Version, "name": f.Name}).Info("Reverting migration")
		if err := m.exec(ctx, f.Path); err != nil {
			return fmt.Errorf("failed reverting %s: %w", f.Path, err)
		}
		if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, f.Version); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (m *Migrator) applied(ctx context.Context, version int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	return exists, err
}

func (m *Migrator) exec(ctx context.Context, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = m.db.ExecContext(ctx, string(body))
	return err
}

// LoadMigrationFiles lists dir sorted by version. Files without a numeric
// prefix are skipped; a plain .sql file counts as up.
func LoadMigrationFiles(dir string) ([]MigrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []MigrationFile
	for _, e := range entries {
		name := e.Name()
		lower := strings.ToLower(name)
		if e.IsDir() || !strings.HasSuffix(lower, ".sql") {
			continue
		}

		version, migName, err := ParseMigrationName(name)
		if err != nil {
			continue
		}

		kind := MigrationUp
		if strings.HasSuffix(lower, ".down.sql") {
			kind = MigrationDown
		}

		files = append(files, MigrationFile{
			Version: version,
			Name:    migName,
			Path:    filepath.Join(dir, name),
			Kind:    kind,
		})
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ParseMigrationName splits 001_create_users.up.sql into 1 and create_users.
func ParseMigrationName(filename string) (int, string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		return 0, "", errors.New("invalid migration filename")
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil || version < 0 {
		return 0, "", errors.New("invalid migration version")
	}

	name := strings.ToLower(parts[1])
	for _, suffix := range []string{".up.sql", ".down.sql", ".sql"} {
		if strings.HasSuffix(name, suffix) {
			name = parts[1][:len(parts[1])-len(suffix)]
			break
		}
	}
	return version, name, nil
}

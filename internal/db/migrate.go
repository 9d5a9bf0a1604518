package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

// Migration is one numbered SQL file, e.g. "001_create_positions.sql".
type Migration struct {
	ID       int
	Filename string
	Content  string
}

// OpenPostgres opens a plain database/sql handle through lib/pq, used by the
// migration runner.
func OpenPostgres(dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqlDB, nil
}

// RunMigrations applies every migration in dir newer than the recorded schema
// version and returns the files it applied.
func RunMigrations(sqlDB *sql.DB, dir string) ([]string, error) {
	if err := createMigrationsTable(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := currentVersion(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}

	migrations, err := LoadMigrations(dir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		if m.ID <= current {
			continue
		}
		if err := runMigration(sqlDB, m); err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.ID, m.Filename, err)
		}
		applied = append(applied, m.Filename)
	}
	return applied, nil
}

// LoadMigrations reads the numbered .sql files in dir, sorted by number.
func LoadMigrations(dir string) ([]Migration, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(file.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}
		migrations = append(migrations, Migration{ID: id, Filename: file.Name(), Content: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].ID < migrations[j].ID
	})
	return migrations, nil
}

func createMigrationsTable(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			executed_at TIMESTAMP DEFAULT NOW()
		)`)
	return err
}

func currentVersion(sqlDB *sql.DB) (int, error) {
	var version int
	err := sqlDB.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

func runMigration(sqlDB *sql.DB, m Migration) error {
	tx, err := sqlDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Content); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, filename) VALUES ($1, $2)", m.ID, m.Filename); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// MigrationType represents the type of database that migrations apply to
type MigrationType string

const MigrationTypeMain MigrationType = "main"

// MigrationFile represents a migration file with its metadata
type MigrationFile struct {
	FileName    string
	Version     int
	Type        MigrationType
	Description string
}

// Migrate applies all pending embedded migrations to the posts database
func (db *Database) Migrate() error {
	if err := ensureMigrationsTable(db.mainDB, string(MigrationTypeMain)); err != nil {
		return err
	}
	applied, err := getAppliedMigrations(db.mainDB, string(MigrationTypeMain))
	if err != nil {
		return err
	}
	migrations, err := getEmbeddedMigrations()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.Type != MigrationTypeMain || applied[m.FileName] {
			continue
		}
		if err := applyMigration(db.mainDB, m, string(MigrationTypeMain)); err != nil {
			return err
		}
		log.Printf("[DATABASE] Applied migration %s", m.FileName)
	}
	return nil
}

// parseMigrationFileName parses names like 0001_main_posts.sql
func parseMigrationFileName(fileName string) (*MigrationFile, error) {
	if !strings.HasSuffix(fileName, ".sql") {
		return nil, fmt.Errorf("migration file must have .sql extension: %s", fileName)
	}
	name := strings.TrimSuffix(fileName, ".sql")
	parts := strings.SplitN(name, "_", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid migration file name format: %s (expected format: 0001_type_description.sql)", fileName)
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid version number in migration file %s: %w", fileName, err)
	}
	return &MigrationFile{
		FileName:    fileName,
		Version:     version,
		Type:        MigrationType(parts[1]),
		Description: parts[2],
	}, nil
}

// getEmbeddedMigrations returns the embedded migrations sorted by version
func getEmbeddedMigrations() ([]*MigrationFile, error) {
	entries, err := embeddedMigrations.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	var migrations []*MigrationFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m, err := parseMigrationFileName(entry.Name())
		if err != nil {
			log.Printf("[DATABASE] Skipping migration file %s: %v", entry.Name(), err)
			continue
		}
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist
func ensureMigrationsTable(db *sql.DB, dbType string) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		db_type TEXT NOT NULL DEFAULT '',
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table for %s: %w", dbType, err)
	}
	return nil
}

// getAppliedMigrations returns a map of applied migration filenames
func getAppliedMigrations(db *sql.DB, dbType string) (map[string]bool, error) {
	applied := make(map[string]bool)
	rows, err := db.Query(`SELECT filename FROM schema_migrations WHERE db_type = ? OR db_type = ''`, dbType)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations for %s: %w", dbType, err)
	}
	defer rows.Close()
	for rows.Next() {
		var fname string
		if err := rows.Scan(&fname); err != nil {
			return nil, fmt.Errorf("failed to scan migration filename for %s: %w", dbType, err)
		}
		applied[fname] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration rows for %s: %w", dbType, err)
	}
	return applied, nil
}

// applyMigration runs one migration and records it in a single transaction
func applyMigration(db *sql.DB, migration *MigrationFile, dbType string) error {
	content, err := embeddedMigrations.ReadFile("migrations/" + migration.FileName)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", migration.FileName, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", migration.FileName, err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		log.Printf("[DATABASE] Failed to execute migration %s for %s: %v", migration.FileName, dbType, err)
		return fmt.Errorf("failed to execute migration %s for %s: %w", migration.FileName, dbType, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (filename, db_type) VALUES (?, ?)`, migration.FileName, dbType); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s for %s: %w", migration.FileName, dbType, err)
	}
	return tx.Commit()
}

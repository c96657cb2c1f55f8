package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// DBConfig represents database configuration
type DBConfig struct {
	// Path of the sqlite file, ":memory:" for tests
	Path string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Performance settings
	WALMode   bool   // Write-Ahead Logging
	SyncMode  string // OFF, NORMAL, FULL
	CacheSize int    // KB
	TempStore string // MEMORY, FILE

	AppVersion string // recorded in system_status
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Path:            "./data/posts.sq3",
		MaxOpenConns:    8,
		MaxIdleConns:    4,
		ConnMaxLifetime: 0, // sqlite connections don't need to be recycled
		WALMode:         true,
		SyncMode:        "NORMAL",
		CacheSize:       -4096, // -4096 == 4MB cache
		TempStore:       "MEMORY",
	}
}

// OpenDatabase opens (and creates if needed) the posts database and applies migrations
func OpenDatabase(dbconfig *DBConfig) (*Database, error) {
	if dbconfig == nil {
		dbconfig = DefaultDBConfig()
	}
	db := &Database{dbconfig: dbconfig}

	if err := db.initMainDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize main database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		if cerr := db.mainDB.Close(); cerr != nil {
			log.Printf("[DATABASE] Failed to close database after migration error: %v", cerr)
		}
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if wasClean, err := db.checkPreviousShutdown(); err != nil {
		log.Printf("[DATABASE] Warning: Failed to check previous shutdown state: %v", err)
	} else if !wasClean {
		log.Printf("[DATABASE] WARNING: Previous shutdown was not clean")
	}
	if err := db.initializeSystemStatus(dbconfig.AppVersion); err != nil {
		log.Printf("[DATABASE] Warning: Failed to initialize system status: %v", err)
	}

	log.Printf("[DATABASE] Database initialized: path=%s wal=%t sync=%s", dbconfig.Path, dbconfig.WALMode, dbconfig.SyncMode)
	return db, nil
}

// initMainDB initializes the main database connection
func (db *Database) initMainDB() error {
	dbPath := db.dbconfig.Path
	if dbPath != ":memory:" {
		if err := createDirIfNotExists(filepath.Dir(dbPath)); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	log.Printf("[DATABASE] Initializing main database at: %s", dbPath)

	mainDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open main database: %w", err)
	}

	if dbPath == ":memory:" {
		// every connection would get its own empty in-memory database
		mainDB.SetMaxOpenConns(1)
	} else {
		mainDB.SetMaxOpenConns(db.dbconfig.MaxOpenConns)
		mainDB.SetMaxIdleConns(db.dbconfig.MaxIdleConns)
	}
	mainDB.SetConnMaxLifetime(db.dbconfig.ConnMaxLifetime)

	if err := mainDB.Ping(); err != nil {
		if cerr := mainDB.Close(); cerr != nil {
			return fmt.Errorf("failed to ping main database: %w; also failed to close mainDB: %v", err, cerr)
		}
		return fmt.Errorf("failed to ping main database: %w", err)
	}

	if err := db.applySQLitePragmas(mainDB); err != nil {
		if cerr := mainDB.Close(); cerr != nil {
			return fmt.Errorf("failed to apply SQLite pragmas: %w; also failed to close mainDB: %v", err, cerr)
		}
		return fmt.Errorf("failed to apply SQLite pragmas: %w", err)
	}

	db.mainDB = mainDB
	return nil
}

// applySQLitePragmas applies performance and configuration pragmas to SQLite connection
func (db *Database) applySQLitePragmas(conn *sql.DB) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA cache_size = %d", db.dbconfig.CacheSize),
		fmt.Sprintf("PRAGMA synchronous = %s", db.dbconfig.SyncMode),
		fmt.Sprintf("PRAGMA temp_store = %s", db.dbconfig.TempStore),
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 30000", // 30 seconds
	}
	if db.dbconfig.WALMode && db.dbconfig.Path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma '%s': %w", pragma, err)
		}
	}
	return nil
}

// createDirIfNotExists creates a directory if it doesn't exist
func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

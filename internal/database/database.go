// Package database provides the sqlite storage behind the reference posts API
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

const (
	ShutdownStateClean      = "clean"
	ShutdownStateRunning    = "running"
	ShutdownStateInProgress = "shutting_down"
)

// Database wraps the posts database connection
type Database struct {
	mainDB *sql.DB

	MainMutex sync.RWMutex

	dbconfig *DBConfig
	closed   bool
}

// GetMainDB returns the database connection for direct access
func (db *Database) GetMainDB() *sql.DB {
	return db.mainDB
}

// IsDBshutdown reports whether Shutdown has been called
func (db *Database) IsDBshutdown() bool {
	if db == nil {
		return true
	}
	db.MainMutex.RLock()
	defer db.MainMutex.RUnlock()
	return db.closed
}

// Shutdown marks the shutdown as clean and closes the database
func (db *Database) Shutdown() error {
	db.MainMutex.Lock()
	defer db.MainMutex.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true

	var errs []error
	if err := db.setShutdownState(ShutdownStateInProgress); err != nil {
		log.Printf("[DATABASE] Warning: Failed to set shutdown state: %v", err)
	}
	// WAL checkpoint so the .sq3 file is self-contained after exit
	if _, err := db.mainDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Printf("[DATABASE] Warning: WAL checkpoint failed: %v", err)
	}
	if err := db.setShutdownState(ShutdownStateClean); err != nil {
		log.Printf("[DATABASE] Warning: Failed to mark shutdown as clean: %v", err)
	}
	if err := db.mainDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close main database: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Printf("[DATABASE] Database shutdown completed successfully")
	return nil
}

// checkPreviousShutdown reports whether the last run ended with a clean shutdown
func (db *Database) checkPreviousShutdown() (bool, error) {
	var state string
	err := retryableQueryRowScan(db.mainDB, `SELECT shutdown_state FROM system_status WHERE id = 1`, nil, &state)
	if err == sql.ErrNoRows {
		return true, nil // first start
	}
	if err != nil {
		return false, err
	}
	return state == ShutdownStateClean, nil
}

// initializeSystemStatus records this process as the running instance
func (db *Database) initializeSystemStatus(appVersion string) error {
	hostname, _ := os.Hostname()
	_, err := retryableExec(db.mainDB, `INSERT INTO system_status (id, app_version, pid, hostname, shutdown_state)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			app_version = excluded.app_version,
			pid = excluded.pid,
			hostname = excluded.hostname,
			shutdown_state = excluded.shutdown_state,
			started_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP`,
		appVersion, os.Getpid(), hostname, ShutdownStateRunning)
	return err
}

func (db *Database) setShutdownState(state string) error {
	_, err := retryableExec(db.mainDB, `UPDATE system_status SET shutdown_state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`, state)
	return err
}

package database

import (
	"database/sql"
	"log"
	"math/rand"
	"strings"
	"time"
)

const (
	maxRetries = 100
	baseDelay  = 10 * time.Millisecond
	maxDelay   = 25 * time.Millisecond
)

// sleep is swapped in tests
var sleep = time.Sleep

// isRetryableError reports whether sqlite refused the statement because of a lock
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"database is locked", "database table is locked", "busy"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// retryDelay grows linearly up to maxDelay and adds up to 50% jitter
func retryDelay(attempt int) time.Duration {
	delay := min(time.Duration(attempt+1)*baseDelay, maxDelay)
	return delay + time.Duration(rand.Int63n(int64(delay)/2))
}

// withRetry runs fn until it returns nil or a non lock error, at most maxRetries times.
func withRetry(what, query string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = fn(); !isRetryableError(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}
		log.Printf("[DATABASE] %s locked, retry %d/%d: %q: %v", what, attempt, maxRetries, shortQuery(query), err)
		sleep(retryDelay(attempt - 1))
	}
	return err
}

func retryableExec(db *sql.DB, query string, args ...any) (res sql.Result, err error) {
	err = withRetry("exec", query, func() (e error) {
		res, e = db.Exec(query, args...)
		return e
	})
	return res, err
}

func retryableQueryRowScan(db *sql.DB, query string, args []any, dest ...any) error {
	return withRetry("scan", query, func() error {
		return db.QueryRow(query, args...).Scan(dest...)
	})
}

func retryableQuery(db *sql.DB, query string, args ...any) (rows *sql.Rows, err error) {
	err = withRetry("query", query, func() (e error) {
		rows, e = db.Query(query, args...)
		return e
	})
	return rows, err
}

// shortQuery collapses whitespace and cuts the query for log lines
func shortQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > 50 {
		return q[:50] + "..."
	}
	return q
}

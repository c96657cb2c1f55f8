package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// openTestDB opens a database in a temp dir, skipping when the sqlite driver is unavailable (CGO_ENABLED=0)
func openTestDB(t *testing.T) *Database {
	t.Helper()
	cfg := DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "posts.sq3")
	db, err := OpenDatabase(cfg)
	if err != nil {
		t.Skipf("Skipping test: cannot open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Shutdown() })
	return db
}

func TestInsertAndListPosts(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	first, err := db.InsertPost("A", "a", base)
	assert.NilError(t, err)
	assert.Equal(t, first.DatePosted, "2024-01-15T10:00:00")
	_, err = db.InsertPost("B", "b http://x.y", base.Add(90*time.Second+123456*time.Microsecond))
	assert.NilError(t, err)
	// same timestamp as B, inserted later: newer id wins
	_, err = db.InsertPost("C", "c", base.Add(90*time.Second+123456*time.Microsecond))
	assert.NilError(t, err)

	posts, err := db.GetAllPosts()
	assert.NilError(t, err)
	assert.Assert(t, is.Len(posts, 3))
	assert.Equal(t, posts[0].Title, "C")
	assert.Equal(t, posts[1].Title, "B")
	assert.Equal(t, posts[1].Content, "b http://x.y")
	assert.Equal(t, posts[1].DatePosted, "2024-01-15T10:01:30.123456")
	assert.Equal(t, posts[2].Title, "A")
	assert.Equal(t, posts[2].ID, first.ID)

	n, err := db.CountPosts()
	assert.NilError(t, err)
	assert.Equal(t, n, int64(3))
}

func TestGetAllPostsEmpty(t *testing.T) {
	db := openTestDB(t)
	posts, err := db.GetAllPosts()
	assert.NilError(t, err)
	assert.Assert(t, posts != nil)
	assert.Assert(t, is.Len(posts, 0))
}

func TestReopenKeepsPostsAndSkipsMigrations(t *testing.T) {
	cfg := DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "sub", "posts.sq3")
	db, err := OpenDatabase(cfg)
	if err != nil {
		t.Skipf("Skipping test: cannot open sqlite database: %v", err)
	}
	_, err = db.InsertPost("kept", "body", time.Now())
	assert.NilError(t, err)
	assert.NilError(t, db.Shutdown())
	// second shutdown is a no-op
	assert.NilError(t, db.Shutdown())
	assert.Assert(t, db.IsDBshutdown())

	_, err = os.Stat(cfg.Path)
	assert.NilError(t, err)

	db, err = OpenDatabase(cfg)
	assert.NilError(t, err)
	defer db.Shutdown()
	clean, err := db.checkPreviousShutdown()
	assert.NilError(t, err)
	assert.Assert(t, !clean, "state is running again after reopen")

	posts, err := db.GetAllPosts()
	assert.NilError(t, err)
	assert.Assert(t, is.Len(posts, 1))
	assert.Equal(t, posts[0].Title, "kept")
}

func TestClosedDatabase(t *testing.T) {
	db := openTestDB(t)
	assert.NilError(t, db.Shutdown())
	_, err := db.GetAllPosts()
	assert.ErrorContains(t, err, "shut down")
	_, err = db.InsertPost("a", "b", time.Now())
	assert.ErrorContains(t, err, "shut down")
}

func TestParseMigrationFileName(t *testing.T) {
	m, err := parseMigrationFileName("0001_main_posts.sql")
	assert.NilError(t, err)
	assert.Equal(t, m.Version, 1)
	assert.Equal(t, m.Type, MigrationTypeMain)
	assert.Equal(t, m.Description, "posts")

	_, err = parseMigrationFileName("0001_main.sql")
	assert.ErrorContains(t, err, "invalid migration file name format")
	_, err = parseMigrationFileName("x_main_posts.sql")
	assert.ErrorContains(t, err, "invalid version number")
	_, err = parseMigrationFileName("0001_main_posts.txt")
	assert.ErrorContains(t, err, ".sql extension")
}

func TestEmbeddedMigrationsSorted(t *testing.T) {
	migrations, err := getEmbeddedMigrations()
	assert.NilError(t, err)
	assert.Assert(t, len(migrations) >= 2)
	for i := 1; i < len(migrations); i++ {
		assert.Assert(t, migrations[i-1].Version < migrations[i].Version)
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.Assert(t, !isRetryableError(nil))
	assert.Assert(t, isRetryableError(errString("database is locked")))
	assert.Assert(t, isRetryableError(errString("SQLITE_BUSY")))
	assert.Assert(t, !isRetryableError(errString("no such table: posts")))
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = time.Sleep })
	return &slept
}

func TestWithRetryLockedThenOK(t *testing.T) {
	slept := noSleep(t)
	calls := 0
	err := withRetry("exec", "INSERT INTO posts\n\t(title) VALUES (?)", func() error {
		calls++
		if calls < 3 {
			return errString("database is locked")
		}
		return nil
	})
	assert.NilError(t, err)
	assert.Equal(t, calls, 3)
	assert.Assert(t, is.Len(*slept, 2))
	for _, d := range *slept {
		assert.Assert(t, d >= baseDelay && d < maxDelay+maxDelay/2, "delay %v", d)
	}
}

func TestWithRetryStopsOnOtherErrors(t *testing.T) {
	slept := noSleep(t)
	calls := 0
	err := withRetry("scan", "SELECT 1", func() error {
		calls++
		return errString("no such table: posts")
	})
	assert.Error(t, err, "no such table: posts")
	assert.Equal(t, calls, 1)
	assert.Assert(t, is.Len(*slept, 0))
}

func TestWithRetryGivesUp(t *testing.T) {
	slept := noSleep(t)
	calls := 0
	err := withRetry("query", "SELECT 1", func() error {
		calls++
		return errString("database is locked")
	})
	assert.Error(t, err, "database is locked")
	assert.Equal(t, calls, maxRetries)
	assert.Assert(t, is.Len(*slept, maxRetries-1))
}

func TestShortQuery(t *testing.T) {
	assert.Equal(t, shortQuery("SELECT  id\n\tFROM posts"), "SELECT id FROM posts")
	assert.Equal(t, shortQuery(strings.Repeat("x", 60)), strings.Repeat("x", 50)+"...")
}

type errString string

func (e errString) Error() string { return string(e) }

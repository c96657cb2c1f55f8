package web

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/database"
	"github.com/go-while/go-postboard/internal/postapi"
	"github.com/go-while/go-postboard/internal/postsrv"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// TestBoardAgainstReferenceAPI runs the board through the HTTP client against the sqlite backed posts API
func TestBoardAgainstReferenceAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dbcfg := database.DefaultDBConfig()
	dbcfg.Path = filepath.Join(t.TempDir(), "posts.sq3")
	db, err := database.OpenDatabase(dbcfg)
	if err != nil {
		t.Skipf("Skipping test: cannot open sqlite database: %v", err)
	}
	defer db.Shutdown()

	cfg := config.NewDefaultConfig()
	cfg.Display.TimeZone = "UTC"
	apiServer := httptest.NewServer(postsrv.NewServer(db, &cfg.API, false).Router)
	defer apiServer.Close()

	client, err := postapi.NewClient(apiServer.URL, postapi.Options{})
	assert.NilError(t, err)
	s, err := NewServer(client, &cfg.Web, &cfg.Display)
	assert.NilError(t, err)

	w := get(s, "/")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Assert(t, is.Contains(w.Body.String(), "No posts yet."))

	w = postForm(s, "First", "hello")
	assert.Equal(t, w.Code, http.StatusSeeOther)
	assert.Assert(t, is.Contains(get(s, "/").Body.String(), "<h2>First</h2>"))
	w = postForm(s, "Second", "visit https://go.dev/doc")
	assert.Equal(t, w.Code, http.StatusSeeOther)
	body := get(s, "/").Body.String()
	assert.Assert(t, strings.Index(body, "<h2>Second</h2>") < strings.Index(body, "<h2>First</h2>"), "newest first")
	assert.Assert(t, is.Contains(body, `<a href="https://go.dev/doc" target="_blank" rel="noopener noreferrer" class="post-link">https://go.dev/doc</a>`))
	assert.Assert(t, !strings.Contains(body, `role="alert"`))

	// the API is gone: the failure is shown and the draft survives
	apiServer.Close()
	w = postForm(s, "Third", "lost?")
	body = w.Body.String()
	assert.Assert(t, is.Contains(body, "Failed to post. Please try again. Error: Failed to post:"))
	assert.Assert(t, is.Contains(body, "Failed to load posts. Please try again."))
	assert.Assert(t, is.Contains(body, `value="Third"`))

	n, err := db.CountPosts()
	assert.NilError(t, err)
	assert.Equal(t, n, int64(2))
}

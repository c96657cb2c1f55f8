package termview

import (
	"bytes"
	"testing"

	"github.com/go-while/go-postboard/internal/board"
	"github.com/go-while/go-postboard/internal/models"
	"gotest.tools/v3/assert"
)

func rendered(t *testing.T, posts ...*models.Post) []*board.RenderedPost {
	t.Helper()
	dates, err := models.NewDateFormatter("en-US", "UTC")
	assert.NilError(t, err)
	return board.Render(posts, dates)
}

func TestReplacePlain(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf, 10)
	v.Replace(rendered(t,
		&models.Post{Title: "One", Content: "see http://a.b now", DatePosted: "2024-01-15T10:30:00Z"},
		&models.Post{Title: "Two\x1b[31m", Content: "x", DatePosted: "nope"},
	))
	assert.Equal(t, buf.String(), "One\n1/15/2024\n\nsee http://a.b now\n----------\nTwo[31m\nInvalid Date\n\nx\n")
	assert.Equal(t, v.Shown(), 2)
}

func TestReplaceHyperlinks(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf, 0)
	v.Hyperlinks = true
	v.Replace(rendered(t, &models.Post{Title: "T", Content: "go https://go.dev", DatePosted: "2024-01-15"}))
	assert.Equal(t, buf.String(), "T\n1/15/2024\n\ngo \x1b]8;;https://go.dev\x1b\\https://go.dev\x1b]8;;\x1b\\\n")
}

func TestReplaceEmpty(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf, 0)
	v.Replace(nil)
	assert.Equal(t, buf.String(), "No posts yet.\n")
	assert.Equal(t, v.Width, defaultWidth)
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	Notifier{W: &buf}.Notify("Please enter both title and content")
	assert.Equal(t, buf.String(), "! Please enter both title and content\n")
}

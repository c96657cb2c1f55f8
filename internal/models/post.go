// Package models defines core data structures for go-postboard
package models

import (
	"strings"
	"time"
)

// Post represents a board post as served by GET /api/posts
type Post struct {
	ID         int64  `json:"id,omitempty" db:"id"` // ignored by the board, the reference API sends it
	Title      string `json:"title" db:"title"`
	Content    string `json:"content" db:"content"`
	DatePosted string `json:"date_posted" db:"date_posted"` // ISO-8601, only used for display
}

// NewPost is the payload of POST /api/posts
type NewPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewPostFromInput trims both fields the way the submission form does
func NewPostFromInput(title, content string) *NewPost {
	return &NewPost{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}
}

// Complete reports whether both fields are non-empty after trimming
func (p *NewPost) Complete() bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Content) != ""
}

// ISOTimestamp formats t like the reference API does: UTC, microseconds, no zone suffix.
// Trailing zero fractions are dropped, matching Python's isoformat().
func ISOTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}

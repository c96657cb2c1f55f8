package database

import (
	"fmt"
	"time"

	"github.com/go-while/go-postboard/internal/models"
)

// InsertPost stores a post and returns it with its id and date_posted
func (db *Database) InsertPost(title, content string, at time.Time) (*models.Post, error) {
	if db.IsDBshutdown() {
		return nil, fmt.Errorf("database is shut down")
	}
	at = at.UTC().Truncate(time.Microsecond)
	res, err := retryableExec(db.mainDB, `INSERT INTO posts (title, content, posted_at) VALUES (?, ?, ?)`,
		title, content, at.UnixMicro())
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get post id: %w", err)
	}
	return &models.Post{
		ID:         id,
		Title:      title,
		Content:    content,
		DatePosted: models.ISOTimestamp(at),
	}, nil
}

// GetAllPosts returns every post, newest first
func (db *Database) GetAllPosts() ([]*models.Post, error) {
	if db.IsDBshutdown() {
		return nil, fmt.Errorf("database is shut down")
	}
	rows, err := retryableQuery(db.mainDB, `SELECT id, title, content, posted_at FROM posts ORDER BY posted_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, 64)
	for rows.Next() {
		var p models.Post
		var postedAt int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &postedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.DatePosted = models.ISOTimestamp(time.UnixMicro(postedAt))
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

// CountPosts returns the number of stored posts
func (db *Database) CountPosts() (int64, error) {
	var n int64
	if err := retryableQueryRowScan(db.mainDB, `SELECT COUNT(*) FROM posts`, nil, &n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

package postsrv

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// listEntry is one element of GET /api/posts; ids are not exposed there
type listEntry struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	DatePosted string `json:"date_posted"`
}

// createRequest accepts any JSON value per field so wrong types are rejected as missing
type createRequest struct {
	Title   interface{} `json:"title"`
	Content interface{} `json:"content"`
}

func (s *Server) listPosts(c *gin.Context) {
	posts, err := s.Store.GetAllPosts()
	if err != nil {
		log.Printf("[POSTSAPI]: Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}
	entries := make([]listEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, listEntry{
			Title:      p.Title,
			Content:    p.Content,
			DatePosted: p.DatePosted,
		})
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) createPost(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrMissingFields.Error()})
		return
	}
	title, ok1 := nonEmptyString(req.Title)
	content, ok2 := nonEmptyString(req.Content)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrMissingFields.Error()})
		return
	}

	post, err := s.Store.InsertPost(title, content, s.now())
	if err != nil {
		log.Printf("[POSTSAPI]: Failed to create post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          post.ID,
		"title":       post.Title,
		"content":     post.Content,
		"date_posted": post.DatePosted,
	})
}

// nonEmptyString accepts strings only; surrounding whitespace is stored as sent
func nonEmptyString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Package postsrv is the reference posts API the board talks to
package postsrv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/models"
)

// ErrMissingFields is returned to clients posting without a title or content
var ErrMissingFields = errors.New("Missing title or content")

// Store persists posts
type Store interface {
	InsertPost(title, content string, at time.Time) (*models.Post, error)
	GetAllPosts() ([]*models.Post, error)
}

// Server serves GET and POST /api/posts
type Server struct {
	Store  Store
	Router *gin.Engine
	Config *config.APIConfig

	now func() time.Time
	srv *http.Server
}

// NewServer creates the API server and its routes
func NewServer(store Store, apiconfig *config.APIConfig, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "no-referrer",
		IsDevelopment:      debug,
	}))

	s := &Server{
		Store:  store,
		Router: router,
		Config: apiconfig,
		now:    time.Now,
	}
	s.setupRoutes()
	s.srv = &http.Server{
		Addr:              ":" + strconv.Itoa(apiconfig.ListenPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.Router.Use(apiLogFormat())
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	api := s.Router.Group("/api")
	{
		api.GET("/posts", s.listPosts)
		api.POST("/posts", s.createPost)
	}
}

// Start listens on the configured port until Shutdown
func (s *Server) Start() error {
	log.Printf("[POSTSAPI]: Starting posts API on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("posts API server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func apiLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`[POSTSAPI]: %s "%s %s" %d %d %s`+"\n",
			param.ClientIP,
			param.Method,
			param.Path,
			param.StatusCode,
			param.BodySize,
			param.Latency,
		)
	})
}

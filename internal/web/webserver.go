// Package web provides the HTTP server and web interface for the posting board
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-postboard/internal/board"
	"github.com/go-while/go-postboard/internal/config"
	"github.com/go-while/go-postboard/internal/models"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// WebServer renders the board and forwards submissions to the posts API
type WebServer struct {
	API       board.PostsAPI
	Router    *gin.Engine
	Config    *config.WebConfig
	Dates     *models.DateFormatter
	SiteTitle string
	StartTime time.Time // Track server start time for uptime calculations

	srv *http.Server
}

// NewServer creates a new web server instance
func NewServer(api board.PostsAPI, webconfig *config.WebConfig, display *config.DisplayConfig) (*WebServer, error) {
	if api == nil {
		return nil, errors.New("web: posts API is nil")
	}
	dates, err := models.NewDateFormatter(display.Locale, display.TimeZone)
	if err != nil {
		return nil, err
	}

	if !webconfig.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	if len(webconfig.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(webconfig.TrustedProxies); err != nil {
			return nil, fmt.Errorf("invalid trusted proxies: %w", err)
		}
	}

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'none'; object-src 'none'; base-uri 'none'; form-action 'self'",
		IsDevelopment:         webconfig.Debug,
	}
	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	server := &WebServer{
		API:       api,
		Router:    router,
		Config:    webconfig,
		Dates:     dates,
		SiteTitle: display.SiteTitle,
		StartTime: time.Now(),
	}

	router.Use(server.RequestIDMiddleware())
	router.Use(server.ApacheLogFormat())
	router.Use(gin.Recovery())
	router.Use(secure.New(secureConfig))
	// Add reverse proxy middleware for handling X-Forwarded headers
	router.Use(server.ReverseProxyMiddleware())

	server.setupRoutes()
	server.srv = &http.Server{
		Addr:              ":" + strconv.Itoa(webconfig.ListenPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/static/*filepath", EmbeddedStaticHandler("/static"))
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	s.Router.GET("/", s.boardPage)
	s.Router.POST("/post", s.submitPost)
	s.Router.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "Page not found", c.Request.URL.Path)
	})
}

// Start starts the web server with SSL support if configured. It returns nil after Shutdown.
func (s *WebServer) Start() error {
	addr := s.srv.Addr
	var err error
	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", addr)
		err = s.srv.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
	} else {
		log.Printf("[WEB]: Starting HTTP server on %s", addr)
		err = s.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server. Called before Start, it makes Start return nil at once.
func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// RequestIDMiddleware tags every request with a uuid, keeping a valid incoming X-Request-ID
func (s *WebServer) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}
		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = strings.TrimSpace(strings.Split(host, ",")[0])
		}
		c.Next()
	}
}

// ApacheLogFormat logs requests in combined log format, followed by the request id
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		reqID, _ := param.Keys["request_id"].(string)
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s" %s`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
			reqID,
		)
	})
}

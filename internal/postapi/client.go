// Package postapi is the HTTP client for the board's posts API
package postapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-while/go-postboard/internal/models"
	"golang.org/x/net/proxy"
)

// PostsPath is the collection endpoint for listing and creating posts
const PostsPath = "/api/posts"

// Options configures a Client
type Options struct {
	// Timeout per request, 0 means none: a hung request is only ended by its context
	Timeout time.Duration
	// SOCKS5 proxy address host:port, empty for direct connections
	ProxyAddr     string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
}

// Client talks to GET/POST /api/posts
type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

// NewClient creates a client for the API rooted at baseURL (e.g. http://localhost:5000)
func NewClient(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid posts API base URL '%s': scheme must be http or https", baseURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyAddr != "" {
		dial, err := socks5DialContext(opts)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dial
	}

	return &Client{
		BaseURL:   baseURL,
		UserAgent: opts.UserAgent,
		HTTP:      &http.Client{Timeout: opts.Timeout, Transport: transport},
	}, nil
}

// socks5DialContext returns a dial function routing connections through a SOCKS5 proxy
func socks5DialContext(opts Options) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	var auth *proxy.Auth
	if opts.ProxyUsername != "" {
		auth = &proxy.Auth{
			User:     opts.ProxyUsername,
			Password: opts.ProxyPassword,
		}
	}
	dialer, err := proxy.SOCKS5("tcp", opts.ProxyAddr, auth, &net.Dialer{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 proxy dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		return dialer.Dial(network, address)
	}, nil
}

// ListPosts fetches all posts in server order
func (c *Client) ListPosts(ctx context.Context) ([]*models.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+PostsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, OpLoadPosts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := decodedBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &TransportError{Op: OpLoadPosts, Err: err}
	}
	// Unmarshal rejects trailing data after the array
	var posts []*models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	if posts == nil {
		return nil, fmt.Errorf("failed to decode posts: expected array, got null")
	}
	for i, p := range posts {
		if p == nil {
			return nil, fmt.Errorf("failed to decode posts: entry %d is null", i)
		}
	}
	return posts, nil
}

// CreatePost submits a new post; the response body is ignored
func (c *Client) CreatePost(ctx context.Context, post *models.NewPost) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+PostsPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, OpPost)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// do sends req and turns transport failures and non-2xx responses into typed errors
func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	return resp, nil
}

// statusText returns the reason phrase of the response, "Internal Server Error" for "500 Internal Server Error"
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

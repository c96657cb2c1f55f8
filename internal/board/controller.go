// Package board implements the post list & submission controller of the posting board.
//
// A Controller mediates between a form (title and content fields), a rendered
// post list and the posts API. It never caches posts: every successful load
// replaces the list with the server's response as-is.
package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-while/go-postboard/internal/models"
)

// user facing messages
const (
	MsgMissingFields = "Please enter both title and content"
	msgLoadFailed    = "Failed to load posts. Please try again. Error: "
	msgPostFailed    = "Failed to post. Please try again. Error: "
)

// ErrEmptyField is returned by Submit when title or content is blank after trimming
var ErrEmptyField = errors.New("title and content are required")

// PostsAPI is the network side of the board
type PostsAPI interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	CreatePost(ctx context.Context, post *models.NewPost) error
}

// Notifier shows a message to the user and returns once it was delivered
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// TextField is an input the controller reads and clears
type TextField interface {
	Value() string
	SetValue(v string)
}

// PostList receives the fully rendered list on every successful load
type PostList interface {
	Replace(posts []*RenderedPost)
}

// Handles are the UI elements the controller is attached to
type Handles struct {
	Title   TextField
	Content TextField
	Posts   PostList
}

// Config holds the optional collaborators of a Controller
type Config struct {
	Dates  *models.DateFormatter // nil: en-US in the host time zone
	Logger *log.Logger           // nil: log.Default()
}

// Controller is the post list & submission controller
type Controller struct {
	api      PostsAPI
	h        Handles
	notifier Notifier
	dates    *models.DateFormatter
	logger   *log.Logger

	startOnce sync.Once
	startErr  error

	mux     sync.Mutex // guards state, outcome and writes to the handles
	state   State
	outcome Outcome
}

// New attaches a controller to its handles. All handles, api and notifier are required.
func New(api PostsAPI, h Handles, notifier Notifier, cfg Config) (*Controller, error) {
	switch {
	case api == nil:
		return nil, errors.New("board: posts API is nil")
	case h.Title == nil || h.Content == nil:
		return nil, errors.New("board: title and content fields are required")
	case h.Posts == nil:
		return nil, errors.New("board: post list is nil")
	case notifier == nil:
		return nil, errors.New("board: notifier is nil")
	}
	if cfg.Dates == nil {
		cfg.Dates = models.DefaultDateFormatter()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Controller{
		api:      api,
		h:        h,
		notifier: notifier,
		dates:    cfg.Dates,
		logger:   cfg.Logger,
	}, nil
}

// Start is the page-ready signal: it loads the posts once. Later calls return the first result.
func (c *Controller) Start(ctx context.Context) error {
	c.startOnce.Do(func() {
		c.startErr = c.LoadPosts(ctx)
	})
	return c.startErr
}

// LoadPosts fetches all posts and replaces the rendered list.
// On failure the user is notified and the current list is left untouched.
func (c *Controller) LoadPosts(ctx context.Context) error {
	posts, err := c.api.ListPosts(ctx)
	if err != nil {
		c.logger.Printf("[BOARD]: Error loading posts: %v", err)
		c.notifier.Notify(msgLoadFailed + err.Error())
		return fmt.Errorf("load posts: %w", err)
	}
	rendered := Render(posts, c.dates)

	c.mux.Lock()
	c.h.Posts.Replace(rendered)
	c.mux.Unlock()
	return nil
}

// Submit validates the form, creates the post and reloads the list.
//
// Blank fields notify MsgMissingFields and never reach the network. A failed
// request keeps the field contents so the draft is not lost. After a
// successful create the fields are cleared and the list reloaded; a failing
// reload is reported by LoadPosts itself and does not change the outcome.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mux.Lock()
	c.state = StateValidating
	post := models.NewPostFromInput(c.h.Title.Value(), c.h.Content.Value())
	if !post.Complete() {
		c.state, c.outcome = StateIdle, OutcomeInvalid
		c.mux.Unlock()
		c.notifier.Notify(MsgMissingFields)
		return OutcomeInvalid, ErrEmptyField
	}
	c.state = StateSubmitting
	c.mux.Unlock()

	if err := c.api.CreatePost(ctx, post); err != nil {
		c.logger.Printf("[BOARD]: Error posting: %v", err)
		c.finish(OutcomeFailed)
		c.notifier.Notify(msgPostFailed + err.Error())
		return OutcomeFailed, fmt.Errorf("create post: %w", err)
	}

	c.mux.Lock()
	c.h.Title.SetValue("")
	c.h.Content.SetValue("")
	c.mux.Unlock()

	c.LoadPosts(ctx)
	c.finish(OutcomeReloaded)
	return OutcomeReloaded, nil
}

func (c *Controller) finish(o Outcome) {
	c.mux.Lock()
	c.state, c.outcome = StateIdle, o
	c.mux.Unlock()
}

// State returns where the current interaction is
func (c *Controller) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.state
}

// LastOutcome returns how the last finished submission ended
func (c *Controller) LastOutcome() Outcome {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.outcome
}

// State of a user interaction: Idle → Validating → Idle | Submitting → Idle
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is how a submission returned to Idle
type Outcome int

const (
	OutcomeNone     Outcome = iota
	OutcomeInvalid          // validation prompt shown, nothing sent
	OutcomeReloaded         // created, form cleared, list reloaded
	OutcomeFailed           // error shown, draft kept
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeReloaded:
		return "reloaded"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

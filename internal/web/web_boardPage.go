package web

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-postboard/internal/board"
	"github.com/go-while/go-postboard/internal/config"
)

// TemplateData represents common template data
type TemplateData struct {
	Title       string
	SiteTitle   string
	AppVersion  string
	RequestID   string
	CurrentTime string
}

// BoardPageData is the form, the notifications and the rendered post list
type BoardPageData struct {
	TemplateData
	TitleValue   string
	ContentValue string
	Alerts       []string
	Posts        []*board.RenderedPost
	Loaded       bool // false when no list could be loaded
}

// boardView holds the handles of one page render
type boardView struct {
	title   *board.Field
	content *board.Field
	posts   *board.List
	alerts  *board.Alerts
}

func newBoardView(title, content string) *boardView {
	return &boardView{
		title:   board.NewField(title),
		content: board.NewField(content),
		posts:   &board.List{},
		alerts:  &board.Alerts{},
	}
}

func (v *boardView) handles() board.Handles {
	return board.Handles{Title: v.title, Content: v.content, Posts: v.posts}
}

// newController attaches a fresh controller to v; nothing is shared between requests
func (s *WebServer) newController(v *boardView) (*board.Controller, error) {
	return board.New(s.API, v.handles(), v.alerts, board.Config{Dates: s.Dates})
}

// boardPage is GET /: load and show the board
func (s *WebServer) boardPage(c *gin.Context) {
	view := newBoardView("", "")
	ctrl, err := s.newController(view)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Board unavailable", err.Error())
		return
	}
	// failures are reported through the alerts
	_ = ctrl.Start(c.Request.Context())
	s.renderBoard(c, view)
}

// submitPost is POST /post: submit the form. Success redirects to the board,
// otherwise the board is shown with the kept draft and the alerts.
func (s *WebServer) submitPost(c *gin.Context) {
	view := newBoardView(c.PostForm("title"), c.PostForm("content"))
	ctrl, err := s.newController(view)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Board unavailable", err.Error())
		return
	}
	ctx := c.Request.Context()
	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		log.Printf("[WEB]: Submit %s: %v", outcome, err)
	}
	switch {
	case outcome == board.OutcomeReloaded && len(view.alerts.Messages()) == 0:
		// post/redirect/get: a browser refresh must not send the post again
		c.Redirect(http.StatusSeeOther, "/")
		return
	case outcome != board.OutcomeReloaded:
		// the page still shows the current list next to the kept draft
		_ = ctrl.Start(ctx)
	}
	s.renderBoard(c, view)
}

func (s *WebServer) renderBoard(c *gin.Context, view *boardView) {
	data := BoardPageData{
		TemplateData: s.getBaseTemplateData(c, s.SiteTitle),
		TitleValue:   view.title.Value(),
		ContentValue: view.content.Value(),
		Alerts:       view.alerts.Messages(),
		Posts:        view.posts.Posts(),
		Loaded:       view.posts.Replaced() > 0,
	}
	s.renderTemplate(c, http.StatusOK, "board.html", data)
}

func (s *WebServer) getBaseTemplateData(c *gin.Context, title string) TemplateData {
	return TemplateData{
		Title:       title,
		SiteTitle:   s.SiteTitle,
		AppVersion:  config.AppVersion,
		RequestID:   c.GetString("request_id"),
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
	}
}

// renderTemplate parses base.html with the page template on every call
func (s *WebServer) renderTemplate(c *gin.Context, status int, page string, data interface{}) {
	tmpl, err := template.ParseFS(embeddedTemplatesFS, "templates/base.html", "templates/"+page)
	if err != nil {
		log.Printf("[WEB]: Template parse error %s: %v", page, err)
		c.String(http.StatusInternalServerError, "Template error")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := tmpl.ExecuteTemplate(c.Writer, "base.html", data); err != nil {
		log.Printf("[WEB]: Template execute error %s: %v", page, err)
	}
}

func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	errorData := struct {
		TemplateData
		Error      string
		StatusCode int
	}{
		TemplateData: s.getBaseTemplateData(c, "Error"),
		Error:        message,
		StatusCode:   statusCode,
	}
	log.Printf("[WEB]: Error %d: %s - %s", statusCode, message, errstring)
	s.renderTemplate(c, statusCode, "error.html", errorData)
}

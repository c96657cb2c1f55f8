package board

import (
	"html/template"

	"github.com/go-while/go-postboard/internal/models"
)

// RenderedPost is one post block: title, localized date and content
type RenderedPost struct {
	Title    string
	Date     string
	Content  template.HTML    // escaped text with link anchors
	Segments []models.Segment // the same content for non-HTML views
}

// Render turns posts into post blocks, keeping their order
func Render(posts []*models.Post, dates *models.DateFormatter) []*RenderedPost {
	rendered := make([]*RenderedPost, 0, len(posts))
	for _, p := range posts {
		rendered = append(rendered, &RenderedPost{
			Title:    p.Title,
			Date:     dates.Format(p.DatePosted),
			Content:  models.RenderContent(p.Content),
			Segments: models.SplitContent(p.Content),
		})
	}
	return rendered
}

// Text returns the content without markup
func (p *RenderedPost) Text() string {
	var n int
	for _, s := range p.Segments {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range p.Segments {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// Links returns the link segments of the content
func (p *RenderedPost) Links() []string {
	var links []string
	for _, s := range p.Segments {
		if s.IsLink {
			links = append(links, s.Text)
		}
	}
	return links
}

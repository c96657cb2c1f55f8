package models

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"unicode"
)

// linkPattern matches http:// or https:// followed by one or more non-whitespace characters.
// The negated class lists every character browsers treat as \s, not only ASCII space.
var linkPattern = regexp.MustCompile(`https?://[^\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]+`)

// Segment is a run of post content: either literal text or a detected link
type Segment struct {
	Text   string
	IsLink bool
}

// SplitContent splits content into alternating text and link segments.
// Joining all Segment.Text values gives back the original content.
func SplitContent(content string) []Segment {
	if content == "" {
		return nil
	}
	var segments []Segment
	last := 0
	for _, loc := range linkPattern.FindAllStringIndex(content, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: content[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: content[loc[0]:loc[1]], IsLink: true})
		last = loc[1]
	}
	if last < len(content) {
		segments = append(segments, Segment{Text: content[last:]})
	}
	return segments
}

// RenderContent returns the post content as HTML safe for web display.
// Text is escaped, links open in a new browsing context without opener or referrer.
func RenderContent(content string) template.HTML {
	if cached, ok := getCachedRender(content); ok {
		return cached
	}
	var sb strings.Builder
	for _, seg := range SplitContent(content) {
		if !seg.IsLink {
			sb.WriteString(html.EscapeString(seg.Text))
			continue
		}
		escaped := html.EscapeString(seg.Text)
		sb.WriteString(`<a href="`)
		sb.WriteString(escaped)
		sb.WriteString(`" target="_blank" rel="noopener noreferrer" class="post-link">`)
		sb.WriteString(escaped)
		sb.WriteString(`</a>`)
	}
	rendered := template.HTML(sb.String())
	setCachedRender(content, rendered)
	return rendered
}

// StripControl removes control characters (escape sequences included) so text
// written to a terminal cannot carry its own formatting. Newlines and tabs are kept.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

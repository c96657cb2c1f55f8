// Package termview shows the board in a terminal
package termview

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-while/go-postboard/internal/board"
	"github.com/go-while/go-postboard/internal/models"
	"golang.org/x/term"
)

const defaultWidth = 80

// View is a board.PostList writing post blocks to a terminal or plain writer
type View struct {
	mux        sync.Mutex
	w          io.Writer
	Width      int
	Hyperlinks bool // OSC 8 links, only when writing to a terminal
	shown      int
}

// New returns a plain-text view of width columns
func New(w io.Writer, width int) *View {
	if width <= 0 {
		width = defaultWidth
	}
	return &View{w: w, Width: width}
}

// NewForFile enables hyperlinks and picks the width when f is a terminal
func NewForFile(f *os.File) *View {
	v := New(f, defaultWidth)
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		v.Hyperlinks = true
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			v.Width = w
		}
	}
	return v
}

// Replace writes the whole list; a terminal has no way to remove the old one
func (v *View) Replace(posts []*board.RenderedPost) {
	v.mux.Lock()
	defer v.mux.Unlock()
	v.shown = len(posts)
	if len(posts) == 0 {
		fmt.Fprintln(v.w, "No posts yet.")
		return
	}
	rule := strings.Repeat("-", min(v.Width, defaultWidth))
	for i, p := range posts {
		if i > 0 {
			fmt.Fprintln(v.w, rule)
		}
		fmt.Fprintln(v.w, models.StripControl(p.Title))
		fmt.Fprintln(v.w, p.Date)
		fmt.Fprintln(v.w)
		fmt.Fprintln(v.w, v.content(p.Segments))
	}
}

// Shown returns the number of posts of the last Replace
func (v *View) Shown() int {
	v.mux.Lock()
	defer v.mux.Unlock()
	return v.shown
}

func (v *View) content(segments []models.Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		text := models.StripControl(s.Text)
		if s.IsLink && v.Hyperlinks {
			sb.WriteString("\x1b]8;;" + text + "\x1b\\" + text + "\x1b]8;;\x1b\\")
			continue
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// Notifier prints notifications as error lines
type Notifier struct {
	W io.Writer
}

func (n Notifier) Notify(message string) {
	fmt.Fprintf(n.W, "! %s\n", models.StripControl(message))
}

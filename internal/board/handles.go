package board

import "sync"

// Field is an in-memory TextField
type Field struct {
	mux sync.RWMutex
	v   string
}

// NewField returns a field holding v
func NewField(v string) *Field {
	return &Field{v: v}
}

func (f *Field) Value() string {
	f.mux.RLock()
	defer f.mux.RUnlock()
	return f.v
}

func (f *Field) SetValue(v string) {
	f.mux.Lock()
	f.v = v
	f.mux.Unlock()
}

// List is an in-memory PostList
type List struct {
	mux      sync.RWMutex
	posts    []*RenderedPost
	replaced int
}

func (l *List) Replace(posts []*RenderedPost) {
	l.mux.Lock()
	l.posts = posts
	l.replaced++
	l.mux.Unlock()
}

// Posts returns the currently rendered posts
func (l *List) Posts() []*RenderedPost {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.posts
}

// Replaced returns how many times the list was rendered
func (l *List) Replaced() int {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.replaced
}

// Alerts collects notifications for views that show them after the fact
type Alerts struct {
	mux  sync.Mutex
	msgs []string
}

func (a *Alerts) Notify(message string) {
	a.mux.Lock()
	a.msgs = append(a.msgs, message)
	a.mux.Unlock()
}

// Messages returns the collected notifications in order
func (a *Alerts) Messages() []string {
	a.mux.Lock()
	defer a.mux.Unlock()
	return append([]string(nil), a.msgs...)
}

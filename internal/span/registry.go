// Package span keeps the named spans that $name$ dereferences refer to.
package span

import (
	"fmt"
	"strings"
	"sync"

	"github.com/armon/go-radix"

	"github.com/jeffwilliams/ctxpat/internal/pattern"
)

// Source is text a region span reads from. *frame.Frame is a Source.
type Source interface {
	Text(from, to pattern.Position) string
}

// Span is a named piece of text: either fixed text, or a region of a Source
// that is read each time the span is looked up.
type Span struct {
	Name     string
	text     string
	src      Source
	from, to pattern.Position
}

// Text returns the current text of the span.
func (s *Span) Text() string {
	if s.src != nil {
		return s.src.Text(s.from, s.to)
	}
	return s.text
}

// IsRegion reports whether the span is bound to a region of a Source.
func (s *Span) IsRegion() bool {
	return s.src != nil
}

func (s *Span) String() string {
	if s.src != nil {
		return fmt.Sprintf("%s %s-%s", s.Name, s.from, s.to)
	}
	return fmt.Sprintf("%s %q", s.Name, s.text)
}

// Registry maps span names to spans. Names are case insensitive. It
// implements pattern.SpanProvider and is safe for concurrent use.
type Registry struct {
	tree *radix.Tree
	lock sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		tree: radix.New(),
	}
}

func key(name string) string {
	return strings.ToUpper(name)
}

// Define sets name to fixed text, replacing any earlier definition.
func (r *Registry) Define(name, text string) {
	r.insert(&Span{Name: key(name), text: text})
}

// DefineRegion binds name to the text between from and to in src.
func (r *Registry) DefineRegion(name string, src Source, from, to pattern.Position) {
	if to.Before(from) {
		from, to = to, from
	}
	r.insert(&Span{Name: key(name), src: src, from: from, to: to})
}

func (r *Registry) insert(s *Span) {
	r.lock.Lock()
	r.tree.Insert(s.Name, s)
	r.lock.Unlock()
}

// Undefine removes name. It reports whether the name was defined.
func (r *Registry) Undefine(name string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ok := r.tree.Delete(key(name))
	return ok
}

// Get returns the span called name.
func (r *Registry) Get(name string) (*Span, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.tree.Get(key(name))
	if !ok {
		return nil, false
	}
	return v.(*Span), true
}

// Span returns the text of the span called name. The error wraps
// pattern.ErrUndefinedSpan if there is no such span.
func (r *Registry) Span(name string) (string, error) {
	s, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", pattern.ErrUndefinedSpan, name)
	}
	return s.Text(), nil
}

func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.tree.Len()
}

// Names returns the names of all spans in sorted order.
func (r *Registry) Names() []string {
	return r.Match("")
}

// Match returns the sorted names of the spans whose names begin with prefix.
func (r *Registry) Match(prefix string) []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var names []string
	r.tree.WalkPrefix(key(prefix), func(s string, v interface{}) bool {
		names = append(names, s)
		return false
	})
	return names
}

package pattern

import (
	"context"
	"errors"
	"fmt"
)

// SpanProvider supplies the text of named spans for $name$ dereferences.
// Span returns an error wrapping ErrUndefinedSpan for unknown names.
type SpanProvider interface {
	Span(name string) (string, error)
}

// Prompter asks the user for the text of a &prompt& dereference. It returns
// an error wrapping ErrCancelled if the user abandons the prompt.
type Prompter interface {
	Prompt(ctx context.Context, text string) (string, error)
}

// Resolver resolves the dereferences of a pattern. A Resolver lives for one
// search: each dereference is looked up at most once, so a prompt is asked
// once per search no matter how many anchors are tried.
type Resolver struct {
	ctx      context.Context
	spans    SpanProvider
	prompter Prompter

	texts    map[Deref]string
	patterns map[Deref]*Compound
	sets     map[*Set]Predicate
}

func NewResolver(ctx context.Context, spans SpanProvider, prompter Prompter) *Resolver {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Resolver{
		ctx:      ctx,
		spans:    spans,
		prompter: prompter,
		texts:    make(map[Deref]string),
		patterns: make(map[Deref]*Compound),
		sets:     make(map[*Set]Predicate),
	}
}

// Text returns the text a dereference stands for.
func (r *Resolver) Text(d *Deref) (string, error) {
	if t, ok := r.texts[*d]; ok {
		return t, nil
	}

	var (
		t   string
		err error
	)
	switch d.Kind {
	case NamedDeref:
		t, err = r.span(d.Text)
	case PromptedDeref:
		t, err = r.prompt(d.Text)
	}
	if err != nil {
		return "", err
	}

	dbg("pattern: resolved %s to %q", d, t)
	r.texts[*d] = t
	return t, nil
}

func (r *Resolver) span(name string) (string, error) {
	if r.spans == nil {
		return "", fmt.Errorf("%w: %s", ErrUndefinedSpan, name)
	}
	t, err := r.spans.Span(name)
	if err != nil {
		if errors.Is(err, ErrUndefinedSpan) {
			return "", err
		}
		return "", fmt.Errorf("span %s: %w", name, err)
	}
	return t, nil
}

func (r *Resolver) prompt(text string) (string, error) {
	if r.ctx.Err() != nil {
		return "", fmt.Errorf("%w: %v", ErrCancelled, r.ctx.Err())
	}
	if r.prompter == nil {
		return "", fmt.Errorf("%w: no prompter for %q", ErrCancelled, text)
	}
	t, err := r.prompter.Prompt(r.ctx, text)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return "", err
		}
		return "", fmt.Errorf("prompt %q: %w", text, err)
	}
	return t, nil
}

// Compound returns the pattern a dereference in pattern position stands for.
// Syntax errors in the resolved text are reported at offset, the position of
// the dereference in the enclosing pattern.
func (r *Resolver) Compound(d *Deref, offset int) (*Compound, error) {
	if c, ok := r.patterns[*d]; ok {
		return c, nil
	}

	t, err := r.Text(d)
	if err != nil {
		return nil, err
	}

	c, err := compileCompound(t)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, &ParseError{
				Offset: offset,
				Msg:    fmt.Sprintf("in %s at character %d: %s", d, pe.Offset+1, pe.Msg),
			}
		}
		return nil, err
	}

	r.patterns[*d] = c
	return c, nil
}

// SetPredicate returns the membership test of s, resolving its body first if
// it is a dereference.
func (r *Resolver) SetPredicate(s *Set, offset int) (Predicate, error) {
	if p, ok := r.sets[s]; ok {
		return p, nil
	}

	if s.Deref == nil {
		p := s.Predicate()
		r.sets[s] = p
		return p, nil
	}

	t, err := r.Text(s.Deref)
	if err != nil {
		return nil, err
	}
	items, err := parseEnumeration([]rune(t))
	if err != nil {
		return nil, &ParseError{
			Offset: offset,
			Msg:    fmt.Sprintf("in set from %s: %v", s.Deref, err),
		}
	}

	p := s.predicate(items)
	r.sets[s] = p
	return p, nil
}

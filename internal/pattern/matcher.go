package pattern

import (
	"context"
	"errors"
	"fmt"
)

// MarkTable holds the marks of a buffer. Mark reports false for a mark that
// isn't set.
type MarkTable interface {
	Mark(id MarkID) (Position, bool)
	SetMark(id MarkID, p Position)
}

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// DefaultMaxSteps is the step budget of a search whose Options.MaxSteps is 0.
const DefaultMaxSteps = 100000

type Options struct {
	Direction Direction
	// MaxSteps bounds the element attempts of one search. 0 or less means
	// DefaultMaxSteps.
	MaxSteps int
	Spans    SpanProvider
	Prompter Prompter
}

// Match is the region matched by the middle context. End is exclusive.
type Match struct {
	Begin Position
	End   Position
}

// Execute searches buf for def starting at origin. A forward search returns
// the first match whose middle begins at or after origin; a backward search
// the last one beginning at or before it. On success the Equals mark is set
// to the beginning of the middle and Dot to its end. Nothing is written to
// marks when no match is found or an error occurs.
func Execute(ctx context.Context, def *Definition, buf Buffer, marks MarkTable, origin Position, opts Options) (Match, bool, error) {
	if def == nil || def.Middle == nil {
		return Match{}, false, errors.New("pattern: definition has no middle context")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	dbg("pattern: %s search for %s from %s", opts.Direction, def, origin)

	m := newMatcher(ctx, buf, marks, origin, opts)
	pf := newPrefilter(def.Middle)
	pad := 1
	if pf != nil {
		pad = pf.longest
	}
	cur := newCursor(buf, origin, pad)
	if opts.Direction == Backward && origin.Line >= buf.Lines() && buf.Lines() > 0 {
		cur = newCursor(buf, Position{buf.Lines() - 1, buf.LineLen(buf.Lines() - 1)}, pad)
	}
	if opts.Direction == Forward && !cur.AtEnd() && origin.Col > cur.LineLen() {
		cur.ForwardLine()
	}

	for !cur.AtEnd() {
		if pf != nil && cur.hay != nil {
			var col int
			if opts.Direction == Forward {
				col = pf.next(cur.hay, cur.col)
			} else {
				col = pf.prev(cur.hay, cur.col)
			}
			if col < 0 || col > cur.LineLen() {
				if !m.nextLine(cur) {
					break
				}
				continue
			}
			cur.col = col
		}

		end, ok, err := m.anchor(def, cur)
		if err != nil {
			return Match{}, false, err
		}
		if ok {
			match := Match{Begin: cur.Position(), End: Position{cur.line, end}}
			dbg("pattern: matched %s-%s after %d steps", match.Begin, match.End, m.steps)
			setMarks(marks, match)
			return match, true, nil
		}

		if !m.advance(cur) {
			break
		}
	}

	dbg("pattern: no match after %d steps", m.steps)
	return Match{}, false, nil
}

// MatchAt reports whether def matches with its middle beginning exactly at
// p. Marks are set as by Execute.
func MatchAt(ctx context.Context, def *Definition, buf Buffer, marks MarkTable, p Position, opts Options) (Match, bool, error) {
	if def == nil || def.Middle == nil {
		return Match{}, false, errors.New("pattern: definition has no middle context")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if p.Line < 0 || p.Line >= buf.Lines() || p.Col < 0 || p.Col > buf.LineLen(p.Line) {
		return Match{}, false, nil
	}

	m := newMatcher(ctx, buf, marks, p, opts)
	cur := newCursor(buf, p, 1)
	end, ok, err := m.anchor(def, cur)
	if err != nil || !ok {
		return Match{}, false, err
	}

	match := Match{Begin: p, End: Position{p.Line, end}}
	setMarks(marks, match)
	return match, true, nil
}

func setMarks(marks MarkTable, m Match) {
	if marks == nil {
		return
	}
	marks.SetMark(MarkEquals, m.Begin)
	marks.SetMark(MarkDot, m.End)
}

// cont is called with the column reached by a successful partial match. It
// returns true if the rest of the match succeeds from there.
type cont func(col int) (bool, error)

// expansion identifies a dereference being matched at a column; re-entering
// it without consuming anything would never terminate.
type expansion struct {
	deref Deref
	col   int
}

type matcher struct {
	ctx    context.Context
	buf    Buffer
	marks  MarkTable
	res    *Resolver
	origin Position
	dir    Direction

	cur         *cursor
	left, right int

	steps    int
	maxSteps int
	active   map[expansion]bool
	// outer is the offset in the searched pattern of the dereference whose
	// body is being matched, or -1. Errors in a body are reported there.
	outer int
}

func newMatcher(ctx context.Context, buf Buffer, marks MarkTable, origin Position, opts Options) *matcher {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &matcher{
		ctx:      ctx,
		buf:      buf,
		marks:    marks,
		res:      NewResolver(ctx, opts.Spans, opts.Prompter),
		origin:   origin,
		dir:      opts.Direction,
		maxSteps: maxSteps,
		active:   make(map[expansion]bool),
		outer:    -1,
	}
}

func (m *matcher) advance(cur *cursor) bool {
	if m.dir == Backward {
		return cur.Backward()
	}
	return cur.Forward()
}

func (m *matcher) nextLine(cur *cursor) bool {
	if m.dir == Backward {
		return cur.BackwardLine()
	}
	return cur.ForwardLine()
}

// anchor tries to match def with the middle beginning at the cursor. It
// returns the column where the middle ends.
func (m *matcher) anchor(def *Definition, cur *cursor) (end int, ok bool, err error) {
	m.cur = cur
	m.left, m.right = m.buf.Margins(cur.line)
	if m.right <= 0 {
		m.right = cur.LineLen()
	}
	for k := range m.active {
		delete(m.active, k)
	}
	m.outer = -1

	at := cur.col
	if def.Left != nil {
		ok, err = m.leftEndsAt(def.Left, at)
		if err != nil || !ok {
			return
		}
	}

	ok, err = m.compound(def.Middle, at, func(e int) (bool, error) {
		if def.Right == nil {
			end = e
			return true, nil
		}
		return m.compound(def.Right, e, func(int) (bool, error) {
			end = e
			return true, nil
		})
	})
	return
}

// leftEndsAt reports whether c matches some span of the line ending exactly
// at col.
func (m *matcher) leftEndsAt(c *Compound, col int) (bool, error) {
	for start := col; start >= 0; start-- {
		ok, err := m.compound(c, start, func(e int) (bool, error) {
			return e == col, nil
		})
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (m *matcher) compound(c *Compound, col int, k cont) (bool, error) {
	if len(c.Alts) == 0 {
		return k(col)
	}
	for i := range c.Alts {
		ok, err := m.sequence(c.Alts[i].Elems, col, k)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (m *matcher) sequence(elems []Element, col int, k cont) (bool, error) {
	if len(elems) == 0 {
		return k(col)
	}
	return m.element(&elems[0], col, func(next int) (bool, error) {
		return m.sequence(elems[1:], next, k)
	})
}

func (m *matcher) element(e *Element, col int, k cont) (bool, error) {
	if err := m.step(); err != nil {
		return false, err
	}

	switch e.Kind {
	case DerefElem:
		return m.deref(e, col, k)
	case MarkElem:
		if m.markAt(e.Mark, col) {
			return k(col)
		}
		return false, nil
	case PositionalElem:
		if m.positional(e.Pos, col) {
			return k(col)
		}
		return false, nil
	}

	low, high := e.Quant.bounds()
	if low == 1 && high == 1 {
		return m.atom(e, col, k)
	}
	if high == Unbounded {
		// Past the end of the line there are only virtual spaces, so more
		// repetitions than this can't change what follows.
		high = max(m.cur.LineLen()+2, low)
	}
	if e.Kind == GroupElem {
		return m.repeat(e, 0, low, high, col, k)
	}
	return m.repeatOnce(e, low, high, col, k)
}

// repeatOnce repeats an atom that matches at most one way at a column. The
// end of each repetition is found in a loop; the continuation is then tried
// from the most repetitions down.
func (m *matcher) repeatOnce(e *Element, low, high, col int, k cont) (bool, error) {
	ends := []int{col}
	for len(ends)-1 < high {
		at := ends[len(ends)-1]
		next, ok, err := m.once(e, at)
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		if next == at {
			// An empty repetition can be repeated any number of times.
			low = min(low, len(ends)-1)
			break
		}
		ends = append(ends, next)
	}

	for n := len(ends) - 1; n >= low; n-- {
		ok, err := k(ends[n])
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// repeat matches the group e greedily: as many times as allowed first, then
// fewer on failure. An iteration that consumes nothing ends the repetition.
func (m *matcher) repeat(e *Element, count, low, high, col int, k cont) (bool, error) {
	if count < high {
		ok, err := m.atom(e, col, func(next int) (bool, error) {
			if next == col {
				return k(next)
			}
			return m.repeat(e, count+1, low, high, next, k)
		})
		if err != nil || ok {
			return ok, err
		}
	}
	if count >= low {
		return k(col)
	}
	return false, nil
}

func (m *matcher) atom(e *Element, col int, k cont) (bool, error) {
	if e.Kind == GroupElem {
		return m.compound(e.Group, col, k)
	}
	next, ok, err := m.once(e, col)
	if err != nil || !ok {
		return false, err
	}
	return k(next)
}

// once matches a set or string at col and returns the column after it.
func (m *matcher) once(e *Element, col int) (int, bool, error) {
	switch e.Kind {
	case SetElem:
		pred, err := m.res.SetPredicate(e.Set, m.offset(e))
		if err != nil {
			return 0, false, err
		}
		if r, ok := m.cur.Rune(col); ok && pred(r) {
			return col + 1, true, nil
		}
		return 0, false, nil

	case StringElem:
		text := e.Str.Text
		if e.Str.Deref != nil {
			t, err := m.res.Text(e.Str.Deref)
			if err != nil {
				return 0, false, err
			}
			text = []rune(t)
		}
		for i, want := range text {
			r, ok := m.cur.Rune(col + i)
			if !ok || !sameChar(r, want, e.Str.Case) {
				return 0, false, nil
			}
		}
		return col + len(text), true, nil
	}
	return 0, false, fmt.Errorf("pattern: %s can't be repeated", e.Kind)
}

// offset is where errors found while matching e are reported.
func (m *matcher) offset(e *Element) int {
	if m.outer >= 0 {
		return m.outer
	}
	return e.offset
}

func (m *matcher) deref(e *Element, col int, k cont) (bool, error) {
	key := expansion{*e.Deref, col}
	if m.active[key] {
		return false, nil
	}

	off := m.offset(e)
	c, err := m.res.Compound(e.Deref, off)
	if err != nil {
		return false, err
	}

	saved := m.outer
	m.active[key] = true
	m.outer = off
	ok, err := m.compound(c, col, func(end int) (bool, error) {
		delete(m.active, key)
		m.outer = saved
		ok, err := k(end)
		m.active[key] = true
		m.outer = off
		return ok, err
	})
	delete(m.active, key)
	m.outer = saved
	return ok, err
}

func (m *matcher) markAt(id MarkID, col int) bool {
	if m.marks == nil {
		return false
	}
	p, ok := m.marks.Mark(id)
	return ok && p.Line == m.cur.line && p.Col == col
}

func (m *matcher) positional(p Positional, col int) bool {
	switch p {
	case StartOfLine:
		return col == 0
	case EndOfLine:
		return col == m.cur.LineLen()
	case LeftMargin:
		return col == m.left
	case RightMargin:
		return col == m.right
	case StartColumn:
		return col == m.origin.Col
	}
	return false
}

func (m *matcher) step() error {
	m.steps++
	if m.steps > m.maxSteps {
		return ErrStepLimit
	}
	if m.steps%1024 == 0 && m.ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, m.ctx.Err())
	}
	return nil
}

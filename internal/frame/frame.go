// Package frame holds the text a pattern is searched in: lines of runes, the
// margins of the frame, and its marks.
package frame

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jeffwilliams/ctxpat/internal/pattern"
)

// MaxMark is the highest numbered mark a frame stores.
const MaxMark = 9

// Frame is a buffer of lines. It implements pattern.Buffer,
// pattern.LineReader and pattern.MarkTable.
type Frame struct {
	lines       [][]rune
	left, right int
	marks       map[pattern.MarkID]pattern.Position
}

// New makes a frame from text. Lines are separated by '\n'; a '\r' before the
// newline is dropped.
func New(text string) *Frame {
	f := &Frame{marks: map[pattern.MarkID]pattern.Position{pattern.MarkDot: {}}}
	for _, l := range strings.Split(text, "\n") {
		f.lines = append(f.lines, []rune(strings.TrimSuffix(l, "\r")))
	}
	return f
}

// Read makes a frame from everything r produces.
func Read(r io.Reader) (*Frame, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, bufio.NewReader(r)); err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	return New(buf.String()), nil
}

func (f *Frame) Lines() int {
	return len(f.lines)
}

func (f *Frame) LineLen(line int) int {
	if line < 0 || line >= len(f.lines) {
		return 0
	}
	return len(f.lines[line])
}

func (f *Frame) Line(n int) []rune {
	if n < 0 || n >= len(f.lines) {
		return nil
	}
	return f.lines[n]
}

func (f *Frame) CharAt(p pattern.Position) (rune, bool) {
	if p.Line < 0 || p.Line >= len(f.lines) {
		return 0, false
	}
	l := f.lines[p.Line]
	if p.Col < 0 || p.Col >= len(l) {
		return 0, false
	}
	return l[p.Col], true
}

// SetMargins sets the columns of the { and } positionals. A right margin of 0
// is the end of each line.
func (f *Frame) SetMargins(left, right int) {
	f.left, f.right = left, right
}

func (f *Frame) Margins(line int) (left, right int) {
	return f.left, f.right
}

func (f *Frame) Mark(id pattern.MarkID) (pattern.Position, bool) {
	p, ok := f.marks[id]
	return p, ok
}

// SetMark sets Dot, Equals or one of the numbered marks 1 to MaxMark. Other
// ids are ignored.
func (f *Frame) SetMark(id pattern.MarkID, p pattern.Position) {
	if !validMark(id) {
		return
	}
	f.marks[id] = p
}

func (f *Frame) UnsetMark(id pattern.MarkID) {
	delete(f.marks, id)
}

func validMark(id pattern.MarkID) bool {
	return id == pattern.MarkDot || id == pattern.MarkEquals || (id >= 1 && id <= MaxMark)
}

// Text returns the text between two positions. Columns are clamped to their
// lines, and lines are joined with '\n'.
func (f *Frame) Text(from, to pattern.Position) string {
	if to.Before(from) {
		from, to = to, from
	}
	if len(f.lines) == 0 {
		return ""
	}
	from = f.clamp(from)
	to = f.clamp(to)

	if from.Line == to.Line {
		return string(f.lines[from.Line][from.Col:to.Col])
	}

	var buf strings.Builder
	buf.WriteString(string(f.lines[from.Line][from.Col:]))
	for l := from.Line + 1; l < to.Line; l++ {
		buf.WriteRune('\n')
		buf.WriteString(string(f.lines[l]))
	}
	buf.WriteRune('\n')
	buf.WriteString(string(f.lines[to.Line][:to.Col]))
	return buf.String()
}

func (f *Frame) clamp(p pattern.Position) pattern.Position {
	if p.Line < 0 {
		return pattern.Position{}
	}
	if p.Line >= len(f.lines) {
		last := len(f.lines) - 1
		return pattern.Position{Line: last, Col: len(f.lines[last])}
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if p.Col > len(f.lines[p.Line]) {
		p.Col = len(f.lines[p.Line])
	}
	return p
}

// MarksString lists the marks that are set, one per line.
func (f *Frame) MarksString() string {
	ids := make([]pattern.MarkID, 0, len(f.marks))
	for id := range f.marks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		return ids[a] < ids[b]
	})

	var buf bytes.Buffer
	for _, id := range ids {
		fmt.Fprintf(&buf, "%s\t%s\n", id, f.marks[id])
	}
	return buf.String()
}

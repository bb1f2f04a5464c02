package pattern

import (
	"context"
	"fmt"
)

type testBuffer struct {
	lines       [][]rune
	left, right int
}

func newTestBuffer(lines ...string) *testBuffer {
	b := &testBuffer{}
	for _, l := range lines {
		b.lines = append(b.lines, []rune(l))
	}
	return b
}

func (b *testBuffer) Lines() int { return len(b.lines) }

func (b *testBuffer) LineLen(line int) int { return len(b.lines[line]) }

func (b *testBuffer) CharAt(p Position) (rune, bool) {
	if p.Line < 0 || p.Line >= len(b.lines) || p.Col < 0 || p.Col >= len(b.lines[p.Line]) {
		return 0, false
	}
	return b.lines[p.Line][p.Col], true
}

func (b *testBuffer) Margins(int) (int, int) { return b.left, b.right }

// lineBuffer also hands out whole lines, which turns on the literal
// prefilter's fast path.
type lineBuffer struct {
	*testBuffer
}

func (b lineBuffer) Line(n int) []rune { return b.lines[n] }

type testMarks map[MarkID]Position

func (m testMarks) Mark(id MarkID) (Position, bool) {
	p, ok := m[id]
	return p, ok
}

func (m testMarks) SetMark(id MarkID, p Position) { m[id] = p }

type testSpans map[string]string

func (s testSpans) Span(name string) (string, error) {
	t, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndefinedSpan, name)
	}
	return t, nil
}

type testPrompter struct {
	answers map[string]string
	asked   []string
}

func (p *testPrompter) Prompt(ctx context.Context, text string) (string, error) {
	p.asked = append(p.asked, text)
	a, ok := p.answers[text]
	if !ok {
		return "", ErrCancelled
	}
	return a, nil
}

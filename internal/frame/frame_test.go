package frame

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffwilliams/ctxpat/internal/pattern"
)

func pos(line, col int) pattern.Position {
	return pattern.Position{Line: line, Col: col}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lines []string
	}{
		{name: "empty", input: "", lines: []string{""}},
		{name: "one line", input: "abc", lines: []string{"abc"}},
		{name: "trailing newline", input: "abc\n", lines: []string{"abc", ""}},
		{name: "crlf", input: "ab\r\ncd\r\n", lines: []string{"ab", "cd", ""}},
		{name: "unicode", input: "héllo\nwörld", lines: []string{"héllo", "wörld"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := New(tc.input)
			require.Equal(t, len(tc.lines), f.Lines())
			for i, l := range tc.lines {
				assert.Equal(t, l, string(f.Line(i)))
				assert.Equal(t, len([]rune(l)), f.LineLen(i))
			}
		})
	}
}

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader("one\ntwo"))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Lines())
	assert.Equal(t, "two", string(f.Line(1)))
}

func TestCharAt(t *testing.T) {
	f := New("ab\ncd")

	r, ok := f.CharAt(pos(1, 1))
	assert.True(t, ok)
	assert.Equal(t, 'd', r)

	for _, p := range []pattern.Position{pos(0, 2), pos(2, 0), pos(-1, 0), pos(0, -1)} {
		_, ok = f.CharAt(p)
		assert.False(t, ok, "position %v", p)
	}
	assert.Equal(t, 0, f.LineLen(5))
	assert.Nil(t, f.Line(5))
}

func TestMarks(t *testing.T) {
	f := New("abc")

	p, ok := f.Mark(pattern.MarkDot)
	assert.True(t, ok)
	assert.Equal(t, pos(0, 0), p)

	_, ok = f.Mark(pattern.MarkEquals)
	assert.False(t, ok)

	f.SetMark(3, pos(0, 2))
	p, ok = f.Mark(3)
	assert.True(t, ok)
	assert.Equal(t, pos(0, 2), p)

	f.SetMark(0, pos(0, 1))
	f.SetMark(MaxMark+1, pos(0, 1))
	_, ok = f.Mark(0)
	assert.False(t, ok)
	_, ok = f.Mark(MaxMark + 1)
	assert.False(t, ok)

	f.UnsetMark(3)
	_, ok = f.Mark(3)
	assert.False(t, ok)

	assert.Equal(t, "Dot\t1:1\n", f.MarksString())
}

func TestText(t *testing.T) {
	f := New("hello\nbig\nworld")

	tests := []struct {
		name     string
		from, to pattern.Position
		expected string
	}{
		{name: "within a line", from: pos(0, 1), to: pos(0, 4), expected: "ell"},
		{name: "across lines", from: pos(0, 3), to: pos(2, 2), expected: "lo\nbig\nwo"},
		{name: "reversed", from: pos(0, 4), to: pos(0, 1), expected: "ell"},
		{name: "clamped", from: pos(1, 1), to: pos(1, 99), expected: "ig"},
		{name: "past end", from: pos(2, 3), to: pos(9, 0), expected: "ld"},
		{name: "empty", from: pos(1, 1), to: pos(1, 1), expected: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.Text(tc.from, tc.to))
		})
	}
}

func TestSearchFrame(t *testing.T) {
	f := New("Axyz9\nBabc1")
	f.SetMark(1, pos(1, 1))

	def := pattern.MustCompile(`U,+L,N`)
	m, found, err := pattern.Execute(context.Background(), def, f, f, pos(0, 0), pattern.Options{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "xyz", f.Text(m.Begin, m.End))

	eq, _ := f.Mark(pattern.MarkEquals)
	dot, _ := f.Mark(pattern.MarkDot)
	assert.Equal(t, pos(0, 1), eq)
	assert.Equal(t, pos(0, 4), dot)

	def = pattern.MustCompile(`@1 +L`)
	m, found, err = pattern.Execute(context.Background(), def, f, f, dot, pattern.Options{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "abc", f.Text(m.Begin, m.End))
}

func TestMargins(t *testing.T) {
	f := New("  indented")
	f.SetMargins(2, 0)

	def := pattern.MustCompile(`{ +L`)
	m, found, err := pattern.Execute(context.Background(), def, f, nil, pos(0, 0), pattern.Options{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "indented", f.Text(m.Begin, m.End))
}

package pattern

// Buffer is the read side of the text a pattern is matched against. Lines are
// numbered from 0. Margins returns the left and right margin columns of a
// line.
type Buffer interface {
	Lines() int
	LineLen(line int) int
	CharAt(p Position) (r rune, ok bool)
	Margins(line int) (left, right int)
}

// LineReader is implemented by buffers that can hand out a whole line at
// once. The returned slice must not be modified.
type LineReader interface {
	Line(n int) []rune
}

// cursor walks the anchor positions of a buffer. Every line has anchors at
// columns 0 through its length.
type cursor struct {
	buf  Buffer
	line int
	col  int

	// runes of the current line, and the line as ASCII bytes followed by
	// pad spaces. hay is nil when the line isn't ASCII.
	text []rune
	hay  []byte
	pad  int
}

// newCursor returns a cursor at p. pad is how many of the spaces past the end
// of each line hay includes; at least one is always there.
func newCursor(buf Buffer, p Position, pad int) *cursor {
	c := &cursor{buf: buf, line: p.Line, col: p.Col, pad: max(pad, 1)}
	if c.line < 0 {
		c.line, c.col = 0, 0
	}
	if c.col < 0 {
		c.col = 0
	}
	if !c.AtEnd() {
		c.load()
		if c.col > len(c.text) {
			c.col = len(c.text)
		}
	}
	return c
}

func (c *cursor) load() {
	if lr, ok := c.buf.(LineReader); ok {
		c.text = lr.Line(c.line)
	} else {
		n := c.buf.LineLen(c.line)
		c.text = make([]rune, 0, n)
		for i := 0; i < n; i++ {
			r, _ := c.buf.CharAt(Position{c.line, i})
			c.text = append(c.text, r)
		}
	}

	c.hay = c.hay[:0]
	for _, r := range c.text {
		if r >= 0x80 {
			c.hay = nil
			return
		}
		c.hay = append(c.hay, byte(r))
	}
	for i := 0; i < c.pad; i++ {
		c.hay = append(c.hay, ' ')
	}
}

// AtEnd reports whether the cursor has walked off the last line.
func (c *cursor) AtEnd() bool {
	return c.line < 0 || c.line >= c.buf.Lines()
}

// Rune returns the character at col of the current line. Every column past
// the end of the line reads as a virtual space.
func (c *cursor) Rune(col int) (rune, bool) {
	switch {
	case col < 0:
		return 0, false
	case col >= len(c.text):
		return ' ', true
	}
	return c.text[col], true
}

func (c *cursor) LineLen() int {
	return len(c.text)
}

func (c *cursor) Position() Position {
	return Position{c.line, c.col}
}

// Forward moves to the next anchor. It returns false when there is none.
func (c *cursor) Forward() bool {
	if c.col < len(c.text) {
		c.col++
		return true
	}
	return c.ForwardLine()
}

// ForwardLine moves to the start of the next line.
func (c *cursor) ForwardLine() bool {
	c.line++
	c.col = 0
	if c.AtEnd() {
		return false
	}
	c.load()
	return true
}

// Backward moves to the previous anchor. It returns false when there is none.
func (c *cursor) Backward() bool {
	if c.col > 0 {
		c.col--
		return true
	}
	return c.BackwardLine()
}

// BackwardLine moves to the end of the previous line.
func (c *cursor) BackwardLine() bool {
	c.line--
	if c.AtEnd() {
		c.col = 0
		return false
	}
	c.load()
	c.col = len(c.text)
	return true
}

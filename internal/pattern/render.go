package pattern

import (
	"sort"
	"strconv"
	"strings"
)

// String renders the definition back into pattern text. Compiling the result
// gives an equivalent definition.
func (d *Definition) String() string {
	var buf strings.Builder
	if d.Left != nil || d.Right != nil {
		writeCompound(&buf, d.Left)
		buf.WriteRune(',')
	}
	writeCompound(&buf, d.Middle)
	if d.Right != nil {
		buf.WriteRune(',')
		writeCompound(&buf, d.Right)
	}
	return buf.String()
}

func (c *Compound) String() string {
	var buf strings.Builder
	writeCompound(&buf, c)
	return buf.String()
}

func writeCompound(buf *strings.Builder, c *Compound) {
	if c == nil {
		return
	}
	for i, alt := range c.Alts {
		if i > 0 {
			buf.WriteRune('|')
		}
		for j := range alt.Elems {
			if j > 0 {
				buf.WriteRune(' ')
			}
			writeElement(buf, &alt.Elems[j])
		}
	}
}

func writeElement(buf *strings.Builder, e *Element) {
	switch e.Kind {
	case DerefElem:
		writeDeref(buf, e.Deref)
		return
	case MarkElem:
		buf.WriteRune('@')
		buf.WriteString(strconv.Itoa(int(e.Mark)))
		return
	case PositionalElem:
		buf.WriteRune(e.Pos.glyph())
		return
	}

	writeQuantifier(buf, e.Quant)
	switch e.Kind {
	case SetElem:
		writeSet(buf, e.Set)
	case GroupElem:
		buf.WriteRune('(')
		writeCompound(buf, e.Group)
		buf.WriteRune(')')
	case StringElem:
		writeString(buf, e.Str)
	}
}

func writeQuantifier(buf *strings.Builder, q Quantifier) {
	switch q.Kind {
	case QuantExact:
		buf.WriteString(strconv.Itoa(q.N))
	case QuantZeroOrMore:
		buf.WriteRune('*')
	case QuantOneOrMore:
		buf.WriteRune('+')
	case QuantRange:
		buf.WriteRune('[')
		buf.WriteString(strconv.Itoa(q.Low))
		buf.WriteRune(',')
		if q.High != Unbounded {
			buf.WriteString(strconv.Itoa(q.High))
		}
		buf.WriteRune(']')
	}
}

var classLetters = map[Class]rune{
	Alphabetic:  'A',
	Uppercase:   'U',
	Lowercase:   'L',
	Punctuation: 'P',
	Numeric:     'N',
	Space:       'S',
	Printable:   'C',
	Defined:     'D',
}

func writeSet(buf *strings.Builder, s *Set) {
	if s.Negate {
		buf.WriteRune('-')
	}
	buf.WriteRune(classLetters[s.Class])
	if s.Class != Defined {
		return
	}
	if s.Deref != nil {
		writeDeref(buf, s.Deref)
		return
	}
	buf.WriteRune('/')
	writeDoubled(buf, enumerationText(s.Items), '/')
	buf.WriteRune('/')
}

// enumerationText lays out set members so they parse back to the same
// members: ranges first, then single characters with '.' last so that no
// run of singles reads as a range.
func enumerationText(items []SetItem) []rune {
	var ranges, singles []rune
	dot := false
	seen := make(map[rune]bool)
	for _, it := range items {
		switch {
		case it.Low != it.High:
			ranges = append(ranges, it.Low, '.', '.', it.High)
		case it.Low == '.':
			dot = true
		case !seen[it.Low]:
			seen[it.Low] = true
			singles = append(singles, it.Low)
		}
	}
	sort.Slice(singles, func(i, j int) bool { return singles[i] < singles[j] })

	out := append(ranges, singles...)
	if dot {
		out = append(out, '.')
	}
	return out
}

func writeString(buf *strings.Builder, s *StringLit) {
	quote := '"'
	if s.Case == CaseInexact {
		quote = '\''
	}

	buf.WriteRune(quote)
	if s.Deref != nil {
		var inner strings.Builder
		writeDeref(&inner, s.Deref)
		writeDoubled(buf, []rune(inner.String()), quote)
	} else {
		writeDoubled(buf, s.Text, quote)
	}
	buf.WriteRune(quote)
}

func writeDeref(buf *strings.Builder, d *Deref) {
	delim := '$'
	if d.Kind == PromptedDeref {
		delim = '&'
	}
	buf.WriteRune(delim)
	writeDoubled(buf, []rune(d.Text), delim)
	buf.WriteRune(delim)
}

func writeDoubled(buf *strings.Builder, text []rune, delim rune) {
	for _, r := range text {
		buf.WriteRune(r)
		if r == delim {
			buf.WriteRune(delim)
		}
	}
}

package pattern

import "fmt"

/*

  A pattern definition has one to three contexts separated by top level commas:

	definition -> [ compound ',' ] compound [ ',' compound ]
	compound   -> pattern [ '|' compound ]
	pattern    -> { [ repeat ] ( set | '(' compound ')' | string ) | deref | '@' number | positional }
	repeat     -> '*' | '+' | number | '[' [number] ',' [number] ']'
	set        -> [ '-' ] ( 'A' | 'P' | 'N' | 'U' | 'L' | 'S' | 'C' | 'D' body )
	body       -> deref | delim { char | char '..' char } delim
	string     -> quote { char } quote | quote deref quote
	deref      -> '$' name '$' | '&' prompt '&'
	positional -> '<' | '>' | '{' | '}' | '^'

  With one context it is the middle. With two they are left and middle.

*/

// Position is a location in a buffer. Line and Col are 0 based; Col may be
// equal to the length of the line (the gap at the end of the line).
type Position struct {
	Line int
	Col  int
}

// Before reports whether p is strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// String renders the position 1-based, the way an editor shows it.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Col+1)
}

// MarkID names a mark held by the buffer's mark table. Positive ids are the
// numbered user marks tested by '@n'.
type MarkID int

const (
	MarkDot    MarkID = -1
	MarkEquals MarkID = -2
)

func (m MarkID) String() string {
	switch m {
	case MarkDot:
		return "Dot"
	case MarkEquals:
		return "Equals"
	}
	return fmt.Sprintf("@%d", int(m))
}

// Definition is a compiled pattern definition. Middle is never nil; Left and
// Right are nil when the definition does not have them.
type Definition struct {
	Left   *Compound
	Middle *Compound
	Right  *Compound
}

// Compound is an ordered choice: alternatives are tried left to right and the
// first one that lets the rest of the match succeed wins.
type Compound struct {
	Alts []Pattern
}

// Pattern is a concatenation of elements.
type Pattern struct {
	Elems []Element
}

type ElementKind int

const (
	SetElem ElementKind = iota
	GroupElem
	StringElem
	DerefElem
	MarkElem
	PositionalElem
)

func (k ElementKind) String() string {
	switch k {
	case SetElem:
		return "set"
	case GroupElem:
		return "group"
	case StringElem:
		return "string"
	case DerefElem:
		return "dereference"
	case MarkElem:
		return "mark test"
	case PositionalElem:
		return "positional"
	}
	return "?"
}

// Element is one item of a pattern. Kind selects which of the other fields is
// meaningful. Quant only applies to sets, groups and strings.
type Element struct {
	Kind  ElementKind
	Quant Quantifier
	Set   *Set
	Group *Compound
	Str   *StringLit
	Deref *Deref
	Mark  MarkID
	Pos   Positional

	// offset of the element in the text it was compiled from
	offset int
}

type QuantKind int

const (
	QuantOnce QuantKind = iota
	QuantExact
	QuantZeroOrMore
	QuantOneOrMore
	QuantRange
)

// Unbounded is the High of a range without an upper bound.
const Unbounded = -1

type Quantifier struct {
	Kind QuantKind
	// N is the count of QuantExact.
	N int
	// Low and High bound QuantRange. High may be Unbounded.
	Low, High int
}

// bounds returns the minimum and maximum repetition count. max is Unbounded
// for open ended quantifiers.
func (q Quantifier) bounds() (min, max int) {
	switch q.Kind {
	case QuantExact:
		return q.N, q.N
	case QuantZeroOrMore:
		return 0, Unbounded
	case QuantOneOrMore:
		return 1, Unbounded
	case QuantRange:
		return q.Low, q.High
	}
	return 1, 1
}

type Class int

const (
	Alphabetic Class = iota
	Uppercase
	Lowercase
	Punctuation
	Numeric
	Space
	Printable
	Defined
)

// Set is a character class. A Defined set lists its members in Items, or
// takes them from a dereference at match time when Deref is set.
type Set struct {
	Class  Class
	Negate bool
	Items  []SetItem
	Deref  *Deref
}

// SetItem is an inclusive range of characters. A single character has
// Low == High.
type SetItem struct {
	Low, High rune
}

type CaseMode int

const (
	CaseExact CaseMode = iota
	CaseInexact
)

// StringLit matches its text. When Deref is set the text is the resolved
// dereference instead, compared under the same case mode.
type StringLit struct {
	Text  []rune
	Case  CaseMode
	Deref *Deref
}

type DerefKind int

const (
	NamedDeref DerefKind = iota
	PromptedDeref
)

// Deref names a span ($name$) or a prompt (&text&) whose text is substituted
// when the pattern is matched.
type Deref struct {
	Kind DerefKind
	Text string
}

func (d Deref) String() string {
	if d.Kind == PromptedDeref {
		return fmt.Sprintf("prompt %q", d.Text)
	}
	return fmt.Sprintf("span %q", d.Text)
}

type Positional int

const (
	StartOfLine Positional = iota
	EndOfLine
	LeftMargin
	RightMargin
	StartColumn
)

var positionalGlyphs = map[rune]Positional{
	'<': StartOfLine,
	'>': EndOfLine,
	'{': LeftMargin,
	'}': RightMargin,
	'^': StartColumn,
}

func (p Positional) glyph() rune {
	for r, q := range positionalGlyphs {
		if p == q {
			return r
		}
	}
	return '?'
}

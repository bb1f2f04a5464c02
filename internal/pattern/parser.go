package pattern

import (
	"fmt"
	"strconv"
	"unicode"
)

// Compile parses pattern definition text. Parsing stops at the first error,
// which is a *ParseError.
func Compile(text string) (*Definition, error) {
	p := parser{input: []rune(text)}
	return p.definition()
}

// MustCompile is like Compile but panics if the text doesn't parse.
func MustCompile(text string) *Definition {
	d, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return d
}

// compileCompound parses the text of a dereferenced pattern. It may not
// contain contexts. An empty body is the empty pattern.
func compileCompound(text string) (*Compound, error) {
	p := parser{input: []rune(text)}
	c, err := p.compound()
	if err != nil {
		return nil, err
	}
	if p.check(',') {
		return nil, p.errorf("',' is not allowed in a dereferenced pattern")
	}
	if !p.atEnd() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return c, nil
}

type parser struct {
	input   []rune
	current int
}

func (p *parser) definition() (*Definition, error) {
	p.skipSpace()
	if p.atEnd() {
		return nil, p.errorf("empty pattern")
	}

	var contexts []*Compound
	for {
		c, err := p.compound()
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, c)

		if !p.match(',') {
			break
		}
		if len(contexts) == 3 {
			return nil, p.errorAt(p.current-1, "too many contexts; expected at most left,middle,right")
		}
	}

	if !p.atEnd() {
		return nil, p.errorf("unexpected %q", p.peek())
	}

	def := &Definition{}
	switch len(contexts) {
	case 1:
		def.Middle = contexts[0]
	case 2:
		def.Left, def.Middle = contexts[0], contexts[1]
	case 3:
		def.Left, def.Middle, def.Right = contexts[0], contexts[1], contexts[2]
	}
	return def, nil
}

func (p *parser) compound() (*Compound, error) {
	c := &Compound{}
	for {
		pat, err := p.pattern()
		if err != nil {
			return nil, err
		}
		c.Alts = append(c.Alts, pat)

		if !p.match('|') {
			return c, nil
		}
	}
}

func (p *parser) pattern() (pat Pattern, err error) {
	for {
		p.skipSpace()
		if p.atEnd() || p.check('|', ')', ',') {
			return
		}

		var e Element
		e, err = p.element()
		if err != nil {
			return
		}
		pat.Elems = append(pat.Elems, e)
	}
}

func (p *parser) element() (e Element, err error) {
	start := p.current

	q, repeated, err := p.quantifier()
	if err != nil {
		return
	}
	if repeated {
		p.skipSpace()
		if p.atEnd() || p.check('|', ')', ',') {
			err = p.errorAt(start, "repeat count with nothing to repeat")
			return
		}
	}

	e.offset = p.current
	e.Quant = q

	r := p.peek()
	switch {
	case r == '(':
		e.Kind = GroupElem
		e.Group, err = p.group()
	case r == '"' || r == '\'':
		e.Kind = StringElem
		e.Str, err = p.str()
	case r == '-':
		p.advance()
		if p.atEnd() || !isSetLetter(p.peek()) {
			err = p.errorAt(e.offset, "'-' may only negate a set")
			return
		}
		e.Kind = SetElem
		e.Set, err = p.set()
		if err == nil {
			e.Set.Negate = true
		}
	case isSetLetter(r):
		e.Kind = SetElem
		e.Set, err = p.set()
	case r == '$' || r == '&':
		if repeated {
			err = p.errorAt(start, "a dereference can't be repeated")
			return
		}
		e.Kind = DerefElem
		e.Deref, err = p.deref()
	case r == '@':
		if repeated {
			err = p.errorAt(start, "a mark test can't be repeated")
			return
		}
		e.Kind = MarkElem
		e.Mark, err = p.markTest()
	case isPositional(r):
		if repeated {
			err = p.errorAt(start, "a positional can't be repeated")
			return
		}
		p.advance()
		e.Kind = PositionalElem
		e.Pos = positionalGlyphs[r]
	case unicode.IsLetter(r):
		err = p.errorf("unknown set %q", r)
	default:
		err = p.errorf("unexpected %q", r)
	}
	return
}

func (p *parser) quantifier() (q Quantifier, repeated bool, err error) {
	if p.atEnd() {
		return
	}

	switch r := p.peek(); {
	case r == '*':
		p.advance()
		return Quantifier{Kind: QuantZeroOrMore}, true, nil
	case r == '+':
		p.advance()
		return Quantifier{Kind: QuantOneOrMore}, true, nil
	case isDigit(r):
		var n int
		n, err = p.number()
		return Quantifier{Kind: QuantExact, N: n}, true, err
	case r == '[':
		q, err = p.rangeQuantifier()
		return q, true, err
	}
	return
}

func (p *parser) rangeQuantifier() (q Quantifier, err error) {
	open := p.current
	p.advance()

	q = Quantifier{Kind: QuantRange, High: Unbounded}

	if !p.atEnd() && isDigit(p.peek()) {
		if q.Low, err = p.number(); err != nil {
			return
		}
	}
	if !p.match(',') {
		if p.check(']') {
			err = p.errorf("expected ',' in repeat range; write [n,] or [n,m]")
		} else {
			err = p.errorAt(open, "malformed repeat range")
		}
		return
	}
	if !p.atEnd() && isDigit(p.peek()) {
		if q.High, err = p.number(); err != nil {
			return
		}
	}
	if !p.match(']') {
		err = p.errorAt(open, "expected ] to close repeat range")
		return
	}
	if q.High != Unbounded && q.Low > q.High {
		err = p.errorAt(open, fmt.Sprintf("repeat range [%d,%d] is empty", q.Low, q.High))
	}
	return
}

func (p *parser) number() (int, error) {
	start := p.current
	for !p.atEnd() && isDigit(p.peek()) {
		p.advance()
	}
	n, err := strconv.Atoi(string(p.input[start:p.current]))
	if err != nil {
		return 0, p.errorAt(start, "number too large")
	}
	return n, nil
}

func (p *parser) group() (*Compound, error) {
	open := p.current
	p.advance()

	c, err := p.compound()
	if err != nil {
		return nil, err
	}
	if p.check(',') {
		return nil, p.errorf("',' inside a group; contexts are only allowed at the top level")
	}
	if !p.match(')') {
		return nil, p.errorAt(open, "expected ) to close group")
	}
	return c, nil
}

func (p *parser) str() (*StringLit, error) {
	open := p.current
	quote := p.advance()

	body, ok := p.delimited(quote)
	if !ok {
		return nil, p.errorAt(open, "unterminated string")
	}

	lit := &StringLit{Case: CaseExact}
	if quote == '\'' {
		lit.Case = CaseInexact
	}
	if d, ok := quotedDeref(body); ok {
		lit.Deref = d
	} else {
		lit.Text = body
	}
	return lit, nil
}

func (p *parser) set() (*Set, error) {
	letter := unicode.ToUpper(p.advance())
	if letter != 'D' {
		return &Set{Class: setClasses[letter]}, nil
	}

	open := p.current - 1
	if p.atEnd() {
		return nil, p.errorAt(open, "expected a delimiter after D")
	}

	delim := p.peek()
	if delim == '$' || delim == '&' {
		d, err := p.deref()
		if err != nil {
			return nil, err
		}
		return &Set{Class: Defined, Deref: d}, nil
	}

	p.advance()
	bodyStart := p.current
	body, ok := p.delimited(delim)
	if !ok {
		return nil, p.errorAt(open, fmt.Sprintf("unterminated set; expected closing %q", delim))
	}
	items, err := parseEnumeration(body)
	if err != nil {
		return nil, p.errorAt(bodyStart, err.Error())
	}
	return &Set{Class: Defined, Items: items}, nil
}

func (p *parser) deref() (*Deref, error) {
	open := p.current
	delim := p.advance()

	body, ok := p.delimited(delim)
	if !ok {
		return nil, p.errorAt(open, "unterminated dereference")
	}
	if len(body) == 0 {
		return nil, p.errorAt(open, "empty dereference")
	}

	d := &Deref{Kind: NamedDeref, Text: string(body)}
	if delim == '&' {
		d.Kind = PromptedDeref
	}
	return d, nil
}

func (p *parser) markTest() (MarkID, error) {
	at := p.current
	p.advance()
	if p.atEnd() || !isDigit(p.peek()) {
		return 0, p.errorAt(at, "expected a mark number after @")
	}
	n, err := p.number()
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, p.errorAt(at, "mark numbers start at 1")
	}
	return MarkID(n), nil
}

// delimited consumes text up to the closing delim. A doubled delim stands
// for one literal delim. ok is false if the closing delim is missing.
func (p *parser) delimited(delim rune) (body []rune, ok bool) {
	body = []rune{}
	for !p.atEnd() {
		r := p.advance()
		if r == delim {
			if !p.match(delim) {
				return body, true
			}
		}
		body = append(body, r)
	}
	return body, false
}

// quotedDeref reports whether a string body is exactly one $name$ or &prompt&
// production, and if so returns the dereference.
func quotedDeref(body []rune) (*Deref, bool) {
	if len(body) < 3 {
		return nil, false
	}
	delim := body[0]
	if (delim != '$' && delim != '&') || body[len(body)-1] != delim {
		return nil, false
	}

	var text []rune
	inner := body[1 : len(body)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] == delim {
			if i+1 >= len(inner) || inner[i+1] != delim {
				return nil, false
			}
			i++
		}
		text = append(text, inner[i])
	}

	d := &Deref{Kind: NamedDeref, Text: string(text)}
	if delim == '&' {
		d.Kind = PromptedDeref
	}
	return d, true
}

// parseEnumeration parses the members of a D set: single characters and
// inclusive ranges written lo..hi.
func parseEnumeration(body []rune) ([]SetItem, error) {
	var items []SetItem
	for i := 0; i < len(body); {
		lo := body[i]
		if i+2 < len(body) && body[i+1] == '.' && body[i+2] == '.' {
			if i+3 >= len(body) {
				return nil, fmt.Errorf("range %q.. has no upper bound", lo)
			}
			hi := body[i+3]
			if lo > hi {
				return nil, fmt.Errorf("range %q..%q is empty", lo, hi)
			}
			items = append(items, SetItem{lo, hi})
			i += 4
			continue
		}
		items = append(items, SetItem{lo, lo})
		i++
	}
	return items, nil
}

var setClasses = map[rune]Class{
	'A': Alphabetic,
	'U': Uppercase,
	'L': Lowercase,
	'P': Punctuation,
	'N': Numeric,
	'S': Space,
	'C': Printable,
	'D': Defined,
}

func isSetLetter(r rune) bool {
	_, ok := setClasses[unicode.ToUpper(r)]
	return ok
}

func isPositional(r rune) bool {
	_, ok := positionalGlyphs[r]
	return ok
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (p *parser) skipSpace() {
	for !p.atEnd() && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance()
	}
}

func (p *parser) match(vals ...rune) bool {
	if p.check(vals...) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) check(vals ...rune) bool {
	if p.atEnd() {
		return false
	}
	for _, v := range vals {
		if p.peek() == v {
			return true
		}
	}
	return false
}

func (p *parser) advance() rune {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) peek() rune {
	return p.input[p.current]
}

func (p *parser) previous() rune {
	return p.input[p.current-1]
}

func (p *parser) atEnd() bool {
	return p.current >= len(p.input)
}

func (p *parser) errorAt(offset int, msg string) *ParseError {
	return &ParseError{Offset: offset, Msg: msg}
}

func (p *parser) errorf(msg string, args ...interface{}) *ParseError {
	return p.errorAt(p.current, fmt.Sprintf(msg, args...))
}

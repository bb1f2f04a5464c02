package pattern

import (
	"github.com/coregx/ahocorasick"
	"github.com/sarpdag/boyermoore"
)

// prefilter skips anchors at which the middle context can't begin. It
// applies when every alternative of the middle starts with a required exact
// ASCII literal; the literals are then searched for directly in the line.
type prefilter struct {
	needles [][]byte
	longest int
	// auto is set when there is more than one distinct literal.
	auto *ahocorasick.Automaton
}

func newPrefilter(middle *Compound) *prefilter {
	if middle == nil || len(middle.Alts) == 0 {
		return nil
	}

	p := &prefilter{}
	seen := make(map[string]bool)
	for _, alt := range middle.Alts {
		lit := leadingLiteral(alt)
		if lit == nil {
			return nil
		}
		if !seen[string(lit)] {
			seen[string(lit)] = true
			p.needles = append(p.needles, lit)
			p.longest = max(p.longest, len(lit))
		}
	}

	if len(p.needles) > 1 {
		builder := ahocorasick.NewBuilder()
		for _, n := range p.needles {
			builder.AddPattern(n)
		}
		auto, err := builder.Build()
		if err != nil {
			dbg("pattern: no literal prefilter: %v", err)
			return nil
		}
		p.auto = auto
	}

	dbg("pattern: literal prefilter on %d needles", len(p.needles))
	return p
}

// leadingLiteral returns the literal every match of pat must begin with, or
// nil if there isn't one usable for searching.
func leadingLiteral(pat Pattern) []byte {
	if len(pat.Elems) == 0 {
		return nil
	}
	e := pat.Elems[0]
	if e.Kind != StringElem || e.Str.Deref != nil || e.Str.Case != CaseExact || len(e.Str.Text) == 0 {
		return nil
	}
	if min, _ := e.Quant.bounds(); min < 1 {
		return nil
	}

	b := make([]byte, 0, len(e.Str.Text))
	for _, r := range e.Str.Text {
		if r >= 0x80 {
			return nil
		}
		b = append(b, byte(r))
	}
	return b
}

// next returns the first column at or after from where a match may begin, or
// -1 if there is none in the line. hay is the line followed by at least
// longest spaces.
func (p *prefilter) next(hay []byte, from int) int {
	if from >= len(hay) {
		return -1
	}

	if p.auto != nil {
		// Find reports the match that ends first. A longer needle may start
		// before it, but it must start no later, so every candidate lies in
		// the window up to its start plus the longest needle.
		m := p.auto.Find(hay, from)
		if m == nil {
			return -1
		}
		first := m.Start
		end := min(len(hay), m.Start+p.longest)
		for _, o := range p.auto.FindAllOverlapping(hay[from:end]) {
			first = min(first, from+o.Start)
		}
		return first
	}

	i := boyermoore.Index(hay[from:], p.needles[0])
	if i < 0 {
		return -1
	}
	return from + i
}

// prev returns the last column at or before upto where a match may begin, or
// -1 if there is none in the line.
func (p *prefilter) prev(hay []byte, upto int) int {
	if p.auto != nil {
		// The automaton only searches forward.
		return upto
	}

	needle := p.needles[0]
	end := upto + len(needle)
	if end > len(hay) {
		end = len(hay)
	}
	return boyermoore.IndexRev(hay[:end], needle)
}

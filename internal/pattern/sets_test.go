package pattern

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPredicates(t *testing.T) {
	tests := []struct {
		input string
		in    string
		out   string
	}{
		{input: "A", in: "azAZm", out: "09 .\té"},
		{input: "U", in: "AQZ", out: "aq9 !"},
		{input: "L", in: "aqz", out: "AQ9 !"},
		{input: "N", in: "0123456789", out: "aZ .-"},
		{input: "S", in: " ", out: "\t\nx_"},
		{input: "P", in: "(),.;:\"'!?-`", out: "#$%&*+/<=>@[]^_{|}~ aA0"},
		{input: "C", in: " ~aZ09#", out: "\t\x7fé"},
		{input: "-U", in: " 09!?.az~", out: "AZ\té"},
		{input: "-S", in: "a!~", out: " \t"},
		{input: "D/aeiou/", in: "aeiou", out: "AEbcz "},
		{input: "D/a..f/", in: "abcdef", out: "gA"},
		{input: "D/x..z.0..2/", in: "xyz.012", out: "w3,"},
		{input: "D/éü/", in: "éü", out: "eu"},
		{input: "-D/aeiou/", in: "bxyz !", out: "aeiou\té"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			e := firstElem(t, tc.input)
			require.Equal(t, SetElem, e.Kind)
			pred := e.Set.Predicate()
			require.NotNil(t, pred)

			for _, r := range tc.in {
				assert.True(t, pred(r), "expected %q in %s", r, tc.input)
			}
			for _, r := range tc.out {
				assert.False(t, pred(r), "expected %q not in %s", r, tc.input)
			}
		})
	}
}

func TestNegatedSetCoversDomain(t *testing.T) {
	// A set and its negation partition printable ASCII.
	for _, class := range []Class{Alphabetic, Uppercase, Lowercase, Punctuation, Numeric, Space, Printable} {
		s := &Set{Class: class}
		n := &Set{Class: class, Negate: true}
		p, np := s.Predicate(), n.Predicate()
		for r := rune(0x20); r <= 0x7e; r++ {
			assert.NotEqual(t, p(r), np(r), "class %d char %q", class, r)
		}
	}
}

func TestDerefSetNeedsResolver(t *testing.T) {
	e := firstElem(t, "D$digits$")
	assert.Nil(t, e.Set.Predicate())

	r := NewResolver(context.Background(), testSpans{"digits": "0..4"}, nil)
	pred, err := r.SetPredicate(e.Set, 0)
	require.NoError(t, err)
	assert.True(t, pred('0'))
	assert.True(t, pred('4'))
	assert.False(t, pred('5'))
}

func TestSameChar(t *testing.T) {
	assert.True(t, sameChar('a', 'a', CaseExact))
	assert.False(t, sameChar('A', 'a', CaseExact))
	assert.True(t, sameChar('A', 'a', CaseInexact))
	assert.True(t, sameChar('É', 'é', CaseInexact))
	assert.False(t, sameChar('b', 'a', CaseInexact))
}

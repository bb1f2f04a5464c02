package pattern

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSpans struct {
	testSpans
	lookups int
}

func (s *countingSpans) Span(name string) (string, error) {
	s.lookups++
	return s.testSpans.Span(name)
}

func TestResolverCachesText(t *testing.T) {
	spans := &countingSpans{testSpans: testSpans{"fred": "U N"}}
	r := NewResolver(context.Background(), spans, nil)

	d := &Deref{Kind: NamedDeref, Text: "fred"}
	for i := 0; i < 3; i++ {
		txt, err := r.Text(d)
		require.NoError(t, err)
		assert.Equal(t, "U N", txt)
	}
	assert.Equal(t, 1, spans.lookups)

	// The compiled pattern shares the cached text.
	c, err := r.Compound(&Deref{Kind: NamedDeref, Text: "fred"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, spans.lookups)
	require.Len(t, c.Alts, 1)
	assert.Len(t, c.Alts[0].Elems, 2)
}

func TestResolverErrors(t *testing.T) {
	r := NewResolver(context.Background(), testSpans{"bad": "A,B"}, nil)

	_, err := r.Text(&Deref{Kind: NamedDeref, Text: "nope"})
	assert.True(t, errors.Is(err, ErrUndefinedSpan))

	_, err = r.Text(&Deref{Kind: PromptedDeref, Text: "what?"})
	assert.True(t, errors.Is(err, ErrCancelled))

	_, err = r.Compound(&Deref{Kind: NamedDeref, Text: "bad"}, 7)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 7, pe.Offset)
	assert.Contains(t, pe.Msg, `span "bad"`)
}

func TestResolverPromptAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &testPrompter{answers: map[string]string{"what?": "x"}}
	r := NewResolver(ctx, nil, p)
	_, err := r.Text(&Deref{Kind: PromptedDeref, Text: "what?"})
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.Empty(t, p.asked)
}

type failingSpans struct{}

func (failingSpans) Span(string) (string, error) {
	return "", errors.New("region out of range")
}

func TestResolverWrapsProviderErrors(t *testing.T) {
	r := NewResolver(context.Background(), failingSpans{}, nil)
	_, err := r.Text(&Deref{Kind: NamedDeref, Text: "x"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUndefinedSpan))
	assert.Contains(t, err.Error(), "span x")
}

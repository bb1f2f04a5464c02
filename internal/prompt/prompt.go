// Package prompt answers the &prompt& dereferences of a pattern.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jeffwilliams/ctxpat/internal/pattern"
)

// Scripted answers prompts from a fixed table. A prompt without an answer
// cancels the search.
type Scripted map[string]string

func (s Scripted) Prompt(ctx context.Context, text string) (string, error) {
	a, ok := s[text]
	if !ok {
		return "", fmt.Errorf("%w: no answer for %q", pattern.ErrCancelled, text)
	}
	return a, nil
}

const escape = "\x1b"

// Terminal asks prompts interactively: it writes the prompt text to Out and
// reads one line from In. End of input, a line holding only ESC, or the
// context being done cancels the search. A Terminal must not be copied after
// first use.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	start sync.Once
	lines chan answer
}

type answer struct {
	text string
	err  error
}

// read hands the lines of In to Prompt one at a time. A line that arrives
// after its prompt was cancelled answers the next prompt.
func (t *Terminal) read() {
	defer close(t.lines)
	r := bufio.NewReader(t.In)
	for {
		l, err := r.ReadString('\n')
		if l != "" || err != io.EOF {
			t.lines <- answer{l, err}
		}
		if err != nil {
			return
		}
	}
}

func (t *Terminal) Prompt(ctx context.Context, text string) (string, error) {
	t.start.Do(func() {
		t.lines = make(chan answer)
		go t.read()
	})

	fmt.Fprintf(t.Out, "%s: ", text)

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.Out)
		return "", fmt.Errorf("%w: %v", pattern.ErrCancelled, ctx.Err())
	case a, ok := <-t.lines:
		switch {
		case !ok:
			return "", fmt.Errorf("%w: end of input", pattern.ErrCancelled)
		case a.err != nil && a.err != io.EOF:
			return "", fmt.Errorf("reading answer: %w", a.err)
		}
		l := strings.TrimRight(a.text, "\r\n")
		if l == escape {
			return "", fmt.Errorf("%w: escape", pattern.ErrCancelled)
		}
		return l, nil
	}
}

// Fallback asks First, and asks Then when First has no answer.
type Fallback struct {
	First Scripted
	Then  pattern.Prompter
}

func (f Fallback) Prompt(ctx context.Context, text string) (string, error) {
	if a, ok := f.First[text]; ok {
		return a, nil
	}
	if f.Then == nil {
		return f.First.Prompt(ctx, text)
	}
	return f.Then.Prompt(ctx, text)
}

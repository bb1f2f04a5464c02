package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ddkwork/golibrary/mylog"

	"github.com/jeffwilliams/ctxpat/internal/errs"
	"github.com/jeffwilliams/ctxpat/internal/frame"
	"github.com/jeffwilliams/ctxpat/internal/pattern"
	"github.com/jeffwilliams/ctxpat/internal/prompt"
	"github.com/jeffwilliams/ctxpat/internal/span"
)

// Result is one match, reported with 1-based lines and columns.
type Result struct {
	Pattern string `csv:"pattern" json:"pattern"`
	Line    int    `csv:"line" json:"line"`
	Col     int    `csv:"col" json:"col"`
	EndLine int    `csv:"end_line" json:"end_line"`
	EndCol  int    `csv:"end_col" json:"end_col"`
	Text    string `csv:"text" json:"text"`
}

type compiledPattern struct {
	text string
	def  *pattern.Definition
}

// compilePatterns compiles every pattern and reports all that fail.
func compilePatterns(texts []string) ([]compiledPattern, error) {
	e := errs.New()
	var pats []compiledPattern
	for _, t := range texts {
		def, err := pattern.Compile(t)
		if err != nil {
			e.Addf("pattern %q: %w", t, err)
			continue
		}
		log(LogCatgSearch, "Compiled %q as %s\n", t, def)
		pats = append(pats, compiledPattern{t, def})
	}
	return pats, e.NilIfEmpty()
}

type searchMode int

const (
	searchFind searchMode = iota
	searchAll
	searchAnchored
)

type searcher struct {
	frame *frame.Frame
	opts  pattern.Options
	mode  searchMode
}

// search runs one pattern from origin. In searchAll mode it continues from
// each match until there are no more.
func (s *searcher) search(ctx context.Context, p compiledPattern, origin pattern.Position, report func(Result) error) (found bool, err error) {
	for {
		var (
			m  pattern.Match
			ok bool
		)
		if s.mode == searchAnchored {
			m, ok, err = pattern.MatchAt(ctx, p.def, s.frame, s.frame, origin, s.opts)
		} else {
			m, ok, err = pattern.Execute(ctx, p.def, s.frame, s.frame, origin, s.opts)
		}
		if err != nil || !ok {
			return
		}
		found = true

		log(LogCatgSearch, "%q matched %s-%s\n", p.text, m.Begin, m.End)
		if err = report(s.result(p, m)); err != nil {
			return
		}

		if s.mode != searchAll {
			return
		}
		if origin, ok = s.nextOrigin(m); !ok {
			return
		}
	}
}

func (s *searcher) result(p compiledPattern, m pattern.Match) Result {
	return Result{
		Pattern: p.text,
		Line:    m.Begin.Line + 1,
		Col:     m.Begin.Col + 1,
		EndLine: m.End.Line + 1,
		EndCol:  m.End.Col + 1,
		Text:    s.frame.Text(m.Begin, m.End),
	}
}

// nextOrigin returns where a repeated search continues after m. An empty
// match moves one column on so the search makes progress.
func (s *searcher) nextOrigin(m pattern.Match) (pattern.Position, bool) {
	if s.opts.Direction == pattern.Backward {
		p := m.Begin
		p.Col--
		if p.Col < 0 {
			p.Line--
			if p.Line < 0 {
				return p, false
			}
			p.Col = s.frame.LineLen(p.Line)
		}
		return p, true
	}

	p := m.End
	if m.End == m.Begin {
		p.Col++
	}
	if p.Col > s.frame.LineLen(p.Line) {
		p.Line++
		p.Col = 0
	}
	return p, p.Line < s.frame.Lines()
}

// parsePosition parses a 1-based line:col.
func parsePosition(s string) (pattern.Position, error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return pattern.Position{}, fmt.Errorf("position %q: expected line:col", s)
	}
	line, err := strconv.Atoi(l)
	if err != nil || line < 1 {
		return pattern.Position{}, fmt.Errorf("position %q: bad line", s)
	}
	col, err := strconv.Atoi(c)
	if err != nil || col < 1 {
		return pattern.Position{}, fmt.Errorf("position %q: bad column", s)
	}
	return pattern.Position{Line: line - 1, Col: col - 1}, nil
}

// parseRegion parses name=l1:c1-l2:c2.
func parseRegion(s string) (name string, from, to pattern.Position, err error) {
	name, r, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		err = fmt.Errorf("span region %q: expected name=line:col-line:col", s)
		return
	}
	a, b, ok := strings.Cut(r, "-")
	if !ok {
		err = fmt.Errorf("span region %q: expected name=line:col-line:col", s)
		return
	}
	if from, err = parsePosition(a); err != nil {
		return
	}
	to, err = parsePosition(b)
	return
}

// parseAssignment parses name=text.
func parseAssignment(kind, s string) (name, text string, err error) {
	name, text, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("%s %q: expected name=text", kind, s)
	}
	return name, text, nil
}

// buildSpans defines the spans from the settings file, then those from the
// command line, which may override them. Region spans read from f.
func buildSpans(settings *Settings, defs, regions []string, f *frame.Frame) (*span.Registry, error) {
	r := span.NewRegistry()
	for name, text := range settings.Spans {
		r.Define(name, text)
	}

	e := errs.New()
	for _, d := range defs {
		name, text, err := parseAssignment("span", d)
		if err != nil {
			e.Add(err)
			continue
		}
		r.Define(name, text)
	}
	for _, reg := range regions {
		name, from, to, err := parseRegion(reg)
		if err != nil {
			e.Add(err)
			continue
		}
		r.DefineRegion(name, f, from, to)
	}

	for _, n := range r.Names() {
		s, _ := r.Get(n)
		log(LogCatgConf, "Span %s\n", s)
	}
	return r, e.NilIfEmpty()
}

// parseMark parses n=line:col for a numbered mark.
func parseMark(s string) (pattern.MarkID, pattern.Position, error) {
	n, pos, ok := strings.Cut(s, "=")
	if !ok {
		return 0, pattern.Position{}, fmt.Errorf("mark %q: expected n=line:col", s)
	}
	id, err := strconv.Atoi(n)
	if err != nil || id < 1 || id > frame.MaxMark {
		return 0, pattern.Position{}, fmt.Errorf("mark %q: mark number must be 1 to %d", s, frame.MaxMark)
	}
	p, err := parsePosition(pos)
	if err != nil {
		return 0, pattern.Position{}, fmt.Errorf("mark %q: %w", s, err)
	}
	return pattern.MarkID(id), p, nil
}

// job is one invocation: the patterns and everything needed to run them
// against a frame. It can be run again when its inputs change.
type job struct {
	patterns []compiledPattern
	settings Settings

	file    string
	stdin   io.Reader
	origin  string
	marks   []string
	spans   []string
	regions []string
	answers prompt.Scripted
	// terminal is asked prompts that answers has no entry for.
	terminal pattern.Prompter

	direction pattern.Direction
	mode      searchMode
	format    reportFormat
}

func (j *job) loadFrame() *frame.Frame {
	if j.file == "" {
		return mylog.Check2(frame.Read(j.stdin))
	}
	f := mylog.Check2(os.Open(j.file))
	defer func() { mylog.Check(f.Close()) }()
	return mylog.Check2(frame.Read(f))
}

// run searches for every pattern and writes the matches to w. It reports
// whether any pattern matched. A text that can't be read panics through
// mylog.
func (j *job) run(ctx context.Context, w io.Writer) (found bool, err error) {
	f := j.loadFrame()
	f.SetMargins(j.settings.Search.LeftMargin, j.settings.Search.RightMargin)

	e := errs.New()
	for _, m := range j.marks {
		id, p, err := parseMark(m)
		if err != nil {
			e.Add(err)
			continue
		}
		f.SetMark(id, p)
	}

	origin, _ := f.Mark(pattern.MarkDot)
	if j.origin != "" {
		p, err := parsePosition(j.origin)
		if err != nil {
			e.Add(err)
		}
		origin = p
		f.SetMark(pattern.MarkDot, p)
	}

	spans, err := buildSpans(&j.settings, j.spans, j.regions, f)
	e.Add(err)
	if err := e.NilIfEmpty(); err != nil {
		return false, err
	}

	s := searcher{
		frame: f,
		mode:  j.mode,
		opts: pattern.Options{
			Direction: j.direction,
			MaxSteps:  j.settings.Search.MaxSteps,
			Spans:     spans,
			Prompter:  prompt.Fallback{First: j.answers, Then: j.terminal},
		},
	}

	enc, flush := getEncoder(w, j.format, len(j.patterns))
	report := func(r Result) error { return enc.Encode(r) }

	for _, p := range j.patterns {
		log(LogCatgSearch, "Searching %s for %q from %s\n", j.direction, p.text, origin)
		ok, err := s.search(ctx, p, origin, report)
		if err != nil {
			flush()
			return found, fmt.Errorf("pattern %q: %w", p.text, err)
		}
		found = found || ok
	}
	return found, flush()
}

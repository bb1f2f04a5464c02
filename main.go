package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/ddkwork/golibrary/mylog"
	"github.com/ogier/pflag"

	"github.com/jeffwilliams/ctxpat/internal/pattern"
	"github.com/jeffwilliams/ctxpat/internal/prompt"
)

const progName = "ctxpat"

// Exit codes.
const (
	exitFound   = 0
	exitMissing = 1
	exitError   = 2
)

// stringList is a flag that may be repeated.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(s string) error {
	*l = append(*l, s)
	return nil
}

var (
	optPatterns stringList
	optSpans    stringList
	optRegions  stringList
	optAnswers  stringList
	optMarks    stringList

	optFile           = pflag.StringP("file", "f", "", "Search the named file instead of standard input")
	optOrigin         = pflag.StringP("origin", "o", "", "Start searching at line:col (1-based) instead of the start of the text")
	optBackward       = pflag.BoolP("backward", "b", false, "Search backward from the origin")
	optAll            = pflag.BoolP("all", "a", false, "Report every match instead of only the first")
	optMatchAt        = pflag.BoolP("match-at", "x", false, "Only match at the origin itself")
	optInteractive    = pflag.BoolP("interactive", "i", false, "Ask &prompt& dereferences on the terminal. Requires --file")
	optCsv            = pflag.Bool("csv", false, "Report matches as CSV")
	optJson           = pflag.Bool("json", false, "Report matches as JSON")
	optSettings       = pflag.String("settings", "", "Load settings from this file instead of the default")
	optSampleSettings = pflag.Bool("sample-settings", false, "Print a sample settings file and exit")
	optWatch          = pflag.BoolP("watch", "w", false, "Search again whenever the file or settings change")
	optProfile        = pflag.StringP("profile", "p", "", "Profile the search: cpu, heap, block, mutex or trace")
	optProfileDir     = pflag.String("profile-dir", ".", "Directory the profile is written to")
	optDebugStdout    = pflag.Bool("dbg", false, "Print debug logs to stdout")
	optDumpLog        = pflag.Bool("dump-log", false, "Print the debug log to stderr on exit")
)

func init() {
	pflag.VarP(&optPatterns, "expr", "e", "A pattern to search for. May be repeated")
	pflag.VarP(&optSpans, "span", "s", "Define a span as name=text. May be repeated")
	pflag.Var(&optRegions, "span-region", "Define a span as the text name=line:col-line:col of the searched text. May be repeated")
	pflag.Var(&optAnswers, "answer", "Answer the prompt text with answer, given as text=answer. May be repeated")
	pflag.VarP(&optMarks, "mark", "m", "Set mark n to n=line:col. May be repeated")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [PATTERN] [FILE]\n\n", progName)
		fmt.Fprintf(os.Stderr, "Exits with 0 if a pattern matched, 1 if none did, and 2 on error.\n\n")
		pflag.PrintDefaults()
	}
}

func main() {
	code := exitError
	mylog.Call(func() { code = run() })
	os.Exit(code)
}

func run() int {
	j, err := parseAndValidateOptions(pflag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return exitError
	}

	initDebugging()
	if *optDumpLog {
		defer dumpLog()
	}

	if *optSampleSettings {
		fmt.Print(GenerateSampleSettings())
		return exitFound
	}

	stopProfile, err := startProfile(*optProfile, *optProfileDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return exitError
	}
	defer stopProfile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *optWatch {
		err = watch(ctx, j, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
			return exitError
		}
		return exitFound
	}

	found, err := j.run(ctx, os.Stdout)
	return exitCode(found, err)
}

func exitCode(found bool, err error) int {
	switch {
	case errors.Is(err, pattern.ErrCancelled):
		fmt.Fprintf(os.Stderr, "%s: search cancelled\n", progName)
		return exitError
	case err != nil:
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return exitError
	case found:
		return exitFound
	}
	return exitMissing
}

// parseAndValidateOptions parses args and builds the job they describe. The
// first positional argument is the pattern unless -e is given; the next is
// the file unless -f is given.
func parseAndValidateOptions(fs *pflag.FlagSet, args []string) (*job, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *optSampleSettings {
		return nil, nil
	}

	rest := fs.Args()
	patterns := []string(optPatterns)
	if len(patterns) == 0 {
		if len(rest) == 0 {
			return nil, errors.New("no pattern given")
		}
		patterns, rest = rest[:1], rest[1:]
	}
	file := *optFile
	if file == "" && len(rest) > 0 {
		file, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	if *optCsv && *optJson {
		return nil, errors.New("--csv and --json can't both be used")
	}
	if *optAll && *optMatchAt {
		return nil, errors.New("--all and --match-at can't both be used")
	}
	if *optInteractive && file == "" {
		return nil, errors.New("--interactive needs the text to come from a file")
	}
	if *optWatch && file == "" {
		return nil, errors.New("--watch needs the text to come from a file")
	}
	if *optProfile != "" {
		if _, err := profileMode(*optProfile); err != nil {
			return nil, err
		}
	}

	settings := DefaultSettings()
	LoadSettingsFromFile(SettingsConfigFile(), &settings)

	pats, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}

	answers := prompt.Scripted{}
	for _, a := range optAnswers {
		text, ans, err := parseAssignment("answer", a)
		if err != nil {
			return nil, err
		}
		answers[text] = ans
	}

	j := &job{
		patterns: pats,
		settings: settings,
		file:     file,
		stdin:    os.Stdin,
		origin:   *optOrigin,
		marks:    optMarks,
		spans:    optSpans,
		regions:  optRegions,
		answers:  answers,
	}
	if *optInteractive {
		j.terminal = &prompt.Terminal{In: os.Stdin, Out: os.Stderr}
	}
	if *optBackward {
		j.direction = pattern.Backward
	}
	switch {
	case *optAll:
		j.mode = searchAll
	case *optMatchAt:
		j.mode = searchAnchored
	}
	switch {
	case *optCsv:
		j.format = formatCsv
	case *optJson:
		j.format = formatJson
	}
	return j, nil
}

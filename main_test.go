package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ogier/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffwilliams/ctxpat/internal/pattern"
)

func resetOptions(t *testing.T) {
	optPatterns, optSpans, optRegions, optAnswers, optMarks = nil, nil, nil, nil, nil
	*optProfileDir = "."
	for _, s := range []*string{optFile, optOrigin, optProfile} {
		*s = ""
	}
	for _, b := range []*bool{optBackward, optAll, optMatchAt, optInteractive, optCsv, optJson,
		optSampleSettings, optWatch, optDebugStdout, optDumpLog} {
		*b = false
	}
	*optSettings = filepath.Join(t.TempDir(), "settings.toml")
}

func TestParseAndValidateOptions(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, j *job)
		err   string
	}{
		{
			name: "positional pattern and file",
			args: []string{`"a"`, "text.txt"},
			check: func(t *testing.T, j *job) {
				require.Len(t, j.patterns, 1)
				assert.Equal(t, `"a"`, j.patterns[0].text)
				assert.Equal(t, "text.txt", j.file)
				assert.Equal(t, searchFind, j.mode)
				assert.Equal(t, formatText, j.format)
			},
		},
		{
			name: "repeated patterns",
			args: []string{"-e", `"a"`, "--expr", `"b"`, "-f", "x", "-b", "-a", "--csv"},
			check: func(t *testing.T, j *job) {
				require.Len(t, j.patterns, 2)
				assert.Equal(t, "x", j.file)
				assert.Equal(t, pattern.Backward, j.direction)
				assert.Equal(t, searchAll, j.mode)
				assert.Equal(t, formatCsv, j.format)
			},
		},
		{
			name: "spans answers and marks",
			args: []string{"-s", "w=XY", "--span-region", "r=1:1-1:2", "--answer", "q=a", "-m", "1=1:1", "-x", "--json", `"a"`},
			check: func(t *testing.T, j *job) {
				assert.Equal(t, []string{"w=XY"}, j.spans)
				assert.Equal(t, []string{"r=1:1-1:2"}, j.regions)
				assert.Equal(t, "a", j.answers["q"])
				assert.Equal(t, []string{"1=1:1"}, j.marks)
				assert.Equal(t, searchAnchored, j.mode)
				assert.Equal(t, formatJson, j.format)
				assert.Nil(t, j.terminal)
			},
		},
		{
			name: "interactive",
			args: []string{"-i", `"a"`, "file"},
			check: func(t *testing.T, j *job) {
				assert.NotNil(t, j.terminal)
			},
		},
		{
			name:  "profile mode",
			args:  []string{"--profile", "Heap", `"a"`},
			check: func(t *testing.T, j *job) {},
		},
		{name: "unknown profile", args: []string{"-p", "disk", `"a"`}, err: `unknown profile "disk"`},
		{name: "no pattern", args: []string{}, err: "no pattern given"},
		{name: "extra arguments", args: []string{`"a"`, "f", "g"}, err: "unexpected arguments: g"},
		{name: "csv and json", args: []string{"--csv", "--json", `"a"`}, err: "can't both be used"},
		{name: "all and match-at", args: []string{"-a", "-x", `"a"`}, err: "can't both be used"},
		{name: "interactive needs file", args: []string{"-i", `"a"`}, err: "--interactive needs"},
		{name: "watch needs file", args: []string{"-w", `"a"`}, err: "--watch needs"},
		{name: "bad pattern", args: []string{`"a`}, err: "unterminated string"},
		{name: "bad answer", args: []string{"--answer", "noequals", `"a"`}, err: "expected name=text"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetOptions(t)
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			pflag.CommandLine.VisitAll(func(f *pflag.Flag) {
				fs.VarP(f.Value, f.Name, f.Shorthand, f.Usage)
			})

			j, err := parseAndValidateOptions(fs, tc.args)
			if tc.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.err)
				return
			}
			require.NoError(t, err)
			tc.check(t, j)
		})
	}
}

func TestStringList(t *testing.T) {
	var l stringList
	require.NoError(t, l.Set("a"))
	require.NoError(t, l.Set("b=c"))
	assert.Equal(t, stringList{"a", "b=c"}, l)
	assert.Equal(t, "a,b=c", l.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitFound, exitCode(true, nil))
	assert.Equal(t, exitMissing, exitCode(false, nil))
	assert.Equal(t, exitError, exitCode(false, errors.New("boom")))
	assert.Equal(t, exitError, exitCode(true, pattern.ErrCancelled))
}

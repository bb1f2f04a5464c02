package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"

	"github.com/ddkwork/golibrary/mylog"
	"github.com/pelletier/go-toml"

	"github.com/jeffwilliams/ctxpat/internal/errs"
)

var ConfDir string

func init() {
	if runtime.GOOS == "windows" {
		ConfDir = fmt.Sprintf("%s/.ctxpat", os.Getenv("USERPROFILE"))
	} else {
		ConfDir = fmt.Sprintf("%s/.ctxpat", os.Getenv("HOME"))
	}
}

func SettingsConfigFile() string {
	if *optSettings != "" {
		return *optSettings
	}
	return fmt.Sprintf("%s/%s", ConfDir, "settings.toml")
}

type Settings struct {
	Search SearchSettings
	// Spans are defined before any --span options, which override them.
	Spans map[string]string
}

type SearchSettings struct {
	MaxSteps    int `toml:"max-steps"`
	LeftMargin  int `toml:"left-margin"`
	RightMargin int `toml:"right-margin"`
}

func DefaultSettings() Settings {
	return Settings{
		Search: SearchSettings{
			MaxSteps: 1000000,
		},
	}
}

// LoadSettingsFromFile decodes the settings file at path into settings. A
// missing file leaves settings unchanged. Any other failure panics through
// mylog.
func LoadSettingsFromFile(path string, settings *Settings) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log(LogCatgConf, "No settings file %s; using defaults\n", path)
		return
	}

	f := mylog.Check2(os.Open(path))
	defer func() { mylog.Check(f.Close()) }()

	mylog.Check(DecodeSettings(f, settings))
	log(LogCatgConf, "Loaded settings from %s\n", path)
}

func DecodeSettings(r io.Reader, settings *Settings) error {
	dec := toml.NewDecoder(r)
	if err := dec.Decode(settings); err != nil {
		return err
	}
	return settings.Validate()
}

// Validate reports every problem with the settings at once.
func (s *Settings) Validate() error {
	e := errs.New()
	if s.Search.MaxSteps < 0 {
		e.Addf("search.max-steps must not be negative, got %d", s.Search.MaxSteps)
	}
	if s.Search.LeftMargin < 0 {
		e.Addf("search.left-margin must not be negative, got %d", s.Search.LeftMargin)
	}
	if s.Search.RightMargin < 0 {
		e.Addf("search.right-margin must not be negative, got %d", s.Search.RightMargin)
	}
	if s.Search.RightMargin != 0 && s.Search.RightMargin < s.Search.LeftMargin {
		e.Addf("search.right-margin %d is left of search.left-margin %d", s.Search.RightMargin, s.Search.LeftMargin)
	}
	for name := range s.Spans {
		if name == "" {
			e.Addf("spans: empty span name")
		}
	}
	return e.NilIfEmpty()
}

func GenerateSampleSettings() string {
	return `# Sample ctxpat settings file
[search]
# The most element attempts one search may make before giving up with
# "pattern too complex". 0 means the default of 100000.
#max-steps=100000

# Columns of the { and } positionals, counted from 0. A right margin of 0
# means the end of each line.
#left-margin=0
#right-margin=0

# The spans table defines named spans that patterns refer to as $name$.
# Names are not case sensitive.
#[spans]
#fred="XY"
#word="+L"
`
}

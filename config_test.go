package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ddkwork/golibrary/mylog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffwilliams/ctxpat/internal/pattern"
)

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Settings
		errors []string
	}{
		{
			name:  "empty",
			input: "",
			want:  DefaultSettings(),
		},
		{
			name: "all",
			input: `
[search]
max-steps=50
left-margin=2
right-margin=10

[spans]
fred="XY"
`,
			want: Settings{
				Search: SearchSettings{MaxSteps: 50, LeftMargin: 2, RightMargin: 10},
				Spans:  map[string]string{"fred": `"XY"`},
			},
		},
		{
			name: "invalid values reported together",
			input: `
[search]
max-steps=-1
left-margin=5
right-margin=3
`,
			errors: []string{"max-steps must not be negative", "right-margin 3 is left of search.left-margin 5"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			err := DecodeSettings(strings.NewReader(tc.input), &s)
			if len(tc.errors) > 0 {
				require.Error(t, err)
				for _, e := range tc.errors {
					assert.Contains(t, err.Error(), e)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, s)
		})
	}
}

func TestSampleSettingsDecode(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, DecodeSettings(strings.NewReader(GenerateSampleSettings()), &s))
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettingsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search]\nleft-margin=4\n"), 0o644))
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[search]\nmax-steps=\"many\"\n"), 0o644))

	tests := []struct {
		name       string
		path       string
		wantLoaded bool
		want       Settings
	}{
		{name: "missing file keeps defaults", path: filepath.Join(dir, "missing.toml"), wantLoaded: true, want: DefaultSettings()},
		{name: "file overrides defaults", path: path, wantLoaded: true, want: Settings{Search: SearchSettings{MaxSteps: pattern.DefaultMaxSteps, LeftMargin: 4}}},
		{name: "malformed file aborts", path: bad},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			loaded := false
			mylog.Call(func() {
				LoadSettingsFromFile(tc.path, &s)
				loaded = true
			})
			require.Equal(t, tc.wantLoaded, loaded)
			if loaded {
				assert.Equal(t, tc.want, s)
			}
		})
	}
}

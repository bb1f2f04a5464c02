package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func TestWatchSearchesAgainOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text")
	require.NoError(t, os.WriteFile(path, []byte("nothing here"), 0o644))
	*optSettings = filepath.Join(dir, "settings.toml")

	j := &job{
		patterns: mustCompilePatterns(t, `"needle"`),
		settings: DefaultSettings(),
		file:     path,
	}

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- watch(ctx, j, &out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "no match")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("a needle"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1:3-1:9")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchSurvivesBadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text")
	require.NoError(t, os.WriteFile(path, []byte("a needle"), 0o644))
	settings := filepath.Join(dir, "settings.toml")
	*optSettings = settings
	defer func() { *optSettings = "" }()

	j := &job{
		patterns: mustCompilePatterns(t, `"needle"`),
		settings: DefaultSettings(),
		file:     path,
	}

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- watch(ctx, j, &out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1:3-1:9")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(settings, []byte("[search]\nmax-steps=\"many\"\n"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "not reloaded")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("the needle"), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1:5-1:11")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

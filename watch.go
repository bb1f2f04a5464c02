package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ddkwork/golibrary/mylog"
	"github.com/fsnotify/fsnotify"
)

// settleTime is how long watch waits after a change before searching, so a
// burst of writes from one save causes one search.
const settleTime = 100 * time.Millisecond

// watch runs j, then runs it again each time its file or the settings file
// changes, until ctx is done. The directories are watched rather than the
// files so that editors which replace a file on save are followed.
func watch(ctx context.Context, j *job, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	file := filepath.Clean(j.file)
	settingsFile := filepath.Clean(SettingsConfigFile())
	watched := map[string]bool{file: true, settingsFile: true}

	dirs := map[string]bool{filepath.Dir(file): true, filepath.Dir(settingsFile): true}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			if d == filepath.Dir(file) {
				return fmt.Errorf("watching %s: %w", d, err)
			}
			log(LogCatgWatch, "Not watching settings directory %s: %v\n", d, err)
			continue
		}
		log(LogCatgWatch, "Watching %s\n", d)
	}

	searchAndReport := func() {
		var (
			found, done bool
			err         error
		)
		// A file caught halfway through a save can't be read; the next
		// event searches again.
		mylog.Call(func() {
			found, err = j.run(ctx, w)
			done = true
		})
		if !done {
			fmt.Fprintln(w, "error: can't read the text")
			return
		}
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return
		}
		if !found {
			fmt.Fprintln(w, "no match")
		}
	}

	searchAndReport()

	var settle <-chan time.Time
	reloadSettings := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log(LogCatgWatch, "Watch error: %v\n", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if !watched[name] || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log(LogCatgWatch, "%s\n", ev)
			if name == settingsFile {
				reloadSettings = true
			}
			settle = time.After(settleTime)
		case <-settle:
			settle = nil
			if reloadSettings {
				reloadSettings = false
				s := DefaultSettings()
				loaded := false
				mylog.Call(func() {
					LoadSettingsFromFile(settingsFile, &s)
					loaded = true
				})
				if !loaded {
					fmt.Fprintf(w, "error: settings %s not reloaded\n", settingsFile)
					continue
				}
				j.settings = s
				log(LogCatgConf, "Reloaded settings from %s\n", settingsFile)
			}
			searchAndReport()
		}
	}
}

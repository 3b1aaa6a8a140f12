package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Format   Format
	Debounce time.Duration

	// OnChange receives each successfully decoded version of the file.
	OnChange func(Document)
	// OnError receives read, decode and watcher errors. Watching continues.
	OnError func(error)
}

// Watch decodes the file at path whenever it changes until ctx is done. The
// parent directory is watched so editors that save by renaming a temporary
// file are still seen. Bursts of events are coalesced.
func Watch(ctx context.Context, path string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.OnError == nil {
		opts.OnError = func(error) {}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(opts.Debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			opts.OnError(fmt.Errorf("watch %s: %w", path, err))
		case <-timer.C:
			doc, err := ReadFile(abs, opts.Format)
			if err != nil {
				opts.OnError(err)
				continue
			}
			if opts.OnChange != nil {
				opts.OnChange(doc)
			}
		}
	}
}

package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of file events, e.g. a copy of many files.
const DefaultDebounce = 250 * time.Millisecond

var templateExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
}

// Templates lists the image files directly inside dir, sorted by name.
func Templates(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if templateExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// debouncer runs only the most recently triggered callback once the window
// passes without another trigger.
type debouncer struct {
	window time.Duration
	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// WatchTemplates sends the refreshed template list whenever dir changes,
// debounced by window. The channel is closed when ctx ends.
func WatchTemplates(ctx context.Context, dir string, window time.Duration) (<-chan []string, error) {
	if window <= 0 {
		window = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch templates: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch templates %s: %w", dir, err)
	}

	out := make(chan []string, 1)
	refresh := make(chan struct{}, 1)
	d := &debouncer{window: window}

	go func() {
		defer close(out)
		defer w.Close()
		defer d.cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !templateExts[strings.ToLower(filepath.Ext(ev.Name))] {
					continue
				}
				d.trigger(func() {
					select {
					case refresh <- struct{}{}:
					default:
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "template watcher error", "dir", dir, "err", err)
			case <-refresh:
				list, err := Templates(dir)
				if err != nil {
					slog.WarnContext(ctx, "template rescan failed", "dir", dir, "err", err)
					continue
				}
				// Keep only the newest list if the reader is behind.
				select {
				case <-out:
				default:
				}
				select {
				case out <- list:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	applog "themeswitch/internal/log"
	"themeswitch/internal/theme"
)

// File watches a file holding "light" or "dark" and reports its content as the
// platform preference. Desktop setups can point it at a file rewritten by a
// color-scheme hook.
type File struct {
	path    string
	capable bool
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	current theme.Theme
	nextID  int
	subs    []manualSub

	closeOnce sync.Once
	done      chan struct{}
}

// OpenFile probes path once. A missing or unreadable file, or one without a
// valid value, yields an unsupported signal that never fires.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("preference file path must not be empty")
	}
	f := &File{path: path, done: make(chan struct{})}

	pref, err := readPreference(path)
	if err != nil {
		applog.Debug(context.Background(), "preference file unavailable; platform signal unsupported", "path", path, "error", err)
		close(f.done)
		return f, nil
	}
	f.capable = true
	f.current = pref

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	f.watcher = watcher
	go f.loop()
	return f, nil
}

func readPreference(path string) (theme.Theme, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return theme.None, err
	}
	pref, ok := theme.Parse(string(b))
	if !ok {
		return theme.None, fmt.Errorf("unrecognised preference %q", string(b))
	}
	return pref, nil
}

func (f *File) loop() {
	defer close(f.done)
	target := filepath.Clean(f.path)
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			f.reload()
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			applog.Error(context.Background(), "preference watcher error", "path", f.path, "error", err)
		}
	}
}

func (f *File) reload() {
	pref, err := readPreference(f.path)
	if err != nil {
		applog.Debug(context.Background(), "ignoring unreadable preference file", "path", f.path, "error", err)
		return
	}

	f.mu.Lock()
	if pref == f.current {
		f.mu.Unlock()
		return
	}
	f.current = pref
	subs := make([]manualSub, len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	applog.Debug(context.Background(), "platform preference changed", "path", f.path, "preference", pref)
	for _, sub := range subs {
		sub.fn(pref)
	}
}

func (f *File) Supported() bool { return f.capable }

func (f *File) Current() theme.Theme {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *File) Subscribe(fn func(theme.Theme)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs = append(f.subs, manualSub{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, sub := range f.subs {
				if sub.id == id {
					f.subs = append(f.subs[:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Close stops watching. It is safe to call more than once.
func (f *File) Close() error {
	var err error
	f.closeOnce.Do(func() {
		if f.watcher != nil {
			err = f.watcher.Close()
			<-f.done
		}
	})
	return err
}

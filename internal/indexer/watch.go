package indexer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher triggers incremental reindexing when project files change on
// disk. It is optional: IndexProject works perfectly well driven purely by
// explicit calls, this just lets a caller wire automatic reindex-on-save.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	changes chan string
	stop    chan struct{}
}

// NewWatcher creates a Watcher over every directory under root. Like
// fsnotify itself, new subdirectories created after Start must be added
// by a fresh NewWatcher/Start cycle; this module doesn't chase mkdir
// events to add watches dynamically.
func NewWatcher(root string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	return &Watcher{
		root:    root,
		watcher: w,
		changes: make(chan string, 32),
		stop:    make(chan struct{}),
	}, nil
}

// Start begins watching in the background, sending changed files'
// relative paths to Changes() until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.processEvents(ctx)
}

// Stop releases the underlying filesystem watcher.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		return
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

// Changes returns the channel of changed files, relative to root.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			select {
			case w.changes <- rel:
			default:
				// channel full, drop; the next full reindex will catch it
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Package watch reports changes to a single input file.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/burstline/internal/contract"
)

// relevantOps are the operations that can change a file's content. Editors
// often replace files by rename, so the directory is watched rather than the file.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// FileWatcher emits on Changes after path settles for the debounce interval.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	changes  chan struct{}
}

// NewFileWatcher watches the directory holding path.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("cannot watch %q: %w", absPath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("cannot watch directory of %q: %w", absPath, err)
	}

	return &FileWatcher{
		watcher:  watcher,
		path:     absPath,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes is closed when Run returns.
func (fw *FileWatcher) Changes() <-chan struct{} {
	return fw.changes
}

// Run processes events until ctx is cancelled, then releases the watcher.
func (fw *FileWatcher) Run(ctx context.Context) {
	defer close(fw.changes)
	defer func() { _ = fw.watcher.Close() }()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path || event.Op&relevantOps == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			// Drop the signal if the consumer has not caught up with the last one
			select {
			case fw.changes <- struct{}{}:
			default:
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			contract.LogWarn("watching input", err)
		}
	}
}

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ramigb/semantic-skeletonizer/internal/logging"
)

// eventQueueCapacity is the bounded channel size between the fsnotify
// callback and the event loop: 100 events, drop-newest on overflow.
const eventQueueCapacity = 100

// Watcher owns the fsnotify handle and the change-tick sender,
// reskeletonizing every modified .ts/.tsx file inline and signaling
// Scanner.Changes() when any reskeletonize in a batch succeeds.
type Watcher struct {
	fsw     *fsnotify.Watcher
	scanner *Scanner

	events chan fsnotify.Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher establishes a recursive filesystem watch rooted at
// scanner.Root(). Establishing the underlying OS watch is the one failure
// mode treated as fatal at startup; every other error here (a single
// unwatchable subdirectory) is logged and skipped.
func NewWatcher(scanner *Scanner) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:     fsw,
		scanner: scanner,
		events:  make(chan fsnotify.Event, eventQueueCapacity),
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := w.addWatches(scanner.Root()); err != nil {
		fsw.Close()
		cancel()
		return nil, err
	}

	w.wg.Add(2)
	go w.forwardFromOS()
	go w.processEvents()

	return w, nil
}

// addWatches recursively registers a watch on every non-ignored directory
// under root, guarding against symlink cycles the same way
// lci/internal/indexing/watcher.go's addWatches does.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && rel != "." && w.scanner.ignorer.ShouldIgnoreDir(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			logging.Warn(component, "failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// forwardFromOS is the OS callback thread: it drains fsnotify's own event
// channel and forwards into the bounded inbound queue with a
// non-blocking send, dropping the newest event on overflow (events are
// hints; the next event reconciles).
func (w *Watcher) forwardFromOS() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			select {
			case w.events <- event:
			default:
				logging.Warn(component, "event queue full, dropping event for %s", event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn(component, "watch error: %v", err)
		}
	}
}

// processEvents is the event loop: it consumes the bounded queue,
// reskeletonizes every modified .ts/.tsx path, and ticks the change
// channel when at least one reskeletonize succeeds. Only Write events are
// handled; create/remove/rename are a known, documented gap.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.events:
			if !ok {
				return
			}
			w.handle(event)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) {
		return
	}
	if !isSourceFile(event.Name) {
		return
	}

	rel, err := filepath.Rel(w.scanner.Root(), event.Name)
	if err != nil {
		rel = event.Name
	}
	rel = filepath.ToSlash(rel)

	if w.scanner.ignorer.ShouldIgnoreFile(rel) {
		return
	}

	if w.scanner.indexPath(keyFor(rel)) {
		w.scanner.notifyChange()
	}
}

// Stop halts the watcher and waits for its goroutines to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

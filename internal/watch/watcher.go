// Package watch monitors a project tree for flat-file changes, adapted
// from the teacher's fsnotify-based FileWatcher: recursively add watches,
// filter paths against glob include/exclude patterns, and debounce bursts
// of events (editors routinely emit several writes per save) into a single
// notification per settled file.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/flatintern/internal/config"
)

// EventType classifies a settled file-system change.
type EventType int

const (
	Changed EventType = iota
	Removed
)

func (t EventType) String() string {
	if t == Removed {
		return "removed"
	}
	return "changed"
}

// Event is one debounced, pattern-matched notification.
type Event struct {
	Path string
	Type EventType
}

// DefaultDebounce matches the teacher's watch-mode default quiet period.
const DefaultDebounce = 300 * time.Millisecond

// Watcher recursively watches root for files matching cfg.Include (and not
// cfg.Exclude), delivering debounced Events to onEvent.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	include  []string
	exclude  []string
	debounce time.Duration
	onEvent  func(Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*pendingEvent
}

type pendingEvent struct {
	eventType EventType
	timer     *time.Timer
}

// New creates a Watcher rooted at root, using cfg's glob patterns, and
// delivering settled events to onEvent. Call Start to begin watching.
func New(root string, cfg config.Config, onEvent func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch.New: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:      fsw,
		root:     root,
		include:  cfg.Include,
		exclude:  cfg.Exclude,
		debounce: DefaultDebounce,
		onEvent:  onEvent,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]*pendingEvent),
	}
	return w, nil
}

// Start walks root adding a watch for every directory not excluded, then
// begins processing fsnotify events in the background.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("watch.Start: %w", err)
	}
	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop cancels event processing and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

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

		if w.shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("watch: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.exclude {
		trimmed := pattern
		if len(trimmed) > 3 && trimmed[len(trimmed)-3:] == "/**" {
			trimmed = trimmed[:len(trimmed)-3]
		}
		if matched, _ := filepath.Match(trimmed, base); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// shouldProcess reports whether path matches an include pattern (tried both
// as the given path and relative to root) and no exclude pattern (tried
// relative to root only).
func (w *Watcher) shouldProcess(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return false
		}
	}
	for _, pattern := range w.include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	if statErr != nil {
		if event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0 {
			if w.shouldProcess(event.Name) {
				w.schedule(event.Name, Removed)
			}
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.shouldIgnoreDir(event.Name) {
			if err := w.fsw.Add(event.Name); err != nil {
				log.Printf("watch: failed to add watch for new directory %s: %v", event.Name, err)
			}
		}
		return
	}

	if !w.shouldProcess(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.schedule(event.Name, Changed)
	} else if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.schedule(event.Name, Removed)
	}
}

// schedule debounces path: a settled event fires onEvent only after
// w.debounce has elapsed with no further activity on that path.
func (w *Watcher) schedule(path string, eventType EventType) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		p.eventType = eventType
		p.timer = time.AfterFunc(w.debounce, func() { w.flush(path) })
		return
	}
	p := &pendingEvent{eventType: eventType}
	p.timer = time.AfterFunc(w.debounce, func() { w.flush(path) })
	w.pending[path] = p
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.mu.Unlock()
	if !ok {
		return
	}
	w.onEvent(Event{Path: path, Type: p.eventType})
}

// Package watcher turns filesystem notifications for a vault into the
// domain's mutation events.
//
// fsnotify reports a move as a Rename of the old name followed by a
// Create of the new one, without linking the two. The watcher holds a
// Rename back for a short window and pairs it with a later Create,
// preferring one with the same name, then one in the same directory.
// Unpaired renames become deletions. A moved or removed folder is
// expanded into one event per file it held.
// Writes are debounced per path.
package watcher

import (
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"oot/internal/domain"
)

const (
	DefaultDebounce     = 150 * time.Millisecond
	DefaultRenameWindow = 250 * time.Millisecond
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets the quiet period before a write is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithRenameWindow sets how long a rename waits for its new name.
func WithRenameWindow(d time.Duration) Option {
	return func(w *Watcher) { w.renameWindow = d }
}

// Watcher monitors a vault directory tree.
type Watcher struct {
	Root   string
	Events <-chan domain.Event // Read-only external channel

	events       chan domain.Event // Internal write channel
	done         chan struct{}
	watcher      *fsnotify.Watcher
	logger       *slog.Logger
	debounce     time.Duration
	renameWindow time.Duration

	writes map[string]time.Time // path -> last write
	gone   []pendingGone
	dirs   map[string]bool // watched directories
	files  map[string]bool // files seen under watched directories
}

type pendingGone struct {
	path   string
	at     time.Time
	rename bool     // Rename rather than Remove; may pair with a Create
	dir    bool     // path was a watched directory
	files  []string // files under a gone directory
}

// New creates a watcher for the vault at root.
func New(root string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := newWatcher(root, opts...)
	w.watcher = fw
	return w, nil
}

func newWatcher(root string, opts ...Option) *Watcher {
	ch := make(chan domain.Event, 64)
	w := &Watcher{
		Root:         root,
		Events:       ch,
		events:       ch,
		done:         make(chan struct{}),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce:     DefaultDebounce,
		renameWindow: DefaultRenameWindow,
		writes:       make(map[string]time.Time),
		dirs:         make(map[string]bool),
		files:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start adds the vault tree to the watch list and begins delivering events.
func (w *Watcher) Start() error {
	if err := w.addDirs(w.Root); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher, delivers what is still pending and closes
// Events.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.events)
}

// addDirs recursively adds directories to the watcher, skipping hidden
// dirs, and remembers the files found on the way.
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if !d.IsDir() {
			if rel, ok := w.relative(p); ok {
				w.files[rel] = true
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != w.Root {
			return filepath.SkipDir
		}
		if rel, ok := w.relative(p); ok {
			w.dirs[rel] = true
		}
		if w.watcher == nil {
			return nil
		}
		return w.watcher.Add(p)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	tick := w.debounce
	if w.renameWindow < tick {
		tick = w.renameWindow
	}
	ticker := time.NewTicker(tick / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Drain pending on close.
				w.flush(time.Now(), true)
				return
			}
			w.handle(event, time.Now())

		case now := <-ticker.C:
			w.flush(now, false)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.flush(time.Now(), true)
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handle folds one notification into the pending state, emitting what
// can be decided immediately.
func (w *Watcher) handle(event fsnotify.Event, now time.Time) {
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.createdDir(rel, event.Name)
			return
		}
		w.files[rel] = true
		w.created(rel, now)

	case event.Has(fsnotify.Write):
		w.writes[rel] = now

	case event.Has(fsnotify.Rename), event.Has(fsnotify.Remove):
		delete(w.writes, rel)
		g := pendingGone{path: rel, at: now, rename: event.Has(fsnotify.Rename)}
		g.dir, g.files = w.forget(rel)
		w.gone = append(w.gone, g)
	}
}

// forget drops rel from the known tree. For a directory it returns the
// files that were under it.
func (w *Watcher) forget(rel string) (bool, []string) {
	if !w.dirs[rel] {
		delete(w.files, rel)
		return false, nil
	}
	prefix := rel + "/"
	for d := range w.dirs {
		if d == rel || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
	var files []string
	for f := range w.files {
		if strings.HasPrefix(f, prefix) {
			files = append(files, f)
			delete(w.files, f)
		}
	}
	sort.Strings(files)
	return true, files
}

func (w *Watcher) created(rel string, now time.Time) {
	// Replaced in place: an editor that deletes and recreates on save.
	for i, g := range w.gone {
		if g.path == rel && !g.dir {
			w.gone = append(w.gone[:i], w.gone[i+1:]...)
			w.writes[rel] = now
			return
		}
	}
	if g, ok := w.pair(rel, false); ok {
		w.emit(domain.Event{Kind: domain.EventRenamed, Path: rel, OldPath: g.path})
		return
	}
	w.emit(domain.Event{Kind: domain.EventCreated, Path: rel})
}

// pair takes the pending rename that most likely produced rel: same base
// name first, then same parent directory, then the oldest one.
func (w *Watcher) pair(rel string, dir bool) (pendingGone, bool) {
	best, bestScore := -1, -1
	for i, g := range w.gone {
		if !g.rename || g.dir != dir {
			continue
		}
		score := 0
		switch {
		case path.Base(g.path) == path.Base(rel):
			score = 2
		case path.Dir(g.path) == path.Dir(rel):
			score = 1
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return pendingGone{}, false
	}
	g := w.gone[best]
	w.gone = append(w.gone[:best], w.gone[best+1:]...)
	return g, true
}

// createdDir starts watching a new directory and reports the files it
// holds. A directory that pairs with a pending folder rename reports its
// files as renamed from their old location.
func (w *Watcher) createdDir(rel, abs string) {
	if err := w.addDirs(abs); err != nil {
		w.logger.Warn("failed to watch directory", "path", abs, "error", err)
	}
	var files []string
	prefix := rel + "/"
	for f := range w.files {
		if strings.HasPrefix(f, prefix) {
			files = append(files, f)
		}
	}
	sort.Strings(files)

	g, moved := w.pair(rel, true)
	old := make(map[string]bool, len(g.files))
	for _, f := range g.files {
		old[f] = true
	}
	for _, f := range files {
		from := g.path + "/" + strings.TrimPrefix(f, prefix)
		if moved && old[from] {
			delete(old, from)
			w.emit(domain.Event{Kind: domain.EventRenamed, Path: f, OldPath: from})
			continue
		}
		w.emit(domain.Event{Kind: domain.EventCreated, Path: f})
	}
	for _, f := range g.files {
		if old[f] {
			w.emit(domain.Event{Kind: domain.EventDeleted, Path: f})
		}
	}
}

// flush emits writes that have been quiet for the debounce period and
// gone files whose rename window expired. force flushes everything.
func (w *Watcher) flush(now time.Time, force bool) {
	kept := w.gone[:0]
	for _, g := range w.gone {
		if force || now.Sub(g.at) >= w.renameWindow {
			if !g.dir {
				w.emit(domain.Event{Kind: domain.EventDeleted, Path: g.path})
			}
			for _, f := range g.files {
				w.emit(domain.Event{Kind: domain.EventDeleted, Path: f})
			}
			continue
		}
		kept = append(kept, g)
	}
	w.gone = kept

	var ready []string
	for p, at := range w.writes {
		if force || now.Sub(at) >= w.debounce {
			ready = append(ready, p)
		}
	}
	sort.Strings(ready)
	for _, p := range ready {
		delete(w.writes, p)
		w.emit(domain.Event{Kind: domain.EventChanged, Path: p})
	}
}

func (w *Watcher) emit(ev domain.Event) {
	w.logger.Debug("vault event", "event", ev.Kind.String(), "path", ev.Path, "old_path", ev.OldPath)
	w.events <- ev
}

// relative converts an absolute notification path to a vault path,
// rejecting anything in a hidden directory.
func (w *Watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.Root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") {
			return "", false
		}
	}
	return rel, true
}

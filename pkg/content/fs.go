package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FSResolver reads lessons from a file system and caches them. When opened
// on a directory with OpenDir, file changes evict the cached lesson.
type FSResolver struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]*Document

	dir     string
	watcher *fsnotify.Watcher
	logger  *log.Logger
	done    chan struct{}
}

// NewFSResolver resolves lessons from fsys without change tracking.
func NewFSResolver(fsys fs.FS) *FSResolver {
	return &FSResolver{
		fsys:  fsys,
		cache: make(map[string]*Document),
	}
}

// OpenDir resolves lessons from dir and watches it and its immediate
// sub-folders for changes. Close stops the watcher.
func OpenDir(dir string, logger *log.Logger) (*FSResolver, error) {
	if logger == nil {
		logger = log.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("open content %s: %w", dir, err)
	}
	dirs := []string{dir}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}

	r := NewFSResolver(os.DirFS(dir))
	r.dir = dir
	r.watcher = w
	r.logger = logger
	r.done = make(chan struct{})
	go r.watch()
	return r, nil
}

func (r *FSResolver) watch() {
	defer close(r.done)
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := r.watcher.Add(ev.Name); err != nil {
						r.logger.Printf("content watch %s: %v", ev.Name, err)
					}
				}
			}
			r.evict(ev.Name)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Printf("content watch: %v", err)
		}
	}
}

// evict drops the cache entry for a changed file.
func (r *FSResolver) evict(name string) {
	rel, err := filepath.Rel(r.dir, name)
	if err != nil {
		return
	}
	key := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	r.mu.Lock()
	delete(r.cache, key)
	r.mu.Unlock()
}

// Resolve implements Resolver.
func (r *FSResolver) Resolve(ctx context.Context, folder string, lesson int) (*Document, error) {
	base, err := lessonBase(folder, lesson)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	doc, ok := r.cache[base]
	r.mu.Unlock()
	if ok {
		return doc, nil
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, &TransportError{Path: base, Err: err}
		}
		name := base + c.ext
		body, err := fs.ReadFile(r.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &TransportError{Path: name, Err: err}
		}

		doc := &Document{Path: name, Kind: c.kind, Body: body}
		r.mu.Lock()
		r.cache[base] = doc
		r.mu.Unlock()
		return doc, nil
	}
	return nil, fmt.Errorf("%s: %w", base, ErrNotFound)
}

// Close stops watching. It is a no-op for resolvers without a watcher.
func (r *FSResolver) Close() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	<-r.done
	r.watcher = nil
	return err
}

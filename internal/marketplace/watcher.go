package marketplace

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is called after the seed directory changed, with the files
// that triggered the reload
type ReloadCallback func(changedFiles []string)

// SeedWatcher monitors the agent seed directory and reloads the catalog
// when seed files change
type SeedWatcher struct {
	watcher  *fsnotify.Watcher
	catalog  *Catalog
	dir      string
	callback ReloadCallback
	debounce time.Duration

	pending map[string]struct{}
	timer   *time.Timer
	mu      sync.Mutex

	cancel context.CancelFunc
}

// NewSeedWatcher creates a watcher over dir feeding catalog
func NewSeedWatcher(catalog *Catalog, dir string, callback ReloadCallback) (*SeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	return &SeedWatcher{
		watcher:  watcher,
		catalog:  catalog,
		dir:      dir,
		callback: callback,
		debounce: 500 * time.Millisecond, // Debounce rapid changes
		pending:  make(map[string]struct{}),
	}, nil
}

// Start begins watching for seed file changes
func (sw *SeedWatcher) Start(ctx context.Context) {
	ctx, sw.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sw.watcher.Events:
				if !ok {
					return
				}
				sw.handleEvent(event)
			case _, ok := <-sw.watcher.Errors:
				if !ok {
					return
				}
				// Keep watching through transient errors
			}
		}
	}()
}

// Stop stops watching
func (sw *SeedWatcher) Stop() {
	if sw.cancel != nil {
		sw.cancel()
	}
	sw.watcher.Close()
}

// SetDebounce sets the debounce duration for batching changes
func (sw *SeedWatcher) SetDebounce(d time.Duration) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.debounce = d
}

func (sw *SeedWatcher) handleEvent(event fsnotify.Event) {
	ext := filepath.Ext(event.Name)
	if ext != ".yaml" && ext != ".yml" {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.pending[event.Name] = struct{}{}

	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, sw.flush)
}

func (sw *SeedWatcher) flush() {
	sw.mu.Lock()
	pending := sw.pending
	sw.pending = make(map[string]struct{})
	sw.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	if err := sw.catalog.LoadDir(sw.dir); err != nil {
		// A bad seed file must not wipe the running catalog; LoadDir
		// fails before swapping state, so nothing to undo here.
		return
	}

	if sw.callback != nil {
		files := make([]string, 0, len(pending))
		for f := range pending {
			files = append(files, f)
		}
		sw.callback(files)
	}
}

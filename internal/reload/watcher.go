package reload

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type fileState struct {
	modTime time.Time
	size    int64
}

// Watcher keeps track of generation input files and detects modifications.
type Watcher struct {
	mu    sync.Mutex
	paths []string
	files map[string]fileState
}

// NewWatcher snapshots the given files.
func NewWatcher(paths ...string) (*Watcher, error) {
	watcher := &Watcher{}
	if err := watcher.Update(paths...); err != nil {
		return nil, err
	}
	return watcher, nil
}

// Update replaces the tracked file list. Without arguments it re-snapshots
// the current list. Missing files and directories are not tracked.
func (w *Watcher) Update(paths ...string) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(paths) > 0 {
		abs := make([]string, 0, len(paths))
		for _, path := range paths {
			if strings.TrimSpace(path) == "" {
				continue
			}
			if resolved, err := filepath.Abs(path); err == nil {
				path = resolved
			}
			abs = append(abs, path)
		}
		w.paths = uniquePaths(abs)
	}
	states := make(map[string]fileState, len(w.paths))
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}
		states[path] = fileState{modTime: info.ModTime(), size: info.Size()}
	}
	w.files = states
	return nil
}

// Check reports the files that changed since the last snapshot.
func (w *Watcher) Check() ([]string, error) {
	if w == nil {
		return nil, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := make([]string, 0)
	for path, state := range w.files {
		info, err := os.Stat(path)
		if err != nil {
			changed = append(changed, path)
			continue
		}
		if info.IsDir() {
			continue
		}
		if info.ModTime().After(state.modTime) || info.Size() != state.size {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

// Wait polls every interval until a tracked file changes or ctx is done. The
// snapshot is refreshed before returning the changed files.
func (w *Watcher) Wait(ctx context.Context, interval time.Duration) ([]string, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			changed, err := w.Check()
			if err != nil {
				return nil, err
			}
			if len(changed) > 0 {
				return changed, w.Update()
			}
		}
	}
}

func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	result := make([]string, 0, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}
	return result
}

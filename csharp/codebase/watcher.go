package codebase

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls the codebase root and reloads files whose
// modification time changed. Files that disappear are unloaded.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	stopOnce     sync.Once
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(paths []string)
}

func NewFileWatcher(c *Codebase) *FileWatcher {
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
	}
}

// OnChange registers fn to be called after each poll that reloaded or
// removed files, with the affected paths.
func (w *FileWatcher) OnChange(fn func(paths []string)) {
	w.onChange = fn
}

func (w *FileWatcher) SetInterval(d time.Duration) {
	w.pollInterval = d
}

func (w *FileWatcher) Start() {
	go w.run()
}

func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *FileWatcher) scan() []string {
	paths, err := Discover(w.codebase.RootDir(), w.codebase.Config().Check.Exclude)
	if err != nil {
		log.Warningf("watching %s: %s", w.codebase.RootDir(), err)
		return nil
	}

	var changed []string
	current := make(map[string]bool, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current[path] = true
		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			if err := w.codebase.ScanFile(path); err != nil {
				log.Warningf("reloading %s: %s", path, err)
				continue
			}
			changed = append(changed, path)
		}
	}

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			changed = append(changed, path)
		}
	}
	if len(changed) > 0 {
		log.Debugf("watcher reloaded %d files", len(changed))
		if w.onChange != nil {
			w.onChange(changed)
		}
	}
	return changed
}

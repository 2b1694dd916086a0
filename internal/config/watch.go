package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a scenario file whenever it changes on disk.
// Successful reloads arrive on Scenarios, parse and I/O failures on Errors.
type Watcher struct {
	watcher   *fsnotify.Watcher
	path      string
	Scenarios chan Scenario
	Errors    chan error
	closeCh   chan struct{}
	done      chan struct{}
	once      sync.Once
}

// Watch starts watching the scenario file at path. The parent directory is
// watched so editors that replace the file on save are handled.
func Watch(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:   fw,
		path:      abs,
		Scenarios: make(chan Scenario, 4),
		Errors:    make(chan error, 4),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Scenarios)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Editors often write in several bursts; reload once they settle.
			if timer == nil {
				timer = time.NewTimer(WatchDebounce)
			} else {
				timer.Reset(WatchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendErr(err)
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	sc, err := LoadScenario(w.path)
	if err != nil {
		w.sendErr(err)
		return
	}
	select {
	case w.Scenarios <- sc:
	case <-w.closeCh:
	}
}

// sendErr drops errors nobody is reading rather than blocking the watch loop.
func (w *Watcher) sendErr(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

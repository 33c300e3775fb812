package resource

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/shader"
)

// reloadLag suppresses repeated events for the same shader; editors
// typically emit several writes per save.
const reloadLag = 100 * time.Millisecond

// Watcher watches a shader library's override directory and reports the
// techniques whose shader changed. It never touches device state: the
// owner of the Cache drains Reloads and calls ReloadPipeline.
type Watcher struct {
	lib     *shader.Library
	fw      *fsnotify.Watcher
	reloads chan Technique
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	last map[Technique]time.Time
}

// NewWatcher starts watching lib.Dir().
func NewWatcher(lib *shader.Library) (*Watcher, error) {
	if lib.Dir() == "" {
		return nil, fmt.Errorf("resource: watcher: shader library has no directory")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("resource: watcher: %w", err)
	}
	if err := fw.Add(lib.Dir()); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("resource: watcher: %w", err)
	}

	w := &Watcher{
		lib:     lib,
		fw:      fw,
		reloads: make(chan Technique, int(techniqueCount)),
		done:    make(chan struct{}),
		last:    make(map[Technique]time.Time),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Reloads delivers techniques to reload. A request is dropped when one for
// the same technique is still pending.
func (w *Watcher) Reloads() <-chan Technique { return w.reloads }

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(ev.Name, time.Now())
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			g3d.Logger().Warn("resource: watcher error", slog.String("err", err.Error()))
		}
	}
}

// handle maps a changed path to a technique and queues it.
func (w *Watcher) handle(path string, now time.Time) bool {
	name, ok := w.lib.NameForPath(path)
	if !ok {
		return false
	}
	t, ok := TechniqueForShader(name)
	if !ok {
		return false
	}
	if last, seen := w.last[t]; seen && now.Sub(last) < reloadLag {
		return false
	}
	w.last[t] = now

	select {
	case w.reloads <- t:
		g3d.Logger().Debug("resource: shader changed",
			slog.String("path", path),
			slog.String("technique", t.String()))
		return true
	default:
		return false
	}
}

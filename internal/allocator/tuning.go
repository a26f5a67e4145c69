package allocator

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Tuning is the subset of Config that can be hot-reloaded from disk.
// A live MTHeap applies a reloaded AreaSize to areas it creates from
// then on and grows its registry to a larger NumAreas; areas that
// already exist are never resized or removed.
type Tuning struct {
	AreaSize uintptr `json:"areaSize"`
	NumAreas int     `json:"numAreas"`
}

// TuningWatcher watches a JSON file of Tuning values and delivers each
// successfully parsed update, following the teacher's FSNotifyWatcher
// (internal/runtime/vfs/watch_fsnotify.go): a background goroutine
// forwards fsnotify events onto a buffered channel that callers drain
// at their own pace.
type TuningWatcher struct {
	path string
	w    *fsnotify.Watcher
	updC chan Tuning
	erC  chan error
}

// NewTuningWatcher starts watching path and emits its current contents
// as the first update.
func NewTuningWatcher(path string) (*TuningWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}

	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("tuning: watch %s: %w", path, err)
	}

	tw := &TuningWatcher{
		path: path,
		w:    w,
		updC: make(chan Tuning, 1),
		erC:  make(chan error, 1),
	}

	go tw.loop()

	if t, err := tw.read(); err == nil {
		tw.updC <- t
	}

	return tw, nil
}

func (tw *TuningWatcher) loop() {
	for {
		select {
		case ev, ok := <-tw.w.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			t, err := tw.read()
			if err != nil {
				tw.erC <- err
				continue
			}

			tw.updC <- t
		case err, ok := <-tw.w.Errors:
			if !ok {
				return
			}

			tw.erC <- err
		}
	}
}

func (tw *TuningWatcher) read() (Tuning, error) {
	raw, err := os.ReadFile(tw.path)
	if err != nil {
		return Tuning{}, fmt.Errorf("tuning: read %s: %w", tw.path, err)
	}

	var t Tuning
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tuning{}, fmt.Errorf("tuning: parse %s: %w", tw.path, err)
	}

	return t, nil
}

// Updates delivers each successfully parsed Tuning, in the order the
// file was read.
func (tw *TuningWatcher) Updates() <-chan Tuning { return tw.updC }

// Errors delivers read or parse failures that Updates skipped over.
func (tw *TuningWatcher) Errors() <-chan error { return tw.erC }

// Close stops the watcher.
func (tw *TuningWatcher) Close() error { return tw.w.Close() }

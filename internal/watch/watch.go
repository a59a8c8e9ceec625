// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

// Package watch recursively watches a directory tree and delivers debounced batches of
// change events, generalizing the "poll loop" cancellation model of spec §5 from a bare
// interrupt flag into an fsnotify event channel select.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind mirrors the update-event kinds of spec §6: create, remove, modify.
type EventKind string

const (
	Create EventKind = "create"
	Remove EventKind = "remove"
	Modify EventKind = "modify"
)

// Event is one filesystem change.
type Event struct {
	Kind EventKind
	Path string
}

// Batch is a debounced group of events delivered together to a Strategy re-walk.
type Batch []Event

// Watcher recursively watches root and emits debounced batches on Batches().
type Watcher struct {
	fsw     *fsnotify.Watcher
	batches chan Batch
	debounce time.Duration
}

// New creates a Watcher rooted at root, registering every directory beneath it.
func New(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}

	return &Watcher{fsw: fsw, batches: make(chan Batch), debounce: debounce}, nil
}

// Batches returns the channel of debounced event batches.
func (w *Watcher) Batches() <-chan Batch {
	return w.batches
}

// Run drives the debounce loop until ctx is cancelled, per spec §5's cancellation model:
// the loop checks the external interrupt (ctx.Done()) each iteration.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.batches)

	var pending Batch
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := pending
		pending = nil
		select {
		case w.batches <- batch:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				flush()
				return
			}
			pending = append(pending, toEvent(ev))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			flush()
			timerC = nil

		case <-w.fsw.Errors:
			// Surfaced nowhere per spec §5 (watch errors are non-fatal); a future
			// revision could plumb these through a dedicated channel.
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func toEvent(ev fsnotify.Event) Event {
	switch {
	case ev.Has(fsnotify.Create):
		return Event{Kind: Create, Path: ev.Name}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Kind: Remove, Path: ev.Name}
	default:
		return Event{Kind: Modify, Path: ev.Name}
	}
}

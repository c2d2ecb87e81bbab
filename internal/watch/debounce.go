// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// debouncer collects paths and hands them to fire once no new path has
// arrived for the debounce period. fire never runs concurrently with
// itself; a flush that finds a run in progress calls busy and retries
// after another period so pending paths are not lost.
type debouncer struct {
	period  time.Duration
	fire    func([]string)
	busy    func()
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	running atomic.Bool
	stopped bool
}

func newDebouncer(period time.Duration, fire func([]string), busy func()) *debouncer {
	return &debouncer{
		period:  period,
		fire:    fire,
		busy:    busy,
		pending: make(map[string]struct{}),
	}
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.period, d.flush)
	} else {
		d.timer.Reset(d.period)
	}
}

func (d *debouncer) flush() {
	if !d.running.CompareAndSwap(false, true) {
		if d.busy != nil {
			d.busy()
		}
		d.mu.Lock()
		if d.timer != nil && !d.stopped {
			d.timer.Reset(d.period)
		}
		d.mu.Unlock()
		return
	}
	defer d.running.Store(false)

	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(d.pending))
	for p := range d.pending {
		changed = append(changed, p)
	}
	clear(d.pending)
	d.mu.Unlock()

	slices.Sort(changed)
	d.fire(changed)
}

// stop cancels any scheduled flush. Pending paths are dropped.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

package store

import (
	"sync"
	"time"

	"github.com/iwvelando/tal-calculator/pkg/form"
	"go.uber.org/zap"
)

// AutoSaver debounces saves of one key: only the last snapshot scheduled
// within delay of the previous one is written.
type AutoSaver struct {
	store  Store
	key    string
	delay  time.Duration
	logger *zap.Logger

	// saveMu orders writes: a snapshot taken later is always written later.
	saveMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending *form.Facts
	gen     uint64
	closed  bool
}

// NewAutoSaver returns an AutoSaver writing to store under key.
func NewAutoSaver(store Store, key string, delay time.Duration, logger *zap.Logger) *AutoSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoSaver{store: store, key: key, delay: delay, logger: logger}
}

// Schedule records facts as the latest snapshot and restarts the timer.
func (a *AutoSaver) Schedule(facts form.Facts) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	snapshot := facts.Clone()
	a.pending = &snapshot
	a.gen++
	gen := a.gen
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() {
		if err := a.flush(gen); err != nil {
			a.logger.Warn("autosave failed",
				zap.String("op", "store.AutoSaver"),
				zap.String("key", a.key),
				zap.Error(err),
			)
		}
	})
}

// Flush writes the pending snapshot now, if any.
func (a *AutoSaver) Flush() error {
	return a.flush(0)
}

// flush writes the pending snapshot. A non-zero gen only flushes when no
// schedule happened since, so a timer that already fired cannot cut a newer
// delay short.
func (a *AutoSaver) flush(gen uint64) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if gen != 0 && gen != a.gen {
		a.mu.Unlock()
		return nil
	}
	pending := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	if pending == nil {
		return nil
	}
	return a.store.Save(a.key, *pending)
}

// Discard drops the pending snapshot without writing it and waits for a
// save already in progress, so that a Delete issued afterwards is final.
func (a *AutoSaver) Discard() {
	a.mu.Lock()
	a.gen++
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	// Any save that took its snapshot before the reset finishes here.
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
}

// Close flushes the pending snapshot and ignores later schedules.
func (a *AutoSaver) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush()
}

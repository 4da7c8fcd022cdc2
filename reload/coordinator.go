// Package reload coordinates config hot-reload: it watches for change
// notifications, debounces bursts of them, recompiles off the audio
// thread, and hands the freshly compiled configuration to the engine
// through a single-slot channel once the audio thread is free to start
// crossfading into it.
package reload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/cwbudde/apoengine/graph"
	"github.com/cwbudde/apoengine/kvstore"
	"github.com/cwbudde/apoengine/watch"
)

// DefaultDebounce is how long the coordinator waits for a burst of change
// events to go quiet before recompiling — long enough to absorb an
// editor's write-then-rename save sequence without loading twice.
const DefaultDebounce = 10 * time.Millisecond

// DefaultKVPollInterval is how often the coordinator asks the key/value
// store whether any watched key changed. Store.Changed has no push
// channel of its own — FileStore reloads from disk on every call — so
// this is plain polling rather than a blocking wait.
const DefaultKVPollInterval = 250 * time.Millisecond

// CompileFunc builds a fresh configuration from whatever source the
// caller's config lives in. It runs off the audio thread and may block.
type CompileFunc func() (*graph.FilterConfiguration, error)

// Coordinator owns the watch source, compile worker and handoff slot for
// one config's hot-reload lifecycle.
//
// The semaphore permit it acquires before compiling is not released on
// compile completion — it stays held until the engine finishes
// crossfading into the new configuration and calls Release. A compile
// that completed while the audio thread was still fading into a
// previous one would corrupt the pending-config slot, so the permit
// guards the whole fade, not just the compile.
type Coordinator struct {
	compile  CompileFunc
	source   watch.Source
	kv       kvstore.Store
	kvPoll   time.Duration
	debounce time.Duration
	sem      *semaphore.Weighted
	pending  chan *graph.FilterConfiguration
	logger   *slog.Logger
}

// New returns a Coordinator that recompiles via compile whenever source
// reports a change or kv reports a watched key changed, after debounce
// has passed with no further changes. kv may be nil, disabling the
// registry-key wait signal entirely.
func New(source watch.Source, kv kvstore.Store, compile CompileFunc, debounce time.Duration, logger *slog.Logger) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		compile:  compile,
		source:   source,
		kv:       kv,
		kvPoll:   DefaultKVPollInterval,
		debounce: debounce,
		sem:      semaphore.NewWeighted(1),
		pending:  make(chan *graph.FilterConfiguration, 1),
		logger:   logger,
	}
}

// Pending delivers every successfully compiled configuration, in order,
// for the engine to pick up and start crossfading into. The engine must
// call Release once it has finished fading into a configuration received
// here before the next one can be compiled and delivered.
func (c *Coordinator) Pending() <-chan *graph.FilterConfiguration {
	return c.pending
}

// Release returns the reload permit the engine has been holding since it
// received a configuration from Pending, allowing the next reload to
// proceed.
func (c *Coordinator) Release() {
	c.sem.Release(1)
}

// Run watches for change notifications — config-directory writes and,
// if a kvstore.Store was supplied, watched-key changes — and recompiles
// until ctx is cancelled. It is meant to run in its own goroutine.
func (c *Coordinator) Run(ctx context.Context) {
	events := c.source.Events()

	var kvTick <-chan time.Time

	if c.kv != nil {
		ticker := time.NewTicker(c.kvPoll)
		defer ticker.Stop()

		kvTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}

			if !c.debounceWait(ctx, events) {
				return
			}

			c.reload(ctx)
		case <-kvTick:
			if !c.kv.Changed() {
				continue
			}

			if !c.debounceWait(ctx, events) {
				return
			}

			c.reload(ctx)
		}
	}
}

// debounceWait drains events for c.debounce after the first one, so a
// burst of saves collapses into a single reload. It returns false if ctx
// was cancelled while waiting.
func (c *Coordinator) debounceWait(ctx context.Context, events <-chan struct{}) bool {
	timer := time.NewTimer(c.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case _, ok := <-events:
			if !ok {
				return false
			}

			timer.Reset(c.debounce)
		}
	}
}

func (c *Coordinator) reload(ctx context.Context) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return
	}

	cfg, err := c.compile()
	if err != nil {
		c.logger.Error("config reload failed", "error", err)
		c.sem.Release(1)

		return
	}

	select {
	case c.pending <- cfg:
	case <-ctx.Done():
		c.sem.Release(1)
	default:
		c.logger.Warn("dropping compiled config, pending slot full")
		c.sem.Release(1)
	}
}

// Close stops the underlying watch source.
func (c *Coordinator) Close() error {
	if err := c.source.Close(); err != nil {
		return fmt.Errorf("reload: close watch source: %w", err)
	}

	return nil
}

// Package patchbay is a process-wide export/import board. Components publish
// instances (exports) by runtime type or string key, and other components
// import them either through one-shot lookups or through live-updated struct
// members discovered via the `patchbay` struct tag or the Importer interface.
package patchbay

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Recorder receives board activity counts. The sibling telemetry package
// provides an OpenTelemetry implementation; the default records nothing.
type Recorder interface {
	ExportAdded()
	ExportRemoved(records int)
	Resolution(mode string, matches int)
	Ambiguity()
	NotifyPass(touched int)
}

// nopRecorder is the default Recorder.
type nopRecorder struct{}

func (nopRecorder) ExportAdded() {}

func (nopRecorder) ExportRemoved(int) {}

func (nopRecorder) Resolution(string, int) {}

func (nopRecorder) Ambiguity() {}

func (nopRecorder) NotifyPass(int) {}

// Board holds the export records and live subscriptions for one registry
// instance. All operations are synchronous and serialized under one mutex:
// a notification pass reads and mutates exports and subscriptions together
// and must observe a consistent snapshot of both.
type Board struct {
	logger *slog.Logger
	rec    Recorder

	mu    sync.Mutex
	owner atomic.Int64 // goroutine currently inside a board operation

	exports []*export
	subs    []*subscription

	bootMu   sync.Mutex
	bootHook func(*Board) error
	booted   atomic.Bool
	booting  atomic.Int64 // goroutine currently running the boot hook
}

// New creates an empty Board.
func New(opts ...Option) *Board {
	b := &Board{
		logger: slog.Default(),
		rec:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	defaultBoard     *Board
	defaultBoardOnce sync.Once
)

// Default returns the process-wide Board, constructing it on first use.
// Tests should create their own isolated Boards with New instead.
func Default() *Board {
	defaultBoardOnce.Do(func() {
		defaultBoard = New()
	})
	return defaultBoard
}

// AttachBootstrapper registers a hook the board runs once, before the first
// operation. The hook's own board calls behave like normal mutations. The
// boot window closes at the first board use: a hook attached after that
// never runs, because it could no longer run before other operations.
func (b *Board) AttachBootstrapper(hook func(*Board) error) {
	b.bootMu.Lock()
	defer b.bootMu.Unlock()
	if b.booted.Load() {
		b.logger.Warn("Bootstrapper attached after first board use, it will not run.")
		return
	}
	if b.bootHook != nil {
		b.logger.Debug("Replacing previously attached bootstrapper.")
	}
	b.bootHook = hook
}

// ensureBooted triggers the attached bootstrapper on the first board use.
// Calls made by the hook itself pass straight through; other goroutines wait
// for the boot to finish.
func (b *Board) ensureBooted() {
	if b.booted.Load() {
		return
	}
	if b.booting.Load() == goid() {
		return
	}
	b.bootMu.Lock()
	defer b.bootMu.Unlock()
	if b.booted.Load() {
		return
	}
	if b.bootHook != nil {
		b.booting.Store(goid())
		defer b.booting.Store(0)
		b.logger.Debug("Running attached bootstrapper before first board use.")
		if err := b.bootHook(b); err != nil {
			b.logger.Error("Bootstrapper failed.", "error", err)
		}
	}
	b.booted.Store(true)
}

// lock serializes a board operation and records ownership so a call
// re-entered from the same goroutine is detected instead of deadlocking.
func (b *Board) lock(op string) error {
	if b.owner.Load() == goid() {
		return &ReentrancyError{Op: op}
	}
	b.mu.Lock()
	b.owner.Store(goid())
	return nil
}

func (b *Board) unlock() {
	b.owner.Store(0)
	b.mu.Unlock()
}

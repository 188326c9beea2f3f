// Package boot holds the service bootstrap catalog: an explicit, ordered
// table of definitions the host instantiates and registers on a Board
// exactly once. There is no type scanning; every service is wired into the
// catalog in code, optionally amended by a manifest before booting.
package boot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/vk/patchbay"
	"github.com/vk/patchbay/internal/ctxlog"
)

// Def declares how one service is produced and registered. Exactly one
// instantiation path runs per def, preferred in order: Singleton, then
// FromResource, then New.
type Def struct {
	// Name identifies the def in the catalog and in manifest overrides.
	Name string

	// Key, when set, registers the export under this key instead of
	// making it resolvable by type.
	Key string

	// Singleton returns an already-existing process-wide instance. Defs
	// with a Singleton are skipped when the board has an export of the
	// produced type already.
	Singleton func() any

	// FromResource loads the instance from the backing resource at path.
	FromResource func(path string, params map[string]any) (any, error)

	// Resource is the path handed to FromResource.
	Resource string

	// Params are handed to FromResource and New.
	Params map[string]any

	// New constructs a fresh instance.
	New func(params map[string]any) (any, error)
}

// Catalog is an ordered set of service defs that boots at most once.
type Catalog struct {
	mu   sync.Mutex
	defs []Def

	bootOnce sync.Once
	bootErr  error
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Register appends a def to the catalog. It panics on a nameless def, a
// repeated name, or a def without any instantiation path: catalogs are
// wired at startup and such defs are programmer errors.
func (c *Catalog) Register(def Def) {
	if def.Name == "" {
		panic("boot: def has no name")
	}
	if def.Singleton == nil && def.FromResource == nil && def.New == nil {
		panic(fmt.Sprintf("boot: def %q declares no instantiation path", def.Name))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.defs {
		if d.Name == def.Name {
			panic(fmt.Sprintf("boot: def %q already registered", def.Name))
		}
	}
	slog.Debug("Registering service def.", "name", def.Name)
	c.defs = append(c.defs, def)
}

// Defs returns the registered defs in registration order.
func (c *Catalog) Defs() []Def {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Def(nil), c.defs...)
}

// Boot instantiates and registers every def on the board, once per catalog.
// A def whose singleton, resource or constructor fails is logged and
// skipped, never fatal: that service is simply absent from the board and
// later lookups find nothing. The returned error joins the per-def
// failures. Repeat and concurrent calls return the first run's result.
func (c *Catalog) Boot(ctx context.Context, board *patchbay.Board) error {
	c.bootOnce.Do(func() {
		c.bootErr = c.run(ctx, board)
	})
	return c.bootErr
}

// Hook adapts the catalog for Board.AttachBootstrapper, so the board
// triggers the boot lazily on its first use.
func (c *Catalog) Hook(ctx context.Context) func(*patchbay.Board) error {
	return func(board *patchbay.Board) error {
		return c.Boot(ctx, board)
	}
}

func (c *Catalog) run(ctx context.Context, board *patchbay.Board) error {
	logger := ctxlog.FromContext(ctx)
	defs := c.Defs()
	logger.Debug("Booting service catalog.", "defs", len(defs))

	var errs []error
	registered := 0
	for _, def := range defs {
		instance, skip, err := instantiate(def, board, logger)
		if err != nil {
			logger.Warn("Skipping service.", "service", def.Name, "error", err)
			errs = append(errs, fmt.Errorf("service %q: %w", def.Name, err))
			continue
		}
		if skip {
			continue
		}

		var opts []patchbay.ExportOption
		if def.Key != "" {
			opts = append(opts, patchbay.WithKey(def.Key))
		}
		if err := board.Add(instance, opts...); err != nil {
			logger.Warn("Skipping service, board rejected the export.", "service", def.Name, "error", err)
			errs = append(errs, fmt.Errorf("service %q: %w", def.Name, err))
			continue
		}
		logger.Debug("Service registered.", "service", def.Name, "type", fmt.Sprintf("%T", instance), "key", def.Key)
		registered++
	}

	logger.Info("Service catalog booted.", "registered", registered, "skipped", len(defs)-registered)
	return errors.Join(errs...)
}

// instantiate produces the instance for one def through the first available
// path. skip reports that the def's type is already exported, which is only
// detectable for singleton defs: the accessor is probed to learn the type
// without constructing anything.
func instantiate(def Def, board *patchbay.Board, logger *slog.Logger) (instance any, skip bool, err error) {
	switch {
	case def.Singleton != nil:
		instance = def.Singleton()
		if instance == nil {
			return nil, false, errors.New("singleton accessor returned nil")
		}
		if _, exported := board.FirstOf(reflect.TypeOf(instance)); exported {
			logger.Debug("Service type already exported, skipping.", "service", def.Name)
			return nil, true, nil
		}
		return instance, false, nil

	case def.FromResource != nil:
		instance, err = def.FromResource(def.Resource, def.Params)
		if err != nil {
			return nil, false, fmt.Errorf("resource %q unavailable: %w", def.Resource, err)
		}
		return instance, false, nil

	default:
		instance, err = def.New(def.Params)
		if err != nil {
			return nil, false, fmt.Errorf("constructor failed: %w", err)
		}
		return instance, false, nil
	}
}

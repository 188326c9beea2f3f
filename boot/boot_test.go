package boot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/patchbay"
	"github.com/vk/patchbay/internal/ctxlog"
	"github.com/vk/patchbay/internal/testutil"
)

// widget is the service fixture the catalog tests register.
type widget struct {
	origin string
}

// gadget is a second service type for multi-def boots.
type gadget struct {
	origin string
}

// testContext returns a ctx carrying a capture logger and the buffer.
func testContext() (context.Context, *testutil.SafeBuffer) {
	logger, buf := testutil.CaptureLogger()
	return ctxlog.WithLogger(context.Background(), logger), buf
}

func TestRegisterPanicsOnBadDefs(t *testing.T) {
	newWidget := func(map[string]any) (any, error) { return &widget{}, nil }

	t.Run("nameless def", func(t *testing.T) {
		assert.Panics(t, func() {
			NewCatalog().Register(Def{New: newWidget})
		})
	})

	t.Run("no instantiation path", func(t *testing.T) {
		assert.Panics(t, func() {
			NewCatalog().Register(Def{Name: "w"})
		})
	})

	t.Run("duplicate name", func(t *testing.T) {
		c := NewCatalog()
		c.Register(Def{Name: "w", New: newWidget})
		assert.Panics(t, func() {
			c.Register(Def{Name: "w", New: newWidget})
		})
	})
}

func TestBootPrefersSingletonOverOtherPaths(t *testing.T) {
	ctx, _ := testContext()
	b := patchbay.New()
	single := &widget{origin: "singleton"}

	resourceCalled := false
	ctorCalled := false
	c := NewCatalog()
	c.Register(Def{
		Name:      "w",
		Singleton: func() any { return single },
		FromResource: func(string, map[string]any) (any, error) {
			resourceCalled = true
			return &widget{origin: "resource"}, nil
		},
		New: func(map[string]any) (any, error) {
			ctorCalled = true
			return &widget{origin: "ctor"}, nil
		},
	})

	require.NoError(t, c.Boot(ctx, b))
	got, ok := patchbay.First[*widget](b)
	require.True(t, ok)
	assert.Same(t, single, got)
	assert.False(t, resourceCalled)
	assert.False(t, ctorCalled)
}

func TestBootFallsBackToResourceThenCtor(t *testing.T) {
	ctx, _ := testContext()
	b := patchbay.New()

	c := NewCatalog()
	c.Register(Def{
		Name:     "from-resource",
		Resource: "widgets.dat",
		Params:   map[string]any{"mode": "fancy"},
		FromResource: func(path string, params map[string]any) (any, error) {
			assert.Equal(t, "widgets.dat", path)
			assert.Equal(t, "fancy", params["mode"])
			return &widget{origin: "resource"}, nil
		},
	})
	c.Register(Def{
		Name: "from-ctor",
		Key:  "spare",
		New: func(map[string]any) (any, error) {
			return &gadget{origin: "ctor"}, nil
		},
	})

	require.NoError(t, c.Boot(ctx, b))

	w, ok := patchbay.First[*widget](b)
	require.True(t, ok)
	assert.Equal(t, "resource", w.origin)

	// The keyed def resolves only through its key.
	assert.False(t, patchbay.Has[*gadget](b))
	g, ok := b.FirstByKey("spare")
	require.True(t, ok)
	assert.Equal(t, "ctor", g.(*gadget).origin)
}

func TestBootSkipsAlreadyExportedSingletonType(t *testing.T) {
	ctx, buf := testContext()
	b := patchbay.New()
	existing := &widget{origin: "manual"}
	require.NoError(t, b.Add(existing))

	c := NewCatalog()
	c.Register(Def{
		Name:      "w",
		Singleton: func() any { return &widget{origin: "singleton"} },
	})

	require.NoError(t, c.Boot(ctx, b))
	all := patchbay.All[*widget](b)
	require.Len(t, all, 1, "the already-exported instance must not gain a sibling")
	assert.Same(t, existing, all[0])
	testutil.AssertLogged(t, buf, "Service type already exported, skipping.")
}

func TestBootSkipsFailingDefsAndContinues(t *testing.T) {
	ctx, buf := testContext()
	b := patchbay.New()

	c := NewCatalog()
	c.Register(Def{
		Name:     "broken-resource",
		Resource: "missing.dat",
		FromResource: func(string, map[string]any) (any, error) {
			return nil, errors.New("no such file")
		},
	})
	c.Register(Def{
		Name: "broken-ctor",
		New: func(map[string]any) (any, error) {
			return nil, errors.New("bad params")
		},
	})
	c.Register(Def{
		Name:      "nil-singleton",
		Singleton: func() any { return nil },
	})
	c.Register(Def{
		Name: "unexportable",
		New:  func(map[string]any) (any, error) { return []int{1}, nil },
	})
	c.Register(Def{
		Name: "healthy",
		New:  func(map[string]any) (any, error) { return &widget{origin: "ok"}, nil },
	})

	err := c.Boot(ctx, b)
	require.Error(t, err, "per-def failures are joined into the result")
	assert.Contains(t, err.Error(), "broken-resource")
	assert.Contains(t, err.Error(), "broken-ctor")
	assert.Contains(t, err.Error(), "nil-singleton")
	assert.Contains(t, err.Error(), "unexportable")
	testutil.AssertLogged(t, buf, "Skipping service.")

	// Failures never block the healthy defs.
	w, ok := patchbay.First[*widget](b)
	require.True(t, ok)
	assert.Equal(t, "ok", w.origin)
}

func TestBootRunsOnce(t *testing.T) {
	ctx, _ := testContext()
	b := patchbay.New()

	runs := 0
	c := NewCatalog()
	c.Register(Def{
		Name: "counted",
		New: func(map[string]any) (any, error) {
			runs++
			return &widget{}, nil
		},
	})

	require.NoError(t, c.Boot(ctx, b))
	require.NoError(t, c.Boot(ctx, b))
	assert.Equal(t, 1, runs)
	assert.Len(t, patchbay.All[*widget](b), 1)
}

func TestBootErrorIsSticky(t *testing.T) {
	ctx, _ := testContext()
	b := patchbay.New()

	c := NewCatalog()
	c.Register(Def{
		Name: "broken",
		New: func(map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	})

	first := c.Boot(ctx, b)
	require.Error(t, first)
	assert.Equal(t, first, c.Boot(ctx, b), "repeat calls return the first run's error")
}

func TestHookBootsLazilyThroughBoard(t *testing.T) {
	ctx, _ := testContext()
	b := patchbay.New()

	runs := 0
	c := NewCatalog()
	c.Register(Def{
		Name: "lazy",
		New: func(map[string]any) (any, error) {
			runs++
			return &widget{origin: "lazy"}, nil
		},
	})
	b.AttachBootstrapper(c.Hook(ctx))
	require.Zero(t, runs, "attaching must not boot")

	// The first board operation triggers the catalog.
	w, ok := patchbay.First[*widget](b)
	require.True(t, ok)
	assert.Equal(t, "lazy", w.origin)
	assert.Equal(t, 1, runs)
}

func TestDefsReturnsDetachedCopy(t *testing.T) {
	c := NewCatalog()
	c.Register(Def{Name: "a", New: func(map[string]any) (any, error) { return &widget{}, nil }})

	defs := c.Defs()
	require.Len(t, defs, 1)
	defs[0].Name = "mutated"
	assert.Equal(t, "a", c.Defs()[0].Name)
}

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/patchbay"
	"github.com/vk/patchbay/boot"
	"github.com/vk/patchbay/internal/config"
	"github.com/vk/patchbay/internal/testutil"
	"github.com/vk/patchbay/services/clock"
	"github.com/vk/patchbay/services/sysinfo"
)

// fixtureService is a service type for app-level tests.
type fixtureService struct {
	Tag string
}

// newTestApp builds an app logging at debug level into a capture buffer.
func newTestApp(t *testing.T, cfg *config.Config, defs ...boot.Def) (*App, *testutil.SafeBuffer) {
	t.Helper()
	buf := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	return NewApp(buf, cfg, defs...), buf
}

// writeFile drops content into dir under name and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAppBootsBuiltinsOnFirstBoardUse(t *testing.T) {
	a, buf := newTestApp(t, config.Default())
	b := a.Board()

	// Any board operation triggers the catalog. sysinfo and clock boot;
	// the greeter's default template does not exist here, so it is
	// skipped rather than failing the host.
	assert.True(t, patchbay.Has[*sysinfo.Info](b))
	assert.True(t, patchbay.Has[*clock.Clock](b))
	assert.False(t, b.HasKey("greeter"))
	testutil.AssertLogged(t, buf, "Skipping service.")
	testutil.AssertLogged(t, buf, "Service catalog booted.")
}

func TestAppManifestAmendsDefs(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "tagfile.txt", "from-resource")
	writeFile(t, dir, "services.hcl", fmt.Sprintf(`
service "loaded" {
	key      = "tagged"
	resource = %q
}
`, data))

	cfg := config.Default()
	cfg.ManifestPaths = []string{dir}
	a, _ := newTestApp(t, cfg, boot.Def{
		Name:     "loaded",
		Resource: "does-not-exist.txt",
		FromResource: func(path string, _ map[string]any) (any, error) {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return &fixtureService{Tag: string(raw)}, nil
		},
	})

	got, ok := a.Board().FirstByKey("tagged")
	require.True(t, ok, "the manifest re-keyed and re-pathed the def")
	assert.Equal(t, "from-resource", got.(*fixtureService).Tag)
}

func TestAppManifestDisablesService(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "services.hcl", `
service "unwanted" {
	disabled = true
}
`)

	cfg := config.Default()
	cfg.ManifestPaths = []string{dir}
	a, buf := newTestApp(t, cfg,
		boot.Def{Name: "unwanted", New: func(map[string]any) (any, error) {
			t.Error("a disabled def must never be instantiated")
			return &fixtureService{}, nil
		}},
		boot.Def{Name: "kept", New: func(map[string]any) (any, error) {
			return &fixtureService{Tag: "kept"}, nil
		}},
	)

	svc, ok := patchbay.First[*fixtureService](a.Board())
	require.True(t, ok)
	assert.Equal(t, "kept", svc.Tag)
	testutil.AssertLogged(t, buf, "Service disabled by manifest.")
}

func TestAppManifestUnknownServiceIsWarnedAndDropped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "services.hcl", `service "phantom" {}`)

	cfg := config.Default()
	cfg.ManifestPaths = []string{dir}
	a, buf := newTestApp(t, cfg, boot.Def{
		Name: "real",
		New:  func(map[string]any) (any, error) { return &fixtureService{}, nil },
	})

	assert.True(t, patchbay.Has[*fixtureService](a.Board()))
	testutil.AssertLogged(t, buf, "no compiled def")
}

func TestNewAppPanicsOnMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.hcl", `service "x" {`)

	cfg := config.Default()
	cfg.ManifestPaths = []string{dir}
	assert.Panics(t, func() {
		NewApp(&testutil.SafeBuffer{}, cfg)
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	a, buf := newTestApp(t, config.Default(), boot.Def{
		Name: "svc",
		New:  func(map[string]any) (any, error) { return &fixtureService{}, nil },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// Let the host boot, then stop it.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	testutil.AssertLogged(t, buf, "Board ready.")
	testutil.AssertLogged(t, buf, "host stopped.")
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/patchbay"
	"github.com/vk/patchbay/boot"
	"github.com/vk/patchbay/internal/config"
	"github.com/vk/patchbay/internal/ctxlog"
	"github.com/vk/patchbay/internal/manifest"
	"github.com/vk/patchbay/internal/telemetry"
)

// App wires the board, the boot catalog and the introspection server into
// one host process with an isolated logger.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *config.Config
	board   *patchbay.Board
	catalog *boot.Catalog
	server  *http.Server
}

// NewApp assembles a host from validated configuration. The service
// manifest is loaded eagerly: a malformed manifest is a fatal startup error
// and panics, which the entrypoint recovers into a clean exit message.
// When defs are given they replace the built-in service list; this is
// primarily for testing.
func NewApp(outW io.Writer, cfg *config.Config, defs ...boot.Def) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	services, err := manifest.Load(ctx, cfg.ManifestPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load service manifest: %w", err))
	}
	logger.Debug("Service manifest loaded.", "services", len(services))

	if len(defs) == 0 {
		defs = builtinDefs()
	}
	catalog := buildCatalog(ctx, defs, services)

	board := patchbay.New(
		patchbay.WithLogger(logger),
		patchbay.WithRecorder(telemetry.NewRecorder()),
	)
	board.AttachBootstrapper(catalog.Hook(ctx))
	logger.Debug("Board assembled, catalog attached.")

	return &App{
		outW:    outW,
		logger:  logger,
		cfg:     cfg,
		board:   board,
		catalog: catalog,
	}
}

// Board returns the app's board. This is primarily for testing.
func (a *App) Board() *patchbay.Board {
	return a.board
}

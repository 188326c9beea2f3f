package app

import (
	"context"
)

// Run boots the board, starts the introspection server when configured,
// and serves until ctx is cancelled. Boot failures are not fatal: failed
// services are absent from the board and the host keeps running.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("🚀 Starting patchbay host...")

	// The first board operation triggers the attached catalog, so the
	// snapshot below already reflects the boot's outcome. Booting the
	// catalog directly here would re-enter it through that trigger.
	snapshot := a.board.Snapshot()
	a.logger.Info("✅ Board ready.", "exports", len(snapshot))
	for _, info := range snapshot {
		a.logger.Debug("Export available.", "type", info.Type, "key", info.Key, "id", info.ID)
	}

	if a.cfg.HealthPort > 0 {
		a.startIntrospectionServer(a.cfg.HealthPort)
	}

	<-ctx.Done()
	a.stopIntrospectionServer()
	a.logger.Info("🏁 Patchbay host stopped.")
	return nil
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// handleHealthz answers liveness probes.
func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handleRegistry serves the board's current export records as JSON.
func (a *App) handleRegistry(w http.ResponseWriter, r *http.Request) {
	snapshot := a.board.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		a.logger.Error("Failed to encode registry snapshot.", "error", err)
	}
}

// introspectionMux routes the introspection endpoints.
func (a *App) introspectionMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/registry", a.handleRegistry)
	return mux
}

// startIntrospectionServer runs the introspection HTTP server on port,
// in the background.
func (a *App) startIntrospectionServer(port int) {
	a.logger.Debug("Configuring introspection server.")
	addr := fmt.Sprintf(":%d", port)
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.introspectionMux(),
	}

	go func() {
		a.logger.Info("🩺 Introspection server starting", "address", fmt.Sprintf("http://localhost%s/healthz", addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Introspection server failed unexpectedly", "error", err)
		}
	}()
}

// stopIntrospectionServer shuts the server down gracefully.
func (a *App) stopIntrospectionServer() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Debug("Shutting down introspection server...")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Introspection server shutdown failed", "error", err)
		return
	}
	a.logger.Debug("Introspection server shut down gracefully.")
}

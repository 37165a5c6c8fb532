package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/execgraph/internal/remote"
)

// serve runs a primitive server for the app's registry until ctx is done.
func (a *App) serve(ctx context.Context) error {
	srv := remote.NewServer(ctx, a.registry)
	defer srv.Close()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", srv.Handler())
	mux.HandleFunc("/health", a.healthHandler)
	httpSrv := &http.Server{Addr: a.config.ServeAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🛰️ Primitive server starting", "address", a.config.ServeAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("primitive server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("🛰️ Shutting down primitive server...")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("primitive server shutdown failed: %w", err)
	}
	return nil
}

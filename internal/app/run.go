package app

import (
	"context"
	"fmt"

	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/engine"
	"github.com/vk/execgraph/internal/remote"
	"golang.org/x/sync/errgroup"
)

// Run executes the main application logic based on the app's configuration.
// It returns an error when any invocation fails its expectations.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		stop := a.startHealthcheckServer(a.config.HealthcheckPort)
		defer stop()
	}

	switch {
	case a.config.Format:
		return a.format(ctx)
	case a.config.ServeAddr != "":
		return a.serve(ctx)
	}

	opts := []engine.Option{
		engine.WithRegistry(a.registry),
		engine.WithMaxIterations(a.config.MaxIterations),
	}
	if a.config.BackendURL != "" {
		b, err := remote.Dial(ctx, remote.Config{URL: a.config.BackendURL})
		if err != nil {
			return fmt.Errorf("failed to connect to primitive server: %w", err)
		}
		defer b.Close()
		opts = append(opts, engine.WithBackend(b))
	}
	eng := engine.New(opts...)

	arts := a.compileAll(ctx, eng)
	a.logger.Info("Functions compiled.", "count", len(arts), "primitives", len(a.registry.Names()))

	invocations := a.model.Invocations
	if len(invocations) == 0 {
		a.logger.Warn("No invocations found, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting concurrent execution...", "invocations", len(invocations), "workers", a.config.WorkerCount)
	results := make([]Result, len(invocations))
	var g errgroup.Group
	g.SetLimit(a.config.WorkerCount)
	for i, inv := range invocations {
		g.Go(func() error {
			results[i] = a.invoke(ctx, eng, arts, inv)
			return nil
		})
	}
	_ = g.Wait()
	a.logger.Info("🏁 Execution finished.")

	if err := a.report(results); err != nil {
		return err
	}
	failed := 0
	for _, res := range results {
		if res.Status == StatusFailed {
			failed++
		}
	}
	a.logger.Debug("App.Run method finished.", "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d invocations failed", failed, len(invocations))
	}
	return nil
}

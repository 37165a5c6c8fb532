package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/execgraph/internal/config"
	"github.com/vk/execgraph/internal/ctxlog"
	"github.com/vk/execgraph/internal/fsutil"
	"github.com/vk/execgraph/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own logger and registry, and with every
// source under the configured path loaded. Results go to outW and logs to
// logW. Without modules the core modules are registered.
func NewApp(outW, logW io.Writer, appConfig *Config, loaders []config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg := registry.NewDefault(modules...)
	logger.Debug("All primitive modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		// A module colliding with the language itself is a programmer error.
		panic(err)
	}

	model := &config.Model{}
	if appConfig.SourcePath != "" && !appConfig.Format {
		var err error
		if model, err = load(ctx, appConfig.SourcePath, loaders); err != nil {
			// A failure to load sources is a fatal startup error.
			panic(fmt.Errorf("failed to load sources: %w", err))
		}
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		model:    model,
	}
}

// load runs every loader over the files under path that carry one of its
// extensions and merges the results.
func load(ctx context.Context, path string, loaders []config.Loader) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := &config.Model{}
	total := 0
	for _, loader := range loaders {
		files, err := fsutil.Find([]string{path}, loader.Extensions()...)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		total += len(files)
		part, err := loader.Load(ctx, files...)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(part); err != nil {
			return nil, err
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("no source files found under %s", path)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Sources loaded and translated into unified model.", "files", total, "functions", len(model.Functions), "invocations", len(model.Invocations))
	return model, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded sources.
func (a *App) Model() *config.Model {
	return a.model
}

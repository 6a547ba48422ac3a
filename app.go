package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/roveo/codejump/cache"
	"github.com/roveo/codejump/config"
	"github.com/roveo/codejump/finder"
	"github.com/roveo/codejump/lens"
	"github.com/roveo/codejump/logging"
	"github.com/roveo/codejump/watcher"
	"github.com/roveo/codejump/workspace"
)

// appOptions are the command-line overrides
type appOptions struct {
	root       string
	configPath string // defaults to <root>/.codejump.toml
	logLevel   string // overrides [log] level when set
}

// app wires the workspace, cache, finder and lens service of one root.
type app struct {
	cfg        *config.Config
	configPath string
	ws         *workspace.Workspace
	cache      *cache.Cache
	service    *lens.Service
	logger     *slog.Logger
	closeLog   func()
}

func newApp(opts appOptions) (*app, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	configPath := opts.configPath
	if configPath == "" {
		configPath = filepath.Join(root, config.FileName)
	}
	configPath, err = filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := logging.Setup(cfg.Log.File, level)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	ws, err := workspace.New(root, workspace.WithLogger(logger))
	if err != nil {
		closeLog()
		return nil, err
	}
	allow, err := workspace.NewAllowlist(cfg.AllowedPaths)
	if err != nil {
		closeLog()
		return nil, err
	}

	sourceOpts := []workspace.SourcesOption{
		workspace.WithExclude(cfg.Exclude),
		workspace.WithMaxFiles(cfg.MaxFiles),
	}
	if cfg.Bazel.Enabled {
		sourceOpts = append(sourceOpts, workspace.WithBazel(&workspace.Bazel{Binary: cfg.Bazel.Binary}))
	}
	sources := workspace.NewSources(ws, allow, sourceOpts...)

	c := cache.New(cache.Config{
		TTL:        cfg.CacheTTL.Std(),
		Cooldown:   cfg.ScanCooldown.Std(),
		StaleAfter: cfg.StaleAfter.Std(),
	})
	f := finder.New(sources, finder.Options{
		Concurrency:      cfg.Concurrency,
		SyntaxAware:      cfg.SyntaxAware,
		StrictSignatures: cfg.StrictSignatures,
		Cache:            c,
		Logger:           logger,
	})

	logger.Debug("workspace opened", "root", root, "config", configPath, "allowed_paths", cfg.AllowedPaths)
	return &app{
		cfg:        cfg,
		configPath: configPath,
		ws:         ws,
		cache:      c,
		service:    lens.New(f, c, logger),
		logger:     logger,
		closeLog:   closeLog,
	}, nil
}

func (a *app) Close() {
	a.closeLog()
}

// run starts the cache sweeper and the file watcher, and keeps them
// running until ctx is done.
func (a *app) run(ctx context.Context) (stop func(), err error) {
	ctx, cancel := context.WithCancel(ctx)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		a.cache.RunSweeper(ctx, a.cfg.StaleAfter.Std())
	}()

	w, err := watcher.New(watcher.WithLogger(a.logger))
	if err != nil {
		cancel()
		<-sweeperDone
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Watch(a.ws.Root(), a.handleEvent); err != nil {
		_ = w.Stop()
		cancel()
		<-sweeperDone
		return nil, fmt.Errorf("failed to watch %s: %w", a.ws.Root(), err)
	}

	return func() {
		_ = w.Stop()
		cancel()
		<-sweeperDone
		stats := a.cache.Stats()
		a.logger.Info("cache stats", "hits", stats.Hits, "misses", stats.Misses, "entries", stats.Entries)
	}, nil
}

// handleEvent routes a watcher event: the config file reloads the
// configuration, tracked sources invalidate the cache.
func (a *app) handleEvent(e watcher.Event) {
	if filepath.Clean(e.Path) == a.configPath {
		a.reloadConfig()
		return
	}
	rel, err := a.ws.Rel(e.Path)
	if err != nil {
		return
	}
	a.service.HandleFileEvent(rel)
}

func (a *app) reloadConfig() {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		a.logger.Warn("ignoring invalid config", "path", a.configPath, "error", err)
		return
	}
	changed, err := a.service.HandleConfigChange(cfg)
	if err != nil {
		a.logger.Warn("ignoring invalid allowlist", "error", err)
		return
	}
	a.logger.Info("config reloaded", "path", a.configPath, "allowlist_changed", changed)
}

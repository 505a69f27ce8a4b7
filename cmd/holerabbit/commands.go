package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mycelica/holerabbit/pkg/backend"
	"github.com/mycelica/holerabbit/pkg/bridge"
	"github.com/mycelica/holerabbit/pkg/config"
	"github.com/mycelica/holerabbit/pkg/logger"
	"github.com/mycelica/holerabbit/pkg/recorder"
)

// agentCommand runs the agent: recorder engine plus message API.
type agentCommand struct {
	configPath string
	listen     string
	backendURL string
}

// Execute runs the agent command.
func (c *agentCommand) Execute() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)

	// Persisted overrides survive restarts, like extension storage.
	store, err := config.NewStore(config.StoreConfig{
		DBPath: cfg.Storage.DBPath,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error("failed to close config store", "error", closeErr)
		}
	}()

	applyOverride(cfg, store, log)

	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	engine := recorder.New(recorder.Config{
		AutoTrack: cfg.AutoTrack,
	}, client, log)

	handler := bridge.NewHandler(engine, client, store, log)
	server := bridge.NewServer(cfg.Bridge.Listen, handler, log)

	watcher, err := config.NewWatcher(config.WatcherConfig{}, log)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Error("failed to close config watcher", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start recorder engine: %w", err)
	}
	defer func() {
		if stopErr := engine.Stop(); stopErr != nil {
			log.Error("failed to stop recorder engine", "error", stopErr)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return c.watchConfig(ctx, watcher, store, engine, log)
	})

	log.Info("holerabbit agent running",
		"listen", cfg.Bridge.Listen,
		"backend", cfg.Backend.BaseURL,
		"tracking_enabled", cfg.AutoTrack.Enabled)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("agent error: %w", err)
	}

	log.Info("holerabbit agent stopped")
	return nil
}

// loadConfig loads configuration and applies command-line overrides.
func (c *agentCommand) loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.listen != "" {
		cfg.Bridge.Listen = c.listen
	}
	if c.backendURL != "" {
		cfg.Backend.BaseURL = c.backendURL
	}

	return cfg, nil
}

// watchConfig re-applies the auto-track configuration whenever the
// config file changes on disk.
func (c *agentCommand) watchConfig(ctx context.Context, watcher config.Watcher, store config.Store, engine recorder.Engine, log logger.Logger) error {
	path := config.ResolvePath(c.configPath)

	if err := watcher.Start(ctx, path); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-watcher.Reloads():
			cfg, err := c.loadConfig()
			if err != nil {
				log.Warn("config reload failed, keeping previous configuration", "error", err)
				continue
			}

			applyOverride(cfg, store, log)
			engine.UpdateConfig(cfg.AutoTrack)

			log.Info("configuration reloaded",
				"tracking_enabled", cfg.AutoTrack.Enabled,
				"gap_minutes", cfg.AutoTrack.SessionGapMinutes)
		}
	}
}

// applyOverride replaces the auto-track section with a persisted
// runtime override, when one exists. Overrides outrank every file and
// environment source because they record the user's latest setConfig.
func applyOverride(cfg *config.Config, store config.Store, log logger.Logger) {
	override, err := store.LoadAutoTrack()
	if err != nil {
		return
	}

	cfg.AutoTrack = *override
	log.Debug("applied persisted auto-track override",
		"enabled", override.Enabled,
		"gap_minutes", override.SessionGapMinutes)
}

// newLogger builds the agent logger.
//
// Text format is for humans; when stderr is not a terminal the agent is
// running as a service and switches to JSON for log collectors.
func newLogger(cfg *config.Config) logger.Logger {
	format := cfg.Logging.Format
	if format == "text" && cfg.Logging.Output == "stderr" && !term.IsTerminal(int(os.Stderr.Fd())) {
		format = "json"
	}

	return logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
		Format: format,
	})
}

// statusCommand probes the backend and reports the live session.
type statusCommand struct {
	configPath string
}

// Execute runs the status command.
func (c *statusCommand) Execute() error {
	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, logger.Noop())
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	defer cancel()

	if err := client.Status(ctx); err != nil {
		fmt.Printf("Backend:  %s [unreachable]\n", cfg.Backend.BaseURL)
		return fmt.Errorf("backend status: %w", err)
	}

	fmt.Printf("Backend:  %s [connected]\n", cfg.Backend.BaseURL)

	live, err := client.LiveSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to query live session: %w", err)
	}

	if live == nil {
		fmt.Println("Session:  none")
		return nil
	}

	fmt.Printf("Session:  %s\n", live.ID)
	if live.Title != "" {
		fmt.Printf("Title:    %s\n", live.Title)
	}
	fmt.Printf("Pages:    %d\n", live.ItemCount)
	fmt.Printf("Started:  %s\n", time.UnixMilli(live.StartTime).Format("2006-01-02 15:04:05"))
	if live.Paused() {
		fmt.Println("State:    paused")
	}

	return nil
}

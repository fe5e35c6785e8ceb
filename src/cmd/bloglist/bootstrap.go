package main

import (
	"context"
	"fmt"

	"bloglist/local-app/src/pkg/adapter"
	"bloglist/local-app/src/pkg/api"
	"bloglist/local-app/src/pkg/config"
	"bloglist/local-app/src/pkg/data"
	"bloglist/local-app/src/pkg/event"
	"bloglist/local-app/src/pkg/log"
	"bloglist/local-app/src/pkg/model"
	"bloglist/local-app/src/pkg/notify"
	"bloglist/local-app/src/pkg/session"
	"bloglist/local-app/src/pkg/storage"
	"bloglist/local-app/src/pkg/view"
)

// options are the command line settings that shape the bootstrap.
type options struct {
	configPath string
	apiURL     string
	verbose    bool
}

// app holds the wired components of one run.
type app struct {
	cfg      *model.Config
	logger   *log.Logger
	store    *storage.Storage
	events   *event.EventManager
	notifier *notify.Notifier
	sessions *session.SessionManager
	view     *view.View
	adapter  *adapter.CLIAdapter
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(opts options) (*model.Config, error) {
	cfg, err := config.ConfigLoad(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.apiURL != "" {
		cfg.APIBaseURL = opts.apiURL
	}
	if opts.verbose {
		cfg.LogLevel = log.LevelDebug.String()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// bootstrap initializes logger, storage, api client, managers, view and adapter.
// The caller must Close the returned app.
func bootstrap(opts options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger, err := log.NewLogger(cfg, level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	logger.Info(ctx, "Application started", log.Fields{"apiBaseURL": cfg.APIBaseURL, "storageDriver": cfg.StorageDriver})

	store, err := storage.NewStorage(cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize storage", log.Fields{"error": err})
		logger.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, store: store}

	client, err := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize api client: %w", err)
	}

	a.events = event.NewEventManager(logger)
	a.notifier = notify.NewNotifier(cfg.NotificationTimeout, a.events, logger)
	a.sessions = session.NewSessionManager(client, store, a.notifier, a.events, logger)

	blogs, err := data.NewBlogManager(client, cfg.SortByLikes, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize blog manager: %w", err)
	}

	a.view = view.New(a.sessions, blogs, a.notifier, logger)
	a.adapter, err = adapter.NewCLIAdapter(a.view, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize CLI adapter: %w", err)
	}

	a.events.Subscribe(event.SessionChanged, func(e event.Event) {
		if user, ok := e.Data.(*model.User); ok {
			logger.Debug(ctx, "Session changed", log.Fields{"username": user.Username})
			return
		}
		logger.Debug(ctx, "Session cleared", nil)
	})

	logger.Info(ctx, "Components initialized", nil)
	return a, nil
}

// Close stops timers and releases storage and log files.
func (a *app) Close() {
	ctx := context.Background()
	if a.notifier != nil {
		a.notifier.Stop()
	}
	if a.events != nil {
		a.events.Wait()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error(ctx, "Failed to close storage", log.Fields{"error": err})
		}
	}
	a.logger.Info(ctx, "Application shutting down", nil)
	a.logger.Close()
}

// Package app wires the Thibis client together: local registry, fingerprint
// generation, admission, the backend SDK and the offline cache.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thibis/thibis/internal/client/account"
	"github.com/thibis/thibis/internal/client/admission"
	"github.com/thibis/thibis/internal/client/fingerprint"
	"github.com/thibis/thibis/internal/client/offline"
	"github.com/thibis/thibis/internal/client/registry"
	"github.com/thibis/thibis/internal/client/registry/drivers/sqlite"
	"github.com/thibis/thibis/internal/client/session"
	"github.com/thibis/thibis/internal/client/storage"
	"github.com/thibis/thibis/pkg/slogx"
	"github.com/thibis/thibis/pkg/thibis"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application owns the client-side dependency graph.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       *sqlite.Store
	registry *registry.Registry
	client   *thibis.SDKClient

	// Client services
	generator    *fingerprint.Generator
	policy       *admission.Policy
	controller   *account.Controller
	cache        *offline.Cache
	sessionStore *session.Store
}

// New creates the application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "thibis-client",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run generates the device fingerprint, evaluates admission and primes the
// offline cache, then blocks until shutdown is requested. The interactive
// flows (sign-up wizard, chat) hang off the services the application exposes.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("thibis client starting", "version", BuildVersion)

	fp := app.generator.Generate(ctx)
	state := app.policy.Evaluate(ctx, fp.ID)
	app.logger.Info("device admission evaluated", "device_id", fp.ID, "state", state.String())

	if len(app.cfg.ShellAssets) > 0 {
		app.cache.Prime(ctx, app.cfg.ShellAssets)
		usage := app.cache.Usage()
		app.logger.Info("offline cache primed", "entries", usage.Entries, "bytes", usage.Bytes)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
	case <-ctx.Done():
	}

	return app.Shutdown()
}

// Shutdown releases the application's resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down thibis client...")

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("thibis client stopped")
	return nil
}

// Fingerprint exposes the fingerprint generator for the sign-up flow.
func (app *Application) Fingerprint() *fingerprint.Generator { return app.generator }

// Admission exposes the admission policy for the sign-up flow.
func (app *Application) Admission() *admission.Policy { return app.policy }

// Account exposes the sign-up controller.
func (app *Application) Account() *account.Controller { return app.controller }

// SDK exposes the backend client for sign-in and post-auth services.
func (app *Application) SDK() *thibis.SDKClient { return app.client }

// Sessions exposes the encrypted session store.
func (app *Application) Sessions() *session.Store { return app.sessionStore }

// OfflineCache exposes the cache-first asset fetcher.
func (app *Application) OfflineCache() *offline.Cache { return app.cache }

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize registry database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply registry migrations: %w", err)
	}

	app.logger.Info("registry migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	app.registry = registry.New(app.db)
	app.client = thibis.NewSDKClient(app.cfg.BackendURL)

	app.generator = &fingerprint.Generator{
		Env: &fingerprint.HostEnvironment{
			Version:    BuildVersion,
			StateDir:   app.cfg.StateDir,
			Resolution: app.cfg.Resolution,
		},
		Registry: app.registry,
		Logger:   app.logger,
	}

	app.policy = &admission.Policy{
		Registry: app.registry,
		Logger:   app.logger,
	}

	objects, err := storage.NewS3Store(context.Background(), storage.S3Config{
		Region:       app.cfg.S3Region,
		AccessKey:    app.cfg.S3AccessKey,
		SecretKey:    app.cfg.S3SecretKey,
		BaseEndpoint: app.cfg.S3Endpoint,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}

	app.controller = &account.Controller{
		Policy:  app.policy,
		Objects: objects,
		Client:  app.client,
		Bucket:  app.cfg.MediaBucket,
		Logger:  app.logger,
	}

	app.cache = offline.NewCache(nil, app.logger)
	app.sessionStore = &session.Store{Path: app.cfg.SessionFile}

	return nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/sableforge/gatekeeper/internal/auth/http"
	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/internal/auth/store"
	"github.com/sableforge/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/sableforge/gatekeeper/pkg/cryptox"
	"github.com/sableforge/gatekeeper/pkg/jwtx"
	"github.com/sableforge/gatekeeper/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the whole service together: store, keys, services, HTTP.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   jwtx.Signer
	keys     *jwtx.KeySet
	verifier jwtx.Verifier

	authService         *service.AuthService
	tokenService        *service.TokenService
	credentialService   *service.CredentialService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatekeeper",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, keys, verifier, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("initialize signing keys: %w", err)
	}
	app.signer = signer
	app.keys = keys
	app.verifier = verifier

	app.initServices()
	app.initHTTP()

	if err := app.bootstrap(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("gatekeeper starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the server, the housekeeping worker, and the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gatekeeper...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gatekeeper stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Verifier: app.verifier,
		Store:    app.db,
	}

	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Verifier:   app.verifier,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.credentialService = &service.CredentialService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	// Sweep sessions idle past the refresh TTL; they can't rotate anymore.
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.RefreshTokenTTL,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keys, BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.TokenService = app.tokenService
	router.CredentialService = app.credentialService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// bootstrap seeds the first admin and API key when configured and needed.
func (app *Application) bootstrap() error {
	if app.cfg.BootstrapAdminEmail == "" || app.cfg.BootstrapAdminPassword == "" {
		return nil
	}

	apiKey, err := app.bootstrapService.Bootstrap(
		context.Background(),
		app.cfg.BootstrapAdminEmail,
		app.cfg.BootstrapAdminName,
		app.cfg.BootstrapAdminPassword,
	)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if apiKey != "" {
		app.logger.Info("bootstrap complete, record the service api key", "api_key", apiKey)
	}
	return nil
}

// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "meter-print-service/docs"
	"meter-print-service/internal/bluetooth"
	"meter-print-service/internal/config"
	"meter-print-service/internal/database"
	"meter-print-service/internal/discovery"
	"meter-print-service/internal/handler"
	"meter-print-service/internal/preferences"
	"meter-print-service/internal/printer"
	"meter-print-service/internal/repository"
	"meter-print-service/internal/routes"
	"meter-print-service/internal/service"
	"meter-print-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	// Bluetooth
	provider *bluetooth.Provider
	gate     *bluetooth.Gate

	// Printing
	preferences    *preferences.Store
	printerService *service.PrinterService

	// Events
	eventBus  *handler.EventBus
	wsHandler *handler.WebSocketHandler

	cancel context.CancelFunc
}

// @title Meter Print Service API
// @version 1.0.0
// @description Bluetooth ZPL label printing for meter-reading receipts

// @host localhost:8086
// @BasePath /api/v1
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "meter-print-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.initializeBluetooth()
	app.initializeServices()
	app.initializeServer()

	return app, nil
}

// initializeDatabase opens the preference store and applies migrations
func (app *Application) initializeDatabase() error {
	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	app.database = db

	if app.config.Database.AutoMigrate {
		if err := database.NewMigrator(db, app.logger).Up(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeBluetooth wires the lazy adapter and the readiness gate
func (app *Application) initializeBluetooth() {
	app.provider = bluetooth.NewProvider(bluetooth.NewBlueZFactory(&app.config.Bluetooth, app.logger))

	var permissions bluetooth.PermissionRequester
	if app.config.Bluetooth.RuntimePermissions {
		permissions = bluetooth.NewSocketPermissionRequester()
	}
	app.gate = bluetooth.NewGate(permissions, app.provider, app.logger)

	app.logger.Info("Bluetooth initialized",
		zap.String("adapter", app.config.Bluetooth.Adapter),
		zap.String("transport", app.config.Bluetooth.Transport),
		zap.Bool("runtime_permissions", app.config.Bluetooth.RuntimePermissions),
	)
}

// initializeServices creates the printing pipeline
func (app *Application) initializeServices() {
	repo := repository.NewPreferenceRepository(app.database, app.logger)
	app.preferences = preferences.NewStore(repo, app.logger)

	pc := app.config.Printer
	transmitter := printer.NewTransmitter(app.provider, app.preferences, pc.SettleDelay, pc.RetryDelay, app.logger)

	app.eventBus = handler.NewEventBus(app.logger)
	app.wsHandler = handler.NewWebSocketHandler(app.eventBus, app.config.Security.AllowedOrigins, app.logger)

	app.printerService = service.NewPrinterService(
		discovery.NewScanner(app.gate, app.provider, app.logger),
		printer.NewConnectionManager(app.gate, app.provider, app.preferences, app.logger),
		printer.NewPrinter(transmitter, app.preferences, pc),
		app.preferences,
		app.eventBus,
		pc,
		app.logger,
	)

	app.logger.Info("Services initialized successfully")
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	router := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.provider,
		app.printerService,
		app.wsHandler,
	).SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// startBackgroundServices starts event distribution
func (app *Application) startBackgroundServices(ctx context.Context) {
	go app.eventBus.Start(ctx)
	go app.wsHandler.Run(ctx)

	app.logger.Info("Background services started")
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "meter-print-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.cancel != nil {
		app.cancel()
	}

	if err := app.provider.Close(); err != nil {
		app.logger.Error("Bluetooth adapter close error", zap.Error(err))
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices(ctx)
	app.waitForShutdown()

	return nil
}

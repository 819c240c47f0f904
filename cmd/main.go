package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sbilibin2017/settle-sense/internal/app"
	"github.com/sbilibin2017/settle-sense/internal/config"
	"github.com/sbilibin2017/settle-sense/internal/handlers"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/middlewares"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// Operator actions allowed per client within operatorWindow.
const (
	operatorRequests = 10
	operatorWindow   = time.Minute
)

// @title SettleSense API
// @version 1.0.0
// @description Personal ledger of who owes whom, with schema migration and backups
// @host localhost:5000
// @BasePath /
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting SettleSense version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// newRouter mounts every page and API route of the ledger.
func newRouter(a *app.App, cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.SecureMiddleware(cfg.IsProduction()))
	r.Use(a.Metrics.Middleware)

	r.Get("/healthz", handlers.NewHealthHandler())
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/debts", handlers.NewDashboardHandler(a.Ledger, a.Settings))
		r.Post("/debts", handlers.NewCreateDebtHandler(a.Ledger, a.Settings))
		r.Get("/debts/{id}", handlers.NewGetDebtHandler(a.Ledger, a.Settings))
		r.Put("/debts/{id}", handlers.NewUpdateDebtHandler(a.Ledger, a.Settings))
		r.Delete("/debts/{id}", handlers.NewDeleteDebtHandler(a.Ledger))
		r.Get("/summary", handlers.NewSummaryHandler(a.Ledger, a.Settings))
	})

	r.Get("/export", handlers.NewExportHandler(a.Ledger))
	r.Get("/migrate", handlers.NewMigrationStatusHandler(a.Migrator))
	r.Get("/settings", handlers.NewGetSettingsHandler(a.Settings, a.Ledger, a.Backups))
	r.Post("/settings", handlers.NewUpdateSettingsHandler(a.Settings))

	// Operator actions lock the whole database.
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RateLimit(operatorRequests, operatorWindow))
		r.Post("/migrate/run", handlers.NewRunMigrationHandler(a.Migrator))
		r.Post("/backup/create", handlers.NewCreateBackupHandler(a.Backups))
		r.Post("/backup/restore", handlers.NewRestoreBackupHandler(a.Backups))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s/swagger/doc.json", cfg.Addr())),
	))

	return r
}

// run initializes the logger and the ledger, starts the HTTP server and the backup schedule,
// and shuts both down on SIGINT or SIGTERM.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel, cfg.AppEnv); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Log.Errorw("failed to close database", "error", err)
		}
	}()
	logger.Log.Infow("database ready", "path", cfg.DatabasePath(), "schema", a.Store.Version().String())

	if cfg.BackupSchedule != "" {
		scheduler, err := a.Backups.Schedule(cfg.BackupSchedule)
		if err != nil {
			return err
		}
		defer func() {
			<-scheduler.Stop().Done()
			logger.Log.Info("backup schedule stopped")
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(a, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

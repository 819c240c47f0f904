// Package app wires the storage, repositories and services shared by the server and ledgerctl.
package app

import (
	"context"
	"fmt"

	"github.com/sbilibin2017/settle-sense/internal/config"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/metrics"
	"github.com/sbilibin2017/settle-sense/internal/repositories"
	"github.com/sbilibin2017/settle-sense/internal/services"
	"github.com/sbilibin2017/settle-sense/internal/storage"
)

// App holds the long lived components of one ledger instance.
type App struct {
	Store    *storage.Store
	Settings *repositories.SettingsRepository
	Ledger   *services.LedgerService
	Migrator *services.MigrationService
	Backups  *services.BackupService
	Metrics  *metrics.Metrics
}

// New opens the database described by cfg and prepares its schema.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := storage.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	schema := repositories.NewSchemaRepository()
	debts := repositories.NewDebtRepository()
	m := metrics.New()

	ledger := services.NewLedgerService(store, debts, schema, nil)
	migrator := services.NewMigrationService(store, schema, nil, m, nil)
	backups := services.NewBackupService(store, cfg.BackupPath(), migrator, m, nil)
	migrator.SetSnapshotter(backups)

	if _, err := migrator.Prepare(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("prepare database: %w", err)
	}

	if status := migrator.CheckStatus(ctx); status.NeedsMigration {
		logger.Log.Warnw("database needs migration", "version", status.Version.String())
	}

	return &App{
		Store:    store,
		Settings: repositories.NewSettingsRepository(cfg.SettingsPath()),
		Ledger:   ledger,
		Migrator: migrator,
		Backups:  backups,
		Metrics:  m,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}

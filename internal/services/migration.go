package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/metrics"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/sbilibin2017/settle-sense/internal/storage"
)

// Messages shown after a migration attempt.
const (
	MigrationSucceeded     = "Database migration completed successfully!"
	MigrationNoBackup      = "Backup could not be created; migration proceeded without backup."
	MigrationFailedMessage = "An error occurred during migration."
)

// SchemaStore inspects and reshapes the debt table.
type SchemaStore interface {
	Columns(ctx context.Context, q sqlx.QueryerContext) (models.ColumnSet, error)
	Inspect(ctx context.Context, q sqlx.QueryerContext) (models.SchemaInfo, error)
	EnsureSchema(ctx context.Context, q sqlx.ExtContext) error
	BackfillTimestamps(ctx context.Context, q sqlx.ExtContext, now string) (int64, error)
	CreateTable(ctx context.Context, q sqlx.ExtContext) error
	CreateShadow(ctx context.Context, q sqlx.ExtContext) error
	CopyRows(ctx context.Context, q sqlx.ExtContext, src models.ColumnSet, stamp string) (int64, error)
	CarrySequence(ctx context.Context, q sqlx.ExtContext) error
	Swap(ctx context.Context, q sqlx.ExtContext) error
	CreateIndexes(ctx context.Context, q sqlx.ExtContext) error
}

// Snapshotter takes a backup of the live database.
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

// MigrationService keeps the debt table in its canonical shape.
type MigrationService struct {
	store   Store
	schema  SchemaStore
	backups Snapshotter
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewMigrationService creates a new MigrationService. A nil clock means time.Now.
func NewMigrationService(store Store, schema SchemaStore, backups Snapshotter, m *metrics.Metrics, now func() time.Time) *MigrationService {
	if now == nil {
		now = time.Now
	}
	return &MigrationService{store: store, schema: schema, backups: backups, metrics: m, now: now}
}

// SetSnapshotter wires the backup manager after construction.
func (svc *MigrationService) SetSnapshotter(backups Snapshotter) {
	svc.backups = backups
}

// Prepare is run once at startup: it creates or extends the table, fills in missing timestamps
// and caches the resulting schema version. It returns how many timestamp fields were filled.
func (svc *MigrationService) Prepare(ctx context.Context) (int64, error) {
	var filled int64
	err := svc.store.Exclusive(ctx, func(db *sqlx.DB) error {
		var err error
		filled, err = svc.reconcile(ctx, db)
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to prepare schema", "error", err)
		return 0, err
	}
	return filled, nil
}

// Reconcile runs the startup preparation on a handle the caller already holds exclusively,
// such as a file that was just restored.
func (svc *MigrationService) Reconcile(ctx context.Context, db *sqlx.DB) error {
	_, err := svc.reconcile(ctx, db)
	return err
}

func (svc *MigrationService) reconcile(ctx context.Context, db *sqlx.DB) (int64, error) {
	stamp := models.FormatTimestamp(svc.now())

	var filled int64
	err := storage.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := svc.schema.EnsureSchema(ctx, tx); err != nil {
			return err
		}
		var err error
		filled, err = svc.schema.BackfillTimestamps(ctx, tx, stamp)
		return err
	})
	if err != nil {
		return 0, err
	}
	if filled > 0 {
		logger.Log.Infow("backfilled timestamps", "fields", filled)
	}
	return filled, svc.refresh(ctx, db)
}

// Refresh inspects the table and caches its schema version on the store.
func (svc *MigrationService) Refresh(ctx context.Context) error {
	return svc.store.Exclusive(ctx, func(db *sqlx.DB) error {
		return svc.refresh(ctx, db)
	})
}

// refresh must run while the store is held exclusively, so no unit of work sees a stale version.
func (svc *MigrationService) refresh(ctx context.Context, q sqlx.QueryerContext) error {
	info, err := svc.schema.Inspect(ctx, q)
	if err != nil {
		logger.Log.Errorw("failed to inspect schema", "error", err)
		return err
	}
	v := info.Version()
	svc.store.SetVersion(v)
	logger.Log.Debugw("schema version refreshed", "version", v.String())
	return nil
}

// CheckStatus runs the migration checks. Inspection problems show up as failed checks, not errors.
func (svc *MigrationService) CheckStatus(ctx context.Context) models.MigrationStatus {
	var info models.SchemaInfo
	err := svc.store.View(ctx, func(q sqlx.ExtContext) error {
		var err error
		info, err = svc.schema.Inspect(ctx, q)
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to inspect schema", "error", err)
		info = models.SchemaInfo{}
	}

	status := models.MigrationStatus{Checks: info.Checks(), Version: info.Version()}
	for _, c := range status.Checks {
		if !c.Passed {
			status.NeedsMigration = true
			break
		}
	}
	return status
}

// NeedsMigration reports whether any check fails.
func (svc *MigrationService) NeedsMigration(ctx context.Context) bool {
	return svc.CheckStatus(ctx).NeedsMigration
}

// Migrate rebuilds the debt table in canonical form inside one transaction.
// When makeBackup is set a snapshot is attempted first; if that fails the migration still runs.
// Any failure leaves the original table untouched and returns models.ErrMigrationFailure.
func (svc *MigrationService) Migrate(ctx context.Context, makeBackup bool) (models.MigrationResult, error) {
	tracker := svc.metrics.Track("migrate")
	result := models.MigrationResult{Message: MigrationSucceeded}

	if makeBackup && svc.backups != nil {
		path, err := svc.backups.Snapshot(ctx)
		if err != nil {
			logger.Log.Warnw("backup before migration failed, continuing", "error", err)
			result.BackupFailed = true
		}
		result.BackupPath = path
	}

	// Once started, the migration either commits or rolls back as a whole.
	ctx = context.WithoutCancel(ctx)
	stamp := models.FormatTimestamp(svc.now())

	var refreshErr error
	err := svc.store.Exclusive(ctx, func(db *sqlx.DB) error {
		err := storage.WithTx(ctx, db, func(tx *sqlx.Tx) error {
			src, err := svc.schema.Columns(ctx, tx)
			if err != nil {
				return fmt.Errorf("read columns: %w", err)
			}
			if len(src) == 0 {
				return svc.schema.CreateTable(ctx, tx)
			}

			if err := svc.schema.CreateShadow(ctx, tx); err != nil {
				return fmt.Errorf("create shadow table: %w", err)
			}
			if result.RowsCopied, err = svc.schema.CopyRows(ctx, tx, src, stamp); err != nil {
				return fmt.Errorf("copy rows: %w", err)
			}
			if err := svc.schema.CarrySequence(ctx, tx); err != nil {
				return fmt.Errorf("carry id sequence: %w", err)
			}
			if err := svc.schema.Swap(ctx, tx); err != nil {
				return fmt.Errorf("swap tables: %w", err)
			}
			if err := svc.schema.CreateIndexes(ctx, tx); err != nil {
				return fmt.Errorf("create indexes: %w", err)
			}
			if _, err := svc.schema.BackfillTimestamps(ctx, tx, stamp); err != nil {
				return fmt.Errorf("backfill timestamps: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		refreshErr = svc.refresh(ctx, db)
		return nil
	})
	if err != nil {
		logger.Log.Errorw("migration failed, rolled back", "error", err)
		result.Message = MigrationFailedMessage
		result.RowsCopied = 0
		return result, tracker.End(fmt.Errorf("%w: %w", models.ErrMigrationFailure, err))
	}

	if result.BackupFailed {
		result.Message = MigrationSucceeded + " " + MigrationNoBackup
	}
	logger.Log.Infow("migration completed", "rows", result.RowsCopied, "backup", result.BackupPath)

	return result, tracker.End(refreshErr)
}

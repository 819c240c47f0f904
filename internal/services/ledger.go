package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/settle-sense/internal/export"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/shirou/gopsutil/v4/host"
)

// Store hands out scoped units of work over the database file.
type Store interface {
	View(ctx context.Context, fn func(q sqlx.ExtContext) error) error
	Update(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Exclusive(ctx context.Context, fn func(db *sqlx.DB) error) error
	Reopen(ctx context.Context, fn func(path string) error, ready func(db *sqlx.DB) error) error
	Version() models.SchemaVersion
	SetVersion(v models.SchemaVersion)
	Path() string
}

// DebtStore persists debt records.
type DebtStore interface {
	Insert(ctx context.Context, q sqlx.ExecerContext, v models.SchemaVersion, in models.DebtInput, now string) (int64, error)
	Update(ctx context.Context, q sqlx.ExecerContext, v models.SchemaVersion, id int64, in models.DebtInput, now string) (bool, error)
	Delete(ctx context.Context, q sqlx.ExecerContext, id int64) (bool, error)
	Get(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion, id int64) (*models.DebtRecord, error)
	List(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion, filter models.DebtFilter, sort models.DebtSort) ([]models.DebtRecord, error)
	People(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion) ([]string, error)
	Count(ctx context.Context, q sqlx.QueryerContext, v models.SchemaVersion) (int, error)
}

// VersionReporter reports the database engine version.
type VersionReporter interface {
	SQLiteVersion(ctx context.Context, q sqlx.QueryerContext) (string, error)
}

// LedgerService is the entry point for everything the dashboard and API do with records.
type LedgerService struct {
	store  Store
	debts  DebtStore
	engine VersionReporter
	now    func() time.Time
}

// NewLedgerService creates a new LedgerService. A nil clock means time.Now.
func NewLedgerService(store Store, debts DebtStore, engine VersionReporter, now func() time.Time) *LedgerService {
	if now == nil {
		now = time.Now
	}
	return &LedgerService{store: store, debts: debts, engine: engine, now: now}
}

// Create stores a validated record and returns it as persisted.
// The schema version is read once the unit of work holds the store, so a migration that
// finished while this call waited is already reflected.
func (svc *LedgerService) Create(ctx context.Context, in models.DebtInput) (*models.DebtRecord, error) {
	stamp := models.FormatTimestamp(svc.now())

	var rec *models.DebtRecord
	err := svc.store.Update(ctx, func(tx *sqlx.Tx) error {
		v := svc.store.Version()
		id, err := svc.debts.Insert(ctx, tx, v, in, stamp)
		if err != nil {
			return err
		}
		rec, err = svc.debts.Get(ctx, tx, v, id)
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to create debt", "person", in.Person, "error", err)
		return nil, err
	}

	logger.Log.Infow("debt created", "id", rec.ID, "person", rec.Person, "direction", rec.Direction)
	return rec, nil
}

// Update overwrites record id and returns it as persisted.
func (svc *LedgerService) Update(ctx context.Context, id int64, in models.DebtInput) (*models.DebtRecord, error) {
	stamp := models.FormatTimestamp(svc.now())

	var rec *models.DebtRecord
	err := svc.store.Update(ctx, func(tx *sqlx.Tx) error {
		v := svc.store.Version()
		ok, err := svc.debts.Update(ctx, tx, v, id, in, stamp)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNotFound
		}
		rec, err = svc.debts.Get(ctx, tx, v, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Log.Errorw("failed to update debt", "id", id, "error", err)
		}
		return nil, err
	}

	logger.Log.Infow("debt updated", "id", id)
	return rec, nil
}

// Delete removes record id.
func (svc *LedgerService) Delete(ctx context.Context, id int64) error {
	err := svc.store.Update(ctx, func(tx *sqlx.Tx) error {
		ok, err := svc.debts.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Log.Errorw("failed to delete debt", "id", id, "error", err)
		}
		return err
	}

	logger.Log.Infow("debt deleted", "id", id)
	return nil
}

// Get returns record id or models.ErrNotFound.
func (svc *LedgerService) Get(ctx context.Context, id int64) (*models.DebtRecord, error) {
	var rec *models.DebtRecord
	err := svc.store.View(ctx, func(q sqlx.ExtContext) error {
		var err error
		rec, err = svc.debts.Get(ctx, q, svc.store.Version(), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, models.ErrNotFound
	}
	return rec, nil
}

// List returns the filtered, ordered records.
func (svc *LedgerService) List(ctx context.Context, filter models.DebtFilter, sort models.DebtSort) ([]models.DebtRecord, error) {
	var records []models.DebtRecord
	err := svc.store.View(ctx, func(q sqlx.ExtContext) error {
		var err error
		records, err = svc.debts.List(ctx, q, svc.store.Version(), filter, sort)
		return err
	})
	return records, err
}

// People returns every counterparty name, for the filter dropdown.
func (svc *LedgerService) People(ctx context.Context) ([]string, error) {
	var people []string
	err := svc.store.View(ctx, func(q sqlx.ExtContext) error {
		var err error
		people, err = svc.debts.People(ctx, q, svc.store.Version())
		return err
	})
	return people, err
}

// Summary aggregates the records matching filter.
func (svc *LedgerService) Summary(ctx context.Context, filter models.DebtFilter) (models.Summary, error) {
	records, err := svc.List(ctx, filter, models.DefaultSort)
	if err != nil {
		return models.Summary{}, err
	}
	return Summarize(records), nil
}

// Export writes every record as CSV, newest first.
func (svc *LedgerService) Export(ctx context.Context, w io.Writer) error {
	var (
		records     []models.DebtRecord
		timestamped bool
	)
	err := svc.store.View(ctx, func(q sqlx.ExtContext) error {
		v := svc.store.Version()
		timestamped = v.Timestamped()
		var err error
		records, err = svc.debts.List(ctx, q, v, models.DebtFilter{}, models.DefaultSort)
		return err
	})
	if err != nil {
		return err
	}
	if err := export.WriteDebtsCSV(w, records, timestamped); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	logger.Log.Infow("debts exported", "count", len(records))
	return nil
}

// DatabaseInfo describes the live database file.
func (svc *LedgerService) DatabaseInfo(ctx context.Context) (models.DatabaseInfo, error) {
	info := models.DatabaseInfo{Path: svc.store.Path(), Size: humanize.Bytes(0)}

	st, err := os.Stat(info.Path)
	switch {
	case err == nil:
		info.Size = humanize.Bytes(uint64(st.Size()))
		mod := st.ModTime()
		info.Modified = &mod
	case !errors.Is(err, os.ErrNotExist):
		return info, fmt.Errorf("%w: %w", models.ErrIO, err)
	}

	err = svc.store.View(ctx, func(q sqlx.ExtContext) error {
		var err error
		info.RecordCount, err = svc.debts.Count(ctx, q, svc.store.Version())
		return err
	})
	return info, err
}

// SystemInfo reports runtime, engine and host versions.
func (svc *LedgerService) SystemInfo(ctx context.Context) (models.SystemInfo, error) {
	info := models.SystemInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS + "/" + runtime.GOARCH,
	}

	if h, err := host.InfoWithContext(ctx); err == nil && h.Platform != "" {
		info.OS = fmt.Sprintf("%s %s (%s/%s)", h.Platform, h.PlatformVersion, runtime.GOOS, runtime.GOARCH)
	} else if err != nil {
		logger.Log.Debugw("host info unavailable", "error", err)
	}

	err := svc.store.View(ctx, func(q sqlx.ExtContext) error {
		var err error
		info.SQLiteVersion, err = svc.engine.SQLiteVersion(ctx, q)
		return err
	})
	return info, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/metrics"
	"github.com/sbilibin2017/settle-sense/internal/models"
)

const (
	backupStampLayout = "20060102_150405"
	backupExt         = ".sqlite"
)

// SchemaReconciler brings a freshly restored file up to the startup schema and caches its version.
// It runs on a handle the store already holds exclusively.
type SchemaReconciler interface {
	Reconcile(ctx context.Context, db *sqlx.DB) error
}

// BackupService takes, lists and restores whole-file snapshots of the database.
type BackupService struct {
	store      Store
	dir        string
	reconciler SchemaReconciler
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewBackupService creates a new BackupService writing into dir.
func NewBackupService(store Store, dir string, reconciler SchemaReconciler, m *metrics.Metrics, now func() time.Time) *BackupService {
	if now == nil {
		now = time.Now
	}
	return &BackupService{store: store, dir: dir, reconciler: reconciler, metrics: m, now: now}
}

// Dir returns the backup directory.
func (svc *BackupService) Dir() string {
	return svc.dir
}

func (svc *BackupService) snapshotName(prefix string) string {
	base := strings.TrimSuffix(filepath.Base(svc.store.Path()), filepath.Ext(svc.store.Path()))
	return fmt.Sprintf("%s%s_%s%s", base, prefix, svc.now().Format(backupStampLayout), backupExt)
}

// Snapshot copies the live database into the backup directory and returns the copy's path.
// It returns an empty path when there is no database file yet.
func (svc *BackupService) Snapshot(ctx context.Context) (string, error) {
	tracker := svc.metrics.Track("snapshot")

	var path string
	err := svc.store.Exclusive(ctx, func(_ *sqlx.DB) error {
		var err error
		path, err = svc.copyLive(svc.store.Path(), "")
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to create backup", "error", err)
		return "", tracker.End(err)
	}

	if path != "" {
		logger.Log.Infow("backup created", "path", path)
	}
	return path, tracker.End(nil)
}

func (svc *BackupService) copyLive(live, prefix string) (string, error) {
	if _, err := os.Stat(live); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrIO, err)
	}

	dst := filepath.Join(svc.dir, svc.snapshotName(prefix))
	if err := copyFile(live, dst); err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrIO, err)
	}
	return dst, nil
}

// Restore replaces the live database with the named backup. The current file is snapshotted first.
func (svc *BackupService) Restore(ctx context.Context, name string) error {
	tracker := svc.metrics.Track("restore")

	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return tracker.End(fmt.Errorf("%w: %q", models.ErrRestore, name))
	}
	src := filepath.Join(svc.dir, base)

	st, err := os.Stat(src)
	if err != nil || !st.Mode().IsRegular() {
		logger.Log.Warnw("backup file not found", "file", src)
		return tracker.End(fmt.Errorf("%w: %s", models.ErrRestore, base))
	}

	var ready func(db *sqlx.DB) error
	if svc.reconciler != nil {
		ready = func(db *sqlx.DB) error {
			return svc.reconciler.Reconcile(ctx, db)
		}
	}

	var saved string
	err = svc.store.Reopen(ctx, func(live string) error {
		var err error
		saved, err = svc.copyLive(live, "_pre_restore")
		if err != nil {
			return err
		}
		// A leftover journal would be replayed into the restored file.
		for _, suffix := range []string{"-journal", "-wal", "-shm"} {
			if err := os.Remove(live + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %w", models.ErrIO, err)
			}
		}
		if err := copyFile(src, live); err != nil {
			return fmt.Errorf("%w: %w", models.ErrIO, err)
		}
		return nil
	}, ready)
	if err != nil {
		logger.Log.Errorw("failed to restore backup", "file", src, "error", err)
		return tracker.End(err)
	}

	logger.Log.Infow("backup restored", "file", src, "previous", saved)
	return tracker.End(nil)
}

// List returns the available backups, newest first.
func (svc *BackupService) List() ([]models.BackupInfo, error) {
	backups := []models.BackupInfo{}

	entries, err := os.ReadDir(svc.dir)
	if errors.Is(err, os.ErrNotExist) {
		return backups, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIO, err)
	}

	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != backupExt {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, models.BackupInfo{
			Name:      e.Name(),
			Path:      filepath.Join(svc.dir, e.Name()),
			Size:      humanize.Bytes(uint64(fi.Size())),
			SizeBytes: fi.Size(),
			Created:   fi.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Created.Equal(backups[j].Created) {
			return backups[i].Created.After(backups[j].Created)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Schedule takes a snapshot on every tick of the cron spec. Stop the returned scheduler on shutdown.
func (svc *BackupService) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := svc.Snapshot(context.Background()); err != nil {
			logger.Log.Errorw("scheduled backup failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	c.Start()
	logger.Log.Infow("backup schedule started", "spec", spec)
	return c, nil
}

// copyFile writes src to dst through a temporary file in dst's directory.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

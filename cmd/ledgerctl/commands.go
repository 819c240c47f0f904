package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/sbilibin2017/settle-sense/internal/app"
	"github.com/sbilibin2017/settle-sense/internal/config"
	"github.com/sbilibin2017/settle-sense/internal/logger"
)

// Command output goes here; tests swap it.
var stdout io.Writer = os.Stdout

// openApp loads the configuration and opens the instance it points at.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.AppEnv); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return app.New(ctx, cfg)
}

// withApp opens the instance, runs fn and closes the instance again.
func withApp(ctx context.Context, fn func(a *app.App) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()
	defer a.Close()

	if err := fn(a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "prints the schema checks of the debt table" }
func (*statusCmd) Usage() string {
	return `status

  Runs the migration checks and exits with status 1 when a migration is needed.
`
}
func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	needsMigration := false
	status := withApp(ctx, func(a *app.App) error {
		st := a.Migrator.CheckStatus(ctx)
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		for _, check := range st.Checks {
			mark := "ok"
			if !check.Passed {
				mark = "FAIL"
			}
			fmt.Fprintf(tw, "%s\t%s\n", check.Name, mark)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "schema: %s\n", st.Version)
		needsMigration = st.NeedsMigration
		return nil
	})
	if status == subcommands.ExitSuccess && needsMigration {
		fmt.Fprintln(stdout, "migration needed, run: ledgerctl migrate -backup")
		return subcommands.ExitFailure
	}
	return status
}

type migrateCmd struct {
	backup bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "rebuilds the debt table in canonical form" }
func (*migrateCmd) Usage() string {
	return `migrate [-backup]

  Rebuilds the debt table inside one transaction. With -backup a snapshot is taken first.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.backup, "backup", false, "Snapshot the database before migrating")
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		res, err := a.Migrator.Migrate(ctx, c.backup)
		if err != nil {
			return fmt.Errorf("%s: %w", res.Message, err)
		}
		fmt.Fprintln(stdout, res.Message)
		if res.BackupPath != "" {
			fmt.Fprintf(stdout, "backup: %s\n", res.BackupPath)
		}
		fmt.Fprintf(stdout, "rows copied: %d\n", res.RowsCopied)
		return nil
	})
}

type backupCmd struct{}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "takes a snapshot of the database" }
func (*backupCmd) Usage() string {
	return `backup

  Copies the live database into the backup directory.
`
}
func (*backupCmd) SetFlags(*flag.FlagSet) {}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		path, err := a.Backups.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		if path == "" {
			return fmt.Errorf("failed to create backup: no database file")
		}
		fmt.Fprintln(stdout, path)
		return nil
	})
}

type backupsCmd struct{}

func (*backupsCmd) Name() string     { return "backups" }
func (*backupsCmd) Synopsis() string { return "lists the available snapshots, newest first" }
func (*backupsCmd) Usage() string {
	return `backups
`
}
func (*backupsCmd) SetFlags(*flag.FlagSet) {}

func (c *backupsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		backups, err := a.Backups.List()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		for _, b := range backups {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, b.Size, humanize.Time(b.Created))
		}
		return tw.Flush()
	})
}

type restoreCmd struct{}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replaces the database with a snapshot" }
func (*restoreCmd) Usage() string {
	return `restore <file>

  Restores a snapshot from the backup directory. The current database is saved first.
`
}
func (*restoreCmd) SetFlags(*flag.FlagSet) {}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "restore requires exactly one backup file name")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)
	return withApp(ctx, func(a *app.App) error {
		if err := a.Backups.Restore(ctx, name); err != nil {
			return fmt.Errorf("failed to restore %s: %w", name, err)
		}
		fmt.Fprintln(stdout, "Backup restored successfully")
		return nil
	})
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "writes every record as CSV" }
func (*exportCmd) Usage() string {
	return `export [-o <file>]

  Writes the ledger as CSV to stdout, or to the given file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app.App) error {
		if c.output == "" {
			return a.Ledger.Export(ctx, stdout)
		}
		out, err := os.Create(c.output)
		if err != nil {
			return err
		}
		if err := a.Ledger.Export(ctx, out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}

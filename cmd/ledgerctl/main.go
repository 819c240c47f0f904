// Command ledgerctl runs the ledger maintenance operations (migration, backup, restore, export)
// against an instance directory without starting the HTTP server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configPath = flag.String("c", "config.env", "Path to configuration file")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&statusCmd{}, "schema")
	c.Register(&migrateCmd{}, "schema")

	c.Register(&backupCmd{}, "backups")
	c.Register(&backupsCmd{}, "backups")
	c.Register(&restoreCmd{}, "backups")

	c.Register(&exportCmd{}, "records")
}

// Command migrate manages the storefront schema.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
)

type options struct {
	dir      string
	embedded bool
}

// command is one CLI verb. Commands with a nil migrate func work on the
// migrations directory only and never open the database.
type command struct {
	name    string
	args    string
	summary string
	minArgs int
	files   func(log *zap.Logger, opts options, args []string) error
	migrate func(log *zap.Logger, m *migration.Migrator, args []string) error
}

var commands = []command{
	{name: "up", summary: "apply every pending migration",
		migrate: func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Up() }},
	{name: "down", summary: "roll back every applied migration",
		migrate: func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Down() }},
	{name: "step", args: "<n>", summary: "apply n migrations, negative n rolls back", minArgs: 1,
		migrate: func(_ *zap.Logger, m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}},
	{name: "goto", args: "<version>", summary: "migrate up or down to version", minArgs: 1,
		migrate: func(_ *zap.Logger, m *migration.Migrator, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(v))
		}},
	{name: "version", summary: "print the applied version",
		migrate: func(log *zap.Logger, m *migration.Migrator, _ []string) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		}},
	{name: "force", args: "<version>", summary: "mark version as applied after a failed run", minArgs: 1,
		migrate: func(log *zap.Logger, m *migration.Migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			log.Warn("Forcing schema version", zap.Int("version", v))
			return m.Force(v)
		}},
	{name: "create", args: "<name> [description]", summary: "write an empty up/down pair under -dir", minArgs: 1,
		files: func(log *zap.Logger, opts options, args []string) error {
			desc := strings.Join(args[1:], " ")
			mf, err := migration.CreateMigration(opts.dir, args[0], desc)
			if err != nil {
				return err
			}
			log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
			return nil
		}},
	{name: "list", summary: "list the migrations under -dir",
		files: func(_ *zap.Logger, opts options, _ []string) error {
			files, err := migration.ListMigrations(opts.dir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Println(f)
			}
			return nil
		}},
}

func main() {
	var (
		opts     options
		logLevel string
	)
	flag.StringVar(&opts.dir, "dir", "migrations", "migrations directory, used by create, list and -embedded=false")
	flag.BoolVar(&opts.embedded, "embedded", true, "apply the migrations compiled into this binary")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(log, opts, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
}

func run(log *zap.Logger, opts options, name string, args []string) error {
	cmd, ok := lookup(name)
	if !ok {
		usage()
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) < cmd.minArgs {
		return fmt.Errorf("usage: migrate %s %s", cmd.name, cmd.args)
	}

	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return fmt.Errorf("resolve -dir: %w", err)
	}
	opts.dir = dir

	if cmd.files != nil {
		return cmd.files(log, opts, args)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	m, err := openMigrator(cfg.Database, opts, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return cmd.migrate(log, m, args)
}

// openMigrator hands the connection to the migrator, which closes it.
func openMigrator(cfg config.DatabaseConfig, opts options, log *zap.Logger) (*migration.Migrator, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	var m *migration.Migrator
	if opts.embedded {
		m, err = migration.NewFromFS(db, migrations.FS, log)
	} else {
		m, err = migration.New(db, opts.dir, log)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: migrate [flags] <command> [args]")
	fmt.Fprintln(out, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-28s %s\n", strings.TrimSpace(c.name+" "+c.args), c.summary)
	}
	fmt.Fprintln(out, "\nflags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nThe database is configured like the server: config.toml or STORE_DATABASE_* variables.")
}

// Command migrate manages the PostgreSQL schema of the CMS backend.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cms/backend/internal/infrastructure/config"
	"github.com/cms/backend/internal/infrastructure/logger"
	"github.com/cms/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type options struct {
	path     string
	config   string
	logLevel string
	log      *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply and scaffold CMS schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(&logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.log = log
			if opts.path != "" {
				if opts.path, err = filepath.Abs(opts.path); err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = opts.log.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.path, "path", "", "Migrations directory on disk (default: migrations compiled into the binary)")
	flags.StringVar(&opts.config, "config", "", "Config file (default: ./config.toml when present)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		opts.dbCommand("up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Up() }),
		opts.dbCommand("down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Down() }),
		opts.dbCommand("step <n>", "Apply n migrations, rolling back when n is negative", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		opts.dbCommand("goto <version>", "Migrate to a specific version", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(version))
			}),
		opts.dbCommand("version", "Show the applied migration version", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				opts.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			}),
		opts.dbCommand("force <version>", "Record a version as applied without running it", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(version)
			}),
		newDropCommand(opts),
		newCreateCommand(opts),
		newListCommand(opts),
	)
	return cmd
}

// dbCommand builds a subcommand that opens the configured database and runs fn.
func (o *options) dbCommand(use, short string, args cobra.PositionalArgs, fn func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeDB, err := o.open()
			if err != nil {
				return err
			}
			defer closeDB()
			return fn(m, args)
		},
	}
}

func (o *options) open() (*migration.Migrator, func(), error) {
	cfg, err := config.LoadFile(o.config)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("SQL migrations target PostgreSQL; %s databases are created with database.auto_migrate", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	o.log.Info("Migrating", zap.String("source", displayPath(o.path)), zap.String("database", cfg.Database.DBName))
	m, err := migration.New(db, o.path, o.log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() {
		if err := m.Close(); err != nil {
			o.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}

func newDropCommand(opts *options) *cobra.Command {
	var confirm bool
	cmd := opts.dbCommand("drop", "Drop every table in the database", cobra.NoArgs,
		func(m *migration.Migrator, _ []string) error { return m.Drop() })
	run := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !confirm {
			return errors.New("drop cancelled, pass --confirm to drop all content tables")
		}
		return run(cmd, args)
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm dropping all data")
	return cmd
}

func newCreateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Scaffold a new up/down migration pair (needs --path)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.path == "" {
				return errors.New("create needs --path pointing at the migrations directory")
			}
			description := ""
			if len(args) == 2 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(opts.path, args[0], description)
			if err != nil {
				return err
			}
			opts.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List migrations on disk (needs --path)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.path == "" {
				return errors.New("list needs --path pointing at the migrations directory")
			}
			names, err := migration.ListMigrations(opts.path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func displayPath(path string) string {
	if path == "" {
		return "(embedded)"
	}
	return path
}

// Command migrate applies the versioned SQL schema of the trading core to a
// postgres database.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/comfort/backend/internal/infrastructure/config"
	"github.com/comfort/backend/internal/infrastructure/logger"
	"github.com/comfort/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = `Usage: migrate [-path dir] <command> [arguments]

  up [n]                apply every pending migration, or the next n
  down [n]              roll back n migrations (default 1); "down all" rolls back everything
  status                list applied and pending migration files
  version               print the applied version
  force <version>       record a version without running it, clearing a dirty state
  create <name> [desc]  write a new up/down file pair
  list                  list migration files

The database is read from config.toml and COMFORT_DATABASE_* variables.`

var errUsage = errors.New("invalid arguments")

func main() {
	path := flag.String("path", "migrations", "migrations directory")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: "info", Format: "console", Output: "stdout"}, "development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	dir, err := filepath.Abs(*path)
	if err != nil {
		log.Fatal("Invalid migrations path", zap.Error(err))
	}

	if err := run(flag.Args(), dir, log); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.Error(err))
	}
}

func run(args []string, dir string, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]

	switch command {
	case "create":
		if len(rest) == 0 {
			return errUsage
		}
		description := ""
		if len(rest) > 1 {
			description = rest[1]
		}
		mf, err := migration.CreateMigration(dir, rest[0], description)
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	case "list":
		files, err := migration.ListMigrations(dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	case "up", "down", "version", "status", "force":
	default:
		return errUsage
	}

	return withMigrator(dir, log, func(m *migration.Migrator) error {
		switch command {
		case "up":
			if len(rest) == 0 {
				return m.Up()
			}
			n, err := positive(rest[0])
			if err != nil {
				return err
			}
			return m.Steps(n)
		case "down":
			if len(rest) > 0 && rest[0] == "all" {
				return m.Down()
			}
			n := 1
			if len(rest) > 0 {
				var err error
				if n, err = positive(rest[0]); err != nil {
					return err
				}
			}
			return m.Steps(-n)
		case "version":
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		case "status":
			status, err := m.Status()
			if err != nil {
				return err
			}
			log.Info("Schema status",
				zap.Uint("version", status.Version),
				zap.Bool("dirty", status.Dirty),
				zap.Int("applied", len(status.Applied)),
				zap.Int("pending", len(status.Pending)),
			)
			for _, name := range status.Pending {
				fmt.Println("pending", name)
			}
			return nil
		case "force":
			if len(rest) == 0 {
				return errUsage
			}
			version, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", rest[0])
			}
			return m.Force(version)
		}
		return errUsage
	})
}

// withMigrator opens the configured postgres database for fn
func withMigrator(dir string, log *zap.Logger, fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return errors.New("sqlite schemas are created by the server at start; migrations target postgres")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("step count must be a positive number, got %q", s)
	}
	return n, nil
}

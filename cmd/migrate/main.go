// Command migrate inspects and changes the Business In Rwanda schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"bizrwanda/internal/config"
	"bizrwanda/internal/database"

	"gorm.io/gorm"
)

const usageText = `Usage:
  go run ./cmd/migrate up              - apply pending SQL migrations (postgres)
  go run ./cmd/migrate auto            - AutoMigrate every persistent model
  go run ./cmd/migrate status          - show driver, schema policy and migration ledger
  go run ./cmd/migrate down <version>  - revert one SQL migration (postgres)`

var errUsage = errors.New(usageText)

// errSQLiteLedger is returned for ledger commands against SQLite, whose
// schema always comes from AutoMigrate.
var errSQLiteLedger = errors.New("sqlite databases are auto-migrated; use `migrate auto` instead")

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal(errUsage)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := run(context.Background(), db, cfg, flag.Args(), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string, out io.Writer) error {
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		if cfg.UsesSQLite() {
			return errSQLiteLedger
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		fmt.Fprintln(out, "listing schema is up to date")

	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		fmt.Fprintf(out, "auto-migrated %d models on %s\n", len(database.PersistentModels()), cfg.DBDriver)

	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status: %w", err)
		}
		printStatus(out, status)

	case "down":
		if len(args) < 2 {
			return errUsage
		}
		if cfg.UsesSQLite() {
			return errSQLiteLedger
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		fmt.Fprintf(out, "reverted %s\n", migrationLabel(version))

	default:
		return errUsage
	}
	return nil
}

func printStatus(out io.Writer, status *database.SchemaStatus) {
	fmt.Fprintf(out, "driver:      %s\n", status.Driver)
	fmt.Fprintf(out, "environment: %s\n", status.Environment)
	fmt.Fprintf(out, "schema mode: %s\n", status.Mode)

	switch {
	case status.Driver == "sqlite":
		fmt.Fprintln(out, "policy:      sqlite is always auto-migrated; the SQL ledger is not used")
		return
	case status.WillRunSQL && status.WillRunAutoMigrate:
		fmt.Fprintln(out, "policy:      SQL migrations, then AutoMigrate")
	case status.WillRunSQL:
		fmt.Fprintln(out, "policy:      SQL migrations only")
	default:
		fmt.Fprintln(out, "policy:      AutoMigrate only")
	}

	if !status.WillRunSQL {
		return
	}
	fmt.Fprintf(out, "applied:     %d\n", len(status.AppliedVersions))
	for _, v := range status.AppliedVersions {
		fmt.Fprintf(out, "  [x] %s\n", migrationLabel(v))
	}
	fmt.Fprintf(out, "pending:     %d\n", len(status.PendingMigrations))
	for _, m := range status.PendingMigrations {
		fmt.Fprintf(out, "  [ ] %s\n", m.String())
	}
}

func migrationLabel(version int) string {
	if m := database.GetMigrationByVersion(version); m != nil {
		return m.String()
	}
	return fmt.Sprintf("%06d (unknown to this build)", version)
}

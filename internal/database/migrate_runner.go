package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"bizrwanda/internal/middleware"

	"gorm.io/gorm"
)

// MigrationRecord is one row of the schema_migrations ledger.
type MigrationRecord struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName pins the ledger table name.
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// Migrator applies and reverts a fixed, ordered set of migrations. Each
// script runs in the same transaction as its ledger write, so a failed
// script leaves no record behind.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator returns a Migrator over the given migrations. A nil set means
// the embedded ones.
func NewMigrator(db *gorm.DB, set []Migration) *Migrator {
	if set == nil {
		set = migrations
	}
	sorted := make([]Migration, len(set))
	copy(sorted, set)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return &Migrator{db: db, migrations: sorted}
}

func (m *Migrator) ensureLedger(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	return nil
}

// Applied lists the versions recorded in the ledger, oldest first. A missing
// ledger table reads as nothing applied.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	if !m.db.Migrator().HasTable(&MigrationRecord{}) {
		return []int{}, nil
	}
	var versions []int
	if err := m.db.WithContext(ctx).Model(&MigrationRecord{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	return versions, nil
}

// Pending returns the registered migrations not yet in the ledger.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration in version order.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ensureLedger(ctx); err != nil {
		return err
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if err := checkKnownVersions(applied, m.migrations); err != nil {
		return err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		middleware.Logger.Debug("Schema is up to date", slog.Int("applied", len(applied)))
		return nil
	}

	for _, mig := range pending {
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", mig.String(), err)
			}
			return tx.Create(&MigrationRecord{Version: mig.Version, Name: mig.Name}).Error
		})
		if err != nil {
			return err
		}
		middleware.Logger.Info("Migration applied", slog.Int("version", mig.Version), slog.String("name", mig.Name))
	}
	return nil
}

// Down reverts one applied migration and removes it from the ledger.
func (m *Migrator) Down(ctx context.Context, version int) error {
	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !containsVersion(applied, version) {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.DownScript).Error; err != nil {
			return fmt.Errorf("revert migration %s: %w", target.String(), err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationRecord{}).Error
	})
	if err != nil {
		return err
	}
	middleware.Logger.Info("Migration rolled back", slog.Int("version", version), slog.String("name", target.Name))
	return nil
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return NewMigrator(db, nil).Up(ctx)
}

// RollbackMigration reverts one embedded migration by version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db, nil).Down(ctx, version)
}

// checkKnownVersions refuses to run against a ledger written by a newer build.
func checkKnownVersions(applied []int, registered []Migration) error {
	var unknown []string
	for _, v := range applied {
		found := false
		for _, mig := range registered {
			if mig.Version == v {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("schema_migrations lists versions this build does not know: %s", strings.Join(unknown, ", "))
}

func containsVersion(versions []int, v int) bool {
	for _, x := range versions {
		if x == v {
			return true
		}
	}
	return false
}

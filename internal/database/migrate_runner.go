package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"kumatter/internal/middleware"

	"gorm.io/gorm"
)

// SchemaVersion is one row of the schema_versions ledger.
type SchemaVersion struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName returns the ledger table name.
func (SchemaVersion) TableName() string {
	return "schema_versions"
}

// MigrationReport summarizes one RunMigrations call.
type MigrationReport struct {
	Applied       []Migration
	AlreadyThere  int
	MissingTables []string
}

// DomainTables lists the tables every Kumatter schema must have, in creation order.
func DomainTables(db *gorm.DB) []string {
	entities := PersistentModels()
	tables := make([]string, 0, len(entities))
	for _, m := range entities {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err == nil {
			tables = append(tables, stmt.Schema.Table)
		}
	}
	return tables
}

// missingTables returns the domain tables the database does not have yet.
func missingTables(db *gorm.DB) []string {
	var missing []string
	for _, table := range DomainTables(db) {
		if !db.Migrator().HasTable(table) {
			missing = append(missing, table)
		}
	}
	return missing
}

// appliedVersions reads the ledger in ascending order. A missing ledger reads as empty.
func appliedVersions(ctx context.Context, db *gorm.DB) ([]int, error) {
	if !db.Migrator().HasTable(&SchemaVersion{}) {
		return []int{}, nil
	}
	versions := []int{}
	if err := db.WithContext(ctx).Model(&SchemaVersion{}).Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("read schema_versions: %w", err)
	}
	return versions, nil
}

// RunMigrations applies every pending SQL migration, each in its own
// transaction together with its ledger row, then checks that the users,
// posts, likes and follows tables exist.
func RunMigrations(ctx context.Context, db *gorm.DB) (*MigrationReport, error) {
	if err := db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return nil, fmt.Errorf("create schema_versions: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := checkKnownVersions(applied, migrations); err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	report := &MigrationReport{}
	for _, m := range migrations {
		if done[m.Version] {
			report.AlreadyThere++
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return report, err
		}
		report.Applied = append(report.Applied, m)
	}

	report.MissingTables = missingTables(db.WithContext(ctx))
	if len(report.MissingTables) > 0 {
		return report, fmt.Errorf("schema is missing tables after migrating: %s",
			strings.Join(report.MissingTables, ", "))
	}

	middleware.Logger.Info("schema up to date",
		slog.Int("applied", len(report.Applied)),
		slog.Int("already_applied", report.AlreadyThere))
	return report, nil
}

func applyMigration(ctx context.Context, db *gorm.DB, m Migration) error {
	start := time.Now()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return err
		}
		return tx.Create(&SchemaVersion{Version: m.Version, Name: m.Name, AppliedAt: start.UTC()}).Error
	})
	if err != nil {
		return fmt.Errorf("migration %s: %w", m.String(), err)
	}
	middleware.Logger.Info("migration applied",
		slog.String("migration", m.String()),
		slog.Duration("took", time.Since(start)))
	return nil
}

// checkKnownVersions refuses to run against a ledger written by a newer build.
func checkKnownVersions(applied []int, registered []Migration) error {
	known := make(map[int]bool, len(registered))
	for _, m := range registered {
		known[m.Version] = true
	}

	var unknown []string
	for _, v := range applied {
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("schema_versions has versions this build does not know: %s", strings.Join(unknown, ", "))
}

// RollbackMigration runs the down script of an applied migration and drops
// its ledger row in one transaction.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	if !containsVersion(applied, version) {
		return fmt.Errorf("migration %s has not been applied", m.String())
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return err
		}
		return tx.Where("version = ?", version).Delete(&SchemaVersion{}).Error
	})
	if err != nil {
		return fmt.Errorf("rollback %s: %w", m.String(), err)
	}
	middleware.Logger.Warn("migration rolled back", slog.String("migration", m.String()))
	return nil
}

func containsVersion(versions []int, v int) bool {
	for _, x := range versions {
		if x == v {
			return true
		}
	}
	return false
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"snapfeed/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog is one row of the applied-migrations ledger.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

// migrationLedger tracks applied migrations in the migration_logs table.
// The ledger is the source of truth for what has run; the embedded files
// are the source of truth for what exists.
type migrationLedger struct {
	db *gorm.DB
}

func newMigrationLedger(db *gorm.DB) *migrationLedger {
	return &migrationLedger{db: db}
}

func (l *migrationLedger) appliedVersions(ctx context.Context) ([]int, error) {
	var versions []int
	err := l.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	return versions, nil
}

// First run against an empty database: the ledger table itself does not
// exist yet. Postgres reports that as an undefined relation.
func isMissingTableError(err error) bool {
	return strings.Contains(err.Error(), "relation") && strings.Contains(err.Error(), "does not exist")
}

func (l *migrationLedger) apply(ctx context.Context, m Migration) error {
	if err := l.db.WithContext(ctx).Exec(m.UpScript).Error; err != nil {
		return fmt.Errorf("apply migration %s: %w", m.String(), err)
	}
	entry := MigrationLog{Version: m.Version, Name: m.Name}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", m.String(), err)
	}
	middleware.Logger.Info("migration applied", slog.Int("version", m.Version), slog.String("name", m.Name))
	return nil
}

func (l *migrationLedger) remove(ctx context.Context, version int) error {
	if err := l.db.WithContext(ctx).Where("version = ?", version).Delete(&MigrationLog{}).Error; err != nil {
		return fmt.Errorf("remove ledger entry %d: %w", version, err)
	}
	middleware.Logger.Info("migration rolled back", slog.Int("version", version))
	return nil
}

// RunMigrations ensures the ledger table exists and applies every pending
// migration in version order.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	const ensureLedgerSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_migration_logs_applied_at ON migration_logs (applied_at);`
	if err := db.WithContext(ctx).Exec(ensureLedgerSQL).Error; err != nil {
		return fmt.Errorf("ensure migration ledger table: %w", err)
	}

	ledger := newMigrationLedger(db)
	applied, err := ledger.appliedVersions(ctx)
	if err != nil {
		return err
	}
	if err := checkLedgerAgainstCode(applied, migrations); err != nil {
		return err
	}

	appliedSet := make(map[int]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		middleware.Logger.Info("applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		if err := ledger.apply(ctx, m); err != nil {
			return err
		}
	}

	return nil
}

// checkLedgerAgainstCode rejects a database whose ledger names versions
// this build does not know about. That usually means the binary is older
// than the database it is pointed at.
func checkLedgerAgainstCode(applied []int, registered []Migration) error {
	if len(applied) == 0 {
		return nil
	}
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}

	var unknown []int
	for _, version := range applied {
		if _, ok := known[version]; !ok {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	parts := make([]string, 0, len(unknown))
	for _, version := range unknown {
		parts = append(parts, fmt.Sprintf("%06d", version))
	}
	return fmt.Errorf(
		"migration_logs contains versions unknown to this build: %s (deploy a newer build, or rebuild the development database)",
		strings.Join(parts, ", "),
	)
}

// RollbackMigration runs the down script for one applied migration and
// removes its ledger entry.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("unknown migration version %d", version)
	}

	ledger := newMigrationLedger(db)
	applied, err := ledger.appliedVersions(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, v := range applied {
		if v == version {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("rolling back migration", slog.Int("version", version), slog.String("name", m.Name))
	if err := db.WithContext(ctx).Exec(m.DownScript).Error; err != nil {
		return fmt.Errorf("run down script for %s: %w", m.String(), err)
	}
	return ledger.remove(ctx, version)
}

package database

import (
	"embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"snapfeed/internal/middleware"
)

// Migration is one versioned SQL migration loaded from the embedded
// migrations directory. Files are paired NNNNNN_name.up.sql and
// NNNNNN_name.down.sql; a missing down file is a load error so every
// migration stays reversible.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

var migrations []Migration

func init() {
	if err := loadMigrations(embeddedMigrations); err != nil {
		middleware.Logger.Error("failed to load embedded migrations", slog.Any("error", err))
	}
}

func loadMigrations(fsys embed.FS) error {
	entries, err := fsys.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".up.sql")
		prefix, migName, ok := strings.Cut(base, "_")
		if !ok {
			middleware.Logger.Warn("ignoring migration file without a version prefix", slog.String("file", name))
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			middleware.Logger.Warn("ignoring migration file with a non-numeric version", slog.String("file", name))
			continue
		}

		up, err := fsys.ReadFile(filepath.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		down, err := fsys.ReadFile(filepath.Join("migrations", base+".down.sql"))
		if err != nil {
			return fmt.Errorf("read down script for %s: %w", base, err)
		}

		migrations = append(migrations, Migration{
			Version:    version,
			Name:       migName,
			UpScript:   string(up),
			DownScript: string(down),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return nil
}

// GetMigrations returns every registered migration in version order.
func GetMigrations() []Migration {
	return migrations
}

func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

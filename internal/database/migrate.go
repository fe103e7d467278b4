package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Migration is a versioned SQL script pair loaded from the embedded
// migrations directory. Files follow the NNNNNN_name.up.sql /
// NNNNNN_name.down.sql convention.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations = mustLoadMigrations(migrationFS)

func mustLoadMigrations(efs fs.FS) []Migration {
	ms, err := loadMigrations(efs)
	if err != nil {
		panic(fmt.Sprintf("database: broken embedded migrations: %v", err))
	}
	return ms
}

func loadMigrations(efs fs.FS) ([]Migration, error) {
	upScripts, err := fs.Glob(efs, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}

	var out []Migration
	for _, upPath := range upScripts {
		base := strings.TrimSuffix(path.Base(upPath), ".up.sql")
		versionStr, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migration %q does not match NNNNNN_name.up.sql", upPath)
		}
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return nil, fmt.Errorf("migration %q has non-numeric version: %w", upPath, err)
		}

		up, err := fs.ReadFile(efs, upPath)
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(efs, path.Join("migrations", base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %q is missing its down script: %w", base, err)
		}

		out = append(out, Migration{
			Version:    version,
			Name:       name,
			UpScript:   string(up),
			DownScript: string(down),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// GetMigrations returns all registered migrations ordered by version.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the migration with the given version, or nil.
func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}

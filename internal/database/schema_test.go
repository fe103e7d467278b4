package database

import (
	"testing"

	"chirp/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentModels(t *testing.T) {
	ms := PersistentModels()
	require.NotEmpty(t, ms)
	for _, m := range ms {
		assert.NotNil(t, m)
	}
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		wantSQL     bool
		wantAuto    bool
		expectError bool
	}{
		{
			name:     "Hybrid Development",
			cfg:      config.Config{DBSchemaMode: "hybrid", Env: "development"},
			wantSQL:  true,
			wantAuto: true,
		},
		{
			name:     "Hybrid Production",
			cfg:      config.Config{DBSchemaMode: "hybrid", Env: "production"},
			wantSQL:  true,
			wantAuto: false,
		},
		{
			name:     "Default Mode Is Hybrid",
			cfg:      config.Config{Env: "development"},
			wantSQL:  true,
			wantAuto: true,
		},
		{
			name:     "SQL Only",
			cfg:      config.Config{DBSchemaMode: "sql", Env: "production"},
			wantSQL:  true,
			wantAuto: false,
		},
		{
			name:        "Auto In Production Refused",
			cfg:         config.Config{DBSchemaMode: "auto", Env: "production"},
			expectError: true,
		},
		{
			name:     "Auto In Production With Override",
			cfg:      config.Config{DBSchemaMode: "auto", Env: "production", DBAutoMigrateAllowDestructive: true},
			wantSQL:  false,
			wantAuto: true,
		},
		{
			name:        "Unknown Mode",
			cfg:         config.Config{DBSchemaMode: "yolo", Env: "development"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestRegisteredMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)

	seen := make(map[int]bool)
	for _, m := range ms {
		assert.False(t, seen[m.Version], "duplicate migration version %d", m.Version)
		seen[m.Version] = true
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
	}
}

package database

import (
	"context"
	"testing"

	"talents/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		env     string
		wantSQL bool
		wantAut bool
		wantErr bool
	}{
		{name: "default is sql", mode: "", env: "development", wantSQL: true},
		{name: "sql", mode: "sql", env: "production", wantSQL: true},
		{name: "auto in development", mode: "auto", env: "development", wantAut: true},
		{name: "auto in production", mode: "auto", env: "production", wantErr: true},
		{name: "hybrid in test", mode: "hybrid", env: "test", wantSQL: true, wantAut: true},
		{name: "hybrid in staging", mode: "hybrid", env: "staging", wantSQL: true},
		{name: "unknown", mode: "yolo", env: "development", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&config.Config{DBSchemaMode: tt.mode, Env: tt.env})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAut, runAuto)
		})
	}
}

func TestGetSchemaStatus_AutoSkipsMigrationLog(t *testing.T) {
	db := openSQLite(t)
	status, err := GetSchemaStatus(context.Background(), db, &config.Config{DBSchemaMode: "auto", Env: "test"})
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestGetSchemaStatus_ListsPending(t *testing.T) {
	db := openSQLite(t)
	status, err := GetSchemaStatus(context.Background(), db, &config.Config{DBSchemaMode: "sql", Env: "test"})
	require.NoError(t, err)
	assert.Empty(t, status.AppliedVersions)
	require.NotEmpty(t, status.PendingMigrations)
	assert.Equal(t, 1, status.PendingMigrations[0].Version)
}

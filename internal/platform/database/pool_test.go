package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privid/internal/platform/config"
)

func TestNew_EmptyURLDisablesPool(t *testing.T) {
	pool, err := New(config.DatabaseConfig{})
	require.NoError(t, err)
	assert.Nil(t, pool)

	// Nil pool methods are safe
	assert.Error(t, pool.Health(t.Context()))
	assert.NoError(t, pool.Close())
	assert.Zero(t, pool.Stats().OpenConnections)
}

func TestMigrationFiles_Ordered(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
	for _, f := range files {
		assert.Contains(t, f, ".up.sql")
	}
}

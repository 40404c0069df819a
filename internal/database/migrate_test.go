package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsLoaded(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)

	// Version order, and every entry carries both scripts.
	for i, m := range all {
		if i > 0 {
			assert.Greater(t, m.Version, all[i-1].Version)
		}
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
	}

	first := GetMigrationByVersion(1)
	require.NotNil(t, first)
	assert.Equal(t, "init", first.Name)
	assert.Equal(t, "000001_init", first.String())

	assert.Nil(t, GetMigrationByVersion(999999))
}

func TestCheckLedgerAgainstCode(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "init"}, {Version: 2, Name: "indexes"}}

	assert.NoError(t, checkLedgerAgainstCode(nil, registered))
	assert.NoError(t, checkLedgerAgainstCode([]int{1, 2}, registered))

	err := checkLedgerAgainstCode([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

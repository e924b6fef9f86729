package metrics

import (
	"testing"

	"github.com/mauv0809/sportsdiff/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (UsageStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return New(db), teardown
}

func TestIncrementAndGetAll(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	counters, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, counters)

	store.Increment(KeyTeamsGenerated)
	counters, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{KeyTeamsGenerated: 1}, counters)

	store.Increment(KeyTeamsGenerated)
	store.Increment(KeyListsImported)
	counters, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		KeyTeamsGenerated: 2,
		KeyListsImported:  1,
	}, counters)
}

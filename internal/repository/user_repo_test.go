package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/paywall_go_server/internal/testutil"
)

func TestUserRepository_GetByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	created := testutil.TestUser(t, db, testutil.WithUsername("alice"))

	found, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetByUsername("nobody")
	assert.Error(t, err)
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	testutil.TestUser(t, db, testutil.WithUsername("alice"))

	exists, err := repo.ExistsByUsername("alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername("bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_CreatorFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	created := testutil.TestUser(t, db, testutil.WithCreator("Alice Music"))

	found, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.True(t, found.IsCreator)
	assert.Equal(t, "Alice Music", found.CreatorName)
}

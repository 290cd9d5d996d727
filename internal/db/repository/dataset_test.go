package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aihub/internal/db"
	"aihub/internal/domain"
)

func TestDatasetRepo_CreateAndGet(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)

	created, err := repo.Create(context.Background(), &domain.Dataset{
		OwnerName:  "alice",
		Name:       "passengers",
		StorageKey: "alice/passengers.csv",
		SizeBytes:  1024,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "text/csv", created.ContentType)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(context.Background(), created.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "passengers", got.Name)
	assert.Equal(t, int64(1024), got.SizeBytes)
}

func TestDatasetRepo_CrossOwnerLookupIsNotFound(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)

	created, err := repo.Create(context.Background(), &domain.Dataset{
		OwnerName:  "alice",
		Name:       "secrets",
		StorageKey: "alice/secrets.csv",
	})
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), created.ID, "mallory")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDatasetRepo_DuplicateNameConflicts(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)

	_, err := repo.Create(context.Background(), &domain.Dataset{
		OwnerName: "alice", Name: "sales", StorageKey: "alice/sales.csv",
	})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), &domain.Dataset{
		OwnerName: "alice", Name: "sales", StorageKey: "alice/sales-v2.csv",
	})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	// Same name under a different owner is allowed.
	_, err = repo.Create(context.Background(), &domain.Dataset{
		OwnerName: "bob", Name: "sales", StorageKey: "bob/sales.csv",
	})
	require.NoError(t, err)
}

func TestDatasetRepo_ListIsOwnerScoped(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewDatasetRepo(writeDB)

	for _, name := range []string{"a", "b"} {
		_, err := repo.Create(context.Background(), &domain.Dataset{
			OwnerName: "alice", Name: name, StorageKey: "alice/" + name + ".csv",
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(context.Background(), &domain.Dataset{
		OwnerName: "bob", Name: "c", StorageKey: "bob/c.csv",
	})
	require.NoError(t, err)

	datasets, total, err := repo.List(context.Background(), "alice", domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, datasets, 2)
	for _, ds := range datasets {
		assert.Equal(t, "alice", ds.OwnerName)
	}
}

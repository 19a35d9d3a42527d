//go:build unit

package indexes_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/infrastructure/repositories/indexes"
	"github.com/rios0rios0/gitvault/test/infrastructure/repositorydoubles"
)

func TestLoadRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should return an empty document when the registry is absent", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		repository := indexes.NewIndexRepository(storage)

		// when
		result, err := repository.LoadRegistry(context.Background())

		// then
		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Empty(t, result.Document.IndexKeys)
	})

	t.Run("should normalize the loaded key list", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		storage.Objects[entities.RegistryObjectKey] = `{"indexKeys":["/b/index.json/","a/index.json","a/index.json"]}`
		repository := indexes.NewIndexRepository(storage)

		// when
		result, err := repository.LoadRegistry(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, []string{"a/index.json", "b/index.json"}, result.Document.IndexKeys)
	})

	t.Run("should fall back to an empty document when the registry is corrupt", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		storage.Objects[entities.RegistryObjectKey] = "{not json"
		repository := indexes.NewIndexRepository(storage)

		// when
		result, err := repository.LoadRegistry(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Empty(t, result.Document.IndexKeys)
	})

	t.Run("should surface storage errors", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		storage.GetErr = errors.New("connection refused")
		repository := indexes.NewIndexRepository(storage)

		// when
		_, err := repository.LoadRegistry(context.Background())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read registry")
	})
}

func TestSaveRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should write a changed registry and report it", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		repository := indexes.NewIndexRepository(storage)
		doc := &entities.RepositoryRegistry{IndexKeys: []string{"a/index.json"}}

		// when
		written, err := repository.SaveRegistry(context.Background(), doc, "")

		// then
		require.NoError(t, err)
		assert.True(t, written)
		assert.Contains(t, storage.Objects[entities.RegistryObjectKey], "a/index.json")
	})

	t.Run("should skip the write when the serialized form is unchanged", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		repository := indexes.NewIndexRepository(storage)
		doc := &entities.RepositoryRegistry{IndexKeys: []string{"a/index.json"}}
		_, err := repository.SaveRegistry(context.Background(), doc, "")
		require.NoError(t, err)
		priorRaw := storage.Objects[entities.RegistryObjectKey]

		// when
		written, err := repository.SaveRegistry(context.Background(), doc, priorRaw)

		// then
		require.NoError(t, err)
		assert.False(t, written)
		assert.Len(t, storage.UploadedTexts, 1)
	})
}

func TestLoadIndex(t *testing.T) {
	t.Parallel()

	const indexKey = "indexes/repositories/url/github.com/owner/repo/index.json"

	t.Run("should return an empty document when the index is absent", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		repository := indexes.NewIndexRepository(storage)

		// when
		result, err := repository.LoadIndex(context.Background(), indexKey)

		// then
		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.False(t, result.Corrupt)
		assert.Empty(t, result.Document.Snapshots)
	})

	t.Run("should flag a corrupt index instead of failing", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		storage.Objects[indexKey] = "]["
		repository := indexes.NewIndexRepository(storage)

		// when
		result, err := repository.LoadIndex(context.Background(), indexKey)

		// then
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.True(t, result.Corrupt)
		assert.Empty(t, result.Document.Snapshots)
		assert.Equal(t, "][", result.Raw)
	})

	t.Run("should normalize snapshots newest first", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		storage.Objects[indexKey] = `{
  "mode": "url",
  "repositoryIdentity": "url/github.com/owner/repo",
  "snapshots": [
    {"rootPrefix": "p/100_repo.tar.gz", "timestampUnixSeconds": 100},
    {"rootPrefix": "p/300_repo.tar.gz", "timestampUnixSeconds": 300},
    {"rootPrefix": "", "timestampUnixSeconds": 500}
  ]
}`
		repository := indexes.NewIndexRepository(storage)

		// when
		result, err := repository.LoadIndex(context.Background(), indexKey)

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.SnapshotRef{
			{RootPrefix: "p/300_repo.tar.gz", TimestampUnixSeconds: 300},
			{RootPrefix: "p/100_repo.tar.gz", TimestampUnixSeconds: 100},
		}, result.Document.Snapshots)
	})
}

func TestSaveIndex(t *testing.T) {
	t.Parallel()

	const indexKey = "indexes/repositories/url/github.com/owner/repo/index.json"

	t.Run("should round-trip a saved index through load", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		repository := indexes.NewIndexRepository(storage)
		doc := &entities.RepositoryIndex{
			Mode:               entities.JobModeURL,
			RepositoryIdentity: "url/github.com/owner/repo",
			Snapshots: []entities.SnapshotRef{
				{RootPrefix: "p/100_repo.tar.gz", TimestampUnixSeconds: 100},
			},
		}

		// when
		written, err := repository.SaveIndex(context.Background(), indexKey, doc, "")

		// then
		require.NoError(t, err)
		assert.True(t, written)
		reloaded, loadErr := repository.LoadIndex(context.Background(), indexKey)
		require.NoError(t, loadErr)
		assert.Equal(t, doc.Snapshots, reloaded.Document.Snapshots)
		assert.Equal(t, entities.JobModeURL, reloaded.Document.Mode)
	})

	t.Run("should skip the write when nothing changed", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		repository := indexes.NewIndexRepository(storage)
		doc := &entities.RepositoryIndex{
			Mode:               entities.JobModeURL,
			RepositoryIdentity: "url/github.com/owner/repo",
		}
		_, err := repository.SaveIndex(context.Background(), indexKey, doc, "")
		require.NoError(t, err)
		priorRaw := storage.Objects[indexKey]

		// when
		written, err := repository.SaveIndex(context.Background(), indexKey, doc, priorRaw)

		// then
		require.NoError(t, err)
		assert.False(t, written)
		assert.Len(t, storage.UploadedTexts, 1)
	})

	t.Run("should surface upload errors", func(t *testing.T) {
		// given
		storage := repositorydoubles.NewSpyStorageRepository()
		storage.UploadErr = errors.New("access denied")
		repository := indexes.NewIndexRepository(storage)

		// when
		_, err := repository.SaveIndex(
			context.Background(), indexKey, &entities.RepositoryIndex{}, "",
		)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write index")
	})
}

//go:build unit

package entities_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

func TestEnsurePrefix(t *testing.T) {
	t.Parallel()

	t.Run("should trim surrounding slashes and append exactly one", func(t *testing.T) {
		// given
		raw := "/backups/git/"

		// when
		result := entities.EnsurePrefix(raw)

		// then
		assert.Equal(t, "backups/git/", result)
	})

	t.Run("should keep blank input blank", func(t *testing.T) {
		// given
		raw := "   "

		// when
		result := entities.EnsurePrefix(raw)

		// then
		assert.Empty(t, result)
	})
}

func TestRepositoryPrefixes(t *testing.T) {
	t.Parallel()

	t.Run("should build the provider prefix from the normalized provider and hierarchy", func(t *testing.T) {
		// given
		info, err := entities.ParseRepositoryPath("https://github.com/owner/repo.git")
		require.NoError(t, err)

		// when
		prefix := entities.ProviderRepositoryPrefix("GitHub", info)

		// then
		assert.Equal(t, "repositories/provider/github/owner/repo", prefix)
	})

	t.Run("should build the url prefix from the full domain and hierarchy", func(t *testing.T) {
		// given
		info, err := entities.ParseRepositoryPath("https://gitlab.example.com/owner/group/repo.git")
		require.NoError(t, err)

		// when
		prefix := entities.URLRepositoryPrefix(info)

		// then
		assert.Equal(t, "repositories/url/gitlab.example.com/owner/group/repo", prefix)
	})
}

func TestRepositoryIdentities(t *testing.T) {
	t.Parallel()

	t.Run("should use the base domain for provider identities", func(t *testing.T) {
		// given
		info, err := entities.ParseRepositoryPath("https://gitlab.example.com/owner/repo.git")
		require.NoError(t, err)

		// when
		identity := entities.ProviderRepositoryIdentity("gitlab", info)

		// then
		assert.Equal(t, "provider/gitlab/example.com/owner/repo", identity)
	})

	t.Run("should use the full domain for url identities", func(t *testing.T) {
		// given
		info, err := entities.ParseRepositoryPath("https://gitlab.example.com/owner/repo.git")
		require.NoError(t, err)

		// when
		identity := entities.URLRepositoryIdentity(info)

		// then
		assert.Equal(t, "url/gitlab.example.com/owner/repo", identity)
	})
}

func TestObjectKeys(t *testing.T) {
	t.Parallel()

	t.Run("should derive the index key from the identity", func(t *testing.T) {
		// given
		identity := "provider/github/github.com/owner/repo"

		// when
		key := entities.IndexObjectKey(identity)

		// then
		assert.Equal(t, "indexes/repositories/provider/github/github.com/owner/repo/index.json", key)
	})

	t.Run("should name archives by their timestamp under the repository prefix", func(t *testing.T) {
		// given
		prefix := "repositories/url/github.com/owner/repo"

		// when
		key := entities.ArchiveObjectKey(prefix, 1700000000)

		// then
		assert.Equal(t, "repositories/url/github.com/owner/repo/1700000000_repo.tar.gz", key)
	})

	t.Run("should place the marker object next to the archives", func(t *testing.T) {
		// given
		prefix := "repositories/url/github.com/owner/repo"

		// when
		key := entities.MarkerObjectKey(prefix)

		// then
		assert.Equal(t, "repositories/url/github.com/owner/repo/.repository-root", key)
	})
}

func TestLocalPaths(t *testing.T) {
	t.Parallel()

	t.Run("should digest provider paths so nesting depth never matters", func(t *testing.T) {
		// given
		workingRoot := filepath.Join("/tmp", "gitvault")

		// when
		path := entities.ProviderLocalPath(workingRoot, "github", "https://github.com/owner/repo.git")

		// then
		directory := filepath.Base(path)
		assert.Len(t, directory, 64)
		assert.True(t, strings.HasPrefix(path, filepath.Join(workingRoot, "repositories", "provider")))
	})

	t.Run("should give distinct providers distinct paths for the same clone URL", func(t *testing.T) {
		// given
		cloneURL := "https://github.com/owner/repo.git"

		// when
		first := entities.ProviderLocalPath("/tmp/gitvault", "github", cloneURL)
		second := entities.ProviderLocalPath("/tmp/gitvault", "forgejo", cloneURL)

		// then
		assert.NotEqual(t, first, second)
	})

	t.Run("should mirror the storage prefix for url paths", func(t *testing.T) {
		// given
		info, err := entities.ParseRepositoryPath("https://github.com/owner/repo.git")
		require.NoError(t, err)

		// when
		path := entities.URLLocalPath("/var/lib/gitvault", info)

		// then
		assert.Equal(t,
			filepath.Join("/var/lib/gitvault", "repositories", "url", "github.com", "owner", "repo"),
			path,
		)
	})
}

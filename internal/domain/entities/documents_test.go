//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

func TestRepositoryRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should report containment regardless of surrounding slashes", func(t *testing.T) {
		// given
		registry := entities.RepositoryRegistry{IndexKeys: []string{"indexes/repositories/a/index.json"}}

		// when
		found := registry.Contains("/indexes/repositories/a/index.json/")

		// then
		assert.True(t, found)
	})

	t.Run("should add new keys once", func(t *testing.T) {
		// given
		registry := entities.RepositoryRegistry{}

		// when
		first := registry.Add("indexes/repositories/a/index.json")
		second := registry.Add("indexes/repositories/a/index.json")

		// then
		assert.True(t, first)
		assert.False(t, second)
		assert.Len(t, registry.IndexKeys, 1)
	})

	t.Run("should remove a tracked key and report the change", func(t *testing.T) {
		// given
		registry := entities.RepositoryRegistry{IndexKeys: []string{"a/index.json", "b/index.json"}}

		// when
		removed := registry.Remove("a/index.json")
		removedAgain := registry.Remove("a/index.json")

		// then
		assert.True(t, removed)
		assert.False(t, removedAgain)
		assert.Equal(t, []string{"b/index.json"}, registry.IndexKeys)
	})

	t.Run("should normalize to a sorted, deduplicated, trimmed key list", func(t *testing.T) {
		// given
		registry := entities.RepositoryRegistry{IndexKeys: []string{
			"/b/index.json/",
			"a/index.json",
			"b/index.json",
			"  ",
			"",
		}}

		// when
		registry.Normalize()

		// then
		assert.Equal(t, []string{"a/index.json", "b/index.json"}, registry.IndexKeys)
	})
}

func TestNormalizeSnapshots(t *testing.T) {
	t.Parallel()

	t.Run("should drop invalid references", func(t *testing.T) {
		// given
		snapshots := []entities.SnapshotRef{
			{RootPrefix: "", TimestampUnixSeconds: 100},
			{RootPrefix: "a/1_repo.tar.gz", TimestampUnixSeconds: 0},
			{RootPrefix: "a/100_repo.tar.gz", TimestampUnixSeconds: 100},
		}

		// when
		normalized := entities.NormalizeSnapshots(snapshots)

		// then
		assert.Equal(t, []entities.SnapshotRef{
			{RootPrefix: "a/100_repo.tar.gz", TimestampUnixSeconds: 100},
		}, normalized)
	})

	t.Run("should keep only the newest entry per root prefix", func(t *testing.T) {
		// given
		snapshots := []entities.SnapshotRef{
			{RootPrefix: "a/100_repo.tar.gz", TimestampUnixSeconds: 100},
			{RootPrefix: "a/100_repo.tar.gz", TimestampUnixSeconds: 250},
		}

		// when
		normalized := entities.NormalizeSnapshots(snapshots)

		// then
		assert.Equal(t, []entities.SnapshotRef{
			{RootPrefix: "a/100_repo.tar.gz", TimestampUnixSeconds: 250},
		}, normalized)
	})

	t.Run("should order newest first with prefix as the tie breaker", func(t *testing.T) {
		// given
		snapshots := []entities.SnapshotRef{
			{RootPrefix: "b/100_repo.tar.gz", TimestampUnixSeconds: 100},
			{RootPrefix: "a/100_repo.tar.gz", TimestampUnixSeconds: 100},
			{RootPrefix: "c/300_repo.tar.gz", TimestampUnixSeconds: 300},
		}

		// when
		normalized := entities.NormalizeSnapshots(snapshots)

		// then
		assert.Equal(t, []entities.SnapshotRef{
			{RootPrefix: "c/300_repo.tar.gz", TimestampUnixSeconds: 300},
			{RootPrefix: "a/100_repo.tar.gz", TimestampUnixSeconds: 100},
			{RootPrefix: "b/100_repo.tar.gz", TimestampUnixSeconds: 100},
		}, normalized)
	})
}

func TestSnapshotsEqual(t *testing.T) {
	t.Parallel()

	t.Run("should report equality position-wise", func(t *testing.T) {
		// given
		left := []entities.SnapshotRef{{RootPrefix: "a", TimestampUnixSeconds: 1}}
		right := []entities.SnapshotRef{{RootPrefix: "a", TimestampUnixSeconds: 1}}

		// when
		equal := entities.SnapshotsEqual(left, right)

		// then
		assert.True(t, equal)
	})

	t.Run("should detect differing lengths and contents", func(t *testing.T) {
		// given
		left := []entities.SnapshotRef{{RootPrefix: "a", TimestampUnixSeconds: 1}}

		// when
		shorter := entities.SnapshotsEqual(left, nil)
		different := entities.SnapshotsEqual(left, []entities.SnapshotRef{{RootPrefix: "b", TimestampUnixSeconds: 1}})

		// then
		assert.False(t, shorter)
		assert.False(t, different)
	})
}

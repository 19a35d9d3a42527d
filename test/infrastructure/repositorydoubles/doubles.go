//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
)

// SpyStorageRepository implements repositories.StorageRepository as an
// in-memory object store. Configure the error fields to simulate failures,
// then inspect the call-tracking fields.
type SpyStorageRepository struct {
	// Objects is the in-memory bucket: key -> content. Archive uploads
	// store the local path as content.
	Objects map[string]string

	// --- configurable failures ---
	GetErr     error
	UploadErr  error
	ArchiveErr error
	DeleteErr  error

	// --- call tracking ---
	UploadedTexts    []string // keys passed to UploadText
	UploadedArchives []string // keys passed to UploadDirectoryAsTarGz
	ArchivedPaths    []string // local paths passed to UploadDirectoryAsTarGz
	DeletedKeys      []string // keys passed to DeleteObjects
	ListedPrefixes   []string // prefixes passed to ListKeys
}

var _ repositories.StorageRepository = (*SpyStorageRepository)(nil)

// NewSpyStorageRepository creates an empty in-memory store.
func NewSpyStorageRepository() *SpyStorageRepository {
	return &SpyStorageRepository{Objects: make(map[string]string)}
}

func (it *SpyStorageRepository) GetTextIfExists(
	_ context.Context,
	key string,
) (string, bool, error) {
	if it.GetErr != nil {
		return "", false, it.GetErr
	}
	content, found := it.Objects[key]
	return content, found, nil
}

func (it *SpyStorageRepository) UploadText(_ context.Context, key, content string) error {
	it.UploadedTexts = append(it.UploadedTexts, key)
	if it.UploadErr != nil {
		return it.UploadErr
	}
	it.Objects[key] = content
	return nil
}

func (it *SpyStorageRepository) UploadDirectoryAsTarGz(
	_ context.Context,
	localPath, key string,
) error {
	it.UploadedArchives = append(it.UploadedArchives, key)
	it.ArchivedPaths = append(it.ArchivedPaths, localPath)
	if it.ArchiveErr != nil {
		return it.ArchiveErr
	}
	it.Objects[key] = localPath
	return nil
}

func (it *SpyStorageRepository) DeleteObjects(_ context.Context, keys []string) error {
	it.DeletedKeys = append(it.DeletedKeys, keys...)
	if it.DeleteErr != nil {
		return it.DeleteErr
	}
	for _, key := range keys {
		delete(it.Objects, key)
	}
	return nil
}

func (it *SpyStorageRepository) DeletePrefix(_ context.Context, prefix string) error {
	for key := range it.Objects {
		if strings.HasPrefix(key, prefix) {
			delete(it.Objects, key)
		}
	}
	return nil
}

func (it *SpyStorageRepository) ListKeys(_ context.Context, prefix string) ([]string, error) {
	it.ListedPrefixes = append(it.ListedPrefixes, prefix)
	var keys []string
	for key := range it.Objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// SyncCall records a single SyncBareRepository invocation.
type SyncCall struct {
	RemoteURL  string
	LocalPath  string
	Credential *entities.CredentialSettings
	Force      bool
	IncludeLFS bool
}

// SpyGitRepository implements repositories.GitRepository as a configurable spy.
type SpyGitRepository struct {
	SyncErr error
	Calls   []SyncCall
}

var _ repositories.GitRepository = (*SpyGitRepository)(nil)

func (it *SpyGitRepository) SyncBareRepository(
	_ context.Context,
	remoteURL, localPath string,
	credential *entities.CredentialSettings,
	force, includeLFS bool,
) error {
	it.Calls = append(it.Calls, SyncCall{
		RemoteURL:  remoteURL,
		LocalPath:  localPath,
		Credential: credential,
		Force:      force,
		IncludeLFS: includeLFS,
	})
	return it.SyncErr
}

// SpyProviderRepository implements repositories.ProviderRepository as a
// configurable spy.
type SpyProviderRepository struct {
	ProviderName string
	Remotes      []entities.RemoteRepository
	ListErr      error

	// spy: number of enumeration calls
	ListCalls int
}

var _ repositories.ProviderRepository = (*SpyProviderRepository)(nil)

func (it *SpyProviderRepository) Name() string { return it.ProviderName }

func (it *SpyProviderRepository) ListOwnedRepositories(
	_ context.Context,
) ([]entities.RemoteRepository, error) {
	it.ListCalls++
	return it.Remotes, it.ListErr
}

package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// RegistryObjectKey is the fixed location of the repository registry document.
const RegistryObjectKey = "indexes/repositories/registry.json"

const (
	repositoriesRootPrefix = "repositories"
	indexesRootPrefix      = "indexes/repositories"
	archiveSuffix          = "_repo.tar.gz"

	// MarkerObjectName is the diagnostic marker written next to each
	// repository's archives.
	MarkerObjectName = ".repository-root"
)

// EnsurePrefix trims surrounding slashes and appends exactly one trailing
// slash. Blank input stays blank so callers can concatenate unconditionally.
func EnsurePrefix(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	return trimmed + "/"
}

// ProviderRepositoryPrefix returns the object key prefix holding the archives
// of a provider-discovered repository.
func ProviderRepositoryPrefix(provider string, info RepositoryPathInfo) string {
	parts := append([]string{repositoriesRootPrefix, "provider", NormalizeSegment(provider)}, info.Hierarchy()...)
	return strings.Join(parts, "/")
}

// URLRepositoryPrefix returns the object key prefix holding the archives of a
// directly configured repository.
func URLRepositoryPrefix(info RepositoryPathInfo) string {
	parts := append([]string{repositoriesRootPrefix, "url", info.FullDomain}, info.Hierarchy()...)
	return strings.Join(parts, "/")
}

// ProviderRepositoryIdentity returns the canonical identity of a
// provider-discovered repository. Identical identities imply identical
// storage locations.
func ProviderRepositoryIdentity(provider string, info RepositoryPathInfo) string {
	parts := append([]string{"provider", NormalizeSegment(provider), info.BaseDomain}, info.Hierarchy()...)
	return strings.Join(parts, "/")
}

// URLRepositoryIdentity returns the canonical identity of a directly
// configured repository.
func URLRepositoryIdentity(info RepositoryPathInfo) string {
	parts := append([]string{"url", info.FullDomain}, info.Hierarchy()...)
	return strings.Join(parts, "/")
}

// IndexObjectKey returns the object key of the per-repository index document
// for the given identity.
func IndexObjectKey(identity string) string {
	return indexesRootPrefix + "/" + strings.Trim(identity, "/") + "/index.json"
}

// ArchiveObjectKey returns the object key of a snapshot archive taken at the
// given Unix timestamp under the given repository prefix.
func ArchiveObjectKey(repositoryPrefix string, timestampUnixSeconds int64) string {
	return strings.Trim(repositoryPrefix, "/") + "/" + fmt.Sprintf("%d%s", timestampUnixSeconds, archiveSuffix)
}

// MarkerObjectKey returns the object key of the repository marker object.
func MarkerObjectKey(repositoryPrefix string) string {
	return strings.Trim(repositoryPrefix, "/") + "/" + MarkerObjectName
}

// ProviderLocalPath returns the working directory of a provider-discovered
// repository. The digest keeps paths short and collision free regardless of
// how deep the remote hierarchy nests.
func ProviderLocalPath(workingRoot, provider, cloneURL string) string {
	digest := sha256.Sum256([]byte(provider + ":" + cloneURL))
	return filepath.Join(workingRoot, "repositories", "provider", hex.EncodeToString(digest[:]))
}

// URLLocalPath returns the working directory of a directly configured
// repository, mirroring its storage prefix below the working root.
func URLLocalPath(workingRoot string, info RepositoryPathInfo) string {
	parts := append([]string{workingRoot, "repositories", "url", info.FullDomain}, info.Hierarchy()...)
	return filepath.Join(parts...)
}

package repositories

import (
	"context"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

// GitRepository wraps the git command line for bare-mirror maintenance.
type GitRepository interface {
	// SyncBareRepository ensures localPath holds an up-to-date bare mirror
	// of remoteURL. With force set the directory is recreated from
	// scratch. With includeLFS set LFS objects are fetched as well.
	// Credentials are injected as an HTTP basic auth header; credential
	// may be nil for anonymous access.
	SyncBareRepository(
		ctx context.Context,
		remoteURL, localPath string,
		credential *entities.CredentialSettings,
		force, includeLFS bool,
	) error
}

package repositories

import (
	"context"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

// ProviderRepository enumerates the repositories a credential owns on one
// hosting provider (GitHub, GitLab, Forgejo).
type ProviderRepository interface {
	// Name returns the provider identifier (e.g. "github", "gitlab").
	Name() string

	// ListOwnedRepositories returns every repository the authenticated
	// account owns, following pagination to the end.
	ListOwnedRepositories(ctx context.Context) ([]entities.RemoteRepository, error)
}

package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/gitvault/internal/domain/repositories"
	fjRepo "github.com/rios0rios0/gitvault/internal/infrastructure/repositories/forgejo"
	gitRepo "github.com/rios0rios0/gitvault/internal/infrastructure/repositories/git"
	ghRepo "github.com/rios0rios0/gitvault/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/gitvault/internal/infrastructure/repositories/gitlab"
)

// RegisterProviders registers all repository implementations with the DIG
// container. Storage and index repositories are not registered here: they
// depend on the loaded settings, which the controllers layer owns.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(func() *ProviderRegistry {
		registry := NewProviderRegistry()
		registry.Register("github", ghRepo.NewProviderRepository)
		registry.Register("gitlab", glRepo.NewProviderRepository)
		registry.Register("forgejo", fjRepo.NewProviderRepository)
		return registry
	}); err != nil {
		return err
	}

	return container.Provide(func() domainRepos.GitRepository {
		return gitRepo.NewCLIGitRepository()
	})
}

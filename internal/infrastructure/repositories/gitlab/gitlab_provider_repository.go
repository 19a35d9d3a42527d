package gitlab

import (
	"context"
	"fmt"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
	"github.com/rios0rios0/gitvault/internal/infrastructure/repositories/forgeclient"
)

const (
	providerName = "gitlab"
	perPage      = 100
)

// GitLabProviderRepository implements repositories.ProviderRepository for
// gitlab.com and self-managed GitLab instances.
type GitLabProviderRepository struct {
	client *gl.Client
}

// NewProviderRepository creates a GitLab provider. A non-empty baseURL points
// the client at a self-managed instance.
func NewProviderRepository(
	credential entities.CredentialSettings,
	baseURL string,
) (repositories.ProviderRepository, error) {
	options := []gl.ClientOptionFunc{
		gl.WithHTTPClient(forgeclient.NewHTTPClient()),
	}
	if baseURL != "" {
		options = append(options, gl.WithBaseURL(baseURL))
	}

	client, err := gl.NewClient(credential.APIKey, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &GitLabProviderRepository{client: client}, nil
}

func (it *GitLabProviderRepository) Name() string { return providerName }

// ListOwnedRepositories lists every project owned by the authenticated user,
// following pagination to the end.
func (it *GitLabProviderRepository) ListOwnedRepositories(
	ctx context.Context,
) ([]entities.RemoteRepository, error) {
	var all []entities.RemoteRepository
	opts := &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Owned:       gl.Ptr(true),
	}

	for {
		projects, resp, err := it.client.Projects.ListProjects(opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list GitLab projects: %w", err)
		}

		for _, project := range projects {
			if project.HTTPURLToRepo == "" {
				continue
			}
			all = append(all, entities.RemoteRepository{
				CloneURL: project.HTTPURLToRepo,
				WebURL:   project.WebURL,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

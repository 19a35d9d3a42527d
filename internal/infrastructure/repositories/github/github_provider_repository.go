package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
	"github.com/rios0rios0/gitvault/internal/infrastructure/repositories/forgeclient"
)

const (
	providerName = "github"
	perPage      = 100
)

// GitHubProviderRepository implements repositories.ProviderRepository for
// GitHub and GitHub Enterprise Server.
type GitHubProviderRepository struct {
	client *gh.Client
}

// NewProviderRepository creates a GitHub provider. A non-empty baseURL points
// the client at a GitHub Enterprise Server instance.
func NewProviderRepository(
	credential entities.CredentialSettings,
	baseURL string,
) (repositories.ProviderRepository, error) {
	client := gh.NewClient(forgeclient.NewHTTPClient()).WithAuthToken(credential.APIKey)

	if baseURL != "" {
		enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure GitHub base URL %q: %w", baseURL, err)
		}
		client = enterprise
	}

	return &GitHubProviderRepository{client: client}, nil
}

func (it *GitHubProviderRepository) Name() string { return providerName }

// ListOwnedRepositories lists every repository owned by the authenticated
// user, following pagination to the end.
func (it *GitHubProviderRepository) ListOwnedRepositories(
	ctx context.Context,
) ([]entities.RemoteRepository, error) {
	var all []entities.RemoteRepository
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Type:        "owner",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		repos, resp, err := it.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list GitHub repositories: %w", err)
		}

		for _, repo := range repos {
			if repo.GetCloneURL() == "" {
				continue
			}
			all = append(all, entities.RemoteRepository{
				CloneURL: repo.GetCloneURL(),
				WebURL:   repo.GetHTMLURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

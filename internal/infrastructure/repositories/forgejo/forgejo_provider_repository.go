package forgejo

import (
	"context"
	"fmt"

	"code.gitea.io/sdk/gitea"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
	"github.com/rios0rios0/gitvault/internal/infrastructure/repositories/forgeclient"
)

const (
	providerName = "forgejo"
	perPage      = 50

	// defaultBaseURL is used when no instance URL is configured; Codeberg is
	// the largest public Forgejo instance.
	defaultBaseURL = "https://codeberg.org"
)

// ForgejoProviderRepository implements repositories.ProviderRepository for
// Forgejo and Gitea instances, which share the Gitea API.
type ForgejoProviderRepository struct {
	credential entities.CredentialSettings
	baseURL    string
}

// NewProviderRepository creates a Forgejo provider for the given instance.
func NewProviderRepository(
	credential entities.CredentialSettings,
	baseURL string,
) (repositories.ProviderRepository, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ForgejoProviderRepository{credential: credential, baseURL: baseURL}, nil
}

func (it *ForgejoProviderRepository) Name() string { return providerName }

// ListOwnedRepositories lists every repository of the authenticated user,
// following pagination to the end.
func (it *ForgejoProviderRepository) ListOwnedRepositories(
	ctx context.Context,
) ([]entities.RemoteRepository, error) {
	// the Gitea SDK performs a version probe inside NewClient, so the
	// client is built per call with the caller's context attached
	client, err := gitea.NewClient(
		it.baseURL,
		gitea.SetToken(it.credential.APIKey),
		gitea.SetHTTPClient(forgeclient.NewHTTPClient()),
		gitea.SetContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Forgejo client for %q: %w", it.baseURL, err)
	}

	var all []entities.RemoteRepository
	page := 1

	for {
		repos, resp, err := client.ListMyRepos(gitea.ListReposOptions{
			ListOptions: gitea.ListOptions{Page: page, PageSize: perPage},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list Forgejo repositories: %w", err)
		}

		for _, repo := range repos {
			if repo.CloneURL == "" {
				continue
			}
			all = append(all, entities.RemoteRepository{
				CloneURL: repo.CloneURL,
				WebURL:   repo.HTMLURL,
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}

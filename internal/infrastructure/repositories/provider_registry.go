package repositories

import (
	"fmt"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	domainRepos "github.com/rios0rios0/gitvault/internal/domain/repositories"
)

// ProviderFactory builds a ProviderRepository from a credential and an
// optional instance base URL.
type ProviderFactory func(
	credential entities.CredentialSettings,
	baseURL string,
) (domainRepos.ProviderRepository, error)

// ProviderRegistry manages all registered forge provider implementations.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory under the given name (e.g. "github").
func (it *ProviderRegistry) Register(name string, factory ProviderFactory) {
	it.providers[name] = factory
}

// Get returns a configured provider instance for the given name.
func (it *ProviderRegistry) Get(
	name string,
	credential entities.CredentialSettings,
	baseURL string,
) (domainRepos.ProviderRepository, error) {
	factory, found := it.providers[name]
	if !found {
		return nil, fmt.Errorf("unknown provider type: %q", name)
	}
	return factory(credential, baseURL)
}

// Names returns the list of registered provider names.
func (it *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(it.providers))
	for name := range it.providers {
		names = append(names, name)
	}
	return names
}

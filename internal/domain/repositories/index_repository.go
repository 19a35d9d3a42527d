package repositories

import (
	"context"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

// RegistryReadResult is the outcome of reading the registry document.
type RegistryReadResult struct {
	Document *entities.RepositoryRegistry
	Raw      string // exact content read, empty when absent
	Found    bool
}

// IndexReadResult is the outcome of reading a per-repository index document.
// Corrupt documents yield an empty Document but keep Raw, so that sync can
// rebuild while retention preserves the object for triage.
type IndexReadResult struct {
	Document *entities.RepositoryIndex
	Raw      string
	Found    bool
	Corrupt  bool
}

// IndexRepository persists the registry and per-repository index documents.
// Save operations are conditional: they skip the write when the serialized
// document equals priorRaw, and report whether a write happened.
type IndexRepository interface {
	LoadRegistry(ctx context.Context) (RegistryReadResult, error)
	SaveRegistry(ctx context.Context, doc *entities.RepositoryRegistry, priorRaw string) (bool, error)
	LoadIndex(ctx context.Context, key string) (IndexReadResult, error)
	SaveIndex(ctx context.Context, key string, doc *entities.RepositoryIndex, priorRaw string) (bool, error)
}

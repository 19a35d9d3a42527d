package indexes

import (
	"context"
	"encoding/json"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
)

// IndexRepository stores the registry and per-repository index documents as
// JSON objects in object storage. Reads are tolerant: a corrupt document is
// reported as such instead of failing the caller. Writes are conditional on
// the serialized form differing from what was last read.
type IndexRepository struct {
	storage repositories.StorageRepository
}

func NewIndexRepository(storage repositories.StorageRepository) *IndexRepository {
	return &IndexRepository{storage: storage}
}

func (it *IndexRepository) LoadRegistry(
	ctx context.Context,
) (repositories.RegistryReadResult, error) {
	raw, found, err := it.storage.GetTextIfExists(ctx, entities.RegistryObjectKey)
	if err != nil {
		return repositories.RegistryReadResult{}, fmt.Errorf("failed to read registry: %w", err)
	}
	if !found {
		return repositories.RegistryReadResult{Document: &entities.RepositoryRegistry{}}, nil
	}

	doc := &entities.RepositoryRegistry{}
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		logger.Warnf("Registry document is corrupt, starting from an empty one: %s", err)
		doc = &entities.RepositoryRegistry{}
	}
	doc.Normalize()
	return repositories.RegistryReadResult{Document: doc, Raw: raw, Found: true}, nil
}

func (it *IndexRepository) SaveRegistry(
	ctx context.Context,
	doc *entities.RepositoryRegistry,
	priorRaw string,
) (bool, error) {
	doc.Normalize()
	serialized, err := marshalDocument(doc)
	if err != nil {
		return false, fmt.Errorf("failed to serialize registry: %w", err)
	}
	if serialized == priorRaw {
		return false, nil
	}
	if err := it.storage.UploadText(ctx, entities.RegistryObjectKey, serialized); err != nil {
		return false, fmt.Errorf("failed to write registry: %w", err)
	}
	return true, nil
}

func (it *IndexRepository) LoadIndex(
	ctx context.Context,
	key string,
) (repositories.IndexReadResult, error) {
	raw, found, err := it.storage.GetTextIfExists(ctx, key)
	if err != nil {
		return repositories.IndexReadResult{}, fmt.Errorf("failed to read index %q: %w", key, err)
	}
	if !found {
		return repositories.IndexReadResult{Document: &entities.RepositoryIndex{}}, nil
	}

	doc := &entities.RepositoryIndex{}
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		logger.Warnf("Index document %q is corrupt: %s", key, err)
		return repositories.IndexReadResult{
			Document: &entities.RepositoryIndex{},
			Raw:      raw,
			Found:    true,
			Corrupt:  true,
		}, nil
	}
	doc.Snapshots = entities.NormalizeSnapshots(doc.Snapshots)
	return repositories.IndexReadResult{Document: doc, Raw: raw, Found: true}, nil
}

func (it *IndexRepository) SaveIndex(
	ctx context.Context,
	key string,
	doc *entities.RepositoryIndex,
	priorRaw string,
) (bool, error) {
	doc.Snapshots = entities.NormalizeSnapshots(doc.Snapshots)
	serialized, err := marshalDocument(doc)
	if err != nil {
		return false, fmt.Errorf("failed to serialize index %q: %w", key, err)
	}
	if serialized == priorRaw {
		return false, nil
	}
	if err := it.storage.UploadText(ctx, key, serialized); err != nil {
		return false, fmt.Errorf("failed to write index %q: %w", key, err)
	}
	return true, nil
}

func marshalDocument(doc any) (string, error) {
	serialized, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(serialized), nil
}

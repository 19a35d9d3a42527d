package commands

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
)

const hoursPerDay = 24

// Retention is the interface for one pruning pass across every indexed
// repository.
type Retention interface {
	Execute(ctx context.Context, settings *entities.Settings) error
}

// RetentionCommand prunes snapshots older than the configured cutoff while
// always keeping the newest ones, and garbage-collects registry entries whose
// index disappeared.
type RetentionCommand struct {
	storage repositories.StorageRepository
	indexes repositories.IndexRepository
	clock   func() time.Time

	warnedZeroMinimum bool
}

// NewRetentionCommand creates a RetentionCommand over the given services.
func NewRetentionCommand(
	storage repositories.StorageRepository,
	indexes repositories.IndexRepository,
) *RetentionCommand {
	return &RetentionCommand{
		storage: storage,
		indexes: indexes,
		clock:   time.Now,
	}
}

// Execute runs one retention pass. Deletion failures for one repository do
// not stop the pass; the failed snapshots stay listed in their index so the
// next pass retries them.
func (it *RetentionCommand) Execute(ctx context.Context, settings *entities.Settings) error {
	if !settings.Storage.RetentionEnabled() {
		logger.Debug("Retention is disabled")
		return nil
	}

	minimum := settings.Storage.EffectiveRetentionMinimum()
	it.warnOnZeroMinimum(minimum)

	retentionDays := *settings.Storage.RetentionDays
	cutoff := it.clock().UTC().Add(-time.Duration(retentionDays) * hoursPerDay * time.Hour).Unix()

	registryResult, err := it.indexes.LoadRegistry(ctx)
	if err != nil {
		return fmt.Errorf("failed to load repository registry: %w", err)
	}
	registry := registryResult.Document

	deleted := 0
	failures := 0

	for _, indexKey := range append([]string(nil), registry.IndexKeys...) {
		if ctx.Err() != nil {
			break
		}

		removed, pruneErr := it.pruneIndex(ctx, indexKey, cutoff, minimum, registry)
		deleted += removed
		if pruneErr != nil {
			logger.Errorf("Retention failed for index %q: %v", indexKey, pruneErr)
			failures++
		}
	}

	if _, saveErr := it.indexes.SaveRegistry(ctx, registry, registryResult.Raw); saveErr != nil {
		logger.Errorf("Failed to write repository registry: %v", saveErr)
		failures++
	}

	logger.Infof("Retention complete: %d snapshot(s) deleted, %d error(s)", deleted, failures)
	if failures > 0 {
		return fmt.Errorf("retention finished with %d error(s)", failures)
	}
	return nil
}

// warnOnZeroMinimum warns once whenever the configured floor transitions to
// zero: with no floor, a repository removed from the configuration can lose
// every snapshot it ever had.
func (it *RetentionCommand) warnOnZeroMinimum(minimum int) {
	if minimum > 0 {
		it.warnedZeroMinimum = false
		return
	}
	if !it.warnedZeroMinimum {
		logger.Warn(
			"retentionMinimum is 0: repositories no longer synced can have all their snapshots purged",
		)
		it.warnedZeroMinimum = true
	}
}

// pruneIndex applies the cutoff and minimum-kept floor to a single index. It
// returns the number of deleted snapshots.
func (it *RetentionCommand) pruneIndex(
	ctx context.Context,
	indexKey string,
	cutoff int64,
	minimum int,
	registry *entities.RepositoryRegistry,
) (int, error) {
	indexResult, err := it.indexes.LoadIndex(ctx, indexKey)
	if err != nil {
		return 0, err
	}
	if !indexResult.Found {
		logger.Infof("Index %q no longer exists, dropping it from the registry", indexKey)
		registry.Remove(indexKey)
		return 0, nil
	}
	if indexResult.Corrupt {
		logger.Warnf("Index %q is corrupt, leaving it untouched", indexKey)
		return 0, nil
	}

	document := indexResult.Document
	normalized := entities.NormalizeSnapshots(document.Snapshots)
	if len(normalized) == 0 {
		logger.Infof("Index %q holds no snapshots, dropping it from the registry", indexKey)
		registry.Remove(indexKey)
		return 0, nil
	}

	protectedCount := min(minimum, len(normalized))

	retained := append([]entities.SnapshotRef(nil), normalized[:protectedCount]...)
	deleted := 0
	var firstErr error

	for _, snapshot := range normalized[protectedCount:] {
		if snapshot.TimestampUnixSeconds >= cutoff {
			retained = append(retained, snapshot)
			continue
		}

		if deleteErr := it.storage.DeleteObjects(ctx, []string{snapshot.RootPrefix}); deleteErr != nil {
			logger.Errorf("Failed to delete snapshot %q: %v", snapshot.RootPrefix, deleteErr)
			// keep the entry so the next pass retries the deletion
			retained = append(retained, snapshot)
			if firstErr == nil {
				firstErr = deleteErr
			}
			continue
		}
		logger.Debugf("Deleted expired snapshot %q", snapshot.RootPrefix)
		deleted++
	}

	document.Snapshots = entities.NormalizeSnapshots(retained)
	if _, saveErr := it.indexes.SaveIndex(ctx, indexKey, document, indexResult.Raw); saveErr != nil {
		if firstErr == nil {
			firstErr = saveErr
		}
	}
	return deleted, firstErr
}

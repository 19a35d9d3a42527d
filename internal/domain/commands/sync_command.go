package commands

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/gitvault/internal/infrastructure/repositories"
)

// Sync is the interface for one snapshot run across all configured
// repositories.
type Sync interface {
	Execute(ctx context.Context, settings *entities.Settings) error
}

// syncTarget is one repository resolved to concrete clone, storage, and
// working locations.
type syncTarget struct {
	mode       entities.JobMode
	cloneURL   string
	identity   string
	prefix     string
	localPath  string
	credential *entities.CredentialSettings
	force      bool
	includeLFS bool
}

// SyncCommand drives the per-repository snapshot pipeline: enumerate, mirror,
// archive, and index every enabled repository job.
type SyncCommand struct {
	providerRegistry *infraRepos.ProviderRegistry
	git              repositories.GitRepository
	storage          repositories.StorageRepository
	indexes          repositories.IndexRepository
	clock            func() time.Time
}

// NewSyncCommand creates a SyncCommand over the given services.
func NewSyncCommand(
	providerRegistry *infraRepos.ProviderRegistry,
	git repositories.GitRepository,
	storage repositories.StorageRepository,
	indexes repositories.IndexRepository,
) *SyncCommand {
	return &SyncCommand{
		providerRegistry: providerRegistry,
		git:              git,
		storage:          storage,
		indexes:          indexes,
		clock:            time.Now,
	}
}

// Execute runs one full snapshot pass. Per-repository failures are logged and
// skipped; the run only aborts when the registry itself cannot be read or the
// context is cancelled.
func (it *SyncCommand) Execute(ctx context.Context, settings *entities.Settings) error {
	registryResult, err := it.indexes.LoadRegistry(ctx)
	if err != nil {
		return fmt.Errorf("failed to load repository registry: %w", err)
	}
	registry := registryResult.Document

	workingRoot := settings.ResolveWorkingRoot()
	snapshots := 0
	failures := 0

	for i, job := range settings.Repositories {
		if !job.IsEnabled() {
			logger.Debugf("Repository job %d is disabled, skipping", i)
			continue
		}

		targets, resolveErr := it.resolveTargets(ctx, settings, workingRoot, job)
		if resolveErr != nil {
			logger.Errorf("Failed to resolve repository job %d: %v", i, resolveErr)
			failures++
			continue
		}

		for _, target := range targets {
			if ctx.Err() != nil {
				return it.finishRun(ctx, registry, registryResult.Raw, snapshots, failures)
			}
			if syncErr := it.syncRepository(ctx, target, registry); syncErr != nil {
				logger.Errorf("Failed to snapshot %s: %v", target.cloneURL, syncErr)
				failures++
				continue
			}
			snapshots++
		}
	}

	return it.finishRun(ctx, registry, registryResult.Raw, snapshots, failures)
}

// finishRun persists the registry when it changed and reports the aggregate
// outcome.
func (it *SyncCommand) finishRun(
	ctx context.Context,
	registry *entities.RepositoryRegistry,
	priorRaw string,
	snapshots, failures int,
) error {
	written, err := it.indexes.SaveRegistry(ctx, registry, priorRaw)
	if err != nil {
		logger.Errorf("Failed to write repository registry: %v", err)
		failures++
	} else if written {
		logger.Debug("Repository registry updated")
	}

	logger.Infof("Sync complete: %d snapshot(s) taken, %d error(s)", snapshots, failures)
	if failures > 0 {
		return fmt.Errorf("sync finished with %d error(s)", failures)
	}
	return nil
}

// resolveTargets expands one job entry into concrete repositories. Provider
// jobs enumerate the forge; url jobs yield exactly one target.
func (it *SyncCommand) resolveTargets(
	ctx context.Context,
	settings *entities.Settings,
	workingRoot string,
	job entities.RepositoryJob,
) ([]syncTarget, error) {
	switch job.Mode {
	case entities.JobModeProvider:
		return it.resolveProviderTargets(ctx, settings, workingRoot, job)
	case entities.JobModeURL:
		return it.resolveURLTarget(settings, workingRoot, job)
	default:
		return nil, fmt.Errorf("unsupported repository mode %q", job.Mode)
	}
}

func (it *SyncCommand) resolveProviderTargets(
	ctx context.Context,
	settings *entities.Settings,
	workingRoot string,
	job entities.RepositoryJob,
) ([]syncTarget, error) {
	credential, err := settings.Credential(job.Credential)
	if err != nil {
		return nil, err
	}

	provider, err := it.providerRegistry.Get(job.Provider, credential, job.BaseURL)
	if err != nil {
		return nil, err
	}

	remotes, err := provider.ListOwnedRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s repositories: %w", provider.Name(), err)
	}
	logger.Infof("Provider %s returned %d repositories", provider.Name(), len(remotes))

	targets := make([]syncTarget, 0, len(remotes))
	for _, remote := range remotes {
		info, parseErr := entities.ParseRepositoryPath(remote.CloneURL)
		if parseErr != nil {
			logger.Warnf("Skipping repository with unusable clone URL %q: %v", remote.CloneURL, parseErr)
			continue
		}
		targets = append(targets, syncTarget{
			mode:       entities.JobModeProvider,
			cloneURL:   remote.CloneURL,
			identity:   entities.ProviderRepositoryIdentity(job.Provider, info),
			prefix:     entities.ProviderRepositoryPrefix(job.Provider, info),
			localPath:  entities.ProviderLocalPath(workingRoot, job.Provider, remote.CloneURL),
			credential: &credential,
			force:      true,
			includeLFS: job.LFS,
		})
	}
	return targets, nil
}

func (it *SyncCommand) resolveURLTarget(
	settings *entities.Settings,
	workingRoot string,
	job entities.RepositoryJob,
) ([]syncTarget, error) {
	info, err := entities.ParseRepositoryPath(job.URL)
	if err != nil {
		return nil, err
	}

	var credential *entities.CredentialSettings
	if job.Credential != "" {
		resolved, credErr := settings.Credential(job.Credential)
		if credErr != nil {
			return nil, credErr
		}
		credential = &resolved
	}

	return []syncTarget{{
		mode:       entities.JobModeURL,
		cloneURL:   job.URL,
		identity:   entities.URLRepositoryIdentity(info),
		prefix:     entities.URLRepositoryPrefix(info),
		localPath:  entities.URLLocalPath(workingRoot, info),
		credential: credential,
		force:      false,
		includeLFS: job.LFS,
	}}, nil
}

// syncRepository runs the snapshot pipeline for a single repository: mirror,
// archive, index, marker. The ordering matters: an observer sees either the
// pre-state or the post-state with the new archive present in the index.
func (it *SyncCommand) syncRepository(
	ctx context.Context,
	target syncTarget,
	registry *entities.RepositoryRegistry,
) error {
	logger.Infof("Snapshotting %s", target.cloneURL)

	indexKey := entities.IndexObjectKey(target.identity)
	indexResult, err := it.indexes.LoadIndex(ctx, indexKey)
	if err != nil {
		return err
	}
	if indexResult.Corrupt {
		logger.Warnf("Rebuilding corrupt index %q", indexKey)
	}

	if err := it.git.SyncBareRepository(
		ctx, target.cloneURL, target.localPath, target.credential, target.force, target.includeLFS,
	); err != nil {
		return err
	}

	timestamp := it.clock().UTC().Unix()
	archiveKey := entities.ArchiveObjectKey(target.prefix, timestamp)

	if err := it.storage.UploadDirectoryAsTarGz(ctx, target.localPath, archiveKey); err != nil {
		return err
	}

	document := indexResult.Document
	document.Mode = target.mode
	document.RepositoryIdentity = target.identity
	document.Snapshots = entities.NormalizeSnapshots(append(document.Snapshots, entities.SnapshotRef{
		RootPrefix:           archiveKey,
		TimestampUnixSeconds: timestamp,
	}))

	if _, err := it.indexes.SaveIndex(ctx, indexKey, document, indexResult.Raw); err != nil {
		return err
	}
	if registry.Add(indexKey) {
		logger.Debugf("Registry now tracks %q", indexKey)
	}

	marker := fmt.Sprintf("repository: %s\nidentity: %s\n", target.cloneURL, target.identity)
	if err := it.storage.UploadText(ctx, entities.MarkerObjectKey(target.prefix), marker); err != nil {
		return err
	}

	return nil
}

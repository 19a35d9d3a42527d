package git

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
)

// CLIGitRepository shells out to the git command line for network operations.
// The CLI is the only client that handles every server-side quirk (smart HTTP
// negotiation, LFS, alternates) the way hosting providers expect.
type CLIGitRepository struct{}

func NewCLIGitRepository() *CLIGitRepository {
	return &CLIGitRepository{}
}

func (it *CLIGitRepository) SyncBareRepository(
	ctx context.Context,
	remoteURL, localPath string,
	credential *entities.CredentialSettings,
	force, includeLFS bool,
) error {
	if force {
		if err := os.RemoveAll(localPath); err != nil {
			return fmt.Errorf("failed to remove mirror %q: %w", localPath, err)
		}
	}

	exists, err := isBareRepository(localPath)
	if err != nil {
		return err
	}

	if exists {
		if rewriteErr := it.ensureOriginURL(localPath, remoteURL); rewriteErr != nil {
			return rewriteErr
		}
		if fetchErr := runGit(
			ctx, localPath, credential, "fetch", "--all", "--prune", "--prune-tags",
		); fetchErr != nil {
			return fetchErr
		}
	} else {
		if removeErr := os.RemoveAll(localPath); removeErr != nil {
			return fmt.Errorf("failed to clear %q before clone: %w", localPath, removeErr)
		}
		if mkdirErr := os.MkdirAll(filepath.Dir(localPath), 0o750); mkdirErr != nil {
			return fmt.Errorf("failed to create mirror parent directory: %w", mkdirErr)
		}
		if cloneErr := runGit(
			ctx, "", credential, "clone", "--mirror", remoteURL, localPath,
		); cloneErr != nil {
			return cloneErr
		}
	}

	if includeLFS {
		if lfsErr := runGit(ctx, localPath, credential, "lfs", "fetch", "--all"); lfsErr != nil {
			// a host without git-lfs should not fail the whole snapshot
			if strings.Contains(lfsErr.Error(), "is not a git command") {
				logger.Warnf("git-lfs is not installed, skipping LFS objects for %q", localPath)
				return nil
			}
			return lfsErr
		}
	}
	return nil
}

// ensureOriginURL rewrites the origin remote when the configured clone URL
// changed, so a renamed repository keeps reusing its existing mirror.
func (it *CLIGitRepository) ensureOriginURL(localPath, remoteURL string) error {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open mirror %q: %w", localPath, err)
	}

	config, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read mirror config: %w", err)
	}

	remote, found := config.Remotes[gogit.DefaultRemoteName]
	if !found {
		return fmt.Errorf("mirror %q has no origin remote", localPath)
	}
	if len(remote.URLs) == 1 && remote.URLs[0] == remoteURL {
		return nil
	}

	logger.Infof("Rewriting origin of %q to %s", localPath, remoteURL)
	remote.URLs = []string{remoteURL}
	if err := repo.SetConfig(config); err != nil {
		return fmt.Errorf("failed to update mirror config: %w", err)
	}
	return nil
}

// isBareRepository reports whether path holds a usable bare repository.
func isBareRepository(path string) (bool, error) {
	_, err := gogit.PlainOpen(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return false, nil
	}
	// an unreadable or half-written directory is treated as absent; the
	// caller recreates it from scratch
	logger.Warnf("Mirror at %q is unusable (%s), recreating", path, err)
	return false, nil
}

// runGit executes a git subcommand. Credentials travel through the
// GIT_CONFIG_* environment as an extra Authorization header rather than
// through argv, keeping them out of the process list.
func runGit(
	ctx context.Context,
	dir string,
	credential *entities.CredentialSettings,
	args ...string,
) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if credential != nil && credential.APIKey != "" {
		username := credential.Username
		if username == "" {
			username = "git"
		}
		token := base64.StdEncoding.EncodeToString(
			[]byte(username + ":" + credential.APIKey),
		)
		cmd.Env = append(cmd.Env,
			"GIT_CONFIG_COUNT=1",
			"GIT_CONFIG_KEY_0=http.extraHeader",
			"GIT_CONFIG_VALUE_0=Authorization: Basic "+token,
		)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debugf("Running git %s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("git %s failed: %w: %s", args[0], err, detail)
		}
		return fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return nil
}

var _ repositories.GitRepository = (*CLIGitRepository)(nil)

package controllers

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gitvault/internal/domain/commands"
	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/gitvault/internal/infrastructure/repositories"
	"github.com/rios0rios0/gitvault/internal/infrastructure/repositories/indexes"
	"github.com/rios0rios0/gitvault/internal/infrastructure/repositories/s3"
)

// ServeController handles the "serve" subcommand: the long-running agent.
type ServeController struct {
	providerRegistry *infraRepos.ProviderRegistry
	git              repositories.GitRepository
}

// NewServeController creates a new ServeController.
func NewServeController(
	providerRegistry *infraRepos.ProviderRegistry,
	git repositories.GitRepository,
) *ServeController {
	return &ServeController{providerRegistry: providerRegistry, git: git}
}

// GetBind returns the Cobra command metadata for the serve controller.
func (it *ServeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "serve [settings-file]",
		Short: "Run the snapshot agent",
		Long: `Run the long-running snapshot agent.

The agent loads the settings file (auto-detected when not given),
schedules repository snapshot runs on the configured cron expression,
uploads each snapshot as a tar.gz archive to the object store, and
prunes old snapshots per the retention policy. The settings file is
watched and reloaded without restart.`,
	}
}

// Execute runs the agent until SIGINT or SIGTERM.
func (it *ServeController) Execute(_ *cobra.Command, args []string) {
	settingsPath := ""
	if len(args) > 0 {
		settingsPath = args[0]
	}
	if settingsPath == "" {
		found, err := entities.FindSettingsFile()
		if err != nil {
			logger.Fatalf(
				"No settings file found: %s\nPass one as an argument or create gitvault.yaml",
				err,
			)
		}
		settingsPath = found
	}
	logger.Infof("Using settings file: %s", settingsPath)

	settings, err := entities.LoadSettings(settingsPath)
	if err != nil {
		logger.Fatalf("Failed to load settings: %s", err)
	}
	applyLogLevel(settings)

	store := entities.NewSettingsStore(settings)

	// the storage endpoint and credentials are fixed for the process
	// lifetime; hot reload covers schedule, repositories, and retention
	storage := s3.NewS3StorageRepository(settings.Storage)
	indexStore := indexes.NewIndexRepository(storage)

	scheduler := commands.NewScheduleCommand(
		store,
		commands.NewSyncCommand(it.providerRegistry, it.git, storage, indexStore),
		commands.NewRetentionCommand(storage, indexStore),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher := NewSettingsWatcher(settingsPath, store)
	go func() {
		if watchErr := watcher.Watch(ctx); watchErr != nil {
			logger.Errorf("Settings watcher stopped: %v", watchErr)
		}
	}()

	logger.Info("Starting gitvault agent")
	if runErr := scheduler.Run(ctx); runErr != nil && ctx.Err() == nil {
		logger.Fatalf("Scheduler stopped: %s", runErr)
	}
	logger.Info("Shutdown complete")
}

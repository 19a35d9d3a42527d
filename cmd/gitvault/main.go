package main

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gitvault/internal"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	return &cobra.Command{
		Use:   "gitvault",
		Short: "Scheduled Git repository snapshot agent",
		Long: `A self-hosted agent that periodically snapshots remote Git repositories
and stores them as tar.gz archives in an S3-compatible object store.

Repositories are either discovered through a hosting provider API
(GitHub, GitLab, Forgejo) or configured directly by clone URL. Old
snapshots are pruned by a retention policy that always keeps the
newest ones.

Usage:
  gitvault serve [settings-file]   Run the agent (cron-driven)
  gitvault version                 Print build metadata`,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.MaximumNArgs(1),
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}
		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})

	cobraRoot := buildRootCommand()
	addSubcommands(cobraRoot, injectAppContext())

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'gitvault': %s", err)
	}
}

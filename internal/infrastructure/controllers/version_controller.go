package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X .../controllers.GitTag=v1.2.3 -X .../controllers.GitHash=abc1234"
var (
	GitTag  = "dev"
	GitHash = "unknown"
)

// VersionController handles the "version" subcommand.
type VersionController struct{}

// NewVersionController creates a new VersionController.
func NewVersionController() *VersionController {
	return &VersionController{}
}

// GetBind returns the Cobra command metadata for the version controller.
func (it *VersionController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "version",
		Short: "Print version and build metadata",
		Long:  "Print the gitvault version tag and the Git hash it was built from.",
	}
}

// Execute prints the build metadata.
func (it *VersionController) Execute(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "gitvault %s (%s)\n", GitTag, GitHash)
}

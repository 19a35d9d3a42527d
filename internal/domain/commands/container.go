package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(_ *dig.Container) error {
	// The sync, retention, and schedule commands depend on the loaded
	// settings (storage client, index store), so the serve controller
	// constructs them after the settings file is resolved.
	return nil
}

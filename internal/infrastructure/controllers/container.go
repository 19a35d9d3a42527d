package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewServeController); err != nil {
		return err
	}
	if err := container.Provide(NewVersionController); err != nil {
		return err
	}
	return container.Provide(NewControllers)
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	serveController *ServeController,
	versionController *VersionController,
) *[]entities.Controller {
	return &[]entities.Controller{
		serveController,
		versionController,
	}
}

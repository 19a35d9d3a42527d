package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/gitvault/internal"
)

func injectAppContext() *internal.AppInternal {
	container := dig.New()

	// Register all providers
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	// Invoke to get AppInternal
	var appInternal *internal.AppInternal
	if err := container.Invoke(func(app *internal.AppInternal) {
		appInternal = app
	}); err != nil {
		panic(err)
	}

	return appInternal
}

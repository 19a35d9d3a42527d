//go:build integration || unit || test

// Package commanddoubles provides test doubles for command interfaces.
package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gitvault/internal/domain/commands"
	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

// StubSync implements commands.Sync. Every execution is counted in Executed,
// then OnRun is called when one is configured.
type StubSync struct {
	Err      error
	OnRun    func()
	Executed int
}

var _ commands.Sync = (*StubSync)(nil)

func (it *StubSync) Execute(_ context.Context, _ *entities.Settings) error {
	it.Executed++
	if it.OnRun != nil {
		it.OnRun()
	}
	return it.Err
}

// StubRetention implements commands.Retention.
type StubRetention struct {
	Err      error
	OnRun    func()
	Executed int
}

var _ commands.Retention = (*StubRetention)(nil)

func (it *StubRetention) Execute(_ context.Context, _ *entities.Settings) error {
	it.Executed++
	if it.OnRun != nil {
		it.OnRun()
	}
	return it.Err
}

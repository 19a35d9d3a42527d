//go:build unit

package entities_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

func TestSettingsStore(t *testing.T) {
	t.Parallel()

	t.Run("should return the initial snapshot", func(t *testing.T) {
		// given
		initial := &entities.Settings{WorkingRoot: "/initial"}

		// when
		store := entities.NewSettingsStore(initial)

		// then
		assert.Same(t, initial, store.Current())
	})

	t.Run("should expose the swapped snapshot to subsequent readers", func(t *testing.T) {
		// given
		store := entities.NewSettingsStore(&entities.Settings{WorkingRoot: "/old"})
		replacement := &entities.Settings{WorkingRoot: "/new"}

		// when
		store.Swap(replacement)

		// then
		assert.Same(t, replacement, store.Current())
	})

	t.Run("should tolerate concurrent swaps and reads", func(t *testing.T) {
		// given
		store := entities.NewSettingsStore(&entities.Settings{})
		var group sync.WaitGroup

		// when
		for i := 0; i < 16; i++ {
			group.Add(2)
			go func() {
				defer group.Done()
				store.Swap(&entities.Settings{})
			}()
			go func() {
				defer group.Done()
				_ = store.Current()
			}()
		}
		group.Wait()

		// then
		assert.NotNil(t, store.Current())
	})
}

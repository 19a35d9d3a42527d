//go:build unit

package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

func TestParseCronExpression(t *testing.T) {
	t.Parallel()

	t.Run("should parse a classic five-field expression", func(t *testing.T) {
		// given
		expression := "30 3 * * *"

		// when
		schedule, err := entities.ParseCronExpression(expression)

		// then
		require.NoError(t, err)
		reference := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t,
			time.Date(2024, time.January, 1, 3, 30, 0, 0, time.UTC),
			schedule.Next(reference),
		)
	})

	t.Run("should fall back to the six-field form with seconds", func(t *testing.T) {
		// given
		expression := "15 30 3 * * *"

		// when
		schedule, err := entities.ParseCronExpression(expression)

		// then
		require.NoError(t, err)
		reference := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t,
			time.Date(2024, time.January, 1, 3, 30, 15, 0, time.UTC),
			schedule.Next(reference),
		)
	})

	t.Run("should reject expressions that fit neither format", func(t *testing.T) {
		// given
		expression := "not a cron"

		// when
		_, err := entities.ParseCronExpression(expression)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cron expression")
	})

	t.Run("should reject expressions with the wrong field count", func(t *testing.T) {
		// given
		expression := "* * *"

		// when
		_, err := entities.ParseCronExpression(expression)

		// then
		require.Error(t, err)
	})
}

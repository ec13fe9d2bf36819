package guard_test

import (
	"errors"
	"testing"

	"capacity/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_returns_supplied_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("slot not constructed")

		err := g.Validate(expected)

		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_falls_back_to_default_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type window struct {
		minutes int
		guard   guard.ConstructorGuard
	}
	errWindowNotConstructed := errors.New("window must be created via newWindow")

	newWindow := func(minutes int) (window, error) {
		if minutes <= 0 {
			return window{}, errors.New("minutes must be positive")
		}
		return window{minutes: minutes, guard: guard.NewConstructorGuard()}, nil
	}

	w, err := newWindow(30)
	require.NoError(t, err)
	require.NoError(t, w.guard.Validate(errWindowNotConstructed))
	assert.Equal(t, 30, w.minutes)

	var zero window
	require.ErrorIs(t, zero.guard.Validate(errWindowNotConstructed), errWindowNotConstructed)

	_, err = newWindow(0)
	require.Error(t, err)
}

package errs_test

import (
	"errors"
	"testing"

	"capacity/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("slotId", "9b2c")

		assert.Equal(t, "slotId", err.ParamName)
		assert.Equal(t, "9b2c", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 9b2c", err.Error())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := errs.NewObjectNotFoundErrorWithCause("scheduleId", "42", cause)

		assert.Equal(t, cause, err.Cause)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		require.ErrorIs(t, err, cause)
		assert.Equal(t,
			"object not found: param is: scheduleId, ID is: 42 (cause: connection reset)",
			err.Error())
	})

	t.Run("numeric identifiers are printed plainly", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("routeOrder", 7)
		assert.Equal(t, "object not found: 7", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	err := errs.NewValueIsInvalidError("availability")
	assert.Equal(t, "value is invalid: availability", err.Error())
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	withCause := errs.NewValueIsInvalidErrorWithCause("window", errors.New("end before start"))
	assert.Equal(t, "value is invalid: window (cause: end before start)", withCause.Error())
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("formats bounds", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("latitude", 91.5, -90, 90)

		assert.Equal(t, 91.5, err.Value)
		assert.Equal(t, "value is invalid: 91.5 is latitude, min value is -90, max value is 90", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("appends cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("booked", 5, 0, 4, errors.New("oversold"))
		assert.Equal(t, "value is invalid: 5 is booked, min value is 0, max value is 4 (cause: oversold)", err.Error())
	})

	t.Run("strips newlines from values", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("label", "morning\nshift", 0, 10)
		assert.Contains(t, err.Error(), "morning shift")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("shipmentId")
	assert.Equal(t, "value is required: shipmentId", err.Error())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	withCause := errs.NewValueIsRequiredErrorWithCause("shipmentId", errors.New("empty body"))
	assert.Equal(t, "value is required: shipmentId (cause: empty body)", withCause.Error())
}

func TestVersionIsInvalidError(t *testing.T) {
	err := errs.NewVersionIsInvalidError("slot version", errors.New("row changed"))
	assert.Equal(t, "version is invalid: slot version (cause: row changed)", err.Error())
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)

	bare := errs.NewVersionIsInvalidErrorWithCause("slot version")
	require.NoError(t, bare.Cause)
	assert.Equal(t, "version is invalid: slot version", bare.Error())
}

func TestSentinelMessages(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "version is invalid", errs.ErrVersionIsInvalid.Error())
}

package schedule_test

import (
	"testing"

	"capacity/internal/core/domain/model/schedule"
	"capacity/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_TransitionTo(t *testing.T) {
	tests := []struct {
		from    schedule.Status
		to      schedule.Status
		wantErr bool
	}{
		{from: schedule.Scheduled, to: schedule.InProgress},
		{from: schedule.Scheduled, to: schedule.Cancelled},
		{from: schedule.InProgress, to: schedule.Completed},
		{from: schedule.InProgress, to: schedule.Cancelled},
		{from: schedule.Scheduled, to: schedule.Completed, wantErr: true},
		{from: schedule.Scheduled, to: schedule.Scheduled, wantErr: true},
		{from: schedule.Completed, to: schedule.Cancelled, wantErr: true},
		{from: schedule.Cancelled, to: schedule.InProgress, wantErr: true},
		{from: schedule.InProgress, to: schedule.StatusUnknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			got, err := tt.from.TransitionTo(tt.to)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				assert.Equal(t, schedule.StatusUnknown, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := schedule.ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, schedule.InProgress, got)

	_, err = schedule.ParseStatus("delivered")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = schedule.ParseStatus("unknown")
	assert.Error(t, err)
}

func TestStatus_IsFinal(t *testing.T) {
	assert.False(t, schedule.Scheduled.IsFinal())
	assert.False(t, schedule.InProgress.IsFinal())
	assert.True(t, schedule.Completed.IsFinal())
	assert.True(t, schedule.Cancelled.IsFinal())
}

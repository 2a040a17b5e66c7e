package model_test

import (
	"testing"
	"voyage/internal/domains/appointment/model"
	"voyage/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		op      string
		current string
		want    string
		wantErr bool
	}{
		{op: model.OpConfirm, current: model.StatusScheduled, want: model.StatusConfirmed},
		{op: model.OpConfirm, current: model.StatusRescheduled, want: model.StatusConfirmed},
		{op: model.OpConfirm, current: model.StatusCompleted, wantErr: true},
		{op: model.OpReschedule, current: model.StatusConfirmed, want: model.StatusScheduled},
		{op: model.OpReschedule, current: model.StatusCompleted, wantErr: true},
		{op: model.OpCancel, current: model.StatusScheduled, want: model.StatusCancelled},
		{op: model.OpCancel, current: model.StatusCancelled, wantErr: true},
		{op: model.OpCancel, current: model.StatusConverted, wantErr: true},
		{op: model.OpComplete, current: model.StatusConfirmed, want: model.StatusCompleted},
		{op: model.OpComplete, current: model.StatusScheduled, wantErr: true},
		{op: model.OpNoShow, current: model.StatusRescheduled, want: model.StatusNoShow},
		{op: model.OpNoShow, current: model.StatusCompleted, wantErr: true},
		{op: model.OpConvert, current: model.StatusCompleted, want: model.StatusConverted},
		{op: model.OpConvert, current: model.StatusConverted, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.op+" from "+tt.current, func(t *testing.T) {
			next, err := model.Next(tt.op, tt.current)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, failure.ErrInvalidStateTransition)
				assert.Equal(t, tt.current, failure.GetDetails(err)["current"])
				assert.Equal(t, tt.op, failure.GetDetails(err)["requested"])

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestTerminalStatusesAcceptNoOperation(t *testing.T) {
	ops := []string{model.OpConfirm, model.OpReschedule, model.OpCancel, model.OpComplete, model.OpNoShow, model.OpConvert}

	for _, status := range []string{model.StatusCancelled, model.StatusNoShow, model.StatusConverted} {
		assert.True(t, model.IsTerminal(status))

		for _, op := range ops {
			_, err := model.Next(op, status)
			assert.Error(t, err, "%s from %s", op, status)
		}
	}
}

func TestSlotCatalog(t *testing.T) {
	require.Len(t, model.SlotCatalog, 6)
	assert.Equal(t, "09:00 AM–10:00 AM", model.SlotCatalog[0])
	assert.Equal(t, "05:00 PM–06:00 PM", model.SlotCatalog[5])

	assert.True(t, model.IsValidSlot("12:00 PM–01:00 PM"))
	assert.False(t, model.IsValidSlot("12:00 PM-01:00 PM"))
}

package model_test

import (
	"errors"
	"testing"
	"voyage/internal/domains/booking/model"
	"voyage/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name      string
		base      float64
		perPerson float64
		travelers int
		addOns    []model.AddOn
		discount  float64
		want      float64
	}{
		{name: "base only", base: 900, travelers: 1, want: 900},
		{name: "per person and add-ons", base: 500, perPerson: 300, travelers: 2, addOns: []model.AddOn{{Name: "Snorkeling", Price: 150}}, discount: 50, want: 1200},
		{name: "rounded to cents", base: 10.004, perPerson: 0.1, travelers: 3, want: 10.3},
		{name: "discount floors at zero", base: 100, travelers: 1, discount: 250, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, model.Price(tt.base, tt.perPerson, tt.travelers, tt.addOns, tt.discount), 0.001)
		})
	}
}

func TestBooking_Balances(t *testing.T) {
	b := model.Booking{FinalAmount: 1200, TotalPaid: 1200, CreditAmount: 100, TotalRefunded: 300}

	assert.InDelta(t, 0.0, b.Outstanding(), 0.001)
	assert.InDelta(t, 1000.0, b.Refundable(), 0.001)

	b.TotalPaid = 450
	assert.InDelta(t, 750.0, b.Outstanding(), 0.001)
}

func TestBooking_ApprovalGateOpen(t *testing.T) {
	status := func(s string) *string { return &s }

	assert.True(t, model.Booking{}.ApprovalGateOpen())
	assert.True(t, model.Booking{ApprovalStatus: status(model.ApprovalApproved)}.ApprovalGateOpen())
	assert.True(t, model.Booking{ApprovalStatus: status(model.ApprovalAutoApproved)}.ApprovalGateOpen())
	assert.False(t, model.Booking{ApprovalStatus: status(model.ApprovalPending)}.ApprovalGateOpen())
	assert.False(t, model.Booking{ApprovalStatus: status(model.ApprovalRejected)}.ApprovalGateOpen())
}

func TestCheck(t *testing.T) {
	assert.NoError(t, model.Check(model.OpPay, model.StatusPendingPayment))
	assert.NoError(t, model.Check(model.OpRefund, model.StatusCancelled))
	assert.NoError(t, model.Check(model.OpApprove, model.StatusPendingApproval))

	err := model.Check(model.OpPay, model.StatusPendingApproval)
	assert.True(t, errors.Is(err, failure.ErrInvalidStateTransition))
	assert.Equal(t, model.StatusPendingApproval, failure.GetDetails(err)["current"])

	assert.Error(t, model.Check(model.OpCancel, model.StatusConfirmed))
	assert.Error(t, model.Check("teleport", model.StatusDraft))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, model.IsTerminal(model.StatusRefunded))
	assert.True(t, model.IsTerminal(model.StatusRejected))
	assert.False(t, model.IsTerminal(model.StatusConfirmed))
	assert.False(t, model.IsTerminal(model.StatusPendingApproval))
}

func TestScheduleMatches(t *testing.T) {
	schedule := []model.Installment{{Amount: 400.10}, {Amount: 399.90}, {Amount: 400}}

	assert.True(t, model.ScheduleMatches(schedule, 1200))
	assert.False(t, model.ScheduleMatches(schedule, 1200.02))
	assert.False(t, model.ScheduleMatches(nil, 1))
}

func TestMarkPaid(t *testing.T) {
	schedule := []model.Installment{
		{DueDate: "2024-06-10", Amount: 400, Status: model.InstallmentPending},
		{DueDate: "2024-07-10", Amount: 400, Status: model.InstallmentOverdue},
		{DueDate: "2024-08-10", Amount: 400, Status: model.InstallmentPending},
	}

	out, changed := model.MarkPaid(schedule, 800)
	assert.True(t, changed)
	assert.Equal(t, model.InstallmentPaid, out[0].Status)
	assert.Equal(t, model.InstallmentPaid, out[1].Status)
	assert.Equal(t, model.InstallmentPending, out[2].Status)
	assert.Equal(t, model.InstallmentPending, schedule[0].Status)

	_, changed = model.MarkPaid(out, 800)
	assert.False(t, changed)

	out, changed = model.MarkPaid(schedule, 300)
	assert.False(t, changed)
	assert.Equal(t, schedule, out)
}

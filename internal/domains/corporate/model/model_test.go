package model_test

import (
	"testing"
	"voyage/internal/domains/corporate/model"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name      string
		rate      *model.Rate
		unit      float64
		travelers int
		tax       float64
		fee       float64
		discount  float64
		total     float64
	}{
		{name: "list price", unit: 1000, travelers: 2, tax: 10, fee: 25, discount: 0, total: 2225},
		{name: "percentage", rate: &model.Rate{ID: "r", DiscountType: model.DiscountPercentage, DiscountValue: 15}, unit: 1000, travelers: 2, tax: 10, fee: 25, discount: 300, total: 1895},
		{name: "fixed per traveler", rate: &model.Rate{ID: "r", DiscountType: model.DiscountFixed, DiscountValue: 50}, unit: 400, travelers: 3, discount: 150, total: 1050},
		{name: "discount capped at base", rate: &model.Rate{ID: "r", DiscountType: model.DiscountFixed, DiscountValue: 500}, unit: 100, travelers: 1, fee: 25, discount: 100, total: 25},
		{name: "rounded to cents", unit: 33.333, travelers: 3, tax: 7.5, discount: 0, total: 107.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricing := model.Price(tt.rate, tt.unit, tt.travelers, tt.tax, tt.fee)

			assert.InDelta(t, tt.discount, pricing.DiscountAmount, 0.001)
			assert.InDelta(t, tt.total, pricing.Total, 0.001)
			assert.InDelta(t, pricing.Subtotal+pricing.TaxAmount+pricing.ServiceFee, pricing.Total, 0.001)

			if tt.rate != nil {
				assert.Equal(t, tt.rate.ID, *pricing.RateID)
			} else {
				assert.Nil(t, pricing.RateID)
			}
		})
	}
}

func TestRequiresApproval(t *testing.T) {
	requester := model.Employee{ApprovalLimit: 1000}

	assert.False(t, model.RequiresApproval(model.Company{ApprovalRequired: true}, 800, requester))
	assert.False(t, model.RequiresApproval(model.Company{ApprovalRequired: true}, 1000, requester))
	assert.True(t, model.RequiresApproval(model.Company{ApprovalRequired: true}, 1000.01, requester))
	assert.False(t, model.RequiresApproval(model.Company{}, 1e6, requester))
}

func TestMayApprove(t *testing.T) {
	approver := model.Employee{CompanyID: "co-1", ApprovalLimit: 5000, CanApprove: true, Active: true}

	assert.True(t, model.MayApprove(approver, "co-1", 5000))
	assert.False(t, model.MayApprove(approver, "co-1", 5000.01))
	assert.False(t, model.MayApprove(approver, "co-2", 10))

	approver.CanApprove = false
	assert.False(t, model.MayApprove(approver, "co-1", 10))

	approver.CanApprove, approver.Active = true, false
	assert.False(t, model.MayApprove(approver, "co-1", 10))
}

func TestCorporateBooking_Deducted(t *testing.T) {
	budgetID := "bud-1"

	assert.InDelta(t, 0, model.CorporateBooking{Total: 500}.Deducted(), 0.001)
	assert.InDelta(t, 500, model.CorporateBooking{Total: 500, BudgetID: &budgetID}.Deducted(), 0.001)
	assert.InDelta(t, 0, model.CorporateBooking{Total: 500, BudgetID: &budgetID, BudgetRestored: true}.Deducted(), 0.001)
}

func TestBudget_Remaining(t *testing.T) {
	assert.InDelta(t, 3000, model.Budget{Allocated: 10000, Spent: 7000}.Remaining(), 0.001)
}

package model

import (
	"math"
	"voyage/shared"
)

const (
	InstallmentPending = "pending"
	InstallmentPaid    = "paid"
	InstallmentOverdue = "overdue"
)

// Installment is one entry of a static schedule. Overdue is only ever set by
// an external sweep; the ledger marks entries paid as money arrives.
type Installment struct {
	DueDate     string  `json:"due_date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

// ScheduleMatches reports whether the schedule sums to total, to the cent.
func ScheduleMatches(installments []Installment, total float64) bool {
	var sum float64
	for _, installment := range installments {
		sum += installment.Amount
	}

	return math.Abs(shared.RoundMoney(sum)-shared.RoundMoney(total)) < 0.005
}

// MarkPaid marks installments paid in schedule order while totalPaid covers
// them. It reports whether anything changed.
func MarkPaid(installments []Installment, totalPaid float64) ([]Installment, bool) {
	out := make([]Installment, len(installments))
	copy(out, installments)

	changed := false
	covered := 0.0

	for i := range out {
		covered = shared.RoundMoney(covered + out[i].Amount)
		if covered > totalPaid+0.005 {
			break
		}

		if out[i].Status != InstallmentPaid {
			out[i].Status = InstallmentPaid
			changed = true
		}
	}

	return out, changed
}

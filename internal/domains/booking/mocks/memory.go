package mocks

import (
	"context"
	"slices"
	"voyage/internal/domains/booking/model"
	"voyage/internal/domains/booking/repository"
	"voyage/shared"
	gDto "voyage/shared/dto"
	gMocks "voyage/shared/repository/mocks"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// MemoryBookings is an in-memory repository.Booking with the same guarded
// payment increment as the SQL statement.
type MemoryBookings struct {
	*gMocks.Memory[model.Booking]
}

func NewMemoryBookings(rows ...model.Booking) *MemoryBookings {
	return &MemoryBookings{Memory: gMocks.NewMemory(rows...)}
}

// InsertTx enforces the primary key and the unique index on appointment_id.
func (m *MemoryBookings) InsertTx(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
	conflict := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters:  []any{gDto.Eq(model.TableName, model.FieldID, booking.ID)},
	}

	if booking.AppointmentID != nil {
		conflict.Filters = append(conflict.Filters, gDto.Eq(model.TableName, model.FieldAppointmentID, *booking.AppointmentID))
	}

	if !m.InsertUnique(booking, conflict) {
		return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	}

	return nil
}

func (m *MemoryBookings) ApplyPayment(_ context.Context, _ *sqlx.Tx, req repository.ApplyPayment) (model.Booking, bool, error) {
	payable := model.Allowed(model.OpPay)

	booking, ok := m.Modify(gDto.And(gDto.Eq(model.TableName, model.FieldID, req.BookingID)), func(b *model.Booking) bool {
		total := shared.RoundMoney(b.TotalPaid + req.Applied)
		if !slices.Contains(payable, b.Status) || total > b.FinalAmount {
			return false
		}

		b.TotalPaid = total
		b.CreditAmount = shared.RoundMoney(b.CreditAmount + req.Credit)
		b.Overpaid = b.Overpaid || req.Credit > 0
		b.ModifiedAt = req.Now
		b.ModifiedBy = req.Actor

		settled := total >= b.FinalAmount

		b.PaymentStatus = model.PaymentPartial
		if settled {
			b.PaymentStatus = model.PaymentCompleted
		}

		switch {
		case settled && b.ApprovalGateOpen():
			b.Status = model.StatusConfirmed

			if b.ConfirmedAt == nil {
				now := req.Now
				b.ConfirmedAt = &now
			}
		case b.Status == model.StatusDraft:
			b.Status = model.StatusPendingPayment
		}

		return true
	})

	return booking, ok, nil
}

// MemoryTransactions is an in-memory repository.Transaction.
type MemoryTransactions struct {
	*gMocks.Memory[model.Transaction]
}

func NewMemoryTransactions(rows ...model.Transaction) *MemoryTransactions {
	return &MemoryTransactions{Memory: gMocks.NewMemory(rows...)}
}

// Append enforces the payment_transactions check constraints before inserting.
func (m *MemoryTransactions) Append(_ context.Context, _ *sqlx.Tx, entry model.Transaction) (bool, error) {
	if entry.Amount <= 0 {
		return false, &pq.Error{Code: "23514", Constraint: "payment_transactions_amount_check", Message: "new row violates check constraint"}
	}

	if entry.EntryType != model.EntryPayment && entry.EntryType != model.EntryRefund {
		return false, &pq.Error{Code: "23514", Constraint: "payment_transactions_entry_type_check", Message: "new row violates check constraint"}
	}

	return m.InsertUnique(entry, gDto.And(gDto.Eq(model.TransactionTableName, model.FieldTransactionID, entry.TransactionID))), nil
}

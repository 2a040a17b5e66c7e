package model

import "time"

const (
	TransactionTableName  = "payment_transactions"
	TransactionEntityName = "payment_transaction"

	FieldTransactionBookingID = "booking_id"
	FieldTransactionID        = "transaction_id"
	FieldRecordedAt           = "recorded_at"
)

const (
	EntryPayment = "payment"
	EntryRefund  = "refund"
)

// Transaction is an append-only ledger entry. Amount is always positive;
// EntryType says whether money came in or went out.
type Transaction struct {
	ID            string    `db:"id"`
	BookingID     string    `db:"booking_id"`
	TransactionID string    `db:"transaction_id"`
	EntryType     string    `db:"entry_type"`
	Amount        float64   `db:"amount"`
	AppliedAmount float64   `db:"applied_amount"`
	CreditAmount  float64   `db:"credit_amount"`
	Method        string    `db:"method"`
	Note          *string   `db:"note"`
	RecordedAt    time.Time `db:"recorded_at"`
	CreatedBy     string    `db:"created_by"`
}

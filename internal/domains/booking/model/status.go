package model

import (
	"slices"
	"voyage/shared/failure"
)

const (
	StatusDraft           = "draft"
	StatusPendingPayment  = "pending_payment"
	StatusPendingApproval = "pending_approval"
	StatusConfirmed       = "confirmed"
	StatusRejected        = "rejected"
	StatusCancelled       = "cancelled"
	StatusRefunded        = "refunded"
	StatusCompleted       = "completed"
)

const (
	PaymentUnpaid    = "unpaid"
	PaymentPartial   = "partial"
	PaymentCompleted = "completed"
	PaymentRefunded  = "refunded"
)

const (
	ApprovalPending      = "pending"
	ApprovalApproved     = "approved"
	ApprovalRejected     = "rejected"
	ApprovalAutoApproved = "auto_approved"
)

const (
	OverpaymentReject = "reject"
	OverpaymentCredit = "credit"
)

const (
	OpPay        = "pay"
	OpCancel     = "cancel"
	OpRefund     = "refund"
	OpSchedule   = "schedule installments for"
	OpApprove    = "approve"
	OpCorpCancel = "cancel corporate"
)

var allowed = map[string][]string{
	OpPay:        {StatusDraft, StatusPendingPayment, StatusConfirmed},
	OpCancel:     {StatusDraft, StatusPendingPayment},
	OpRefund:     {StatusCancelled},
	OpSchedule:   {StatusDraft, StatusPendingPayment, StatusPendingApproval, StatusConfirmed},
	OpApprove:    {StatusPendingApproval},
	OpCorpCancel: {StatusPendingApproval, StatusConfirmed},
}

// Allowed lists the booking statuses op may start from.
func Allowed(op string) []string {
	return allowed[op]
}

// Check fails with InvalidStateTransition when op cannot start from current.
func Check(op, current string) error {
	if !slices.Contains(allowed[op], current) {
		return failure.InvalidStateTransition(EntityName, current, op) //nolint:wrapcheck
	}

	return nil
}

func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusRefunded, StatusRejected:
		return true
	default:
		return false
	}
}

const (
	MethodCard             = "card"
	MethodBankTransfer     = "bank_transfer"
	MethodCash             = "cash"
	MethodEWallet          = "e_wallet"
	MethodCorporateInvoice = "corporate_invoice"
)

package model

import (
	"time"
	"voyage/shared/model"
)

const (
	CompanyTableName  = "companies"
	CompanyEntityName = "company"

	EmployeeTableName  = "corporate_employees"
	EmployeeEntityName = "corporate employee"

	FieldID         = "id"
	FieldCompanyID  = "company_id"
	FieldUserID     = "user_id"
	FieldActive     = "active"
	FieldDepartment = "department"
)

// Company carries the travel policy of a corporate customer.
type Company struct {
	ID               string `db:"id"`
	Name             string `db:"name"`
	ApprovalRequired bool   `db:"approval_required"`
	Active           bool   `db:"active"`
	model.Metadata
}

// Employee links a platform user to a company. ApprovalLimit is the largest
// total the employee may book without escalation and may approve for others.
type Employee struct {
	ID            string  `db:"id"`
	CompanyID     string  `db:"company_id"`
	UserID        string  `db:"user_id"`
	Department    string  `db:"department"`
	CostCenter    *string `db:"cost_center"`
	ApprovalLimit float64 `db:"approval_limit"`
	CanApprove    bool    `db:"can_approve"`
	Active        bool    `db:"active"`
	model.Metadata
}

// RequiresApproval is false when the company policy has approval disabled,
// otherwise true iff amount exceeds the requester's approval limit.
func RequiresApproval(company Company, amount float64, requester Employee) bool {
	if !company.ApprovalRequired {
		return false
	}

	return amount > requester.ApprovalLimit
}

// MayApprove reports whether approver can decide a booking of total for company.
func MayApprove(approver Employee, companyID string, total float64) bool {
	return approver.Active && approver.CanApprove && approver.CompanyID == companyID && approver.ApprovalLimit >= total
}

const (
	BudgetTableName  = "department_budgets"
	BudgetEntityName = "department budget"

	FieldFiscalYear = "fiscal_year"
)

// Budget is the annual allocation of one department. spent <= allocated holds
// unless an administrator overrode it.
type Budget struct {
	ID         string  `db:"id"`
	CompanyID  string  `db:"company_id"`
	Department string  `db:"department"`
	FiscalYear int     `db:"fiscal_year"`
	Allocated  float64 `db:"allocated"`
	Spent      float64 `db:"spent"`
	model.Metadata
}

func (b Budget) Remaining() float64 {
	return b.Allocated - b.Spent
}

const (
	RateTableName  = "corporate_rates"
	RateEntityName = "corporate rate"

	FieldCategory   = "category"
	FieldValidFrom  = "valid_from"
	FieldValidUntil = "valid_until"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Rate is a negotiated discount for one company and category, valid for the
// inclusive window [valid_from, valid_until].
type Rate struct {
	ID            string    `db:"id"`
	CompanyID     string    `db:"company_id"`
	Category      string    `db:"category"`
	DiscountType  string    `db:"discount_type"`
	DiscountValue float64   `db:"discount_value"`
	ValidFrom     time.Time `db:"valid_from"`
	ValidUntil    time.Time `db:"valid_until"`
	Active        bool      `db:"active"`
	model.Metadata
}

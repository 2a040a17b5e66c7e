package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/booking/model"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/logger"
	gRepo "voyage/shared/repository"

	"github.com/jmoiron/sqlx"
)

// applyPaymentQuery increments total_paid only while the result stays within
// final_amount, and derives payment status and booking status in the same
// statement. confirmed is only reachable with an open approval gate.
const applyPaymentQuery = `UPDATE bookings SET
		total_paid = total_paid + :applied,
		credit_amount = credit_amount + :credit,
		overpaid = overpaid OR CAST(:credit AS NUMERIC) > 0,
		payment_status = CASE WHEN total_paid + :applied >= final_amount THEN 'completed' ELSE 'partial' END,
		status = CASE
			WHEN total_paid + :applied >= final_amount
				AND (approval_status IS NULL OR approval_status IN ('approved', 'auto_approved')) THEN 'confirmed'
			WHEN status = 'draft' THEN 'pending_payment'
			ELSE status END,
		confirmed_at = CASE
			WHEN confirmed_at IS NULL AND total_paid + :applied >= final_amount
				AND (approval_status IS NULL OR approval_status IN ('approved', 'auto_approved')) THEN CAST(:now AS TIMESTAMPTZ)
			ELSE confirmed_at END,
		modified_at = :now,
		modified_by = :actor
	WHERE id = :id
		AND status IN ('draft', 'pending_payment', 'confirmed')
		AND total_paid + :applied <= final_amount
	RETURNING %s`

type ApplyPayment struct {
	BookingID string    `db:"id"`
	Applied   float64   `db:"applied"`
	Credit    float64   `db:"credit"`
	Actor     string    `db:"actor"`
	Now       time.Time `db:"now"`
}

type Booking interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
	ApplyPayment(ctx context.Context, tx *sqlx.Tx, req ApplyPayment) (model.Booking, bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// ApplyPayment reports false when the guard rejected the increment: the booking
// is not payable or the amount would push total_paid past final_amount.
func (r *repositoryImpl) ApplyPayment(ctx context.Context, tx *sqlx.Tx, req ApplyPayment) (booking model.Booking, ok bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ApplyPayment")
	defer scope.End()

	query := fmt.Sprintf(applyPaymentQuery, strings.Join(r.InsertColumns, ", "))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, false, fmt.Errorf("failed to prepare payment update: %w", err)
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, &booking, req)
	if errors.Is(err, sql.ErrNoRows) {
		return booking, false, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, false, fmt.Errorf("failed to apply payment: %w", err)
	}

	return booking, true, nil
}

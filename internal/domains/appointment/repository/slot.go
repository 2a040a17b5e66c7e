package repository

//go:generate go run go.uber.org/mock/mockgen -source=./slot.go -destination=../mocks/slot_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/appointment/model"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/logger"
	gRepo "voyage/shared/repository"

	"github.com/jmoiron/sqlx"
)

const (
	claimSlotQuery = `INSERT INTO slot_reservations (slot_date, slot_label, appointment_id, reserved_at)
		VALUES (:slot_date, :slot_label, :appointment_id, :reserved_at)
		ON CONFLICT (slot_date, slot_label) DO NOTHING`

	claimedSlotsQuery = `SELECT slot_label FROM slot_reservations WHERE slot_date = $1`
)

// Slot owns the slot_reservations claim table. A claim is a single
// conditional insert keyed by (slot_date, slot_label), never read-then-write.
type Slot interface {
	Claim(ctx context.Context, tx *sqlx.Tx, reservation model.SlotReservation) (bool, error)
	Release(ctx context.Context, tx *sqlx.Tx, day time.Time, slot, appointmentID string) error
	Claimed(ctx context.Context, day time.Time) ([]string, error)
}

type slotRepositoryImpl struct {
	gRepo.Repository[model.SlotReservation]
	db   *postgres.Connection
	otel otel.Otel
}

func NewSlot(db *postgres.Connection, otel otel.Otel) Slot {
	return &slotRepositoryImpl{
		Repository: gRepo.NewRepository[model.SlotReservation](model.SlotEntityName, model.SlotTableName, model.FieldSlotDate, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *slotRepositoryImpl) Claim(ctx context.Context, tx *sqlx.Tx, reservation model.SlotReservation) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.Claim")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, claimSlotQuery)

	result, err := tx.NamedExecContext(ctx, claimSlotQuery, reservation)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to claim slot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}

	return affected == 1, nil
}

// Release is scoped to the holder so a stale release never frees someone else's claim.
func (r *slotRepositoryImpl) Release(ctx context.Context, tx *sqlx.Tx, day time.Time, slot, appointmentID string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.Release")
	defer scope.End()

	filter := gDto.And(
		gDto.Filter{Field: model.FieldSlotDate, Operator: gDto.FilterOperatorEq, Value: day.Format(constant.DayFormat)},
		gDto.Filter{Field: model.FieldSlotLabel, Operator: gDto.FilterOperatorEq, Value: slot},
		gDto.Filter{Field: model.FieldSlotAppointmentID, Operator: gDto.FilterOperatorEq, Value: appointmentID},
	)

	return r.DeleteTx(ctx, tx, filter) //nolint:wrapcheck
}

func (r *slotRepositoryImpl) Claimed(ctx context.Context, day time.Time) ([]string, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.Claimed")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, claimedSlotsQuery)

	var labels []string

	if err := r.db.Read.SelectContext(ctx, &labels, claimedSlotsQuery, day.Format(constant.DayFormat)); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list claimed slots: %w", err)
	}

	return labels, nil
}

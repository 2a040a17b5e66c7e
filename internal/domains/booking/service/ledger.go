package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
	"voyage/config"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/infras/s3"
	"voyage/internal/domains/booking/model"
	"voyage/internal/domains/booking/model/dto"
	"voyage/internal/domains/booking/repository"
	"voyage/shared"
	"voyage/shared/cache"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/events"
	"voyage/shared/failure"
	"voyage/shared/metrics"
	gModel "voyage/shared/model"
	"voyage/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Clock is the time source for ledger timestamps.
type Clock func() time.Time

// Ledger records money against bookings. Every operation locks the booking
// row for the length of its transaction.
type Ledger interface {
	AddPayment(ctx context.Context, bookingID string, req dto.RecordPaymentRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, bookingID string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	Refund(ctx context.Context, bookingID string, req dto.RefundRequest) (dto.BookingResponse, error)
	SetInstallments(ctx context.Context, bookingID string, req dto.SetInstallmentsRequest) (dto.BookingResponse, error)
	Transactions(ctx context.Context, bookingID string) (dto.GetTransactionsResponse, error)
	ExportStatement(ctx context.Context, bookingID string) (dto.StatementResponse, error)
}

type ledgerImpl struct {
	repo         repository.Booking
	transactions repository.Transaction
	tx           postgres.Transactor
	storage      s3.S3
	publisher    events.Publisher
	metrics      *metrics.Metrics
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	now          Clock
}

func NewLedger(
	repo repository.Booking,
	transactions repository.Transaction,
	tx postgres.Transactor,
	storage s3.S3,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Ledger {
	return NewLedgerWithClock(repo, transactions, tx, storage, publisher, m, cfg, cache, otel, timezone.Now)
}

func NewLedgerWithClock(
	repo repository.Booking,
	transactions repository.Transaction,
	tx postgres.Transactor,
	storage s3.S3,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	now Clock,
) Ledger {
	return &ledgerImpl{
		repo:         repo,
		transactions: transactions,
		tx:           tx,
		storage:      storage,
		publisher:    publisher,
		metrics:      m,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		now:          now,
	}
}

func (s *ledgerImpl) lock(ctx context.Context, tx *sqlx.Tx, bookingID string) (model.Booking, error) {
	booking, err := s.repo.GetForUpdateTx(ctx, tx, shared.FilterByID(bookingID, model.FieldID, model.TableName))
	if err != nil {
		return booking, fmt.Errorf("failed to lock booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}

// recorded returns the ledger entry already holding transactionID, if any.
func (s *ledgerImpl) recorded(ctx context.Context, tx *sqlx.Tx, transactionID string) (model.Transaction, error) {
	entry, err := s.transactions.GetForUpdateTx(ctx, tx, gDto.And(gDto.Eq(model.TransactionTableName, model.FieldTransactionID, transactionID)))
	if err != nil {
		return entry, fmt.Errorf("failed to look up transaction: %w", err)
	}

	return entry, nil
}

func (s *ledgerImpl) AddPayment(ctx context.Context, bookingID string, req dto.RecordPaymentRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ledger.AddPayment")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)
	amount := shared.RoundMoney(req.Amount)

	var (
		booking   model.Booking
		replay    bool
		confirmed bool
	)

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.lock(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		existing, err := s.recorded(ctx, tx, req.TransactionID)
		if err != nil {
			return err
		}

		if existing.ID != constant.Empty {
			if existing.BookingID != current.ID || existing.EntryType != model.EntryPayment {
				return failure.Conflict("transaction id already recorded for another entry") // nolint:wrapcheck
			}

			booking, replay = current, true

			return nil
		}

		if err := model.Check(model.OpPay, current.Status); err != nil {
			return err //nolint:wrapcheck
		}

		outstanding := current.Outstanding()
		applied, credit := amount, 0.0

		if amount > outstanding {
			if s.cfg.Booking.OverpaymentPolicy != model.OverpaymentCredit || outstanding <= 0 {
				return failure.PaymentOverpay(outstanding) //nolint:wrapcheck
			}

			applied, credit = outstanding, shared.RoundMoney(amount-outstanding)
		}

		now := s.now()

		appended, err := s.transactions.Append(ctx, tx, model.Transaction{
			ID:            uuid.NewString(),
			BookingID:     current.ID,
			TransactionID: req.TransactionID,
			EntryType:     model.EntryPayment,
			Amount:        amount,
			AppliedAmount: applied,
			CreditAmount:  credit,
			Method:        req.Method,
			Note:          req.Note,
			RecordedAt:    now,
			CreatedBy:     actor.ID,
		})
		if err != nil {
			return err //nolint:wrapcheck
		}

		if !appended {
			return failure.Conflict("transaction id already recorded") // nolint:wrapcheck
		}

		updated, ok, err := s.repo.ApplyPayment(ctx, tx, repository.ApplyPayment{
			BookingID: current.ID,
			Applied:   applied,
			Credit:    credit,
			Actor:     actor.ID,
			Now:       now,
		})
		if err != nil {
			return err //nolint:wrapcheck
		}

		if !ok {
			return failure.PaymentOverpay(outstanding) //nolint:wrapcheck
		}

		if installments, changed := model.MarkPaid(updated.Installments.Val, updated.TotalPaid); changed {
			updated.Installments = gModel.NewJSON(installments)

			if _, err := s.repo.UpdateTx(ctx, tx, map[string]any{model.FieldInstallments: updated.Installments}, shared.FilterByID(current.ID, model.FieldID, model.TableName)); err != nil {
				return err //nolint:wrapcheck
			}
		}

		booking = updated
		confirmed = current.Status != model.StatusConfirmed && updated.Status == model.StatusConfirmed

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Str("transaction_id", req.TransactionID).Msg("failed to record payment")

		return res, fmt.Errorf("failed to record payment: %w", err)
	}

	res.FromModel(booking)

	if replay {
		log.Info().Str("booking_id", bookingID).Str("transaction_id", req.TransactionID).Msg("payment replay ignored")

		return res, nil
	}

	s.metrics.ObservePayment(model.EntryPayment, booking.PaymentStatus, booking.Currency, amount)

	published := []events.Event{events.New(events.PaymentRecorded, booking.ID, actor.ID, res)}
	if confirmed {
		published = append(published, events.New(events.BookingConfirmed, booking.ID, actor.ID, res))
	}

	events.PublishAsync(ctx, s.publisher, published...)
	InvalidateCache(ctx, s.cache, booking.ID)

	return res, nil
}

func (s *ledgerImpl) Cancel(ctx context.Context, bookingID string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ledger.Cancel")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)
	reason := strings.TrimSpace(req.Reason)

	if reason == constant.Empty {
		return res, failure.BadRequestFromString("cancellation reason is required") // nolint:wrapcheck
	}

	var booking model.Booking

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.lock(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if !actor.Owns(current.CustomerID) {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		if current.Kind == model.KindCorporate {
			return failure.BadRequestFromString("corporate bookings are cancelled through the corporate workflow") // nolint:wrapcheck
		}

		if err := model.Check(model.OpCancel, current.Status); err != nil {
			return err //nolint:wrapcheck
		}

		now := s.now()

		booking = current
		booking.Status = model.StatusCancelled
		booking.CancelReason = &reason
		booking.RefundDue = current.Refundable() > 0
		booking.ModifiedAt = now
		booking.ModifiedBy = actor.ID

		affected, err := s.repo.UpdateTx(ctx, tx, map[string]any{
			model.FieldStatus:        booking.Status,
			model.FieldCancelReason:  reason,
			model.FieldRefundDue:     booking.RefundDue,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: actor.ID,
		}, statusGuard(current))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return failure.InvalidStateTransition(model.EntityName, current.Status, model.OpCancel) //nolint:wrapcheck
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	res.FromModel(booking)

	events.PublishAsync(ctx, s.publisher, events.New(events.BookingCancelled, booking.ID, actor.ID, res))
	InvalidateCache(ctx, s.cache, booking.ID)

	return res, nil
}

func (s *ledgerImpl) Refund(ctx context.Context, bookingID string, req dto.RefundRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ledger.Refund")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)
	amount := shared.RoundMoney(req.Amount)

	var (
		booking model.Booking
		replay  bool
	)

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.lock(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		existing, err := s.recorded(ctx, tx, req.TransactionID)
		if err != nil {
			return err
		}

		if existing.ID != constant.Empty {
			if existing.BookingID != current.ID || existing.EntryType != model.EntryRefund {
				return failure.Conflict("transaction id already recorded for another entry") // nolint:wrapcheck
			}

			booking, replay = current, true

			return nil
		}

		if err := model.Check(model.OpRefund, current.Status); err != nil {
			return err //nolint:wrapcheck
		}

		refundable := current.Refundable()
		if amount > refundable {
			return failure.Unprocessable("refund exceeds refundable amount", map[string]any{"refundable": refundable}) // nolint:wrapcheck
		}

		now := s.now()
		note := strings.TrimSpace(req.Reason)

		method := model.MethodBankTransfer
		if current.PaymentMethod != nil {
			method = *current.PaymentMethod
		}

		appended, err := s.transactions.Append(ctx, tx, model.Transaction{
			ID:            uuid.NewString(),
			BookingID:     current.ID,
			TransactionID: req.TransactionID,
			EntryType:     model.EntryRefund,
			Amount:        amount,
			AppliedAmount: amount,
			Method:        method,
			Note:          &note,
			RecordedAt:    now,
			CreatedBy:     actor.ID,
		})
		if err != nil {
			return err //nolint:wrapcheck
		}

		if !appended {
			return failure.Conflict("transaction id already recorded") // nolint:wrapcheck
		}

		booking = current
		booking.TotalRefunded = shared.RoundMoney(current.TotalRefunded + amount)
		booking.RefundDue = booking.Refundable() > 0
		booking.ModifiedAt = now
		booking.ModifiedBy = actor.ID

		mod := map[string]any{
			model.FieldTotalRefunded: booking.TotalRefunded,
			model.FieldRefundDue:     booking.RefundDue,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: actor.ID,
		}

		if !booking.RefundDue {
			booking.Status = model.StatusRefunded
			booking.PaymentStatus = model.PaymentRefunded

			mod[model.FieldStatus] = booking.Status
			mod[model.FieldPaymentStatus] = booking.PaymentStatus
		}

		guard := statusGuard(current)
		guard.Add(gDto.Filter{ArgName: "current_total_refunded", Field: model.FieldTotalRefunded, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: current.TotalRefunded})

		affected, err := s.repo.UpdateTx(ctx, tx, mod, guard)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return failure.InvalidStateTransition(model.EntityName, current.Status, model.OpRefund) //nolint:wrapcheck
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Str("transaction_id", req.TransactionID).Msg("failed to refund booking")

		return res, fmt.Errorf("failed to refund booking: %w", err)
	}

	res.FromModel(booking)

	if replay {
		return res, nil
	}

	s.metrics.ObservePayment(model.EntryRefund, booking.PaymentStatus, booking.Currency, amount)

	published := []events.Event{events.New(events.PaymentRecorded, booking.ID, actor.ID, res)}
	if booking.Status == model.StatusRefunded {
		published = append(published, events.New(events.BookingRefunded, booking.ID, actor.ID, res))
	}

	events.PublishAsync(ctx, s.publisher, published...)
	InvalidateCache(ctx, s.cache, booking.ID)

	return res, nil
}

func (s *ledgerImpl) SetInstallments(ctx context.Context, bookingID string, req dto.SetInstallmentsRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ledger.SetInstallments")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	actor := shared.ActorFromContext(ctx)
	installments := req.ToModel()

	for i := 1; i < len(installments); i++ {
		if installments[i].DueDate < installments[i-1].DueDate {
			return res, failure.BadRequestFromString("installments must be ordered by due date") // nolint:wrapcheck
		}
	}

	var booking model.Booking

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.lock(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if err := model.Check(model.OpSchedule, current.Status); err != nil {
			return err //nolint:wrapcheck
		}

		if !model.ScheduleMatches(installments, current.FinalAmount) {
			return failure.BadRequestFromString(fmt.Sprintf("installments must sum to the final amount %.2f", current.FinalAmount)) // nolint:wrapcheck
		}

		marked, _ := model.MarkPaid(installments, current.TotalPaid)
		now := s.now()

		booking = current
		booking.Installments = gModel.NewJSON(marked)
		booking.ModifiedAt = now
		booking.ModifiedBy = actor.ID

		affected, err := s.repo.UpdateTx(ctx, tx, map[string]any{
			model.FieldInstallments:  booking.Installments,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: actor.ID,
		}, statusGuard(current))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if affected == 0 {
			return failure.InvalidStateTransition(model.EntityName, current.Status, model.OpSchedule) //nolint:wrapcheck
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to set installments")

		return res, fmt.Errorf("failed to set installments: %w", err)
	}

	res.FromModel(booking)
	InvalidateCache(ctx, s.cache, booking.ID)

	return res, nil
}

func (s *ledgerImpl) Transactions(ctx context.Context, bookingID string) (res dto.GetTransactionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ledger.Transactions")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	booking, history, err := s.history(ctx, bookingID)
	if err != nil {
		return res, err
	}

	res.FromModels(booking.ID, history)

	return res, nil
}

func (s *ledgerImpl) ExportStatement(ctx context.Context, bookingID string) (res dto.StatementResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ledger.ExportStatement")
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	booking, history, err := s.history(ctx, bookingID)
	if err != nil {
		return res, err
	}

	body, err := json.MarshalIndent(dto.NewStatement(booking, history, s.now()), "", "  ")
	if err != nil {
		return res, fmt.Errorf("failed to render statement: %w", err)
	}

	url, err := s.storage.PutObject(ctx, s3.Object{
		Key:         path.Join(s.cfg.Booking.StatementDirectory, booking.ReferenceCode+".json"),
		ContentType: constant.ContentTypeJSON,
		Body:        body,
		Metadata:    map[string]string{"booking-id": booking.ID},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to upload statement")

		return res, fmt.Errorf("failed to upload statement: %w", err)
	}

	res.URL = url

	return res, nil
}

func (s *ledgerImpl) history(ctx context.Context, bookingID string) (model.Booking, []model.Transaction, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(bookingID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking")

		return booking, nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty || !shared.ActorFromContext(ctx).Owns(booking.CustomerID) {
		return booking, nil, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	history, err := s.transactions.GetAll(ctx,
		gDto.QueryParams{SortBy: model.FieldRecordedAt, SortDir: gDto.SortDirAsc},
		gDto.And(gDto.Eq(model.TransactionTableName, model.FieldTransactionBookingID, booking.ID)),
	)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get transactions")

		return booking, nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return booking, history, nil
}

// statusGuard pins the row to the id and status observed under lock.
func statusGuard(current model.Booking) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(model.TableName, model.FieldID, current.ID),
		gDto.Filter{ArgName: "current_status", Field: model.FieldStatus, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: current.Status},
	)
}

package repository

//go:generate go run go.uber.org/mock/mockgen -source=./transaction.go -destination=../mocks/transaction_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/booking/model"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/logger"
	gRepo "voyage/shared/repository"

	"github.com/jmoiron/sqlx"
)

// Transaction is the append-only payment ledger.
type Transaction interface {
	Append(ctx context.Context, tx *sqlx.Tx, entry model.Transaction) (bool, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Transaction, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Transaction, error)
}

type transactionRepositoryImpl struct {
	gRepo.Repository[model.Transaction]
	otel otel.Otel
}

func NewTransaction(db *postgres.Connection, otel otel.Otel) Transaction {
	return &transactionRepositoryImpl{
		Repository: gRepo.NewRepository[model.Transaction](model.TransactionEntityName, model.TransactionTableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Append is a no-op returning false when transaction_id was already recorded.
func (r *transactionRepositoryImpl) Append(ctx context.Context, tx *sqlx.Tx, entry model.Transaction) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".transaction.Append")
	defer scope.End()

	placeholders := make([]string, len(r.InsertColumns))
	for i, col := range r.InsertColumns {
		placeholders[i] = ":" + col
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		model.TransactionTableName,
		strings.Join(r.InsertColumns, ", "),
		strings.Join(placeholders, ", "),
		model.FieldTransactionID,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := tx.NamedExecContext(ctx, query, entry)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read ledger append result: %w", err)
	}

	return affected == 1, nil
}

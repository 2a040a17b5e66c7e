package repository

//go:generate go run go.uber.org/mock/mockgen -source=./budget.go -destination=../mocks/budget_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/corporate/model"
	"voyage/shared/constant"
	gDto "voyage/shared/dto"
	"voyage/shared/logger"
	gRepo "voyage/shared/repository"

	"github.com/jmoiron/sqlx"
)

const (
	// deductBudgetQuery is an increment with a ceiling: it only matches while
	// the result stays within the allocation, unless overridden.
	deductBudgetQuery = `UPDATE department_budgets SET
		spent = spent + :amount,
		modified_at = :now,
		modified_by = :actor
	WHERE id = :id AND (spent + :amount <= allocated OR CAST(:override AS BOOLEAN))
	RETURNING %s`

	restoreBudgetQuery = `UPDATE department_budgets SET
		spent = GREATEST(spent - :amount, 0),
		modified_at = :now,
		modified_by = :actor
	WHERE id = :id`
)

type BudgetChange struct {
	BudgetID string    `db:"id"`
	Amount   float64   `db:"amount"`
	Override bool      `db:"override"`
	Actor    string    `db:"actor"`
	Now      time.Time `db:"now"`
}

type Budget interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Budget, error)
	Deduct(ctx context.Context, tx *sqlx.Tx, change BudgetChange) (model.Budget, bool, error)
	Restore(ctx context.Context, tx *sqlx.Tx, change BudgetChange) error
}

type budgetRepositoryImpl struct {
	gRepo.Repository[model.Budget]
	otel otel.Otel
}

func NewBudget(db *postgres.Connection, otel otel.Otel) Budget {
	return &budgetRepositoryImpl{
		Repository: gRepo.NewRepository[model.Budget](model.BudgetEntityName, model.BudgetTableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Deduct reports false, with no row, when the ceiling rejected the amount.
func (r *budgetRepositoryImpl) Deduct(ctx context.Context, tx *sqlx.Tx, change BudgetChange) (budget model.Budget, ok bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".budget.Deduct")
	defer scope.End()

	query := fmt.Sprintf(deductBudgetQuery, strings.Join(r.InsertColumns, ", "))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return budget, false, fmt.Errorf("failed to prepare budget deduction: %w", err)
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, &budget, change)
	if errors.Is(err, sql.ErrNoRows) {
		return budget, false, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return budget, false, fmt.Errorf("failed to deduct budget: %w", err)
	}

	return budget, true, nil
}

func (r *budgetRepositoryImpl) Restore(ctx context.Context, tx *sqlx.Tx, change BudgetChange) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".budget.Restore")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, restoreBudgetQuery)

	if _, err := tx.NamedExecContext(ctx, restoreBudgetQuery, change); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to restore budget: %w", err)
	}

	return nil
}

package mocks

import (
	"context"
	"voyage/internal/domains/corporate/model"
	"voyage/internal/domains/corporate/repository"
	"voyage/shared"
	gDto "voyage/shared/dto"
	gMocks "voyage/shared/repository/mocks"

	"github.com/jmoiron/sqlx"
)

// MemoryBudgets is an in-memory repository.Budget with the same ceiling as the
// SQL statement.
type MemoryBudgets struct {
	*gMocks.Memory[model.Budget]
}

func NewMemoryBudgets(rows ...model.Budget) *MemoryBudgets {
	return &MemoryBudgets{Memory: gMocks.NewMemory(rows...)}
}

func (m *MemoryBudgets) Deduct(_ context.Context, _ *sqlx.Tx, change repository.BudgetChange) (model.Budget, bool, error) {
	budget, ok := m.Modify(byID(change.BudgetID), func(b *model.Budget) bool {
		spent := shared.RoundMoney(b.Spent + change.Amount)
		if spent > b.Allocated && !change.Override {
			return false
		}

		b.Spent = spent
		b.ModifiedAt = change.Now
		b.ModifiedBy = change.Actor

		return true
	})
	if !ok {
		return model.Budget{}, false, nil
	}

	return budget, true, nil
}

func (m *MemoryBudgets) Restore(_ context.Context, _ *sqlx.Tx, change repository.BudgetChange) error {
	m.Modify(byID(change.BudgetID), func(b *model.Budget) bool {
		b.Spent = max(shared.RoundMoney(b.Spent-change.Amount), 0)
		b.ModifiedAt = change.Now
		b.ModifiedBy = change.Actor

		return true
	})

	return nil
}

func byID(id string) gDto.FilterGroup {
	return gDto.And(gDto.Eq(model.BudgetTableName, model.FieldID, id))
}

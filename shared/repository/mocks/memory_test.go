package mocks_test

import (
	"context"
	"testing"
	"time"
	"voyage/shared/dto"
	"voyage/shared/model"
	"voyage/shared/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID       string   `db:"id"`
	Status   string   `db:"status"`
	Amount   float64  `db:"amount"`
	Approver *string  `db:"approver"`
	Limit    *float64 `db:"limit"`
	model.Metadata
}

func TestMemory_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	table := mocks.NewMemory(row{ID: "a", Status: "pending", Amount: 10}, row{ID: "b", Status: "approved", Amount: 20})

	guard := dto.And(
		dto.Eq("", "id", "a"),
		dto.Filter{ArgName: "current_status", Field: "status", Operator: dto.FilterOperatorEq, Value: "pending"},
	)

	affected, err := table.UpdateTx(ctx, nil, map[string]any{"status": "approved", "approver": "u-1", "limit": 5, "modified_by": "u-1"}, guard)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = table.UpdateTx(ctx, nil, map[string]any{"status": "rejected"}, guard)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	got, err := table.Get(ctx, dto.And(dto.Eq("", "id", "a")))
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)
	require.NotNil(t, got.Approver)
	assert.Equal(t, "u-1", *got.Approver)
	assert.InDelta(t, 5.0, *got.Limit, 0.0001)
	assert.Equal(t, "u-1", got.ModifiedBy)
}

func TestMemory_Filters(t *testing.T) {
	ctx := context.Background()
	approver := "u-1"
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	table := mocks.NewMemory(
		row{ID: "a", Status: "pending", Amount: 10, Metadata: model.Metadata{CreatedAt: now}},
		row{ID: "b", Status: "approved", Amount: 20, Approver: &approver, Metadata: model.Metadata{CreatedAt: now.Add(time.Hour)}},
		row{ID: "c", Status: "rejected", Amount: 30, Metadata: model.Metadata{CreatedAt: now.Add(2 * time.Hour)}},
	)

	count, _ := table.Count(ctx, dto.And(dto.Filter{Field: "status", Operator: dto.FilterOperatorIn, Value: []string{"pending", "rejected"}}))
	assert.Equal(t, 2, count)

	count, _ = table.Count(ctx, dto.And(dto.Filter{Field: "approver", Operator: dto.FilterIsNull}))
	assert.Equal(t, 2, count)

	count, _ = table.Count(ctx, dto.And(dto.Filter{Field: "amount", Operator: dto.FilterOperatorGreaterEq, Value: 20}))
	assert.Equal(t, 2, count)

	rows, _ := table.GetAll(ctx, dto.QueryParams{Page: 1, Limit: 2, SortBy: "created_at", SortDir: dto.SortDirDesc}, dto.FilterGroup{})
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)

	assert.True(t, table.InsertUnique(row{ID: "d"}, dto.And(dto.Eq("", "id", "d"))))
	assert.False(t, table.InsertUnique(row{ID: "d"}, dto.And(dto.Eq("", "id", "d"))))

	require.NoError(t, table.DeleteTx(ctx, nil, dto.And(dto.Eq("", "id", "d"))))
	assert.Len(t, table.Rows(), 3)
}

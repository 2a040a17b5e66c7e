package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"
	"voyage/shared/constant"
	"voyage/shared/dto"
	"voyage/shared/model"
	"voyage/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestMetadataFromModel(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	var metadata dto.Metadata
	metadata.FromModel(model.NewMetadata(createdAt, "agent-7"))

	assert.Equal(t, timezone.Format(createdAt, constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, metadata.CreatedAt, metadata.ModifiedAt)
	assert.Equal(t, "agent-7", metadata.CreatedBy)
	assert.Equal(t, "agent-7", metadata.ModifiedBy)
}

func TestQueryParamsFromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "?page=2&limit=20&sort_by=final_amount&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "final_amount", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults",
			query:          "",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:           "invalid numbers are ignored",
			query:          "?page=-1&limit=abc&sort_dir=sideways",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params dto.QueryParams

			params.FromRequest(httptest.NewRequest("GET", "/v1/bookings"+tt.query, nil), tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParamsSanitize(t *testing.T) {
	params := dto.QueryParams{SortBy: "1; DROP TABLE bookings"}
	params.Sanitize("created_at", "final_amount")

	assert.Equal(t, constant.DefaultValueSortBy, params.SortBy)
	assert.Equal(t, constant.DefaultValueSortDir, params.SortDir)

	params = dto.QueryParams{SortBy: "final_amount", SortDir: dto.SortDirAsc}
	params.Sanitize("created_at", "final_amount")

	assert.Equal(t, "final_amount", params.SortBy)
	assert.Equal(t, dto.SortDirAsc, params.SortDir)
}

func TestFilterWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter dto.Filter
		where  string
		args   map[string]any
	}{
		{
			name:   "eq with table",
			filter: dto.Eq("appointments", "status", "scheduled"),
			where:  "appointments.status = :status",
			args:   map[string]any{"status": "scheduled"},
		},
		{
			name:   "in expands slice",
			filter: dto.In("", "status", []string{"draft", "pending_payment"}),
			where:  "status IN (:status_0, :status_1)",
			args:   map[string]any{"status_0": "draft", "status_1": "pending_payment"},
		},
		{
			name:   "in with empty slice matches nothing",
			filter: dto.In("bookings", "status", []string{}),
			where:  "FALSE",
			args:   map[string]any{},
		},
		{
			name:   "not eq",
			filter: dto.Filter{Field: "status", Operator: dto.FilterOperatorNotEq, Value: "cancelled"},
			where:  "status != :status",
			args:   map[string]any{"status": "cancelled"},
		},
		{
			name:   "unknown operator renders nothing",
			filter: dto.Filter{Field: "destination", Operator: "like", Value: "bali"},
			where:  "",
			args:   map[string]any{},
		},
		{
			name:   "custom arg name",
			filter: dto.Filter{Field: "slot_date", ArgName: "from", Operator: dto.FilterOperatorGreaterEq, Value: "2024-06-01"},
			where:  "slot_date >= :from",
			args:   map[string]any{"from": "2024-06-01"},
		},
		{
			name:   "is null",
			filter: dto.Filter{Field: "booking_id", Operator: dto.FilterIsNull},
			where:  "booking_id IS NULL",
			args:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestFilterGroupWhereClause(t *testing.T) {
	group := dto.And(
		dto.Eq("", "customer_id", "user-1"),
		dto.FilterGroup{
			Operator: dto.FilterGroupOperatorOr,
			Filters: []any{
				dto.Filter{Field: "status", ArgName: "s1", Operator: dto.FilterOperatorEq, Value: "scheduled"},
				dto.Filter{Field: "status", ArgName: "s2", Operator: dto.FilterOperatorEq, Value: "confirmed"},
			},
		},
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(customer_id = :customer_id AND (status = :s1 OR status = :s2))", where)
	assert.Len(t, args, 3)

	empty := dto.FilterGroup{}
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}

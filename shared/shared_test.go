package shared_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"voyage/shared"
	"voyage/shared/cache/mocks"
	"voyage/shared/constant"
	"voyage/shared/dto"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *bool
	}{
		{name: "empty string returns nil", input: "", expected: nil},
		{name: "true", input: "true", expected: boolPtr(true)},
		{name: "false", input: "false", expected: boolPtr(false)},
		{name: "numeric", input: "1", expected: boolPtr(true)},
		{name: "upper case", input: "FALSE", expected: boolPtr(false)},
		{name: "invalid string returns nil", input: "maybe", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.ConvertStringToBool(tt.input))
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "zero total returns 1", total: 0, limit: 10, expected: 1},
		{name: "zero limit returns 1", total: 100, limit: 0, expected: 1},
		{name: "negative limit returns 1", total: 100, limit: -5, expected: 1},
		{name: "exact division", total: 100, limit: 10, expected: 10},
		{name: "division with remainder", total: 101, limit: 10, expected: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestRoundMoney(t *testing.T) {
	assert.InDelta(t, 1050.0, shared.RoundMoney(1050.004), 1e-9)
	assert.InDelta(t, 19.99, shared.RoundMoney(19.994999), 1e-9)
	assert.InDelta(t, 0.13, shared.RoundMoney(0.125), 1e-9)
	assert.InDelta(t, 0.0, shared.RoundMoney(0), 1e-9)
}

func TestTransformFields(t *testing.T) {
	type update struct {
		Notes    string `db:"notes"`
		Interest int    `db:"interest_level"`
		Ignored  string `db:"-"`
		NoTag    string
	}

	result := shared.TransformFields(update{Notes: "call back", Ignored: "x", NoTag: "y"}, "agent-1")

	assert.Equal(t, "call back", result["notes"])
	assert.NotContains(t, result, "interest_level")
	assert.NotContains(t, result, "-")
	assert.Equal(t, "agent-1", result[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])
	assert.Len(t, result, 3)
}

func TestFilterByID(t *testing.T) {
	group := shared.FilterByID("abc", "id", "bookings")

	where, args := group.GetWhereClause()

	assert.Equal(t, "(bookings.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "abc"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:get:abc", shared.BuildCacheKey("booking:get", "abc"))
	assert.Equal(t, "slot:available", shared.BuildCacheKey("slot:available"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}

	first := shared.BuildCacheKeyWithQuery("booking:gets", params, dto.And(dto.Eq("bookings", "status", "draft")))
	same := shared.BuildCacheKeyWithQuery("booking:gets", params, dto.And(dto.Eq("bookings", "status", "draft")))
	other := shared.BuildCacheKeyWithQuery("booking:gets", params, dto.And(dto.Eq("bookings", "status", "confirmed")))

	assert.Equal(t, first, same)
	assert.NotEqual(t, first, other)
	assert.Contains(t, first, "booking:gets:1:10:created_at:DESC:")
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Clear(gomock.Any(), "booking:gets*").Return(nil)
	redisCache.EXPECT().Clear(gomock.Any(), "booking:count*").Return(errors.New("redis down"))

	shared.InvalidateCaches(context.Background(), redisCache, "booking:gets")
	shared.InvalidateCaches(context.Background(), redisCache, "booking:count")
}

func boolPtr(b bool) *bool {
	return &b
}

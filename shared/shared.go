package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"voyage/shared/cache"
	"voyage/shared/constant"
	"voyage/shared/dto"
	"voyage/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeySeparator = ":"
	centsPerUnit      = 100
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*centsPerUnit) / centsPerUnit
}

// TransformFields converts the non-zero db-tagged fields of a struct into an update map.
func TransformFields(data any, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a stable key from paging params and a filter.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	var builder strings.Builder

	builder.WriteString(where)

	for _, key := range keys {
		fmt.Fprintf(&builder, "|%s=%v", key, args[key])
	}

	digest := sha256.Sum256([]byte(builder.String()))

	return BuildCacheKey(prefix,
		strconv.Itoa(params.Page),
		strconv.Itoa(params.Limit),
		params.SortBy,
		params.SortDir,
		hex.EncodeToString(digest[:8]),
	)
}

// InvalidateCaches drops every key under prefix; failures are logged only.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// Package mocks holds an in-memory table used by service tests that need real
// conditional-write semantics rather than canned expectations.
package mocks

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"
	"time"
	"voyage/shared/dto"

	"github.com/jmoiron/sqlx"
)

// Memory evaluates FilterGroups against db struct tags. All access is
// serialised, which makes every call atomic like a single SQL statement.
type Memory[T any] struct {
	mu   sync.Mutex
	rows []T
}

func NewMemory[T any](rows ...T) *Memory[T] {
	return &Memory[T]{rows: rows}
}

// Rows returns a snapshot of the table.
func (m *Memory[T]) Rows() []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.rows)
}

func (m *Memory[T]) Insert(_ context.Context, row T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, row)

	return nil
}

func (m *Memory[T]) InsertTx(ctx context.Context, _ *sqlx.Tx, row T) error {
	return m.Insert(ctx, row)
}

// Get returns the zero value when nothing matches, like the SQL repository.
func (m *Memory[T]) Get(_ context.Context, filter dto.FilterGroup, _ ...string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if Matches(row, filter) {
			return row, nil
		}
	}

	var zero T

	return zero, nil
}

func (m *Memory[T]) GetForUpdateTx(ctx context.Context, _ *sqlx.Tx, filter dto.FilterGroup) (T, error) {
	return m.Get(ctx, filter)
}

func (m *Memory[T]) GetAll(_ context.Context, params dto.QueryParams, filter dto.FilterGroup, _ ...string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []T

	for _, row := range m.rows {
		if Matches(row, filter) {
			out = append(out, row)
		}
	}

	if params.SortBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := compare(column(out[i], params.SortBy), column(out[j], params.SortBy)) < 0
			if params.SortDir == dto.SortDirDesc {
				return !less
			}

			return less
		})
	}

	if params.Limit > 0 {
		start := 0
		if params.Page > 0 {
			start = (params.Page - 1) * params.Limit
		}

		if start >= len(out) {
			return nil, nil
		}

		out = out[start:min(start+params.Limit, len(out))]
	}

	return out, nil
}

func (m *Memory[T]) Count(_ context.Context, filter dto.FilterGroup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0

	for _, row := range m.rows {
		if Matches(row, filter) {
			count++
		}
	}

	return count, nil
}

func (m *Memory[T]) UpdateTx(_ context.Context, _ *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64

	for i := range m.rows {
		if !Matches(m.rows[i], filter) {
			continue
		}

		if err := Apply(&m.rows[i], mod); err != nil {
			return affected, err
		}

		affected++
	}

	return affected, nil
}

func (m *Memory[T]) DeleteTx(_ context.Context, _ *sqlx.Tx, filter dto.FilterGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = slices.DeleteFunc(m.rows, func(row T) bool { return Matches(row, filter) })

	return nil
}

// Modify runs fn on the first matching row under the table lock and keeps the
// change only when fn returns true.
func (m *Memory[T]) Modify(filter dto.FilterGroup, fn func(row *T) bool) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rows {
		if !Matches(m.rows[i], filter) {
			continue
		}

		row := m.rows[i]
		if !fn(&row) {
			return m.rows[i], false
		}

		m.rows[i] = row

		return row, true
	}

	var zero T

	return zero, false
}

// InsertUnique appends row unless a row matching conflict already exists.
func (m *Memory[T]) InsertUnique(row T, conflict dto.FilterGroup) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.rows {
		if Matches(existing, conflict) {
			return false
		}
	}

	m.rows = append(m.rows, row)

	return true
}

// Matches evaluates filter against row using db tags. Only the operators the
// services use are understood.
func Matches(row any, filter dto.FilterGroup) bool {
	or := filter.Operator == dto.FilterGroupOperatorOr
	evaluated := false

	for _, f := range filter.Filters {
		var ok bool

		switch typed := f.(type) {
		case dto.Filter:
			ok = matchFilter(row, typed)
		case dto.FilterGroup:
			ok = Matches(row, typed)
		default:
			continue
		}

		evaluated = true

		if or && ok {
			return true
		}

		if !or && !ok {
			return false
		}
	}

	return !or || !evaluated
}

func matchFilter(row any, f dto.Filter) bool {
	value := column(row, f.Field)

	switch f.Operator {
	case dto.FilterOperatorEq:
		return value != nil && compare(value, f.Value) == 0
	case dto.FilterOperatorNotEq:
		return value == nil || compare(value, f.Value) != 0
	case dto.FilterOperatorLessEq:
		return value != nil && compare(value, f.Value) <= 0
	case dto.FilterOperatorGreaterEq:
		return value != nil && compare(value, f.Value) >= 0
	case dto.FilterIsNull:
		return value == nil
	case dto.FilterIsNotNull:
		return value != nil
	case dto.FilterOperatorIn:
		candidates := reflect.ValueOf(f.Value)
		if candidates.Kind() != reflect.Slice {
			return value != nil && compare(value, f.Value) == 0
		}

		for i := range candidates.Len() {
			if value != nil && compare(value, candidates.Index(i).Interface()) == 0 {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// column returns the dereferenced value of the field tagged db:"name", or nil.
func column(row any, name string) any {
	field, ok := fieldByTag(reflect.Indirect(reflect.ValueOf(row)), name)
	if !ok {
		return nil
	}

	for field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return nil
		}

		field = field.Elem()
	}

	return field.Interface()
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()

	for i := range t.NumField() {
		sf := t.Field(i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if field, ok := fieldByTag(v.Field(i), name); ok {
				return field, true
			}

			continue
		}

		if sf.Tag.Get("db") == name {
			return v.Field(i), true
		}
	}

	return reflect.Value{}, false
}

func compare(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)

	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Apply writes mod into the db-tagged fields of row.
func Apply(row any, mod map[string]any) error {
	target := reflect.ValueOf(row).Elem()

	for name, value := range mod {
		field, ok := fieldByTag(target, name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}

		if value == nil {
			field.Set(reflect.Zero(field.Type()))

			continue
		}

		v := reflect.ValueOf(value)

		switch {
		case v.Type().AssignableTo(field.Type()):
			field.Set(v)
		case field.Kind() == reflect.Pointer && v.Type().AssignableTo(field.Type().Elem()):
			ptr := reflect.New(field.Type().Elem())
			ptr.Elem().Set(v)
			field.Set(ptr)
		case field.Kind() == reflect.Pointer && v.Type().ConvertibleTo(field.Type().Elem()):
			ptr := reflect.New(field.Type().Elem())
			ptr.Elem().Set(v.Convert(field.Type().Elem()))
			field.Set(ptr)
		case v.Type().ConvertibleTo(field.Type()):
			field.Set(v.Convert(field.Type()))
		default:
			return fmt.Errorf("cannot assign %T to column %q", value, name)
		}
	}

	return nil
}

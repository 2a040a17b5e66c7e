package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
}

// Filter is one predicate on a column. ArgName overrides the bind name when
// the same column appears twice in a statement.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string
	Table    string
}

// Eq builds an equality filter on table.field.
func Eq(table, field string, value any) Filter {
	return Filter{Field: field, Value: value, Operator: FilterOperatorEq, Table: table}
}

// In matches any element of values, which must be a slice.
func In(table, field string, values any) Filter {
	return Filter{Field: field, Value: values, Operator: FilterOperatorIn, Table: table}
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) argName() string {
	if f.ArgName == "" {
		return f.Field
	}

	return f.ArgName
}

// GetWhereClause renders the predicate with named binds. Unknown operators
// render nothing and are skipped by the group.
func (f *Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	column, name := f.column(), f.argName()

	if op, ok := comparisons[f.Operator]; ok {
		args[name] = f.Value

		return fmt.Sprintf("%s %s :%s", column, op, name), args
	}

	switch f.Operator {
	case FilterOperatorIn:
		val := reflect.ValueOf(f.Value)
		if val.Kind() != reflect.Array && val.Kind() != reflect.Slice {
			args[name] = f.Value

			return fmt.Sprintf("%s IN (:%s)", column, name), args
		}

		// An empty set matches nothing.
		if val.Len() == 0 {
			return "FALSE", args
		}

		binds := make([]string, val.Len())

		for idx := range val.Len() {
			bind := fmt.Sprintf("%s_%d", name, idx)
			args[bind] = val.Index(idx).Interface()
			binds[idx] = ":" + bind
		}

		return fmt.Sprintf("%s IN (%s)", column, strings.Join(binds, ", ")), args
	case FilterIsNotNull:
		return column + " IS NOT NULL", args
	case FilterIsNull:
		return column + " IS NULL", args
	default:
		return "", args
	}
}

type FilterGroup struct {
	Filters  []any
	Operator string
}

// And groups filters with AND.
func And(filters ...any) FilterGroup {
	return FilterGroup{Operator: FilterGroupOperatorAnd, Filters: filters}
}

// Add appends a filter and returns the group for chaining.
func (f *FilterGroup) Add(filter any) *FilterGroup {
	f.Filters = append(f.Filters, filter)

	return f
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	whereClause := []string{}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	for _, filter := range f.Filters {
		switch fill := filter.(type) {
		case Filter:
			where, arg := fill.GetWhereClause()
			if where == "" {
				continue
			}

			whereClause = append(whereClause, where)

			maps.Copy(args, arg)
		case FilterGroup:
			where, arg := fill.GetWhereClause()
			if where == "" {
				continue
			}

			whereClause = append(whereClause, where)

			maps.Copy(args, arg)
		}
	}

	if len(whereClause) == 0 {
		return "", args
	}

	return fmt.Sprintf("(%s)", strings.Join(whereClause, " "+operator+" ")), args
}

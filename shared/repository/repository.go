package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/shared/constant"
	"voyage/shared/dto"
	"voyage/shared/logger"

	"github.com/jmoiron/sqlx"
)

var (
	errRequiredFilter = errors.New("required filter")
)

const lockSuffix = "FOR UPDATE"

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

type namedPreparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// Repository is the table gateway every domain repository embeds. Columns are
// read once from the db tags of T, embedded structs included.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []string
	InsertColumns []string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns := dbColumns(reflect.TypeOf(zero))

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       columns,
		InsertColumns: columns,
	}
}

func (repo *Repository[T]) scope(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, op))
}

// fail logs and traces err and wraps it with the entity name.
func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	ctx, scope := repo.scope(ctx, "InsertTx")
	defer scope.End()

	return repo.insert(ctx, scope, sqltx, model)
}

func (repo *Repository[T]) insert(ctx context.Context, scope otel.Scope, exec execer, model T) error {
	placeholders := make([]string, len(repo.InsertColumns))
	for i, col := range repo.InsertColumns {
		placeholders[i] = ":" + col
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(repo.InsertColumns, ", "), strings.Join(placeholders, ", "))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, model); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

// Get returns the zero value when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	return repo.get(ctx, scope, repo.db.Read, filter, constant.Empty, columns...)
}

// GetForUpdateTx reads inside sqltx and locks the matched row until commit.
func (repo *Repository[T]) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) (T, error) {
	ctx, scope := repo.scope(ctx, "GetForUpdateTx")
	defer scope.End()

	return repo.get(ctx, scope, sqltx, filter, lockSuffix)
}

func (repo *Repository[T]) get(ctx context.Context, scope otel.Scope, preparer namedPreparer, filter dto.FilterGroup, suffix string, columns ...string) (T, error) {
	var model T

	where, args := whereClause(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s %s", repo.selectClause(columns), repo.table, where, suffix)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := preparer.PrepareNamedContext(ctx, query)
	if err != nil {
		return model, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, &model, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

// GetAll pages with LIMIT/OFFSET. params.SortBy must already be sanitized
// against a column allow-list; it is interpolated as is.
func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	where, args := whereClause(filter)

	var ordering, pagination string

	switch {
	case params.Page > 0 && params.Limit > 0:
		args["limit"] = params.Limit
		args["offset"] = (params.Page - 1) * params.Limit
		pagination = "LIMIT :limit OFFSET :offset"
	case params.Limit > 0:
		args["limit"] = params.Limit
		pagination = "LIMIT :limit"
	}

	if params.SortBy != "" && params.SortDir != "" {
		ordering = fmt.Sprintf("ORDER BY %s %s", params.SortBy, params.SortDir)
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s", repo.selectClause(columns), repo.table, where, ordering, pagination)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	models := []T{}

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		return models, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = stmt.SelectContext(ctx, &models, args); err != nil {
		return models, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	where, args := whereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s", repo.table, repo.primaryColumn, repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = stmt.GetContext(ctx, &count, args); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

func (repo *Repository[T]) DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "DeleteTx")
	defer scope.End()

	where, args := whereClause(filter)
	if where == "" {
		return errRequiredFilter
	}

	query := fmt.Sprintf("DELETE FROM %s %s", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := sqltx.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "delete data", err)
	}

	return nil
}

// UpdateTx is a compare-and-set when filter pins the expected current state:
// the returned count is zero if another writer got there first. Filter args
// and mod share one namespace, so a guard on a column that mod also sets
// needs its own ArgName.
func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) (int64, error) {
	ctx, scope := repo.scope(ctx, "UpdateTx")
	defer scope.End()

	where, args := whereClause(filter)
	if where == "" {
		return 0, errRequiredFilter
	}

	assignments := make([]string, 0, len(mod))
	for _, col := range slices.Sorted(maps.Keys(mod)) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s", col, col))
	}

	query := fmt.Sprintf("UPDATE %s SET %s %s", repo.table, strings.Join(assignments, ", "), where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	maps.Copy(args, mod)

	result, err := sqltx.NamedExecContext(ctx, query, args)
	if err != nil {
		return 0, repo.fail(scope, "update data", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows (%s): %w", repo.entity, err)
	}

	return affected, nil
}

func (repo *Repository[T]) selectClause(only []string) string {
	columns := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col) {
			continue
		}

		columns = append(columns, repo.table+"."+col)
	}

	return strings.Join(columns, ", ")
}

func whereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return where, map[string]any{}
	}

	return fmt.Sprintf("WHERE %s", where), args
}

func dbColumns(reflectType reflect.Type) []string {
	var columns []string

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, dbColumns(field.Type)...)

			continue
		}

		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			columns = append(columns, tag)
		}
	}

	return columns
}

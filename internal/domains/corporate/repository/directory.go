package repository

//go:generate go run go.uber.org/mock/mockgen -source=./directory.go -destination=../mocks/directory_mock.go -package=mocks

import (
	"context"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/corporate/model"
	gDto "voyage/shared/dto"
	gRepo "voyage/shared/repository"
)

// Company, Employee and Rate are read-only here; they are maintained by the
// back office.
type Company interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Company, error)
}

type Employee interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Employee, error)
}

type Rate interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Rate, error)
}

func NewCompany(db *postgres.Connection, otel otel.Otel) Company {
	repo := gRepo.NewRepository[model.Company](model.CompanyEntityName, model.CompanyTableName, model.FieldID, db, otel)

	return &repo
}

func NewEmployee(db *postgres.Connection, otel otel.Otel) Employee {
	repo := gRepo.NewRepository[model.Employee](model.EmployeeEntityName, model.EmployeeTableName, model.FieldID, db, otel)

	return &repo
}

func NewRate(db *postgres.Connection, otel otel.Otel) Rate {
	repo := gRepo.NewRepository[model.Rate](model.RateEntityName, model.RateTableName, model.FieldID, db, otel)

	return &repo
}

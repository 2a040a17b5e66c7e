package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/appointment/model"
	gDto "voyage/shared/dto"
	gRepo "voyage/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Appointment interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Appointment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Appointment, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Appointment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Appointment, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Appointment]
}

func New(db *postgres.Connection, otel otel.Otel) Appointment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Appointment](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

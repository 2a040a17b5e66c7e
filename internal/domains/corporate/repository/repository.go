package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"voyage/infras/otel"
	"voyage/infras/postgres"
	"voyage/internal/domains/corporate/model"
	gDto "voyage/shared/dto"
	gRepo "voyage/shared/repository"

	"github.com/jmoiron/sqlx"
)

type CorporateBooking interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.CorporateBooking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.CorporateBooking, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.CorporateBooking, error)
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.CorporateBooking]
}

func New(db *postgres.Connection, otel otel.Otel) CorporateBooking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.CorporateBooking](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

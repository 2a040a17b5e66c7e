package postgres

//go:generate go run go.uber.org/mock/mockgen -source=./tx.go -destination=./mocks/tx_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const pqUniqueViolation = "23505"

// Transactor runs fn inside a single write transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

func NewTransactor(conn *Connection) Transactor {
	return conn
}

func (c *Connection) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin transaction")

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit transaction")

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}

	return false
}

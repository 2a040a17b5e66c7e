package mocks

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
)

// SerialTransactor runs transactions one at a time with a nil *sqlx.Tx,
// standing in for row locks when paired with in-memory repositories. It does
// not roll back.
type SerialTransactor struct {
	mu sync.Mutex
}

func (s *SerialTransactor) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(nil)
}

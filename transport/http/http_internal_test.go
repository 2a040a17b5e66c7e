package http

import (
	"context"
	"errors"
	"testing"
	"time"
	"voyage/config"
	"voyage/transport/http/router"

	"github.com/stretchr/testify/assert"
)

func TestShutdownFlushesEvents(t *testing.T) {
	var deadline time.Time

	h := New(&config.Config{}, router.Router{}, nil, func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()

		return errors.New("broker gone")
	})

	h.shutdown(0)

	assert.False(t, deadline.IsZero())
}

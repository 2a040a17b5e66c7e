package s3_test

import (
	"context"
	"testing"
	"voyage/config"
	otelMocks "voyage/infras/otel/mocks"
	"voyage/infras/s3"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		domain string
		key    string
		want   string
	}{
		{"https://files.example.com", "statements/TRV-1.json", "https://files.example.com/statements/TRV-1.json"},
		{"https://files.example.com/", "/statements/TRV-1.json", "https://files.example.com/statements/TRV-1.json"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s3.PublicURL(tt.domain, tt.key))
	}
}

func TestNewWithoutEndpoint(t *testing.T) {
	storage := s3.New(&config.Config{}, otelMocks.NewOtel())

	url, err := storage.PutObject(context.Background(), s3.Object{Key: "statements/TRV-1.json"})

	assert.ErrorIs(t, err, s3.ErrStorageDisabled)
	assert.Empty(t, url)
}

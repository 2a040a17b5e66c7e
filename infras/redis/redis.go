package redis

import (
	"context"
	"net"
	"time"
	"voyage/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	pingTimeout  = 5 * time.Second
	dialTimeout  = 5 * time.Second
	readTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
)

// Options maps the primary redis config onto client options.
func Options(config *config.Config) *goRedis.Options {
	primary := config.Cache.Redis.Primary

	return &goRedis.Options{
		Addr:         net.JoinHostPort(primary.Host, primary.Port),
		Password:     primary.Password,
		DB:           primary.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

// New connects to the primary and fails fast when it is unreachable: the
// slot cache and the rate limiter both depend on it.
func New(config *config.Config) *goRedis.Client {
	client := goRedis.NewClient(Options(config))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	log.Info().
		Int("db", config.Cache.Redis.Primary.DB).
		Str("host", config.Cache.Redis.Primary.Host).
		Str("port", config.Cache.Redis.Primary.Port).
		Msg("Connected to Redis")

	return client
}

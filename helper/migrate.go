package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"voyage/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const (
	migrationSource = "file://migrations/postgres"

	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"
)

var ErrUnknownAction = errors.New("unknown migration action")

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// connectionString targets the write node; migrations never run on a replica.
func connectionString(config *config.Config) string {
	write := config.DB.Postgres.Write

	query := url.Values{}
	query.Set("sslmode", write.SSLMode)

	if config.DB.Postgres.MigrationTable != "" {
		query.Set("x-migrations-table", config.DB.Postgres.MigrationTable)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(write.Username, write.Password),
		Host:     net.JoinHostPort(write.Host, write.Port),
		Path:     getDBName(config, write.Name),
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	mig, err := migrate.New(migrationSource, connectionString(config))
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func apply(mig *migrate.Migrate, action string) error {
	switch action {
	case ActionUp:
		return mig.Up() //nolint:wrapcheck
	case ActionDown:
		return mig.Steps(-1) //nolint:wrapcheck
	case ActionStepUp:
		return mig.Steps(1) //nolint:wrapcheck
	case ActionDrop:
		return mig.Down() //nolint:wrapcheck
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
}

func Runner(config *config.Config, action string) error {
	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	if err = apply(mig, action); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migrations (%s): %w", action, err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("error reading migration version: %w", err)
	}

	log.Info().Str("action", action).Uint("version", version).Bool("dirty", dirty).Msg("Database migrations completed successfully")

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

func StepUp(config *config.Config) error {
	return Runner(config, ActionStepUp)
}

func Down(config *config.Config) error {
	return Runner(config, ActionDown)
}

func Drop(config *config.Config) error {
	return Runner(config, ActionDrop)
}

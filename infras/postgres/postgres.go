package postgres

//nolint:revive
import (
	"fmt"
	"net"
	"net/url"
	"time"
	"voyage/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
	defaultTimezone           = "UTC"
)

// Connection splits reads from writes. Transactions always run on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// endpoint is one side of the read/write pair.
type endpoint struct {
	name     string
	host     string
	port     string
	username string
	password string
	dbName   string
	sslMode  string
	timezone string
}

func (e endpoint) dsn() string {
	query := url.Values{}
	query.Set("sslmode", e.sslMode)

	// Slot dates are calendar days; pin the session zone so DATE columns
	// don't shift with the server default.
	timezone := e.timezone
	if timezone == "" {
		timezone = defaultTimezone
	}

	query.Set("timezone", timezone)

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.username, e.password),
		Host:     net.JoinHostPort(e.host, e.port),
		Path:     e.dbName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func New(config *config.Config) *Connection {
	pg := config.DB.Postgres

	read := endpoint{
		name:     "read",
		host:     pg.Read.Host,
		port:     pg.Read.Port,
		username: pg.Read.Username,
		password: pg.Read.Password,
		dbName:   getDBName(config, pg.Read.Name),
		sslMode:  pg.Read.SSLMode,
		timezone: pg.Read.Timezone,
	}

	write := endpoint{
		name:     "write",
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		username: pg.Write.Username,
		password: pg.Write.Password,
		dbName:   getDBName(config, pg.Write.Name),
		sslMode:  pg.Write.SSLMode,
		timezone: pg.Write.Timezone,
	}

	conn := &Connection{
		Write: connect(write, pg.MaxRetry, pg.RetryWaitTime),
	}

	// A single-node setup points both sides at the same server.
	if read == write {
		conn.Read = conn.Write
	} else {
		conn.Read = connect(read, pg.MaxRetry, pg.RetryWaitTime)
	}

	if conn.Read == nil || conn.Write == nil {
		log.Fatal().Msg("Could not reach the database, giving up")
	}

	return conn
}

// Close releases both pools.
func (c *Connection) Close() error {
	if c.Read != nil && c.Read != c.Write {
		if err := c.Read.Close(); err != nil {
			return fmt.Errorf("failed to close read connection: %w", err)
		}
	}

	if c.Write != nil {
		if err := c.Write.Close(); err != nil {
			return fmt.Errorf("failed to close write connection: %w", err)
		}
	}

	return nil
}

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

func connect(e endpoint, maxRetry, waitTime int) *sqlx.DB {
	for retry := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", e.dsn())
		if err == nil {
			log.
				Info().
				Str("name", e.name).
				Str("host", e.host).
				Str("port", e.port).
				Str("dbName", e.dbName).
				Msg("Connected to database")

			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", e.name).
			Str("host", e.host).
			Str("port", e.port).
			Str("dbName", e.dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil
}

package logger

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"voyage/config"
	"voyage/shared/constant"
)

// InitLogger installs the global zerolog logger. Development gets the console
// writer, every other environment writes JSON lines tagged with the service name.
func InitLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var output io.Writer = os.Stdout
	if cfg.Server.Env == constant.Empty || cfg.Server.Env == constant.ServerEnvDevelopment {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	logCtx := log.Output(output).With()
	if cfg.App.Name != constant.Empty {
		logCtx = logCtx.Str("service", cfg.App.Name)
	}

	log.Logger = logCtx.Logger()
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

func SetLogLevel(config *config.Config) {
	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}

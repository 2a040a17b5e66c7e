package timezone

import (
	"time"
	"voyage/config"
	"voyage/shared/constant"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location
)

func init() {
	cfg := config.Get()

	name := cfg.App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		name = "UTC"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Use IANA names like 'Asia/Jakarta' or 'America/New_York'")

		appLocation = time.UTC

		return
	}

	appLocation = loc

	log.Info().Str("timezone", name).Msg("Application timezone initialized")
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(GetLocation())
}

// ToAppTime converts a time to the application timezone.
func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// GetLocation returns the application timezone, UTC when not initialized.
func GetLocation() *time.Location {
	if appLocation == nil {
		return time.UTC
	}

	return appLocation
}

// Parse parses a time string in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

// Format formats a time in the application timezone.
func Format(t time.Time, layout string) string {
	if t.IsZero() {
		return constant.Empty
	}

	return ToAppTime(t).Format(layout)
}

// ParseDay parses a YYYY-MM-DD calendar day at midnight in the application timezone.
func ParseDay(value string) (time.Time, error) {
	return Parse(constant.DayFormat, value)
}

// Today is midnight of the current calendar day in the application timezone.
func Today() time.Time {
	return StartOfDay(Now())
}

func StartOfDay(t time.Time) time.Time {
	t = ToAppTime(t)

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsPastDay reports whether day lies strictly before today.
func IsPastDay(day time.Time) bool {
	return StartOfDay(day).Before(Today())
}

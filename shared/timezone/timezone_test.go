package timezone_test

import (
	"testing"
	"time"
	"voyage/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowAndLocation(t *testing.T) {
	assert.False(t, timezone.Now().IsZero())
	assert.NotNil(t, timezone.GetLocation())
	assert.Equal(t, timezone.GetLocation(), timezone.ToAppTime(time.Now().UTC()).Location())
}

func TestFormat(t *testing.T) {
	testTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.NotEmpty(t, timezone.Format(testTime, time.RFC3339))
	assert.Empty(t, timezone.Format(time.Time{}, time.RFC3339))
}

func TestParseDay(t *testing.T) {
	day, err := timezone.ParseDay("2024-06-01")
	require.NoError(t, err)

	assert.Equal(t, 2024, day.Year())
	assert.Equal(t, time.June, day.Month())
	assert.Equal(t, 1, day.Day())
	assert.Equal(t, 0, day.Hour())

	_, err = timezone.ParseDay("06/01/2024")
	assert.Error(t, err)
}

func TestIsPastDay(t *testing.T) {
	assert.True(t, timezone.IsPastDay(timezone.Today().AddDate(0, 0, -1)))
	assert.False(t, timezone.IsPastDay(timezone.Today()))
	assert.False(t, timezone.IsPastDay(timezone.Now().Add(time.Minute)))
	assert.False(t, timezone.IsPastDay(timezone.Today().AddDate(0, 0, 1)))
}

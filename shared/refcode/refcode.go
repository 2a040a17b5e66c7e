// Package refcode generates the human-readable reference codes handed to
// customers. Codes are opaque: PREFIX-<base36 millis>-<base36 random>.
package refcode

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	base36 = 36

	PrefixAppointment = "APT"
	PrefixBooking     = "TRV"
	PrefixCorporate   = "CORP"

	appointmentSuffix = 4
	bookingSuffix     = 6
)

// Appointment returns an APT-<ts36>-<rand4> code.
func Appointment(now time.Time) string {
	return New(PrefixAppointment, now, appointmentSuffix)
}

// Booking returns a TRV-<ts36>-<rand6> code.
func Booking(now time.Time) string {
	return New(PrefixBooking, now, bookingSuffix)
}

// Corporate returns a CORP-<ts36>-<rand6> code.
func Corporate(now time.Time) string {
	return New(PrefixCorporate, now, bookingSuffix)
}

func New(prefix string, now time.Time, suffixLen int) string {
	timestamp := strconv.FormatInt(now.UnixMilli(), base36)

	return strings.ToUpper(prefix + "-" + timestamp + "-" + randomSuffix(suffixLen))
}

func randomSuffix(length int) string {
	var builder strings.Builder

	for builder.Len() < length {
		id := uuid.New()
		builder.WriteString(strconv.FormatUint(binary.BigEndian.Uint64(id[8:]), base36))
	}

	suffix := builder.String()

	return suffix[len(suffix)-length:]
}

// Package timezone pins wall-clock handling to APP_TIMEZONE (an IANA name,
// UTC when unset). Slot dates are calendar days in that zone: ParseDay and
// IsPastDay compare dates, never instants.
package timezone

package model

import (
	"slices"
	"time"
	"voyage/shared/validator"
)

const (
	SlotTableName  = "slot_reservations"
	SlotEntityName = "slot_reservation"

	FieldSlotAppointmentID = "appointment_id"
)

// SlotCatalog is the fixed list of daily consultation windows. Clients match
// on these labels byte for byte, en dash included.
var SlotCatalog = []string{
	"09:00 AM–10:00 AM",
	"10:30 AM–11:30 AM",
	"12:00 PM–01:00 PM",
	"02:00 PM–03:00 PM",
	"03:30 PM–04:30 PM",
	"05:00 PM–06:00 PM",
}

func init() {
	validator.RegisterString("slot", IsValidSlot)
}

func IsValidSlot(label string) bool {
	return slices.Contains(SlotCatalog, label)
}

// SlotReservation is the claim row; (slot_date, slot_label) is its primary key.
type SlotReservation struct {
	SlotDate      time.Time `db:"slot_date"`
	SlotLabel     string    `db:"slot_label"`
	AppointmentID string    `db:"appointment_id"`
	ReservedAt    time.Time `db:"reserved_at"`
}

package service_test

import (
	"context"
	"slices"
	"sync"
	"time"
	"voyage/internal/domains/appointment/model"
	"voyage/shared/constant"
	repoMocks "voyage/shared/repository/mocks"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// memoryAppointments adds the appointments_live_slot_key partial unique index
// to the generic in-memory table.
type memoryAppointments struct {
	*repoMocks.Memory[model.Appointment]

	mu sync.Mutex
}

func newMemoryAppointments(rows ...model.Appointment) *memoryAppointments {
	return &memoryAppointments{Memory: repoMocks.NewMemory(rows...)}
}

func (m *memoryAppointments) InsertTx(ctx context.Context, tx *sqlx.Tx, appointment model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(model.LiveStatuses, appointment.Status) {
		key := slotKey(appointment.SlotDate, appointment.SlotLabel)

		for _, row := range m.Rows() {
			if slices.Contains(model.LiveStatuses, row.Status) && slotKey(row.SlotDate, row.SlotLabel) == key {
				return &pq.Error{Code: "23505", Constraint: "appointments_live_slot_key"}
			}
		}
	}

	return m.Memory.InsertTx(ctx, tx, appointment)
}

// memorySlots is a conditional-write claim table keyed like the real one.
type memorySlots struct {
	mu     sync.Mutex
	claims map[string]string
}

func newMemorySlots(claims ...model.SlotReservation) *memorySlots {
	slots := &memorySlots{claims: map[string]string{}}
	for _, claim := range claims {
		slots.claims[slotKey(claim.SlotDate, claim.SlotLabel)] = claim.AppointmentID
	}

	return slots
}

func slotKey(day time.Time, slot string) string {
	return day.Format(constant.DayFormat) + "|" + slot
}

func (m *memorySlots) Claim(_ context.Context, _ *sqlx.Tx, reservation model.SlotReservation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slotKey(reservation.SlotDate, reservation.SlotLabel)
	if _, taken := m.claims[key]; taken {
		return false, nil
	}

	m.claims[key] = reservation.AppointmentID

	return true, nil
}

func (m *memorySlots) Release(_ context.Context, _ *sqlx.Tx, day time.Time, slot, appointmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slotKey(day, slot)
	if m.claims[key] == appointmentID {
		delete(m.claims, key)
	}

	return nil
}

func (m *memorySlots) Claimed(_ context.Context, day time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := day.Format(constant.DayFormat) + "|"

	var labels []string

	for key := range m.claims {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			labels = append(labels, key[len(prefix):])
		}
	}

	return labels, nil
}

package booking

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of an existing reservation.
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusPending   ReservationStatus = "pending"
	StatusCanceled  ReservationStatus = "canceled"
)

// TimeSlot is a half-open interval [Start, End).
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two slots intersect. Intervals are half-open, so
// a slot ending exactly when another starts does not overlap it; both remain
// bookable back to back.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Duration returns the slot length.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Reservation is one existing or candidate booking. The engine never fetches
// reservations itself; callers supply the relevant ones as plain values.
type Reservation struct {
	ID            string
	RoomID        string
	Title         string
	Start         time.Time
	End           time.Time
	AttendeeCount int
	Equipment     []string
	Status        ReservationStatus
}

// Slot returns the reservation's time interval.
func (r Reservation) Slot() TimeSlot {
	return TimeSlot{Start: r.Start, End: r.End}
}

// NewReservationID returns a fresh reservation identifier.
func NewReservationID() string {
	return uuid.NewString()
}

// BookingRules are the per-room policy fields. A zero value disables the
// corresponding rule.
type BookingRules struct {
	MinDuration time.Duration
	MaxDuration time.Duration

	// AllowedStart and AllowedEnd bound the wall-clock window in which a
	// booking may start, as offsets from midnight (e.g. 8h and 18h).
	AllowedStart time.Duration
	AllowedEnd   time.Duration

	// AdvanceMin and AdvanceMax bound how far ahead of "now" a booking may
	// be placed.
	AdvanceMin time.Duration
	AdvanceMax time.Duration
}

// Room is the metadata the room-management layer supplies for one room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Equipment []string
	Rules     *BookingRules
}

// HasEquipment reports whether the room provides the named equipment.
func (r Room) HasEquipment(name string) bool {
	return slices.Contains(r.Equipment, name)
}

// Package conflict classifies whether a candidate reservation is safe to
// book against existing reservations, room constraints and maintenance
// windows. It performs no I/O; all data arrives as caller-owned values.
package conflict

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/mo"

	"github.com/reservd/libbooking/booking"
)

const timeLayout = "2006-01-02 15:04"

// detectEnv carries one candidate through the check table.
type detectEnv struct {
	candidate   booking.Reservation
	existing    []booking.Reservation
	room        *booking.Room
	maintenance []booking.TimeSlot
	now         time.Time
}

type check func(*detectEnv) []Conflict

// checks run in priority order; a candidate may trigger several of them.
var checks = []check{
	checkTimeOverlap,
	checkMaintenance,
	checkCapacity,
	checkEquipment,
	checkPolicy,
}

// Detector classifies candidate reservations.
type Detector struct {
	log     *slog.Logger
	suggest SuggestionStrategy
	now     func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLogger sets the detector's logger.
func WithLogger(log *slog.Logger) DetectorOption {
	return func(d *Detector) { d.log = log }
}

// WithSuggestionStrategy replaces the alternative-slot strategy. Use
// NoSuggestions to disable suggestion generation entirely.
func WithSuggestionStrategy(s SuggestionStrategy) DetectorOption {
	return func(d *Detector) { d.suggest = s }
}

// WithClock overrides the time source used by advance-booking policy checks.
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a conflict detector with the default grid suggestion
// strategy.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		log:     slog.Default(),
		suggest: GridStrategy{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies whether candidate is safe to book. The caller supplies
// the existing reservations, room metadata and maintenance windows relevant
// to the candidate; the detector fetches nothing itself. A nil room is a
// not-found error, a malformed candidate an invalid-input error, and neither
// produces a partial result.
func (d *Detector) Detect(candidate booking.Reservation, existing []booking.Reservation, room *booking.Room, maintenance []booking.TimeSlot) (Result, error) {
	if room == nil {
		return Result{}, booking.NewNotFoundError("room info is required")
	}
	if !candidate.End.After(candidate.Start) {
		return Result{}, booking.NewValidationError("endTime", "must be after start time")
	}

	env := &detectEnv{
		candidate:   candidate,
		existing:    existing,
		room:        room,
		maintenance: maintenance,
		now:         d.now(),
	}

	var res Result
	for _, c := range checks {
		res.Conflicts = append(res.Conflicts, c(env)...)
	}
	res.HasConflict = len(res.Conflicts) > 0

	if hasTimeConflict(res.Conflicts) && d.suggest != nil {
		// Other rooms' bookings must not suppress alternative slots.
		res.Suggestions = d.suggest.Propose(candidate.Slot(), sameRoom(candidate.RoomID, existing), maintenance)
	}

	d.log.Debug("conflict check",
		"room", room.ID,
		"start", candidate.Start,
		"conflicts", len(res.Conflicts))
	return res, nil
}

func sameRoom(roomID string, existing []booking.Reservation) []booking.Reservation {
	out := make([]booking.Reservation, 0, len(existing))
	for _, r := range existing {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out
}

func hasTimeConflict(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Type == TypeTime {
			return true
		}
	}
	return false
}

func checkTimeOverlap(env *detectEnv) []Conflict {
	var out []Conflict
	slot := env.candidate.Slot()
	for _, existing := range env.existing {
		if existing.Status == booking.StatusCanceled {
			continue
		}
		if existing.RoomID != env.candidate.RoomID {
			continue
		}
		if !slot.Overlaps(existing.Slot()) {
			continue
		}
		out = append(out, Conflict{
			Type:     TypeTime,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("time overlaps existing reservation %q (%s - %s)",
				existing.Title,
				existing.Start.Format(timeLayout),
				existing.End.Format(timeLayout)),
			ReservationID: mo.Some(existing.ID),
		})
	}
	return out
}

func checkMaintenance(env *detectEnv) []Conflict {
	var out []Conflict
	slot := env.candidate.Slot()
	for _, window := range env.maintenance {
		if !slot.Overlaps(window) {
			continue
		}
		out = append(out, Conflict{
			Type:     TypeTime,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("time overlaps a maintenance window (%s - %s)",
				window.Start.Format(timeLayout),
				window.End.Format(timeLayout)),
		})
	}
	return out
}

func checkCapacity(env *detectEnv) []Conflict {
	if env.candidate.AttendeeCount <= 0 || env.room.Capacity <= 0 {
		return nil
	}
	if env.candidate.AttendeeCount <= env.room.Capacity {
		return nil
	}
	return []Conflict{{
		Type:     TypeResource,
		Severity: SeverityMedium,
		Description: fmt.Sprintf("attendee count (%d) exceeds room capacity (%d)",
			env.candidate.AttendeeCount, env.room.Capacity),
		Suggestion: mo.Some("reduce attendees or choose a larger room"),
	}}
}

func checkEquipment(env *detectEnv) []Conflict {
	var out []Conflict
	for _, item := range env.candidate.Equipment {
		if env.room.HasEquipment(item) {
			continue
		}
		out = append(out, Conflict{
			Type:        TypeResource,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("room lacks requested equipment: %s", item),
		})
	}
	return out
}

func checkPolicy(env *detectEnv) []Conflict {
	rules := env.room.Rules
	if rules == nil {
		return nil
	}

	var out []Conflict
	duration := env.candidate.Slot().Duration()

	if rules.MinDuration > 0 && duration < rules.MinDuration {
		out = append(out, Conflict{
			Type:     TypePolicy,
			Severity: SeverityMedium,
			Description: fmt.Sprintf("booking duration (%s) is below the room minimum (%s)",
				duration, rules.MinDuration),
		})
	}
	if rules.MaxDuration > 0 && duration > rules.MaxDuration {
		out = append(out, Conflict{
			Type:     TypePolicy,
			Severity: SeverityMedium,
			Description: fmt.Sprintf("booking duration (%s) exceeds the room maximum (%s)",
				duration, rules.MaxDuration),
		})
	}

	if rules.AllowedEnd > rules.AllowedStart {
		start := env.candidate.Start
		sinceMidnight := time.Duration(start.Hour())*time.Hour +
			time.Duration(start.Minute())*time.Minute
		if sinceMidnight < rules.AllowedStart || sinceMidnight >= rules.AllowedEnd {
			out = append(out, Conflict{
				Type:     TypePolicy,
				Severity: SeverityMedium,
				Description: fmt.Sprintf("start time %s is outside the allowed booking window",
					start.Format("15:04")),
			})
		}
	}

	advance := env.candidate.Start.Sub(env.now)
	if rules.AdvanceMin > 0 && advance < rules.AdvanceMin {
		out = append(out, Conflict{
			Type:     TypePolicy,
			Severity: SeverityMedium,
			Description: fmt.Sprintf("must be booked at least %s in advance", rules.AdvanceMin),
		})
	}
	if rules.AdvanceMax > 0 && advance > rules.AdvanceMax {
		out = append(out, Conflict{
			Type:     TypePolicy,
			Severity: SeverityLow,
			Description: fmt.Sprintf("cannot be booked more than %s ahead", rules.AdvanceMax),
		})
	}
	return out
}

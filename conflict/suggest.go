package conflict

import (
	"sort"
	"time"

	"github.com/reservd/libbooking/booking"
)

// SuggestionStrategy proposes alternative slots for a conflicted candidate.
// Strategies are heuristic and best-effort, never exhaustive; returning no
// suggestions is always valid.
type SuggestionStrategy interface {
	Propose(candidate booking.TimeSlot, existing []booking.Reservation, maintenance []booking.TimeSlot) []booking.TimeSlot
}

// GridStrategy scans a same-day grid of candidate start times, keeps the
// slots free of reservations and maintenance, and orders them by distance
// from the original start. Zero fields fall back to defaults.
type GridStrategy struct {
	DayStart       time.Duration // offset from midnight, default 8h
	DayEnd         time.Duration // offset from midnight, default 18h
	Step           time.Duration // default 30m
	MaxSuggestions int           // default 5
}

func (g GridStrategy) withDefaults() GridStrategy {
	if g.DayStart == 0 && g.DayEnd == 0 {
		g.DayStart = 8 * time.Hour
		g.DayEnd = 18 * time.Hour
	}
	if g.Step <= 0 {
		g.Step = 30 * time.Minute
	}
	if g.MaxSuggestions <= 0 {
		g.MaxSuggestions = 5
	}
	return g
}

// Propose implements SuggestionStrategy.
func (g GridStrategy) Propose(candidate booking.TimeSlot, existing []booking.Reservation, maintenance []booking.TimeSlot) []booking.TimeSlot {
	g = g.withDefaults()

	duration := candidate.Duration()
	if duration <= 0 {
		return nil
	}

	start := candidate.Start
	midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := midnight.Add(g.DayEnd)

	var free []booking.TimeSlot
	for t := midnight.Add(g.DayStart); !t.Add(duration).After(dayEnd); t = t.Add(g.Step) {
		slot := booking.TimeSlot{Start: t, End: t.Add(duration)}
		if slotBlocked(slot, existing, maintenance) {
			continue
		}
		free = append(free, slot)
	}

	sort.SliceStable(free, func(i, j int) bool {
		return distance(free[i].Start, start) < distance(free[j].Start, start)
	})
	if len(free) > g.MaxSuggestions {
		free = free[:g.MaxSuggestions]
	}
	return free
}

// NoSuggestions disables suggestion generation.
type NoSuggestions struct{}

// Propose implements SuggestionStrategy.
func (NoSuggestions) Propose(booking.TimeSlot, []booking.Reservation, []booking.TimeSlot) []booking.TimeSlot {
	return nil
}

// AvailableSlots returns the step-length grid slots on the day containing
// date that are free of the given reservations and maintenance windows, in
// chronological order.
func AvailableSlots(date time.Time, existing []booking.Reservation, maintenance []booking.TimeSlot, grid GridStrategy) []booking.TimeSlot {
	grid = grid.withDefaults()

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := midnight.Add(grid.DayEnd)

	var out []booking.TimeSlot
	for t := midnight.Add(grid.DayStart); !t.Add(grid.Step).After(dayEnd); t = t.Add(grid.Step) {
		slot := booking.TimeSlot{Start: t, End: t.Add(grid.Step)}
		if slotBlocked(slot, existing, maintenance) {
			continue
		}
		out = append(out, slot)
	}
	return out
}

func slotBlocked(slot booking.TimeSlot, existing []booking.Reservation, maintenance []booking.TimeSlot) bool {
	for _, r := range existing {
		if r.Status == booking.StatusCanceled {
			continue
		}
		if slot.Overlaps(r.Slot()) {
			return true
		}
	}
	for _, m := range maintenance {
		if slot.Overlaps(m) {
			return true
		}
	}
	return false
}

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

package series

import (
	"fmt"
	"time"

	"github.com/reservd/libbooking/booking"
	"github.com/reservd/libbooking/conflict"
	"github.com/reservd/libbooking/recurrence"
)

// ResolutionKind names a series-level remediation strategy.
type ResolutionKind string

const (
	// ResolutionSkip drops only the conflicting occurrences and keeps the
	// rest of the series.
	ResolutionSkip ResolutionKind = "skip-conflicting"
	// ResolutionShift moves the whole series by a fixed offset.
	ResolutionShift ResolutionKind = "shift-series"
	// ResolutionTrim reduces the series to its conflict-free prefix.
	ResolutionTrim ResolutionKind = "trim-series"
)

// Resolution is one proposed series-level remediation.
type Resolution struct {
	Kind        ResolutionKind
	Description string

	// SkipIndexes lists the occurrence indexes to drop (ResolutionSkip).
	SkipIndexes []int

	// ShiftBy is the offset clearing all time conflicts (ResolutionShift).
	ShiftBy time.Duration

	// KeepFirst keeps occurrences [0, KeepFirst) (ResolutionTrim).
	KeepFirst int
}

// Bounds of the shift scan: offsets are tried in shiftStep increments up to
// maxShift, smallest first.
const (
	shiftStep = 30 * time.Minute
	maxShift  = 6 * time.Hour
)

func (o *Orchestrator) buildResolutions(report *Report, occurrences []recurrence.Occurrence, candidate booking.Reservation, existing []booking.Reservation, room *booking.Room, maintenance []booking.TimeSlot) []Resolution {
	var out []Resolution

	var conflicting []int
	for i, conflicts := range report.PerOccurrence {
		if len(conflicts) > 0 {
			conflicting = append(conflicting, i)
		}
	}
	if len(conflicting) == 0 {
		return nil
	}

	out = append(out, Resolution{
		Kind: ResolutionSkip,
		Description: fmt.Sprintf("skip %d conflicting occurrence(s) and keep the remaining %d",
			len(conflicting), report.TotalInstances-len(conflicting)),
		SkipIndexes: conflicting,
	})

	if offset, ok := o.findClearingShift(report, occurrences, candidate, existing, maintenance); ok {
		out = append(out, Resolution{
			Kind:        ResolutionShift,
			Description: fmt.Sprintf("shift the entire series by %s", offset),
			ShiftBy:     offset,
		})
	}

	// The prefix ends at the first conflicting or unverifiable occurrence.
	keep := conflicting[0]
	for i := 0; i < keep; i++ {
		if _, failed := report.CheckErrors[i]; failed {
			keep = i
			break
		}
	}
	if keep > 0 {
		out = append(out, Resolution{
			Kind: ResolutionTrim,
			Description: fmt.Sprintf("keep only the first %d occurrence(s), ending before the first conflict",
				keep),
			KeepFirst: keep,
		})
	}

	return out
}

// findClearingShift searches for the smallest offset that clears every time
// conflict. Shifting cannot clear resource or policy conflicts, so no shift
// is proposed when any exist, nor when an occurrence could not be checked.
func (o *Orchestrator) findClearingShift(report *Report, occurrences []recurrence.Occurrence, candidate booking.Reservation, existing []booking.Reservation, maintenance []booking.TimeSlot) (time.Duration, bool) {
	if len(report.CheckErrors) > 0 {
		return 0, false
	}
	for _, conflicts := range report.PerOccurrence {
		for _, c := range conflicts {
			if c.Type != conflict.TypeTime {
				return 0, false
			}
		}
	}

	for offset := shiftStep; offset <= maxShift; offset += shiftStep {
		if o.shiftClears(offset, occurrences, candidate, existing, maintenance) {
			return offset, true
		}
	}
	return 0, false
}

func (o *Orchestrator) shiftClears(offset time.Duration, occurrences []recurrence.Occurrence, candidate booking.Reservation, existing []booking.Reservation, maintenance []booking.TimeSlot) bool {
	for _, occ := range occurrences {
		if occ.IsException && !occ.Moved {
			continue
		}
		slot := booking.TimeSlot{
			Start: occ.StartTime.Add(offset),
			End:   occ.EndTime.Add(offset),
		}
		for _, r := range existing {
			if r.Status == booking.StatusCanceled || r.RoomID != candidate.RoomID {
				continue
			}
			if slot.Overlaps(r.Slot()) {
				return false
			}
		}
		for _, m := range maintenance {
			if slot.Overlaps(m) {
				return false
			}
		}
	}
	return true
}

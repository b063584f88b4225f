package recurrence

import (
	"time"

	"github.com/reservd/libbooking/booking"
)

// Validate rejects structurally invalid patterns before generation begins.
// anchorStart is the series anchor the end date must lie beyond. Pure.
func (p Pattern) Validate(anchorStart time.Time) error {
	if p.Interval < 1 {
		return booking.NewValidationError("interval", "must be at least 1")
	}

	switch p.Frequency {
	case Daily, Yearly:
	case Weekly:
		if p.Weekly == nil || len(p.Weekly.Weekdays) == 0 {
			return booking.NewValidationError("weekDays", "weekly patterns need at least one weekday")
		}
	case Monthly:
		if p.Monthly == nil {
			return booking.NewValidationError("monthlyPattern", "monthly patterns need a monthly rule")
		}
		switch p.Monthly.Form {
		case MonthlyByDate:
			if p.Monthly.Date < 1 || p.Monthly.Date > 31 {
				return booking.NewValidationError("monthlyDate", "day of month must be within 1..31")
			}
		case MonthlyByWeekday:
			if p.Monthly.Week != -1 && (p.Monthly.Week < 1 || p.Monthly.Week > 4) {
				return booking.NewValidationError("monthlyWeek", "ordinal must be 1..4, or -1 for last")
			}
		default:
			return booking.NewValidationError("monthlyPattern", "unknown monthly form")
		}
	default:
		return booking.NewValidationError("type", "unknown frequency")
	}

	switch p.End.Mode {
	case EndNever:
	case EndCount:
		if p.End.Count < 1 {
			return booking.NewValidationError("endCount", "must be at least 1")
		}
	case EndDate:
		if p.End.Date == nil {
			return booking.NewValidationError("endDate", "required when the series ends by date")
		}
		if !p.End.Date.After(anchorStart) {
			return booking.NewValidationError("endDate", "must be after the series start")
		}
	default:
		return booking.NewValidationError("endCondition", "unknown end condition")
	}

	if p.BufferMinutes < 0 {
		return booking.NewValidationError("bufferMinutes", "must not be negative")
	}
	if p.MaxBookingAheadDays < 0 {
		return booking.NewValidationError("maxBookingAhead", "must not be negative")
	}
	return nil
}

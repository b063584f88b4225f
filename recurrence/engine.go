// Package recurrence expands validated repeat rules into bounded, ordered
// sequences of concrete occurrences. Date-series arithmetic is delegated to
// rrule-go; exception handling, holiday and weekend skipping, buffer time and
// end-condition accounting are applied on top.
package recurrence

import (
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/reservd/libbooking/booking"
	"github.com/reservd/libbooking/holiday"
)

// Engine expands recurrence patterns into concrete occurrences. It performs
// no I/O: the holiday calendar is injected and every call is pure over its
// inputs, so identical inputs always yield identical output.
type Engine struct {
	holidays holiday.Provider
	log      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an occurrence engine. A nil provider behaves as a
// calendar with no holidays.
func NewEngine(holidays holiday.Provider, opts ...EngineOption) *Engine {
	e := &Engine{holidays: holidays, log: slog.Default()}
	if e.holidays == nil {
		e.holidays = holiday.None
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate expands p into at most opts.MaxOccurrences concrete occurrences,
// anchored at the [anchorStart, anchorEnd) meeting window whose duration is
// held constant across the series. Occurrences carry 0-based indexes in
// strictly increasing date order.
//
// Skipped holidays, skipped weekends and exception instances never consume
// an EndCount budget. An inverted anchor window yields an empty result with
// no error, since callers probe ranges defensively.
func (e *Engine) Generate(p Pattern, anchorStart, anchorEnd time.Time, opts Options) (Result, error) {
	if err := p.Validate(anchorStart); err != nil {
		return Result{}, err
	}
	if !anchorEnd.After(anchorStart) {
		e.log.Debug("generate: inverted anchor window",
			"start", anchorStart, "end", anchorEnd)
		return Result{}, nil
	}

	p = p.Normalize()

	max := opts.MaxOccurrences
	if max <= 0 {
		max = DefaultMaxOccurrences
	}
	if max > HardOccurrenceCap {
		max = HardOccurrenceCap
	}

	opt, err := roption(p, anchorStart)
	if err != nil {
		return Result{}, err
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return Result{}, &booking.Error{
			Type:    booking.ErrInvalidInput,
			Field:   "pattern",
			Message: "cannot build recurrence rule",
			Err:     err,
		}
	}

	duration := anchorEnd.Sub(anchorStart)
	exceptions := make(map[string]Exception, len(p.Exceptions))
	for _, ex := range p.Exceptions {
		exceptions[ex.Date.Format(dateLayout)] = ex
	}

	var horizon time.Time
	if p.MaxBookingAheadDays > 0 {
		horizon = anchorStart.AddDate(0, 0, p.MaxBookingAheadDays)
	}

	var res Result
	counted := 0 // non-exception emissions, the EndCount budget
	next := rule.Iterator()

	for scanned := 0; ; scanned++ {
		// The hard cap bounds rule candidates scanned, not just emissions;
		// a pattern whose dates are all holidays must still terminate.
		if scanned >= HardOccurrenceCap {
			res.Truncated = true
			e.log.Warn("generate: hit hard occurrence cap", "cap", HardOccurrenceCap)
			break
		}

		start, ok := next()
		if !ok {
			break
		}
		if p.End.Mode == EndDate && dateOf(start).After(dateOf(*p.End.Date)) {
			break
		}
		if opts.RangeEnd != nil && start.After(*opts.RangeEnd) {
			break
		}
		if !horizon.IsZero() && start.After(horizon) {
			break
		}

		occ := Occurrence{
			OriginalDate: dateOf(start),
			ActualDate:   dateOf(start),
			StartTime:    start,
			EndTime:      start.Add(duration),
		}

		if ex, isException := exceptions[start.Format(dateLayout)]; isException {
			if !opts.IncludeExceptions {
				continue
			}
			occ.IsException = true
			occ.ExceptionReason = ex.Reason
			if ex.NewStart != nil {
				occ.Moved = true
				occ.StartTime = *ex.NewStart
				occ.ActualDate = dateOf(*ex.NewStart)
				if ex.NewEnd != nil {
					occ.EndTime = *ex.NewEnd
				} else {
					occ.EndTime = ex.NewStart.Add(duration)
				}
			}
		} else {
			if p.SkipWeekends && holiday.IsWeekend(start) {
				res.SkippedWeekends++
				continue
			}
			if p.SkipHolidays && e.holidays.IsHoliday(start, p.HolidayRegion) {
				// No meeting that day, not "moved": the date is dropped
				// and the count budget is untouched.
				res.SkippedHolidays++
				continue
			}
		}

		if p.BufferMinutes > 0 {
			occ.StartTime = occ.StartTime.Add(-time.Duration(p.BufferMinutes) * time.Minute)
		}

		occ.Index = len(res.Occurrences)
		res.Occurrences = append(res.Occurrences, occ)
		if !occ.IsException {
			counted++
		}

		if p.End.Mode == EndCount && counted >= p.End.Count {
			break
		}
		if len(res.Occurrences) >= max {
			if !endSatisfied(p, counted) {
				res.Truncated = true
			}
			break
		}
	}

	e.log.Debug("generate: expanded pattern",
		"frequency", p.Frequency,
		"occurrences", len(res.Occurrences),
		"truncated", res.Truncated)
	return res, nil
}

// endSatisfied reports whether the pattern's own end condition had been met
// when generation stopped. Never-ending and date-bounded patterns that stop
// at a cap are by definition unsatisfied.
func endSatisfied(p Pattern, counted int) bool {
	return p.End.Mode == EndCount && counted >= p.End.Count
}

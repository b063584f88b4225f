package recurrence

import (
	"sort"
	"time"
)

// Frequency selects the repeat unit of a pattern.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// EndMode selects how a series terminates.
type EndMode string

const (
	EndNever EndMode = "never"
	EndCount EndMode = "count"
	EndDate  EndMode = "date"
)

// MonthlyForm selects which monthly rule variant is active.
type MonthlyForm string

const (
	MonthlyByDate    MonthlyForm = "byDate"
	MonthlyByWeekday MonthlyForm = "byWeekday"
)

// WeeklyRule carries the weekly-only fields: which weekdays fire within each
// week block.
type WeeklyRule struct {
	Weekdays []time.Weekday
}

// MonthlyRule carries the monthly-only fields. With MonthlyByDate, Date picks
// a fixed day of month; months lacking that day are skipped entirely, never
// clamped. With MonthlyByWeekday, Week picks the Nth Weekday of the month,
// -1 meaning the last.
type MonthlyRule struct {
	Form    MonthlyForm
	Date    int
	Week    int
	Weekday time.Weekday
}

// EndCondition terminates a series. Count is read only when Mode is EndCount,
// Date only when Mode is EndDate.
type EndCondition struct {
	Mode  EndMode
	Count int
	Date  *time.Time
}

// Exception marks one rule-matching date as skipped or re-timed. A nil
// NewStart cancels that instance; a set NewStart moves it (NewEnd defaults to
// NewStart plus the series duration).
type Exception struct {
	Date     time.Time
	Reason   string
	NewStart *time.Time
	NewEnd   *time.Time
}

// Pattern is an immutable description of a repeat rule. Variant payloads are
// nil unless their frequency selects them, so mismatched combinations are
// visible before validation even runs.
type Pattern struct {
	Frequency Frequency
	Interval  int

	Weekly  *WeeklyRule
	Monthly *MonthlyRule

	End        EndCondition
	Exceptions []Exception

	SkipHolidays  bool
	HolidayRegion string
	SkipWeekends  bool

	// BufferMinutes is subtracted from each occurrence's start for
	// conflict-checking against adjacent bookings. The meeting itself is
	// not shifted.
	BufferMinutes int

	// MaxBookingAheadDays caps the generation horizon in days from the
	// series anchor. Zero means no horizon.
	MaxBookingAheadDays int
}

// Normalize returns a copy with exceptions sorted by date and deduplicated
// (first record per date wins). The receiver is not modified.
func (p Pattern) Normalize() Pattern {
	if len(p.Exceptions) == 0 {
		return p
	}

	sorted := make([]Exception, len(p.Exceptions))
	copy(sorted, p.Exceptions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	deduped := sorted[:0]
	seen := make(map[string]struct{}, len(sorted))
	for _, ex := range sorted {
		key := ex.Date.Format(dateLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, ex)
	}
	p.Exceptions = deduped
	return p
}

// Occurrence is one concrete instance expanded from a pattern.
type Occurrence struct {
	// OriginalDate is the date the rule naturally produced; ActualDate is
	// the date after exception re-timing. They differ only for moved
	// instances.
	OriginalDate time.Time
	ActualDate   time.Time

	// StartTime already includes the pattern's buffer.
	StartTime time.Time
	EndTime   time.Time

	// Index is the 0-based emission order within the series.
	Index int

	IsException     bool
	ExceptionReason string

	// Moved is set when an exception re-timed this instance rather than
	// cancelling it.
	Moved bool
}

// Options controls a single Generate call.
type Options struct {
	// MaxOccurrences caps the emitted sequence. Zero means
	// DefaultMaxOccurrences; values above HardOccurrenceCap are lowered to
	// it.
	MaxOccurrences int

	// IncludeExceptions emits exception instances (flagged, with reason)
	// instead of omitting them.
	IncludeExceptions bool

	// RangeEnd optionally bounds generation to candidate dates at or
	// before it.
	RangeEnd *time.Time
}

// Result is the outcome of one expansion.
type Result struct {
	Occurrences []Occurrence

	// Truncated is set when generation stopped at a cap before the
	// pattern's own end condition was satisfied.
	Truncated bool

	// SkippedHolidays and SkippedWeekends count rule-matching dates that
	// were dropped without consuming the occurrence budget.
	SkippedHolidays int
	SkippedWeekends int
}

// Expansion bounds. The hard cap is an absolute ceiling beneath any
// caller-supplied maximum; a misconfigured caller cannot induce unbounded
// work even for never-ending patterns.
const (
	DefaultMaxOccurrences = 50
	HardOccurrenceCap     = 1000
)

const dateLayout = "2006-01-02"

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

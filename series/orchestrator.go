// Package series drives per-occurrence conflict detection across a whole
// recurring reservation and aggregates the outcome into a single report with
// optional series-level resolutions.
package series

import (
	"log/slog"
	"time"

	"github.com/reservd/libbooking/booking"
	"github.com/reservd/libbooking/conflict"
	"github.com/reservd/libbooking/recurrence"
)

// Report aggregates conflict detection across a recurring series.
type Report struct {
	HasConflict bool

	// PerOccurrence holds each occurrence's conflicts, indexed by the
	// occurrence index.
	PerOccurrence [][]conflict.Conflict

	// CheckErrors records per-occurrence detection failures; one failing
	// occurrence never aborts the rest.
	CheckErrors map[int]error

	TotalInstances       int
	ConflictingInstances int

	// Truncated is carried through from generation: the series hit an
	// occurrence cap before its own end condition.
	Truncated bool

	Resolutions []Resolution
}

// Options controls one DetectRecurringConflicts call.
type Options struct {
	// MaxInstances caps how many occurrences are evaluated, independent of
	// the pattern's own end count, so detection stays bounded even for
	// never-ending series. Zero means DefaultMaxInstances.
	MaxInstances int

	// IncludeExceptions evaluates moved exception instances at their new
	// times. Cancelled instances are never evaluated.
	IncludeExceptions bool

	// WithResolutions adds series-level remediation proposals when
	// conflicts exist.
	WithResolutions bool

	// RangeEnd optionally bounds generation.
	RangeEnd *time.Time
}

// DefaultMaxInstances bounds recurring conflict detection.
const DefaultMaxInstances = 50

// Orchestrator runs the conflict detector over every occurrence of a series.
type Orchestrator struct {
	engine   *recurrence.Engine
	detector *conflict.Detector
	cache    *ReportCache
	log      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithCache attaches an opt-in report cache. Without one, every call is
// computed from scratch; the core itself never caches.
func WithCache(cache *ReportCache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

// New creates an orchestrator over the given engine and detector.
func New(engine *recurrence.Engine, detector *conflict.Detector, opts ...Option) *Orchestrator {
	o := &Orchestrator{engine: engine, detector: detector, log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DetectRecurringConflicts expands the pattern anchored at the candidate's
// own time window and checks every occurrence against the supplied
// reservations, room and maintenance windows. The candidate carries the
// series metadata (room, attendees, equipment); its start and end define the
// anchor window.
func (o *Orchestrator) DetectRecurringConflicts(p recurrence.Pattern, candidate booking.Reservation, existing []booking.Reservation, room *booking.Room, maintenance []booking.TimeSlot, opts Options) (Report, error) {
	if room == nil {
		return Report{}, booking.NewNotFoundError("room info is required")
	}

	maxInstances := opts.MaxInstances
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}

	var key string
	if o.cache != nil {
		key = fingerprint(p, candidate, existing, room, maintenance, opts)
		if report, ok := o.cache.get(key); ok {
			o.log.Debug("recurring conflict check served from cache", "room", room.ID)
			return report, nil
		}
	}

	gen, err := o.engine.Generate(p, candidate.Start, candidate.End, recurrence.Options{
		MaxOccurrences:    maxInstances,
		IncludeExceptions: opts.IncludeExceptions,
		RangeEnd:          opts.RangeEnd,
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{
		PerOccurrence:  make([][]conflict.Conflict, len(gen.Occurrences)),
		TotalInstances: len(gen.Occurrences),
		Truncated:      gen.Truncated,
	}

	for i, occ := range gen.Occurrences {
		if occ.IsException && !occ.Moved {
			// Cancelled instances are never booked, so never conflict.
			continue
		}

		instance := candidate
		instance.Start = occ.StartTime
		instance.End = occ.EndTime

		res, err := o.detector.Detect(instance, existing, room, maintenance)
		if err != nil {
			if report.CheckErrors == nil {
				report.CheckErrors = make(map[int]error)
			}
			report.CheckErrors[i] = err
			continue
		}
		if !res.HasConflict {
			continue
		}
		report.PerOccurrence[i] = res.Conflicts
		report.ConflictingInstances++
		report.HasConflict = true
	}

	if opts.WithResolutions && report.HasConflict {
		report.Resolutions = o.buildResolutions(&report, gen.Occurrences, candidate, existing, room, maintenance)
	}

	o.log.Debug("recurring conflict check",
		"room", room.ID,
		"instances", report.TotalInstances,
		"conflicting", report.ConflictingInstances,
		"truncated", report.Truncated)

	if o.cache != nil {
		o.cache.set(key, report)
	}
	return report, nil
}

// Stats summarizes a generated series.
type Stats struct {
	TotalInstances     int
	ExceptionInstances int
	SkippedHolidays    int
	SkippedWeekends    int
	Truncated          bool

	// NextOccurrence is the start of the first non-cancelled instance
	// after now, when one exists.
	NextOccurrence *time.Time
}

// Statistics expands the pattern and reports instance totals and the next
// upcoming occurrence relative to now.
func (o *Orchestrator) Statistics(p recurrence.Pattern, anchorStart, anchorEnd, now time.Time, opts Options) (Stats, error) {
	maxInstances := opts.MaxInstances
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}

	gen, err := o.engine.Generate(p, anchorStart, anchorEnd, recurrence.Options{
		MaxOccurrences:    maxInstances,
		IncludeExceptions: true,
		RangeEnd:          opts.RangeEnd,
	})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalInstances:  len(gen.Occurrences),
		SkippedHolidays: gen.SkippedHolidays,
		SkippedWeekends: gen.SkippedWeekends,
		Truncated:       gen.Truncated,
	}
	for _, occ := range gen.Occurrences {
		if occ.IsException {
			stats.ExceptionInstances++
			if !occ.Moved {
				continue
			}
		}
		if stats.NextOccurrence == nil && occ.StartTime.After(now) {
			start := occ.StartTime
			stats.NextOccurrence = &start
		}
	}
	return stats, nil
}

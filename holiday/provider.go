// Package holiday models the external holiday calendar as an injected
// lookup, so the recurrence engine stays pure and testable against fake
// calendars.
package holiday

import (
	"sort"
	"time"
)

// DefaultRegion is used when a pattern carries no region of its own.
const DefaultRegion = "CN"

const dateLayout = "2006-01-02"

// Provider answers whether a date is a holiday in a region. Only the date
// component of the time matters. Implementations must be safe for concurrent
// use.
type Provider interface {
	IsHoliday(date time.Time, region string) bool
}

// None is a Provider with no holidays at all.
var None Provider = noneProvider{}

type noneProvider struct{}

func (noneProvider) IsHoliday(time.Time, string) bool { return false }

// TableProvider is an in-memory Provider backed by per-region date sets.
type TableProvider struct {
	regions map[string]map[string]struct{}
}

// NewTableProvider returns an empty holiday table.
func NewTableProvider() *TableProvider {
	return &TableProvider{regions: make(map[string]map[string]struct{})}
}

// Add registers holiday dates for a region.
func (p *TableProvider) Add(region string, dates ...time.Time) {
	if region == "" {
		region = DefaultRegion
	}
	set, ok := p.regions[region]
	if !ok {
		set = make(map[string]struct{})
		p.regions[region] = set
	}
	for _, d := range dates {
		set[d.Format(dateLayout)] = struct{}{}
	}
}

// IsHoliday reports whether date is a holiday in region. An empty region
// falls back to DefaultRegion.
func (p *TableProvider) IsHoliday(date time.Time, region string) bool {
	if region == "" {
		region = DefaultRegion
	}
	set, ok := p.regions[region]
	if !ok {
		return false
	}
	_, ok = set[date.Format(dateLayout)]
	return ok
}

// Regions lists the regions with at least one registered holiday, sorted.
func (p *TableProvider) Regions() []string {
	out := make([]string, 0, len(p.regions))
	for region := range p.regions {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

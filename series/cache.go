package series

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/reservd/libbooking/booking"
	"github.com/reservd/libbooking/recurrence"
)

// cacheEntry is one cached conflict report.
type cacheEntry struct {
	report     Report
	expiresAt  time.Time
	accessedAt time.Time
}

// ReportCache is an opt-in TTL cache for recurring conflict reports, keyed
// by a fingerprint of every input. The engine itself stays pure; attach a
// cache only when the caller's data set is stable between calls.
type ReportCache struct {
	entries         map[string]*cacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// CacheConfig holds configuration for the report cache.
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before cleanup
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for report caching.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewReportCache creates a report cache and starts its cleanup goroutine.
// Call Close when the cache is no longer needed.
func NewReportCache(config CacheConfig) *ReportCache {
	cache := &ReportCache{
		entries:         make(map[string]*cacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	go cache.cleanupLoop()
	return cache
}

func (c *ReportCache) get(key string) (Report, bool) {
	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return Report{}, false
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return Report{}, false
	}

	c.mutex.Lock()
	entry.accessedAt = now
	c.mutex.Unlock()

	return entry.report, true
}

func (c *ReportCache) set(key string, report Report) {
	now := time.Now()
	entry := &cacheEntry{
		report:     report,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry
	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently accessed ones if
// still over the limit. Callers must hold the write lock.
func (c *ReportCache) cleanup() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	type keyAccess struct {
		key        string
		accessedAt time.Time
	}
	keys := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		keys = append(keys, keyAccess{key: key, accessedAt: entry.accessedAt})
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].accessedAt.Before(keys[j].accessedAt)
	})

	toRemove := len(c.entries) - c.maxEntries
	for i := 0; i < toRemove; i++ {
		delete(c.entries, keys[i].key)
	}
}

func (c *ReportCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache.
func (c *ReportCache) Close() {
	close(c.stopCleanup)
	c.mutex.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mutex.Unlock()
}

// CacheStats provides information about cache contents.
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

// Stats returns cache statistics.
func (c *ReportCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := len(c.entries)
	expired := 0
	now := time.Now()
	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			expired++
		}
	}
	return CacheStats{
		TotalEntries:   total,
		ExpiredEntries: expired,
		ActiveEntries:  total - expired,
	}
}

// fingerprint hashes every input that can influence a report, so two calls
// share a cache entry only when byte-identical output is guaranteed.
func fingerprint(p recurrence.Pattern, candidate booking.Reservation, existing []booking.Reservation, room *booking.Room, maintenance []booking.TimeSlot, opts Options) string {
	hasher := sha256.New()
	write := func(format string, args ...any) {
		fmt.Fprintf(hasher, format, args...)
	}

	write("pattern|%s|%d|%s|%d|%v|%s|%v|%d|%d|",
		p.Frequency, p.Interval, p.End.Mode, p.End.Count,
		p.SkipHolidays, p.HolidayRegion, p.SkipWeekends,
		p.BufferMinutes, p.MaxBookingAheadDays)
	if p.End.Date != nil {
		write("%s|", p.End.Date.Format(time.RFC3339Nano))
	}
	if p.Weekly != nil {
		write("weekly|%v|", p.Weekly.Weekdays)
	}
	if p.Monthly != nil {
		write("monthly|%s|%d|%d|%d|", p.Monthly.Form, p.Monthly.Date, p.Monthly.Week, int(p.Monthly.Weekday))
	}
	for _, ex := range p.Exceptions {
		write("ex|%s|%s|", ex.Date.Format(time.RFC3339Nano), ex.Reason)
		if ex.NewStart != nil {
			write("%s|", ex.NewStart.Format(time.RFC3339Nano))
		}
		if ex.NewEnd != nil {
			write("%s|", ex.NewEnd.Format(time.RFC3339Nano))
		}
	}

	write("candidate|%s|%s|%s|%d|%v|",
		candidate.RoomID,
		candidate.Start.Format(time.RFC3339Nano),
		candidate.End.Format(time.RFC3339Nano),
		candidate.AttendeeCount, candidate.Equipment)

	for _, r := range existing {
		// Title is part of the key: it flows into conflict descriptions,
		// so a renamed booking must not be served a stale report.
		write("res|%s|%s|%s|%s|%s|%s|",
			r.ID, r.RoomID, r.Title, r.Status,
			r.Start.Format(time.RFC3339Nano), r.End.Format(time.RFC3339Nano))
	}

	write("room|%s|%d|%v|", room.ID, room.Capacity, room.Equipment)
	if room.Rules != nil {
		write("rules|%v|", *room.Rules)
	}

	for _, m := range maintenance {
		write("maint|%s|%s|",
			m.Start.Format(time.RFC3339Nano), m.End.Format(time.RFC3339Nano))
	}

	write("opts|%d|%v|%v|", opts.MaxInstances, opts.IncludeExceptions, opts.WithResolutions)
	if opts.RangeEnd != nil {
		write("%s|", opts.RangeEnd.Format(time.RFC3339Nano))
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservd/libbooking/booking"
	"github.com/reservd/libbooking/recurrence"
)

func cacheReport(total int) Report {
	return Report{TotalInstances: total}
}

func TestReportCache_SetGet(t *testing.T) {
	cache := NewReportCache(DefaultCacheConfig)
	defer cache.Close()

	cache.set("k1", cacheReport(3))

	got, ok := cache.get("k1")
	require.True(t, ok)
	assert.Equal(t, 3, got.TotalInstances)

	_, ok = cache.get("k2")
	assert.False(t, ok)
}

func TestReportCache_Expiry(t *testing.T) {
	cache := NewReportCache(CacheConfig{
		TTL:             10 * time.Millisecond,
		MaxEntries:      10,
		CleanupInterval: time.Hour,
	})
	defer cache.Close()

	cache.set("k1", cacheReport(3))
	time.Sleep(20 * time.Millisecond)

	_, ok := cache.get("k1")
	assert.False(t, ok)
	assert.Zero(t, cache.Stats().TotalEntries)
}

func TestReportCache_EvictsLeastRecentlyAccessed(t *testing.T) {
	cache := NewReportCache(CacheConfig{
		TTL:             time.Hour,
		MaxEntries:      2,
		CleanupInterval: time.Hour,
	})
	defer cache.Close()

	cache.set("k1", cacheReport(1))
	time.Sleep(2 * time.Millisecond)
	cache.set("k2", cacheReport(2))
	time.Sleep(2 * time.Millisecond)

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok := cache.get("k1")
	require.True(t, ok)
	time.Sleep(2 * time.Millisecond)

	cache.set("k3", cacheReport(3))

	_, ok = cache.get("k1")
	assert.True(t, ok)
	_, ok = cache.get("k2")
	assert.False(t, ok)
	_, ok = cache.get("k3")
	assert.True(t, ok)
}

func TestReportCache_Stats(t *testing.T) {
	cache := NewReportCache(DefaultCacheConfig)
	defer cache.Close()

	cache.set("k1", cacheReport(1))
	cache.set("k2", cacheReport(2))

	stats := cache.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 2, stats.ActiveEntries)
	assert.Zero(t, stats.ExpiredEntries)
}

func TestReportCache_Close(t *testing.T) {
	cache := NewReportCache(DefaultCacheConfig)
	cache.set("k1", cacheReport(1))
	cache.Close()
	assert.Zero(t, cache.Stats().TotalEntries)
}

func TestFingerprint(t *testing.T) {
	p := dailyPattern(3)
	candidate := booking.Reservation{
		RoomID: "room-a",
		Start:  seriesStart,
		End:    seriesEnd,
	}
	room := testRoom()
	existing := []booking.Reservation{blockerOn(time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC))}

	base := fingerprint(p, candidate, existing, room, nil, Options{})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, base, fingerprint(p, candidate, existing, room, nil, Options{}))
	})

	t.Run("sensitive to the candidate window", func(t *testing.T) {
		shifted := candidate
		shifted.Start = shifted.Start.Add(time.Hour)
		assert.NotEqual(t, base, fingerprint(p, shifted, existing, room, nil, Options{}))
	})

	t.Run("sensitive to the pattern", func(t *testing.T) {
		other := p
		other.Interval = 2
		assert.NotEqual(t, base, fingerprint(other, candidate, existing, room, nil, Options{}))
	})

	t.Run("sensitive to existing reservations", func(t *testing.T) {
		assert.NotEqual(t, base, fingerprint(p, candidate, nil, room, nil, Options{}))
	})

	t.Run("sensitive to a reservation title", func(t *testing.T) {
		// Titles flow into conflict descriptions, so a rename must miss.
		renamed := []booking.Reservation{existing[0]}
		renamed[0].Title = "daily sync"
		assert.NotEqual(t, base, fingerprint(p, candidate, renamed, room, nil, Options{}))
	})

	t.Run("sensitive to options", func(t *testing.T) {
		assert.NotEqual(t, base, fingerprint(p, candidate, existing, room, nil, Options{IncludeExceptions: true}))
	})

	t.Run("sensitive to exceptions", func(t *testing.T) {
		other := p
		other.Exceptions = []recurrence.Exception{
			{Date: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), Reason: "room closed"},
		}
		assert.NotEqual(t, base, fingerprint(other, candidate, existing, room, nil, Options{}))
	})
}

package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservd/libbooking/booking"
)

func TestGridStrategy_Propose(t *testing.T) {
	existing := []booking.Reservation{
		reservation("r1", "room-a", at(9, 0), at(10, 0), booking.StatusConfirmed),
	}

	slots := GridStrategy{}.Propose(booking.TimeSlot{Start: at(9, 30), End: at(10, 30)}, existing, nil)
	require.Len(t, slots, 5)

	// The nearest free slot starts right as the blocking reservation ends.
	assert.Equal(t, at(10, 0), slots[0].Start)
	assert.Equal(t, at(11, 0), slots[0].End)

	for _, s := range slots {
		assert.Equal(t, time.Hour, s.Duration())
		assert.False(t, s.Overlaps(existing[0].Slot()))
	}
}

func TestGridStrategy_ProposeAvoidsMaintenance(t *testing.T) {
	maintenance := []booking.TimeSlot{{Start: at(8, 0), End: at(18, 0)}}

	slots := GridStrategy{}.Propose(booking.TimeSlot{Start: at(9, 0), End: at(10, 0)}, nil, maintenance)
	assert.Empty(t, slots)
}

func TestGridStrategy_MaxSuggestions(t *testing.T) {
	slots := GridStrategy{MaxSuggestions: 2}.Propose(booking.TimeSlot{Start: at(9, 0), End: at(10, 0)}, nil, nil)
	assert.Len(t, slots, 2)
}

func TestGridStrategy_ZeroDurationCandidate(t *testing.T) {
	slots := GridStrategy{}.Propose(booking.TimeSlot{Start: at(9, 0), End: at(9, 0)}, nil, nil)
	assert.Nil(t, slots)
}

func TestGridStrategy_StaysWithinTheDay(t *testing.T) {
	slots := GridStrategy{}.Propose(booking.TimeSlot{Start: at(17, 0), End: at(17, 30)}, nil, nil)
	require.NotEmpty(t, slots)
	dayEnd := at(18, 0)
	for _, s := range slots {
		assert.False(t, s.End.After(dayEnd))
	}
}

func TestAvailableSlots(t *testing.T) {
	existing := []booking.Reservation{
		reservation("r1", "room-a", at(9, 0), at(10, 0), booking.StatusConfirmed),
	}
	maintenance := []booking.TimeSlot{{Start: at(13, 0), End: at(14, 0)}}

	slots := AvailableSlots(at(0, 0), existing, maintenance, GridStrategy{})

	// A 08:00-18:00 day in 30m steps has 20 slots; the reservation and the
	// maintenance window each block two of them.
	require.Len(t, slots, 16)
	assert.Equal(t, at(8, 0), slots[0].Start)

	for i, s := range slots {
		assert.False(t, s.Overlaps(existing[0].Slot()))
		assert.False(t, s.Overlaps(maintenance[0]))
		if i > 0 {
			assert.True(t, slots[i-1].Start.Before(s.Start))
		}
	}
}

func TestAvailableSlots_IgnoresCanceled(t *testing.T) {
	existing := []booking.Reservation{
		reservation("r1", "room-a", at(9, 0), at(10, 0), booking.StatusCanceled),
	}

	slots := AvailableSlots(at(0, 0), existing, nil, GridStrategy{})
	assert.Len(t, slots, 20)
}

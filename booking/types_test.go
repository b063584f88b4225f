package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func slot(startHour, startMin, endHour, endMin int) TimeSlot {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return TimeSlot{
		Start: day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		End:   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute),
	}
}

func TestTimeSlot_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     TimeSlot
		expected bool
	}{
		{
			name:     "disjoint slots",
			a:        slot(9, 0, 10, 0),
			b:        slot(11, 0, 12, 0),
			expected: false,
		},
		{
			name:     "touching endpoints are not a conflict",
			a:        slot(9, 0, 10, 0),
			b:        slot(10, 0, 11, 0),
			expected: false,
		},
		{
			name:     "partial overlap",
			a:        slot(9, 0, 10, 0),
			b:        slot(9, 30, 10, 30),
			expected: true,
		},
		{
			name:     "containment",
			a:        slot(9, 0, 12, 0),
			b:        slot(10, 0, 11, 0),
			expected: true,
		},
		{
			name:     "identical slots",
			a:        slot(9, 0, 10, 0),
			b:        slot(9, 0, 10, 0),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			// Overlap is symmetric.
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a))
		})
	}
}

func TestTimeSlot_Duration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, slot(9, 0, 10, 30).Duration())
}

func TestRoom_HasEquipment(t *testing.T) {
	room := Room{Equipment: []string{"projector", "whiteboard"}}
	assert.True(t, room.HasEquipment("projector"))
	assert.False(t, room.HasEquipment("video-wall"))
}

func TestNewReservationID(t *testing.T) {
	a := NewReservationID()
	b := NewReservationID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

package ics

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservd/libbooking/booking"
	"github.com/reservd/libbooking/recurrence"
)

// Monday 2026-01-05, a 09:00-09:30 meeting.
var (
	anchorStart = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	anchorEnd   = time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
)

func standupSeries() Series {
	return Series{
		UID:      "series-1",
		Title:    "Standup",
		Location: "Aurora",
		Pattern: recurrence.Pattern{
			Frequency: recurrence.Weekly,
			Interval:  1,
			Weekly:    &recurrence.WeeklyRule{Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
			End:       recurrence.EndCondition{Mode: recurrence.EndCount, Count: 6},
		},
		AnchorStart: anchorStart,
		AnchorEnd:   anchorEnd,
	}
}

func TestCalendar(t *testing.T) {
	cal, err := Calendar(standupSeries())
	require.NoError(t, err)
	require.Len(t, cal.Children, 1)

	event := cal.Children[0]
	assert.Equal(t, ical.CompEvent, event.Name)
	assert.Equal(t, "series-1", event.Props.Get(ical.PropUID).Value)
	assert.Equal(t, "Standup", event.Props.Get(ical.PropSummary).Value)
	assert.Equal(t, "Aurora", event.Props.Get(ical.PropLocation).Value)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE,FR;COUNT=6", event.Props.Get(ical.PropRecurrenceRule).Value)

	start, err := event.Props.DateTime(ical.PropDateTimeStart, nil)
	require.NoError(t, err)
	assert.True(t, start.Equal(anchorStart))

	end, err := event.Props.DateTime(ical.PropDateTimeEnd, nil)
	require.NoError(t, err)
	assert.True(t, end.Equal(anchorEnd))
}

func TestCalendar_GeneratesMissingUID(t *testing.T) {
	s := standupSeries()
	s.UID = ""

	cal, err := Calendar(s)
	require.NoError(t, err)
	assert.NotEmpty(t, cal.Children[0].Props.Get(ical.PropUID).Value)
}

func TestCalendar_CancelledExceptionsBecomeExdates(t *testing.T) {
	s := standupSeries()
	moved := time.Date(2026, 1, 9, 14, 0, 0, 0, time.UTC)
	s.Pattern.Exceptions = []recurrence.Exception{
		{Date: time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), Reason: "room closed"},
		{Date: time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), Reason: "moved", NewStart: &moved},
	}

	cal, err := Calendar(s)
	require.NoError(t, err)

	// Only the cancelled exception is excluded from the series.
	exdates := cal.Children[0].Props[ical.PropExceptionDates]
	require.Len(t, exdates, 1)

	at, err := exdates[0].DateTime(nil)
	require.NoError(t, err)
	assert.True(t, at.Equal(time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)))
}

func TestCalendar_InvalidPattern(t *testing.T) {
	s := standupSeries()
	s.Pattern.Weekly = nil

	_, err := Calendar(s)
	assert.True(t, booking.IsValidation(err))
}

func TestExpanded(t *testing.T) {
	s := standupSeries()
	s.Pattern = recurrence.Pattern{
		Frequency:     recurrence.Daily,
		Interval:      1,
		End:           recurrence.EndCondition{Mode: recurrence.EndCount, Count: 3},
		BufferMinutes: 15,
		Exceptions: []recurrence.Exception{
			{Date: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), Reason: "room closed"},
		},
	}

	engine := recurrence.NewEngine(nil)
	gen, err := engine.Generate(s.Pattern, anchorStart, anchorEnd, recurrence.Options{IncludeExceptions: true})
	require.NoError(t, err)
	require.Len(t, gen.Occurrences, 4)

	cal, err := Expanded(s, gen.Occurrences)
	require.NoError(t, err)

	// The cancelled Jan 6 instance is omitted.
	require.Len(t, cal.Children, 3)

	first := cal.Children[0]
	assert.Equal(t, "series-1-0", first.Props.Get(ical.PropUID).Value)

	// Visible start times do not carry the conflict-checking buffer.
	start, err := first.Props.DateTime(ical.PropDateTimeStart, nil)
	require.NoError(t, err)
	assert.True(t, start.Equal(anchorStart))

	end, err := first.Props.DateTime(ical.PropDateTimeEnd, nil)
	require.NoError(t, err)
	assert.True(t, end.Equal(anchorEnd))
}

func TestEncode(t *testing.T) {
	cal, err := Calendar(standupSeries())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(cal, &buf))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY")
	assert.Contains(t, out, "END:VCALENDAR")
}

func TestPatternFromComponent(t *testing.T) {
	s := standupSeries()
	s.Pattern.Exceptions = []recurrence.Exception{
		{Date: time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), Reason: "room closed"},
	}

	cal, err := Calendar(s)
	require.NoError(t, err)

	pattern, err := PatternFromComponent(cal.Children[0])
	require.NoError(t, err)

	assert.Equal(t, recurrence.Weekly, pattern.Frequency)
	assert.Equal(t, 1, pattern.Interval)
	require.NotNil(t, pattern.Weekly)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, pattern.Weekly.Weekdays)
	assert.Equal(t, recurrence.EndCount, pattern.End.Mode)
	assert.Equal(t, 6, pattern.End.Count)

	require.Len(t, pattern.Exceptions, 1)
	assert.Equal(t, 7, pattern.Exceptions[0].Date.Day())
	assert.Nil(t, pattern.Exceptions[0].NewStart)
}

func TestPatternFromComponent_NoRRule(t *testing.T) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, "one-off")

	_, err := PatternFromComponent(event.Component)
	assert.True(t, booking.IsValidation(err))
}

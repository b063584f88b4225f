// Package ics renders recurring reservation series as iCalendar data so
// standard calendar clients can subscribe to them, and extracts supported
// recurrence patterns back out of VEVENT components.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/reservd/libbooking/booking"
	"github.com/reservd/libbooking/recurrence"
)

const prodID = "-//reservd//libbooking//EN"

// Series describes a recurring reservation for calendar interchange.
type Series struct {
	// UID identifies the series; one is generated when empty.
	UID         string
	Title       string
	Description string
	Location    string

	Pattern     recurrence.Pattern
	AnchorStart time.Time
	AnchorEnd   time.Time
}

// Calendar renders the series as a VCALENDAR with a single master VEVENT
// carrying the RRULE, so consumers expand the recurrence themselves.
// Cancelled exceptions become EXDATEs; moved exceptions stay in the series,
// since their override form is consumer-specific.
func Calendar(s Series) (*ical.Calendar, error) {
	rule, err := s.Pattern.RRule()
	if err != nil {
		return nil, err
	}

	cal := newCalendar()
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uidOrNew(s.UID))
	event.Props.SetText(ical.PropSummary, s.Title)
	if s.Description != "" {
		event.Props.SetText(ical.PropDescription, s.Description)
	}
	if s.Location != "" {
		event.Props.SetText(ical.PropLocation, s.Location)
	}
	event.Props.SetDateTime(ical.PropDateTimeStamp, s.AnchorStart)
	event.Props.SetDateTime(ical.PropDateTimeStart, s.AnchorStart)
	event.Props.SetDateTime(ical.PropDateTimeEnd, s.AnchorEnd)
	// RRULE carries a RECUR value; SetText would tag it VALUE=TEXT and the
	// encoder would escape its semicolons.
	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = rule
	event.Props.Set(rruleProp)

	for _, ex := range s.Pattern.Exceptions {
		if ex.NewStart != nil {
			continue
		}
		// EXDATE must name the occurrence's own start instant, so the
		// exception date is combined with the anchor's wall-clock time.
		at := time.Date(ex.Date.Year(), ex.Date.Month(), ex.Date.Day(),
			s.AnchorStart.Hour(), s.AnchorStart.Minute(), s.AnchorStart.Second(), 0,
			s.AnchorStart.Location())
		prop := ical.NewProp(ical.PropExceptionDates)
		prop.SetDateTime(at)
		event.Props.Add(prop)
	}

	cal.Children = append(cal.Children, event.Component)
	return cal, nil
}

// Expanded renders one VEVENT per already-expanded occurrence, for consumers
// that cannot evaluate RRULEs. Cancelled exception instances are omitted.
// Occurrence start times carry the pattern's conflict-checking buffer, which
// is not a visible shift; it is added back before rendering.
func Expanded(s Series, occurrences []recurrence.Occurrence) (*ical.Calendar, error) {
	cal := newCalendar()
	uid := uidOrNew(s.UID)
	buffer := time.Duration(s.Pattern.BufferMinutes) * time.Minute

	for _, occ := range occurrences {
		if occ.IsException && !occ.Moved {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, occurrenceUID(uid, occ.Index))
		event.Props.SetText(ical.PropSummary, s.Title)
		if s.Location != "" {
			event.Props.SetText(ical.PropLocation, s.Location)
		}
		event.Props.SetDateTime(ical.PropDateTimeStamp, s.AnchorStart)
		event.Props.SetDateTime(ical.PropDateTimeStart, occ.StartTime.Add(buffer))
		event.Props.SetDateTime(ical.PropDateTimeEnd, occ.EndTime)
		cal.Children = append(cal.Children, event.Component)
	}
	return cal, nil
}

// Encode writes the calendar in iCalendar wire format.
func Encode(cal *ical.Calendar, w io.Writer) error {
	return ical.NewEncoder(w).Encode(cal)
}

// PatternFromComponent extracts a supported recurrence pattern from a
// VEVENT's RRULE property. EXDATEs become cancelled exceptions.
func PatternFromComponent(comp *ical.Component) (recurrence.Pattern, error) {
	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil || rruleProp.Value == "" {
		return recurrence.Pattern{}, booking.NewValidationError("recurrenceRule", "component has no RRULE")
	}

	pattern, err := recurrence.ParseRRule(rruleProp.Value)
	if err != nil {
		return recurrence.Pattern{}, err
	}

	for _, prop := range comp.Props[ical.PropExceptionDates] {
		for _, raw := range strings.Split(prop.Value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			at, err := parseICalTime(raw)
			if err != nil {
				continue
			}
			pattern.Exceptions = append(pattern.Exceptions, recurrence.Exception{Date: at})
		}
	}

	return pattern.Normalize(), nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	return cal
}

func uidOrNew(uid string) string {
	if uid != "" {
		return uid
	}
	return uuid.NewString()
}

func occurrenceUID(uid string, index int) string {
	return fmt.Sprintf("%s-%d", uid, index)
}

func parseICalTime(value string) (time.Time, error) {
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t, nil
	}
	return time.Parse("20060102", value)
}

package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/reservd/libbooking/booking"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

var weekdayCodes = map[time.Weekday]string{
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
	time.Sunday:    "SU",
}

var weekdaysByCode = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

var frequencyNames = map[Frequency]string{
	Daily:   "DAILY",
	Weekly:  "WEEKLY",
	Monthly: "MONTHLY",
	Yearly:  "YEARLY",
}

var frequenciesByName = map[string]Frequency{
	"DAILY":   Daily,
	"WEEKLY":  Weekly,
	"MONTHLY": Monthly,
	"YEARLY":  Yearly,
}

const untilLayout = "20060102T150405Z"

// roption builds the rrule-go options for a validated pattern anchored at
// dtstart. End-condition bookkeeping stays in the engine: COUNT is never
// delegated to the rule, because skipped holidays and exception instances
// must not consume the occurrence budget.
func roption(p Pattern, dtstart time.Time) (rrule.ROption, error) {
	opt := rrule.ROption{
		Dtstart:  dtstart,
		Interval: p.Interval,
		Wkst:     rrule.MO,
	}

	switch p.Frequency {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
		for _, wd := range p.Weekly.Weekdays {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}
	case Monthly:
		opt.Freq = rrule.MONTHLY
		if p.Monthly.Form == MonthlyByDate {
			opt.Bymonthday = []int{p.Monthly.Date}
		} else {
			wd := rruleWeekdays[p.Monthly.Weekday]
			opt.Byweekday = []rrule.Weekday{wd.Nth(p.Monthly.Week)}
		}
	case Yearly:
		opt.Freq = rrule.YEARLY
	default:
		return opt, booking.NewValidationError("type", "unknown frequency")
	}
	return opt, nil
}

// RRule renders the pattern as an RFC 5545 RRULE value (without the
// "RRULE:" prefix) for calendar interchange. Holiday and buffer semantics
// have no RRULE representation and are not included.
func (p Pattern) RRule() (string, error) {
	name, ok := frequencyNames[p.Frequency]
	if !ok {
		return "", booking.NewValidationError("type", "unknown frequency")
	}

	parts := []string{"FREQ=" + name}
	if p.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", p.Interval))
	}

	switch p.Frequency {
	case Weekly:
		if p.Weekly == nil || len(p.Weekly.Weekdays) == 0 {
			return "", booking.NewValidationError("weekDays", "weekly patterns need at least one weekday")
		}
		codes := make([]string, len(p.Weekly.Weekdays))
		for i, wd := range p.Weekly.Weekdays {
			codes[i] = weekdayCodes[wd]
		}
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	case Monthly:
		if p.Monthly == nil {
			return "", booking.NewValidationError("monthlyPattern", "monthly patterns need a monthly rule")
		}
		if p.Monthly.Form == MonthlyByDate {
			parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", p.Monthly.Date))
		} else {
			parts = append(parts,
				"BYDAY="+weekdayCodes[p.Monthly.Weekday],
				fmt.Sprintf("BYSETPOS=%d", p.Monthly.Week))
		}
	}

	switch p.End.Mode {
	case EndCount:
		parts = append(parts, fmt.Sprintf("COUNT=%d", p.End.Count))
	case EndDate:
		if p.End.Date == nil {
			return "", booking.NewValidationError("endDate", "required when the series ends by date")
		}
		parts = append(parts, "UNTIL="+p.End.Date.UTC().Format(untilLayout))
	}

	return strings.Join(parts, ";"), nil
}

// ParseRRule parses an RFC 5545 RRULE value (with or without the "RRULE:"
// prefix) into a Pattern, for the frequencies this engine supports. Unknown
// keys are ignored.
func ParseRRule(value string) (Pattern, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "RRULE:")

	p := Pattern{Interval: 1, End: EndCondition{Mode: EndNever}}
	var byDays []string
	var byMonthDay, bySetPos int

	for _, part := range strings.Split(value, ";") {
		key, raw, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		raw = strings.TrimSpace(raw)

		switch key {
		case "FREQ":
			freq, ok := frequenciesByName[strings.ToUpper(raw)]
			if !ok {
				return Pattern{}, booking.NewValidationError("type", "unsupported frequency "+raw)
			}
			p.Frequency = freq
		case "INTERVAL":
			n, err := strconv.Atoi(raw)
			if err != nil {
				return Pattern{}, booking.NewValidationError("interval", "not a number")
			}
			p.Interval = n
		case "COUNT":
			n, err := strconv.Atoi(raw)
			if err != nil {
				return Pattern{}, booking.NewValidationError("endCount", "not a number")
			}
			p.End = EndCondition{Mode: EndCount, Count: n}
		case "UNTIL":
			until, err := time.Parse(untilLayout, raw)
			if err != nil {
				return Pattern{}, booking.NewValidationError("endDate", "not an RFC 5545 UNTIL value")
			}
			p.End = EndCondition{Mode: EndDate, Date: &until}
		case "BYDAY":
			byDays = strings.Split(raw, ",")
		case "BYMONTHDAY":
			n, err := strconv.Atoi(raw)
			if err != nil {
				return Pattern{}, booking.NewValidationError("monthlyDate", "not a number")
			}
			byMonthDay = n
		case "BYSETPOS":
			n, err := strconv.Atoi(raw)
			if err != nil {
				return Pattern{}, booking.NewValidationError("monthlyWeek", "not a number")
			}
			bySetPos = n
		}
	}

	if p.Frequency == "" {
		return Pattern{}, booking.NewValidationError("type", "FREQ is required")
	}

	switch p.Frequency {
	case Weekly:
		weekdays := make([]time.Weekday, 0, len(byDays))
		for _, code := range byDays {
			wd, ok := weekdaysByCode[strings.ToUpper(strings.TrimSpace(code))]
			if !ok {
				return Pattern{}, booking.NewValidationError("weekDays", "unknown weekday "+code)
			}
			weekdays = append(weekdays, wd)
		}
		p.Weekly = &WeeklyRule{Weekdays: weekdays}
	case Monthly:
		switch {
		case byMonthDay != 0:
			p.Monthly = &MonthlyRule{Form: MonthlyByDate, Date: byMonthDay}
		case len(byDays) == 1 && bySetPos != 0:
			wd, ok := weekdaysByCode[strings.ToUpper(strings.TrimSpace(byDays[0]))]
			if !ok {
				return Pattern{}, booking.NewValidationError("monthlyWeekDay", "unknown weekday "+byDays[0])
			}
			p.Monthly = &MonthlyRule{Form: MonthlyByWeekday, Week: bySetPos, Weekday: wd}
		default:
			return Pattern{}, booking.NewValidationError("monthlyPattern", "monthly rules need BYMONTHDAY or BYDAY with BYSETPOS")
		}
	}

	return p, nil
}

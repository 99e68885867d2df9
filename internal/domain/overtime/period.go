package overtime

import (
	"fmt"
	"sort"
)

// MaxPeriodDays bounds a single calculation.
const MaxPeriodDays = 366

// DefaultDayType is rest on Sundays and workday otherwise.
func DefaultDayType(date Date) DayType {
	if date.Weekday() == Sunday {
		return DayRest
	}
	return DayWorkday
}

func checkPeriod(start, end Date) error {
	if end.Before(start.Time) {
		return &FieldError{Field: "endDate", Reason: "must be on or after startDate"}
	}
	if start.DaysUntil(end)+1 > MaxPeriodDays {
		return &FieldError{Field: "endDate", Reason: fmt.Sprintf("period longer than %d days", MaxPeriodDays)}
	}
	return nil
}

// MaterializePeriod returns one blank entry per date in [start, end] with its default type.
func MaterializePeriod(start, end Date) ([]DayEntry, error) {
	if err := checkPeriod(start, end); err != nil {
		return nil, err
	}
	entries := make([]DayEntry, 0, start.DaysUntil(end)+1)
	for day := start; !day.After(end.Time); day = day.AddDays(1) {
		entries = append(entries, DayEntry{Date: day, Type: DefaultDayType(day)})
	}
	return entries, nil
}

// ResyncEntries fits existing entries to a new period: entries inside the range are kept
// as they are, missing dates get defaults and dates outside the range are dropped.
func ResyncEntries(existing []DayEntry, start, end Date) ([]DayEntry, error) {
	fresh, err := MaterializePeriod(start, end)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]DayEntry, len(existing))
	for _, e := range existing {
		byDate[e.Date.String()] = e
	}
	for i, e := range fresh {
		if kept, ok := byDate[e.Date.String()]; ok {
			fresh[i] = kept
		}
	}
	return fresh, nil
}

// SortEntries orders entries by date in place.
func SortEntries(entries []DayEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date.Time)
	})
}

// DayTemplate is a default clock layout used to auto-fill a weekday.
type DayTemplate struct {
	Entry         ClockTime `json:"entry"`
	IntervalStart ClockTime `json:"intervalStart"`
	IntervalEnd   ClockTime `json:"intervalEnd"`
	Exit          ClockTime `json:"exit"`
}

// WeeklyTemplate is keyed by weekday schedule key ("monday".."sunday").
type WeeklyTemplate map[string]DayTemplate

// ApplyTemplate fills workday entries that have no clock fields yet. Types and entries
// the user already filled in are never changed.
func ApplyTemplate(entries []DayEntry, template WeeklyTemplate) []DayEntry {
	out := make([]DayEntry, len(entries))
	copy(out, entries)
	if len(template) == 0 {
		return out
	}
	for i, e := range out {
		dayType := e.Type
		if dayType == "" {
			dayType = DefaultDayType(e.Date)
		}
		if dayType != DayWorkday || e.hasClock() {
			continue
		}
		tpl, ok := template[e.Date.Weekday().ScheduleKey()]
		if !ok {
			continue
		}
		out[i].Entry = tpl.Entry
		out[i].IntervalStart = tpl.IntervalStart
		out[i].IntervalEnd = tpl.IntervalEnd
		out[i].Exit = tpl.Exit
	}
	return out
}

package overtime

import "time"

// ContractualHours is the allotment the schedule gives the date's weekday.
func ContractualHours(date Date, schedule WeeklySchedule) time.Duration {
	return time.Duration(schedule.For(date.Weekday()))
}

// WorkedMinutes converts the clock fields into minutes worked. An exit earlier than the
// entry crosses midnight; the interval is subtracted the same way. Absences, a missing
// entry or a missing exit all give zero.
func WorkedMinutes(e DayEntry) int {
	if e.Type.IsAbsence() {
		return 0
	}
	if !e.Entry.Valid || !e.Exit.Valid {
		return 0
	}
	worked := span(e.Entry, e.Exit)
	if e.IntervalStart.Valid && e.IntervalEnd.Valid {
		worked -= span(e.IntervalStart, e.IntervalEnd)
	}
	return max(worked, 0)
}

func span(from, to ClockTime) int {
	d := to.Minutes - from.Minutes
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

type DayResult struct {
	Date             Date    `json:"date"`
	Weekday          string  `json:"weekday"`
	Type             DayType `json:"type"`
	WorkedMinutes    int     `json:"workedMinutes"`
	WorkedHours      float64 `json:"workedHours"`
	ContractualHours float64 `json:"contractualHours"`
	RegularHours     float64 `json:"regularHours"`
	OvertimeHours    float64 `json:"overtimeHours"`
	Slices           []Slice `json:"slices"`
}

// EvaluateDay classifies one entry. Rest days turn every worked hour into overtime at the
// rest-day premium; absences contribute nothing.
func EvaluateDay(e DayEntry, schedule WeeklySchedule, pct PercentageSchedule) DayResult {
	dayType := e.Type
	if dayType == "" {
		dayType = DefaultDayType(e.Date)
	}
	e.Type = dayType

	res := DayResult{
		Date:    e.Date,
		Weekday: e.Date.Weekday().ScheduleKey(),
		Type:    dayType,
	}

	switch dayType {
	case DayRest:
		res.ContractualHours = schedule.Rest.Hours()
	default:
		res.ContractualHours = ContractualHours(e.Date, schedule).Hours()
	}
	if dayType.IsAbsence() {
		return res
	}

	res.WorkedMinutes = WorkedMinutes(e)
	res.WorkedHours = float64(res.WorkedMinutes) / 60

	if dayType == DayRest {
		res.OvertimeHours = res.WorkedHours
		res.Slices = Allocate(res.OvertimeHours, pct, true)
		return res
	}

	res.RegularHours = min(res.WorkedHours, res.ContractualHours)
	res.OvertimeHours = max(res.WorkedHours-res.ContractualHours, 0)
	res.Slices = Allocate(res.OvertimeHours, pct, false)
	return res
}

package overtime

type AbsenceCount struct {
	Unjustified int `json:"unjustified"`
	Justified   int `json:"justified"`
}

// Summary is the period result, re-derived from the full snapshot every time.
type Summary struct {
	StartDate     Date         `json:"startDate"`
	EndDate       Date         `json:"endDate"`
	Days          []DayResult  `json:"days"`
	WorkedHours   float64      `json:"workedHours"`
	RegularHours  float64      `json:"regularHours"`
	OvertimeHours float64      `json:"overtimeHours"`
	Buckets       []Bucket     `json:"buckets"`
	Absences      AbsenceCount `json:"absences"`
}

// HoursAt returns the hours bucketed under a premium.
func (s Summary) HoursAt(percentage float64) float64 {
	for _, b := range s.Buckets {
		if b.Percentage == percentage {
			return b.Hours
		}
	}
	return 0
}

// Summarize evaluates every entry and aggregates totals and premium buckets.
// Rest-day hours merge with workday hours sharing the same premium.
func Summarize(calc Calculation) Summary {
	summary := Summary{
		StartDate: calc.StartDate,
		EndDate:   calc.EndDate,
		Days:      make([]DayResult, 0, len(calc.DayEntries)),
	}
	buckets := Buckets{}

	for _, entry := range calc.DayEntries {
		day := EvaluateDay(entry, calc.WorkingHours, calc.OvertimePercentages)
		summary.Days = append(summary.Days, day)

		switch day.Type {
		case DayAbsence:
			summary.Absences.Unjustified++
			continue
		case DayJustifiedAbsence:
			summary.Absences.Justified++
			continue
		}

		summary.WorkedHours += day.WorkedHours
		summary.RegularHours += day.RegularHours
		summary.OvertimeHours += day.OvertimeHours
		buckets.Add(day.Slices...)
	}

	summary.Buckets = buckets.Sorted()
	return summary
}

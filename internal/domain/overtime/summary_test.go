package overtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weekCalculation spans Sunday 2025-01-05 to Saturday 2025-01-11.
func weekCalculation() Calculation {
	sunday := NewDate(2025, time.January, 5)
	return Calculation{
		Description:         "first week",
		StartDate:           sunday,
		EndDate:             sunday.AddDays(6),
		WorkingHours:        DefaultWeeklySchedule(),
		OvertimePercentages: ladderSchedule(),
		DayEntries: []DayEntry{
			{Date: sunday, Type: DayRest, Entry: Clock(8, 0), Exit: Clock(12, 0)},
			{Date: sunday.AddDays(1), Type: DayWorkday, Entry: Clock(8, 0), IntervalStart: Clock(12, 0), IntervalEnd: Clock(13, 0), Exit: Clock(19, 0)},
			{Date: sunday.AddDays(2), Type: DayWorkday, Entry: Clock(8, 0), IntervalStart: Clock(12, 0), IntervalEnd: Clock(13, 0), Exit: Clock(20, 0)},
			{Date: sunday.AddDays(3), Type: DayAbsence, Entry: Clock(8, 0), Exit: Clock(18, 0)},
			{Date: sunday.AddDays(4), Type: DayJustifiedAbsence},
			{Date: sunday.AddDays(5), Type: DayWorkday, Entry: Clock(22, 0), IntervalStart: Clock(2, 0), IntervalEnd: Clock(3, 0), Exit: Clock(7, 0)},
			{Date: sunday.AddDays(6), Type: DayWorkday, Entry: Clock(8, 0), Exit: Clock(16, 0)},
		},
	}
}

func TestSummarizeWeek(t *testing.T) {
	summary := Summarize(weekCalculation())

	require.Len(t, summary.Days, 7)
	assert.InDelta(t, 41, summary.WorkedHours, 1e-9)
	assert.InDelta(t, 28, summary.RegularHours, 1e-9)
	assert.InDelta(t, 13, summary.OvertimeHours, 1e-9)
	assert.Equal(t, []Bucket{
		{Percentage: 50, Hours: 6},
		{Percentage: 60, Hours: 2},
		{Percentage: 70, Hours: 1},
		{Percentage: 100, Hours: 4},
	}, summary.Buckets)
	assert.Equal(t, AbsenceCount{Unjustified: 1, Justified: 1}, summary.Absences)

	var bucketTotal float64
	for _, b := range summary.Buckets {
		bucketTotal += b.Hours
	}
	assert.InDelta(t, summary.OvertimeHours, bucketTotal, 1e-9)
}

func TestSummarizeMergesRestAndWorkdayPercentages(t *testing.T) {
	calc := weekCalculation()
	calc.OvertimePercentages.Over5Hours = 100
	calc.DayEntries = []DayEntry{
		{Date: calc.StartDate, Type: DayRest, Entry: Clock(8, 0), Exit: Clock(12, 0)},
		{Date: calc.StartDate.AddDays(1), Type: DayWorkday, Entry: Clock(6, 0), Exit: Clock(20, 0)},
	}

	summary := Summarize(calc)

	assert.InDelta(t, 10, summary.OvertimeHours, 1e-9)
	assert.Equal(t, 5.0, summary.HoursAt(100))
	assert.Equal(t, 2.0, summary.HoursAt(50))
	assert.Zero(t, summary.HoursAt(90))
}

func TestSummarizeReferenceOvertimeCase(t *testing.T) {
	calc := weekCalculation()
	calc.DayEntries = []DayEntry{
		{Date: calc.StartDate.AddDays(1), Entry: Clock(8, 0), Exit: Clock(19, 0)},
	}

	summary := Summarize(calc)

	assert.Equal(t, 11.0, summary.WorkedHours)
	assert.Equal(t, 3.0, summary.OvertimeHours)
	assert.Equal(t, []Slice{{2, 50}, {1, 60}}, summary.Days[0].Slices)
}

func TestSummarizeEmpty(t *testing.T) {
	calc := weekCalculation()
	calc.DayEntries = nil

	summary := Summarize(calc)

	assert.Empty(t, summary.Days)
	assert.Empty(t, summary.Buckets)
	assert.Zero(t, summary.WorkedHours)
}

package overtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkedMinutes(t *testing.T) {
	cases := []struct {
		name  string
		entry DayEntry
		want  int
	}{
		{"plain day", DayEntry{Entry: Clock(8, 0), Exit: Clock(17, 0)}, 540},
		{"with interval", DayEntry{Entry: Clock(8, 0), IntervalStart: Clock(12, 0), IntervalEnd: Clock(13, 0), Exit: Clock(17, 0)}, 480},
		{"crosses midnight", DayEntry{Entry: Clock(22, 0), Exit: Clock(2, 0)}, 240},
		{"interval crosses midnight", DayEntry{Entry: Clock(20, 0), IntervalStart: Clock(23, 30), IntervalEnd: Clock(0, 30), Exit: Clock(4, 0)}, 420},
		{"missing exit", DayEntry{Entry: Clock(8, 0)}, 0},
		{"missing entry", DayEntry{Exit: Clock(17, 0)}, 0},
		{"half interval ignored", DayEntry{Entry: Clock(8, 0), IntervalStart: Clock(12, 0), Exit: Clock(12, 0)}, 240},
		{"absence ignores clocks", DayEntry{Type: DayAbsence, Entry: Clock(8, 0), Exit: Clock(17, 0)}, 0},
		{"justified absence ignores clocks", DayEntry{Type: DayJustifiedAbsence, Entry: Clock(8, 0), Exit: Clock(17, 0)}, 0},
		{"interval longer than shift floors at zero", DayEntry{Entry: Clock(8, 0), IntervalStart: Clock(9, 0), IntervalEnd: Clock(20, 0), Exit: Clock(10, 0)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WorkedMinutes(tc.entry))
		})
	}
}

func TestContractualHoursByWeekday(t *testing.T) {
	schedule := DefaultWeeklySchedule()
	// 2025-01-05 is a Sunday
	sunday := NewDate(2025, time.January, 5)

	assert.Equal(t, time.Duration(0), ContractualHours(sunday, schedule))
	assert.Equal(t, 8*time.Hour, ContractualHours(sunday.AddDays(1), schedule))
	assert.Equal(t, 4*time.Hour, ContractualHours(sunday.AddDays(6), schedule))
}

func TestEvaluateDayWorkdayOvertime(t *testing.T) {
	monday := NewDate(2025, time.January, 6)
	entry := DayEntry{Date: monday, Type: DayWorkday, Entry: Clock(7, 0), IntervalStart: Clock(12, 0), IntervalEnd: Clock(13, 0), Exit: Clock(19, 0)}

	day := EvaluateDay(entry, DefaultWeeklySchedule(), DefaultPercentageSchedule())

	assert.Equal(t, "monday", day.Weekday)
	assert.Equal(t, 11.0, day.WorkedHours)
	assert.Equal(t, 8.0, day.ContractualHours)
	assert.Equal(t, 8.0, day.RegularHours)
	assert.Equal(t, 3.0, day.OvertimeHours)
	assert.Equal(t, []Slice{{Hours: 2, Percentage: 50}, {Hours: 1, Percentage: 50}}, day.Slices)
}

func TestEvaluateDayUnderContractHasNoOvertime(t *testing.T) {
	entry := DayEntry{Date: NewDate(2025, time.January, 6), Entry: Clock(8, 0), Exit: Clock(14, 0)}

	day := EvaluateDay(entry, DefaultWeeklySchedule(), DefaultPercentageSchedule())

	assert.Equal(t, DayWorkday, day.Type)
	assert.Equal(t, 6.0, day.RegularHours)
	assert.Zero(t, day.OvertimeHours)
	assert.Empty(t, day.Slices)
}

func TestEvaluateDayRestTurnsAllHoursIntoOvertime(t *testing.T) {
	entry := DayEntry{Date: NewDate(2025, time.January, 8), Type: DayRest, Entry: Clock(8, 0), Exit: Clock(12, 0)}
	pct := DefaultPercentageSchedule()
	pct.RestDay = 100

	day := EvaluateDay(entry, DefaultWeeklySchedule(), pct)

	assert.Equal(t, 4.0, day.OvertimeHours)
	assert.Zero(t, day.RegularHours)
	assert.Equal(t, []Slice{{Hours: 4, Percentage: 100}}, day.Slices)
}

func TestEvaluateDayDefaultsSundayToRest(t *testing.T) {
	entry := DayEntry{Date: NewDate(2025, time.January, 5), Entry: Clock(9, 0), Exit: Clock(11, 0)}

	day := EvaluateDay(entry, DefaultWeeklySchedule(), DefaultPercentageSchedule())

	assert.Equal(t, DayRest, day.Type)
	assert.Equal(t, 2.0, day.OvertimeHours)
}

func TestEvaluateDayAbsence(t *testing.T) {
	entry := DayEntry{Date: NewDate(2025, time.January, 6), Type: DayAbsence, Entry: Clock(8, 0), Exit: Clock(20, 0)}

	day := EvaluateDay(entry, DefaultWeeklySchedule(), DefaultPercentageSchedule())

	assert.Zero(t, day.WorkedHours)
	assert.Zero(t, day.RegularHours)
	assert.Zero(t, day.OvertimeHours)
	assert.Equal(t, 8.0, day.ContractualHours)
}

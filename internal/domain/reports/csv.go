package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"calcfolha/internal/domain/overtime"
)

type dayRow struct {
	Date             string  `csv:"date"`
	Weekday          string  `csv:"weekday"`
	Type             string  `csv:"type"`
	Entry            string  `csv:"entry"`
	IntervalStart    string  `csv:"interval_start"`
	IntervalEnd      string  `csv:"interval_end"`
	Exit             string  `csv:"exit"`
	WorkedHours      float64 `csv:"worked_hours"`
	ContractualHours float64 `csv:"contractual_hours"`
	RegularHours     float64 `csv:"regular_hours"`
	OvertimeHours    float64 `csv:"overtime_hours"`
	Premiums         string  `csv:"premiums"`
}

// RenderCSV writes one row per day of the period.
func RenderCSV(w io.Writer, calc overtime.Calculation, summary overtime.Summary) error {
	rows := make([]dayRow, 0, len(summary.Days))
	for i, day := range summary.Days {
		row := dayRow{
			Date:             day.Date.String(),
			Weekday:          day.Weekday,
			Type:             string(day.Type),
			WorkedHours:      round2(day.WorkedHours),
			ContractualHours: round2(day.ContractualHours),
			RegularHours:     round2(day.RegularHours),
			OvertimeHours:    round2(day.OvertimeHours),
			Premiums:         premiums(day.Slices),
		}
		if i < len(calc.DayEntries) && calc.DayEntries[i].Date.Equal(day.Date.Time) {
			e := calc.DayEntries[i]
			row.Entry = e.Entry.String()
			row.IntervalStart = e.IntervalStart.String()
			row.IntervalEnd = e.IntervalEnd.String()
			row.Exit = e.Exit.String()
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(rows, w)
}

func premiums(slices []overtime.Slice) string {
	parts := make([]string, 0, len(slices))
	for _, s := range slices {
		parts = append(parts, fmt.Sprintf("%g%%:%.2f", s.Percentage, s.Hours))
	}
	return strings.Join(parts, ";")
}

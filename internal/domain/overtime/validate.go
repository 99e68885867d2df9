package overtime

import (
	"fmt"
	"strings"
)

// Validate checks the calculation invariants: ordered period, non-negative premiums and
// exactly one entry per date inside the period.
func (c Calculation) Validate() error {
	if strings.TrimSpace(c.Description) == "" {
		return &FieldError{Field: "description", Reason: "is required"}
	}
	if c.StartDate.IsZero() {
		return &FieldError{Field: "startDate", Reason: "is required"}
	}
	if c.EndDate.IsZero() {
		return &FieldError{Field: "endDate", Reason: "is required"}
	}
	if err := checkPeriod(c.StartDate, c.EndDate); err != nil {
		return err
	}
	if err := c.OvertimePercentages.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.DayEntries))
	for i, e := range c.DayEntries {
		field := fmt.Sprintf("dayEntries[%d]", i)
		if e.Date.IsZero() {
			return &FieldError{Field: field + ".date", Reason: "is required"}
		}
		if e.Date.Before(c.StartDate.Time) || e.Date.After(c.EndDate.Time) {
			return &FieldError{Field: field + ".date", Reason: "outside the calculation period"}
		}
		key := e.Date.String()
		if _, dup := seen[key]; dup {
			return &FieldError{Field: field + ".date", Reason: "duplicate date " + key}
		}
		seen[key] = struct{}{}
		if e.Type != "" {
			if _, err := ParseDayType(string(e.Type)); err != nil {
				return &FieldError{Field: field + ".type", Reason: "unknown day type"}
			}
		}
	}
	return nil
}

func (p PercentageSchedule) Validate() error {
	values := []struct {
		name  string
		value float64
	}{
		{"upTo2Hours", p.UpTo2Hours},
		{"from2To3Hours", p.From2To3Hours},
		{"from3To4Hours", p.From3To4Hours},
		{"from4To5Hours", p.From4To5Hours},
		{"over5Hours", p.Over5Hours},
		{"restDay", p.RestDay},
	}
	for _, v := range values {
		if v.value < 0 {
			return &FieldError{Field: "overtimePercentages." + v.name, Reason: "must not be negative"}
		}
	}
	return nil
}

// Apply merges a patch. Changing the period without new entries resyncs the existing ones.
func (c Calculation) Apply(p Patch) (Calculation, error) {
	out := c
	out.DayEntries = append([]DayEntry(nil), c.DayEntries...)
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.WorkingHours != nil {
		out.WorkingHours = *p.WorkingHours
	}
	if p.OvertimePercentages != nil {
		out.OvertimePercentages = *p.OvertimePercentages
	}

	periodChanged := false
	if p.StartDate != nil && !p.StartDate.Equal(c.StartDate.Time) {
		out.StartDate = *p.StartDate
		periodChanged = true
	}
	if p.EndDate != nil && !p.EndDate.Equal(c.EndDate.Time) {
		out.EndDate = *p.EndDate
		periodChanged = true
	}

	if p.DayEntries != nil {
		out.DayEntries = append([]DayEntry(nil), p.DayEntries...)
		SortEntries(out.DayEntries)
		return out, nil
	}
	if periodChanged {
		entries, err := ResyncEntries(out.DayEntries, out.StartDate, out.EndDate)
		if err != nil {
			return Calculation{}, err
		}
		out.DayEntries = entries
	}
	return out, nil
}

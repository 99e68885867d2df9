package overtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday follows time.Weekday numbering (Sunday = 0).
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayKeys = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// ScheduleKey is the WeeklySchedule key for the day.
func (w Weekday) ScheduleKey() string {
	if w < Sunday || w > Saturday {
		return ""
	}
	return weekdayKeys[w]
}

func (w Weekday) String() string {
	return w.ScheduleKey()
}

// WeeklySchedule maps each weekday, plus rest days, to a contractual allotment.
type WeeklySchedule struct {
	Monday    Duration `json:"monday"`
	Tuesday   Duration `json:"tuesday"`
	Wednesday Duration `json:"wednesday"`
	Thursday  Duration `json:"thursday"`
	Friday    Duration `json:"friday"`
	Saturday  Duration `json:"saturday"`
	Sunday    Duration `json:"sunday"`
	Rest      Duration `json:"rest"`
}

// For returns the allotment for a weekday.
func (s WeeklySchedule) For(day Weekday) Duration {
	switch day {
	case Sunday:
		return s.Sunday
	case Monday:
		return s.Monday
	case Tuesday:
		return s.Tuesday
	case Wednesday:
		return s.Wednesday
	case Thursday:
		return s.Thursday
	case Friday:
		return s.Friday
	case Saturday:
		return s.Saturday
	default:
		return 0
	}
}

// UnmarshalJSON requires all seven weekday keys; "rest" may be omitted.
func (s *WeeklySchedule) UnmarshalJSON(data []byte) error {
	var raw map[string]Duration
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var missing []string
	for _, key := range weekdayKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &FieldError{Field: "workingHours", Reason: "missing " + strings.Join(missing, ", ")}
	}
	*s = WeeklySchedule{
		Monday:    raw["monday"],
		Tuesday:   raw["tuesday"],
		Wednesday: raw["wednesday"],
		Thursday:  raw["thursday"],
		Friday:    raw["friday"],
		Saturday:  raw["saturday"],
		Sunday:    raw["sunday"],
		Rest:      raw["rest"],
	}
	return nil
}

// DefaultWeeklySchedule is the usual 44-hour week: 8h on weekdays, 4h on Saturday.
func DefaultWeeklySchedule() WeeklySchedule {
	eight := Duration(8 * time.Hour)
	return WeeklySchedule{
		Monday:    eight,
		Tuesday:   eight,
		Wednesday: eight,
		Thursday:  eight,
		Friday:    eight,
		Saturday:  Duration(4 * time.Hour),
	}
}

// PercentageSchedule holds the premium, in percent, of each overtime bracket.
type PercentageSchedule struct {
	UpTo2Hours    float64 `json:"upTo2Hours"`
	From2To3Hours float64 `json:"from2To3Hours"`
	From3To4Hours float64 `json:"from3To4Hours"`
	From4To5Hours float64 `json:"from4To5Hours"`
	Over5Hours    float64 `json:"over5Hours"`
	RestDay       float64 `json:"restDay"`
}

func DefaultPercentageSchedule() PercentageSchedule {
	return PercentageSchedule{
		UpTo2Hours:    50,
		From2To3Hours: 50,
		From3To4Hours: 70,
		From4To5Hours: 70,
		Over5Hours:    100,
		RestDay:       100,
	}
}

type DayType string

const (
	DayWorkday          DayType = "workday"
	DayRest             DayType = "rest"
	DayAbsence          DayType = "absence"
	DayJustifiedAbsence DayType = "justified-absence"
)

// ParseDayType accepts the wire values plus the underscore spelling of justified absence.
func ParseDayType(text string) (DayType, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "workday":
		return DayWorkday, nil
	case "rest":
		return DayRest, nil
	case "absence":
		return DayAbsence, nil
	case "justified-absence", "justified_absence":
		return DayJustifiedAbsence, nil
	}
	return "", fmt.Errorf("%w: unknown day type %q", ErrInvalidInput, text)
}

func (t DayType) IsAbsence() bool {
	return t == DayAbsence || t == DayJustifiedAbsence
}

func (t *DayType) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: day type must be a string", ErrInvalidInput)
	}
	if text == "" {
		*t = ""
		return nil
	}
	parsed, err := ParseDayType(text)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DayEntry is one calendar day of a calculation. Clock fields are ignored for absences.
type DayEntry struct {
	Date          Date      `json:"date"`
	Entry         ClockTime `json:"entry"`
	IntervalStart ClockTime `json:"intervalStart"`
	IntervalEnd   ClockTime `json:"intervalEnd"`
	Exit          ClockTime `json:"exit"`
	Type          DayType   `json:"type"`
}

func (e DayEntry) hasClock() bool {
	return e.Entry.Valid || e.IntervalStart.Valid || e.IntervalEnd.Valid || e.Exit.Valid
}

type Calculation struct {
	ID                  string             `json:"id"`
	OwnerID             string             `json:"ownerId"`
	Description         string             `json:"description"`
	StartDate           Date               `json:"startDate"`
	EndDate             Date               `json:"endDate"`
	WorkingHours        WeeklySchedule     `json:"workingHours"`
	OvertimePercentages PercentageSchedule `json:"overtimePercentages"`
	DayEntries          []DayEntry         `json:"dayEntries"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Description         *string             `json:"description,omitempty"`
	StartDate           *Date               `json:"startDate,omitempty"`
	EndDate             *Date               `json:"endDate,omitempty"`
	WorkingHours        *WeeklySchedule     `json:"workingHours,omitempty"`
	OvertimePercentages *PercentageSchedule `json:"overtimePercentages,omitempty"`
	DayEntries          []DayEntry          `json:"dayEntries,omitempty"`
}

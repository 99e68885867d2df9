package overtime

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

const dateLayout = "2006-01-02"

// ClockTime is a wall-clock time of day. The zero value is "unset".
type ClockTime struct {
	Minutes int
	Valid   bool
}

func Clock(hour, minute int) ClockTime {
	return ClockTime{Minutes: hour*60 + minute, Valid: true}
}

// ParseClock parses "HH:MM" (00:00..23:59). Blank text is an unset clock.
func ParseClock(text string) (ClockTime, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ClockTime{}, nil
	}
	minutes, err := parseHHMM(text, 23)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: clock time %q: %v", ErrInvalidInput, text, err)
	}
	return ClockTime{Minutes: minutes, Valid: true}, nil
}

func (c ClockTime) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.Minutes/60, c.Minutes%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ClockTime{}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: clock time must be a string", ErrInvalidInput)
	}
	parsed, err := ParseClock(text)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Duration is a contractual allotment written as "HH:MM". Blank text means zero.
type Duration time.Duration

func Hours(h float64) Duration {
	return Duration(time.Duration(h * float64(time.Hour)))
}

func ParseDuration(text string) (Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	minutes, err := parseHHMM(text, 24)
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q: %v", ErrInvalidInput, text, err)
	}
	if minutes > minutesPerDay {
		return 0, fmt.Errorf("%w: duration %q exceeds 24:00", ErrInvalidInput, text)
	}
	return Duration(time.Duration(minutes) * time.Minute), nil
}

func (d Duration) Hours() float64 {
	return time.Duration(d).Hours()
}

func (d Duration) String() string {
	total := int(time.Duration(d) / time.Minute)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = 0
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: duration must be a string", ErrInvalidInput)
	}
	parsed, err := ParseDuration(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func parseHHMM(text string, maxHour int) (int, error) {
	hh, mm, ok := strings.Cut(text, ":")
	if !ok || hh == "" || len(mm) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > maxHour {
		return 0, fmt.Errorf("hour out of range")
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute out of range")
	}
	return hour*60 + minute, nil
}

// Date is a civil calendar day, kept at UTC midnight so no zone offset can shift it.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(text string) (Date, error) {
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(text), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, text)
	}
	return Date{parsed}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) Weekday() Weekday {
	return Weekday(d.Time.Weekday())
}

// DaysUntil counts calendar days from d to other; negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrInvalidInput)
	}
	parsed, err := ParseDate(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

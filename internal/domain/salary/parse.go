package salary

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount reads a currency-style text such as "R$ 1.234,56", "1234.56" or "1234,5".
// Unparsable or negative text yields 0.
func ParseAmount(text string) float64 {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return 0
		}
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		// "1.234" and "1.234.567" are thousand groups, "1234.5" is a decimal point.
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

package overtime

import "github.com/shopspring/decimal"

// DefaultMonthlyHours is the usual divisor for a 44-hour week.
const DefaultMonthlyHours = 220

type BucketPay struct {
	Percentage float64 `json:"percentage"`
	Hours      float64 `json:"hours"`
	HourValue  float64 `json:"hourValue"`
	Amount     float64 `json:"amount"`
}

type PayBreakdown struct {
	HourlyRate float64     `json:"hourlyRate"`
	Buckets    []BucketPay `json:"buckets"`
	Total      float64     `json:"total"`
}

// HourlyRate divides a monthly salary by the monthly contractual hours, defaulting to 220.
func HourlyRate(monthlySalary, monthlyHours float64) float64 {
	if monthlySalary <= 0 {
		return 0
	}
	if monthlyHours <= 0 {
		monthlyHours = DefaultMonthlyHours
	}
	return decimal.NewFromFloat(monthlySalary).
		Div(decimal.NewFromFloat(monthlyHours)).
		Round(2).
		InexactFloat64()
}

// OvertimePay values each bucket at hourlyRate * (1 + percentage/100), rounded to cents.
func OvertimePay(summary Summary, hourlyRate float64) PayBreakdown {
	out := PayBreakdown{HourlyRate: hourlyRate, Buckets: make([]BucketPay, 0, len(summary.Buckets))}
	if hourlyRate <= 0 {
		return out
	}
	rate := decimal.NewFromFloat(hourlyRate)
	hundred := decimal.NewFromInt(100)
	total := decimal.Zero
	for _, b := range summary.Buckets {
		premium := decimal.NewFromInt(1).Add(decimal.NewFromFloat(b.Percentage).Div(hundred))
		hourValue := rate.Mul(premium).Round(2)
		amount := hourValue.Mul(decimal.NewFromFloat(b.Hours)).Round(2)
		total = total.Add(amount)
		out.Buckets = append(out.Buckets, BucketPay{
			Percentage: b.Percentage,
			Hours:      b.Hours,
			HourValue:  hourValue.InexactFloat64(),
			Amount:     amount.InexactFloat64(),
		})
	}
	out.Total = total.InexactFloat64()
	return out
}

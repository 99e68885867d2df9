package overtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOvertimePay(t *testing.T) {
	summary := Summary{Buckets: []Bucket{{Percentage: 50, Hours: 2}, {Percentage: 70, Hours: 1}}}

	pay := OvertimePay(summary, 10)

	require.Len(t, pay.Buckets, 2)
	assert.Equal(t, 15.0, pay.Buckets[0].HourValue)
	assert.Equal(t, 30.0, pay.Buckets[0].Amount)
	assert.Equal(t, 17.0, pay.Buckets[1].HourValue)
	assert.Equal(t, 17.0, pay.Buckets[1].Amount)
	assert.Equal(t, 47.0, pay.Total)
}

func TestOvertimePayRoundsToCents(t *testing.T) {
	summary := Summary{Buckets: []Bucket{{Percentage: 50, Hours: 1.5}}}

	pay := OvertimePay(summary, 13.33)

	// 13.33 * 1.5 = 19.995 -> 20.00; 20.00 * 1.5 = 30.00
	assert.Equal(t, 20.0, pay.Buckets[0].HourValue)
	assert.Equal(t, 30.0, pay.Total)
}

func TestOvertimePayWithoutRate(t *testing.T) {
	pay := OvertimePay(Summary{Buckets: []Bucket{{Percentage: 50, Hours: 2}}}, 0)

	assert.Empty(t, pay.Buckets)
	assert.Zero(t, pay.Total)
}

func TestHourlyRate(t *testing.T) {
	assert.Equal(t, 10.0, HourlyRate(2200, 0))
	assert.Equal(t, 15.0, HourlyRate(3000, 200))
	assert.Equal(t, 4.55, HourlyRate(1000, 0))
	assert.Zero(t, HourlyRate(-1, 220))
}

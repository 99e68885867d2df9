package overtime

import "sort"

// Slice is a run of overtime hours paid at one premium.
type Slice struct {
	Hours      float64 `json:"hours"`
	Percentage float64 `json:"percentage"`
}

// widths of the bounded workday brackets, in hours; anything beyond goes to Over5Hours.
var ladder = [...]float64{2, 1, 1, 1}

// Allocate splits overtime across the progressive brackets in order. Rest days put every
// hour at the rest-day premium. Non-positive overtime yields no slices.
func Allocate(overtimeHours float64, pct PercentageSchedule, isRestDay bool) []Slice {
	if overtimeHours <= 0 {
		return nil
	}
	if isRestDay {
		return []Slice{{Hours: overtimeHours, Percentage: pct.RestDay}}
	}

	rates := [...]float64{pct.UpTo2Hours, pct.From2To3Hours, pct.From3To4Hours, pct.From4To5Hours}
	slices := make([]Slice, 0, len(ladder)+1)
	remaining := overtimeHours
	for i, width := range ladder {
		if remaining <= 0 {
			return slices
		}
		take := min(remaining, width)
		slices = append(slices, Slice{Hours: take, Percentage: rates[i]})
		remaining -= take
	}
	if remaining > 0 {
		slices = append(slices, Slice{Hours: remaining, Percentage: pct.Over5Hours})
	}
	return slices
}

type Bucket struct {
	Percentage float64 `json:"percentage"`
	Hours      float64 `json:"hours"`
}

// Buckets groups slice hours by premium value.
type Buckets map[float64]float64

func (b Buckets) Add(slices ...Slice) {
	for _, s := range slices {
		b[s.Percentage] += s.Hours
	}
}

// Sorted lists buckets by ascending percentage.
func (b Buckets) Sorted() []Bucket {
	out := make([]Bucket, 0, len(b))
	for pct, hours := range b {
		out = append(out, Bucket{Percentage: pct, Hours: hours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Percentage < out[j].Percentage })
	return out
}

func (b Buckets) Total() float64 {
	var total float64
	for _, hours := range b {
		total += hours
	}
	return total
}

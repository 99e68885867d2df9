package brackets

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bracket is one progressive range. When Unbounded is set, Max is ignored.
type Bracket struct {
	Min       decimal.Decimal
	Max       decimal.Decimal
	Unbounded bool
	Rate      decimal.Decimal
	Deduction decimal.Decimal
}

func (b Bracket) contains(amount decimal.Decimal) bool {
	if amount.LessThan(b.Min) {
		return false
	}
	return b.Unbounded || amount.LessThanOrEqual(b.Max)
}

type Table struct {
	Name     string
	Brackets []Bracket
}

// Result of evaluating a table. Matched is false when the amount was not positive
// or fell outside every bracket; Rate, Deduction and Value are then zero.
type Result struct {
	Rate      decimal.Decimal
	Deduction decimal.Decimal
	Value     decimal.Decimal
	Matched   bool
}

// Evaluate returns max(0, amount*rate - deduction) for the bracket holding amount.
// An amount sitting between two cent-granular edges belongs to the upper bracket.
func (t Table) Evaluate(amount decimal.Decimal) Result {
	if !amount.IsPositive() || len(t.Brackets) == 0 {
		return Result{}
	}
	if amount.LessThan(t.Brackets[0].Min) {
		return Result{}
	}

	for i, b := range t.Brackets {
		if !b.contains(amount) {
			if i+1 < len(t.Brackets) && amount.LessThan(t.Brackets[i+1].Min) && amount.GreaterThan(b.Max) {
				return apply(t.Brackets[i+1], amount)
			}
			continue
		}
		return apply(b, amount)
	}
	return Result{}
}

func apply(b Bracket, amount decimal.Decimal) Result {
	value := amount.Mul(b.Rate).Sub(b.Deduction)
	if value.IsNegative() {
		value = decimal.Zero
	}
	return Result{Rate: b.Rate, Deduction: b.Deduction, Value: value, Matched: true}
}

// Validate checks that brackets are ordered, non-overlapping and end unbounded.
func (t Table) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("table %q: no brackets", t.Name)
	}
	for i, b := range t.Brackets {
		if b.Rate.IsNegative() || b.Deduction.IsNegative() {
			return fmt.Errorf("table %q bracket %d: negative rate or deduction", t.Name, i)
		}
		last := i == len(t.Brackets)-1
		if b.Unbounded && !last {
			return fmt.Errorf("table %q bracket %d: only the last bracket may be unbounded", t.Name, i)
		}
		if last && !b.Unbounded {
			return fmt.Errorf("table %q: last bracket must be unbounded", t.Name)
		}
		if !b.Unbounded && b.Max.LessThan(b.Min) {
			return fmt.Errorf("table %q bracket %d: max below min", t.Name, i)
		}
		if i > 0 && !t.Brackets[i-1].Max.LessThan(b.Min) {
			return fmt.Errorf("table %q bracket %d: overlaps previous bracket", t.Name, i)
		}
	}
	return nil
}

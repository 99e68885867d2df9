package salary

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Calculator struct {
	rules Rules
}

func NewCalculator(rules Rules) *Calculator {
	return &Calculator{rules: rules}
}

var defaultCalculator = NewCalculator(DefaultRules())

// Calculate runs the default calculator.
func Calculate(in Input) Result {
	return defaultCalculator.Calculate(in)
}

func (c *Calculator) Rules() Rules {
	return c.rules
}

// Calculate computes INSS, both IRRF regimes and the two net salaries.
// INSS and IRRF are rounded to cents and the nets are derived from the rounded values.
func (c *Calculator) Calculate(in Input) Result {
	gross := decimal.NewFromFloat(in.GrossSalary)
	other := decimal.NewFromFloat(in.OtherDiscounts)
	benefits := decimal.NewFromFloat(in.Benefits)
	alimony := decimal.NewFromFloat(in.Alimony)
	dependents := decimal.NewFromInt(int64(in.Dependents))

	inss := c.inss(gross)

	baseTraditional := gross.Sub(inss).Sub(dependents.Mul(c.rules.DependentDeduction)).Sub(alimony)
	irrfTraditional := c.irrf(baseTraditional)

	// Alimony stays out of the simplified base but is still paid out of net below.
	baseSimplified := gross.Sub(c.rules.SimplifiedDeduction)
	irrfSimplified := c.irrf(baseSimplified)

	common := gross.Sub(inss).Sub(other).Sub(alimony).Add(benefits)
	netTraditional := common.Sub(irrfTraditional)
	netSimplified := common.Sub(irrfSimplified)

	result := Result{
		INSS:                    inss.InexactFloat64(),
		BaseTraditional:         baseTraditional.InexactFloat64(),
		BaseSimplified:          baseSimplified.InexactFloat64(),
		IRRFTraditional:         irrfTraditional.InexactFloat64(),
		IRRFSimplified:          irrfSimplified.InexactFloat64(),
		NetTraditional:          netTraditional.InexactFloat64(),
		NetSimplified:           netSimplified.InexactFloat64(),
		IRRFOptionalTraditional: c.optional(irrfTraditional),
		IRRFOptionalSimplified:  c.optional(irrfSimplified),
	}
	result.Regime = BestRegime(result)
	return result
}

// INSS returns the social-security contribution for a gross amount.
func (c *Calculator) INSS(gross float64) float64 {
	return c.inss(decimal.NewFromFloat(gross)).InexactFloat64()
}

// IRRF evaluates the income tax table at an already-reduced base.
func (c *Calculator) IRRF(base float64) float64 {
	return c.irrf(decimal.NewFromFloat(base)).InexactFloat64()
}

func (c *Calculator) inss(gross decimal.Decimal) decimal.Decimal {
	if gross.GreaterThan(c.rules.INSSCeilingBase) {
		return c.rules.INSSCeilingValue
	}
	return c.rules.INSS.Evaluate(gross).Value.Round(2)
}

func (c *Calculator) irrf(base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return c.rules.IRRF.Evaluate(base).Value.Round(2)
}

func (c *Calculator) optional(irrf decimal.Decimal) bool {
	return irrf.IsPositive() && irrf.LessThan(c.rules.MinimumCollectible)
}

// BestRegime reports which regime leaves the higher net pay. Ties favour the simplified regime.
func BestRegime(r Result) Regime {
	if r.NetTraditional > r.NetSimplified {
		return RegimeTraditional
	}
	return RegimeSimplified
}

// Validate rejects negative amounts and dependents.
func Validate(in Input) error {
	switch {
	case in.GrossSalary < 0:
		return fmt.Errorf("%w: grossSalary must not be negative", ErrInvalidInput)
	case in.Dependents < 0:
		return fmt.Errorf("%w: dependents must not be negative", ErrInvalidInput)
	case in.OtherDiscounts < 0:
		return fmt.Errorf("%w: otherDiscounts must not be negative", ErrInvalidInput)
	case in.Benefits < 0:
		return fmt.Errorf("%w: benefits must not be negative", ErrInvalidInput)
	case in.Alimony < 0:
		return fmt.Errorf("%w: alimony must not be negative", ErrInvalidInput)
	}
	return nil
}

// Clamp floors every negative field at zero.
func Clamp(in Input) Input {
	in.GrossSalary = max(in.GrossSalary, 0)
	in.Dependents = max(in.Dependents, 0)
	in.OtherDiscounts = max(in.OtherDiscounts, 0)
	in.Benefits = max(in.Benefits, 0)
	in.Alimony = max(in.Alimony, 0)
	return in
}

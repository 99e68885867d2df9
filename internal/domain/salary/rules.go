package salary

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"calcfolha/internal/domain/brackets"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rules holds the statutory tables and constants for one tax year.
type Rules struct {
	Year                int
	INSS                brackets.Table
	INSSCeilingBase     decimal.Decimal
	INSSCeilingValue    decimal.Decimal
	IRRF                brackets.Table
	DependentDeduction  decimal.Decimal
	SimplifiedDeduction decimal.Decimal
	MinimumCollectible  decimal.Decimal
}

type bracketRow struct {
	Min       float64  `yaml:"min"`
	Max       *float64 `yaml:"max"`
	Rate      float64  `yaml:"rate"`
	Deduction float64  `yaml:"deduction"`
}

type rulesFile struct {
	Year int `yaml:"year"`
	INSS struct {
		CeilingBase  float64       `yaml:"ceilingBase"`
		CeilingValue float64       `yaml:"ceilingValue"`
		Brackets     []bracketRow `yaml:"brackets"`
	} `yaml:"inss"`
	IRRF struct {
		DependentDeduction  float64       `yaml:"dependentDeduction"`
		SimplifiedDeduction float64       `yaml:"simplifiedDeduction"`
		MinimumCollectible  float64       `yaml:"minimumCollectible"`
		Brackets            []bracketRow `yaml:"brackets"`
	} `yaml:"irrf"`
}

var defaultRules = mustParseRules(defaultRulesYAML)

// DefaultRules returns the embedded tables.
func DefaultRules() Rules {
	return defaultRules
}

// LoadRules reads a rules file from disk. An empty path yields the embedded tables.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}

	rules := Rules{
		Year:                file.Year,
		INSS:                toTable("inss", file.INSS.Brackets),
		INSSCeilingBase:     decimal.NewFromFloat(file.INSS.CeilingBase),
		INSSCeilingValue:    decimal.NewFromFloat(file.INSS.CeilingValue),
		IRRF:                toTable("irrf", file.IRRF.Brackets),
		DependentDeduction:  decimal.NewFromFloat(file.IRRF.DependentDeduction),
		SimplifiedDeduction: decimal.NewFromFloat(file.IRRF.SimplifiedDeduction),
		MinimumCollectible:  decimal.NewFromFloat(file.IRRF.MinimumCollectible),
	}
	if err := rules.INSS.Validate(); err != nil {
		return Rules{}, err
	}
	if err := rules.IRRF.Validate(); err != nil {
		return Rules{}, err
	}
	if !rules.INSSCeilingBase.IsPositive() || !rules.INSSCeilingValue.IsPositive() {
		return Rules{}, fmt.Errorf("inss ceiling must be positive")
	}
	return rules, nil
}

func toTable(name string, rows []bracketRow) brackets.Table {
	table := brackets.Table{Name: name, Brackets: make([]brackets.Bracket, 0, len(rows))}
	for _, row := range rows {
		b := brackets.Bracket{
			Min:       decimal.NewFromFloat(row.Min),
			Rate:      decimal.NewFromFloat(row.Rate),
			Deduction: decimal.NewFromFloat(row.Deduction),
		}
		if row.Max == nil {
			b.Unbounded = true
		} else {
			b.Max = decimal.NewFromFloat(*row.Max)
		}
		table.Brackets = append(table.Brackets, b)
	}
	return table
}

func mustParseRules(data []byte) Rules {
	rules, err := ParseRules(data)
	if err != nil {
		panic(fmt.Sprintf("embedded salary rules: %v", err))
	}
	return rules
}

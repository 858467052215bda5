/*
Package demo implements every engine provider with constant formulas.

PURPOSE:
  A deterministic stand-in for official statistical and actuarial tables,
  used by tests, the CLI and the demo HTTP scenarios. Every figure is pure
  arithmetic on its arguments; nothing is read from disk.

FORMULAS:
  Annual index:     6.0% for years <= 2024, 4.5% afterwards
  Quarterly index:  1.0% + 0.1% * quarter (Q1 1.1% ... Q4 1.4%)
  Special index:    x1.1592 for capital accrued up to 1999
  Life table:       base(g) - 0.75 * (age - 60) + 0.04 * (window - 2025) years
  Wage growth:      3.0% per year relative to the anchor year
  CPI:              2.5% per year, mid-year (June) convention
  Contribution:     19.52% of the wage, absence factor in [0, 1]
  Sub-account:      4.0% per year

  Data covers calendar years [FirstYear, LastYear]; outside it lookups
  report missing data.

USAGE:
  eng, err := engine.New(demo.New())

SEE ALSO:
  - engine/providers.go: The interfaces implemented here
  - providers/table: Table-backed bundle, can be seeded from this one
*/
package demo

import (
	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// Kind is the bundle kind reported in Assumptions.
const Kind = "demo"

// Calendar coverage of the demo data.
const (
	FirstYear = 1950
	LastYear  = 2150
)

// BaseYear is the default anchor year of the demo macro vintage.
const BaseYear = 2025

func covered(year int) bool { return year >= FirstYear && year <= LastYear }

// New returns the complete demo bundle.
func New() engine.Providers {
	return engine.Providers{
		Kind:           Kind,
		Annual:         AnnualIndex{},
		Quarterly:      QuarterlyIndex{},
		InitialCapital: SpecialIndex{},
		LifeTable:      LifeTable{},
		Macro:          Macro{},
		Contribution:   ContributionRule{},
		SubAccount:     SubAccount{},
	}
}

// Compile-time checks
var (
	_ engine.AnnualIndexProvider         = AnnualIndex{}
	_ engine.QuarterlyIndexProvider      = QuarterlyIndex{}
	_ engine.InitialCapitalIndexProvider = SpecialIndex{}
	_ engine.LifeExpectancyProvider      = LifeTable{}
	_ engine.MacroProvider               = Macro{}
	_ engine.ContributionRuleProvider    = ContributionRule{}
	_ engine.SubAccountValorizer         = SubAccount{}
)

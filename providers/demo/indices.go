package demo

import (
	"fmt"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// =============================================================================
// VALORIZATION INDICES
// =============================================================================

const (
	annualFractionHistoric  = 0.06
	annualFractionProjected = 0.045
	annualSwitchYear        = 2025

	quarterlyBase = 0.010
	quarterlyStep = 0.001

	specialMultiplier = 1.1592
	specialCutoffYear = 1999
)

// AnnualIndex is the demo yearly valorization index.
type AnnualIndex struct{}

func (AnnualIndex) SourceID() string { return "demo-annual-v1" }

func (AnnualIndex) AnnualIndex(year int) (engine.Index, bool) {
	if !covered(year) {
		return engine.Index{}, false
	}
	f := annualFractionProjected
	if year < annualSwitchYear {
		f = annualFractionHistoric
	}
	return engine.Index{Fraction: f, ID: fmt.Sprintf("demo-annual-%d", year)}, true
}

// QuarterlyIndex is the demo quarterly valorization index with the calendar
// month-to-quarter mapping.
type QuarterlyIndex struct{}

func (QuarterlyIndex) SourceID() string { return "demo-quarterly-v1" }

func (QuarterlyIndex) QuarterFor(month int) engine.Quarter {
	return engine.Quarter((month-1)/3 + 1)
}

func (QuarterlyIndex) QuarterlyIndex(year int, q engine.Quarter) (engine.Index, bool) {
	if !covered(year) || !q.Valid() {
		return engine.Index{}, false
	}
	return engine.Index{
		Fraction: quarterlyBase + quarterlyStep*float64(q),
		ID:       fmt.Sprintf("demo-%s-%d", q, year),
	}, true
}

// SpecialIndex is the demo one-time initial capital multiplier.
type SpecialIndex struct{}

func (SpecialIndex) SourceID() string { return "demo-initial-capital-v1" }

func (SpecialIndex) SpecialIndex() (engine.SpecialIndex, bool) {
	return engine.SpecialIndex{
		Multiplier: specialMultiplier,
		CutoffYear: specialCutoffYear,
		ID:         fmt.Sprintf("demo-special-%d", specialCutoffYear),
	}, true
}

// SubAccount valorizes a sub-account balance at a constant yearly rate.
type SubAccount struct{}

const subAccountFraction = 0.04

func (SubAccount) SourceID() string { return "demo-subaccount-v1" }

func (SubAccount) Valorization(fromYear, toYear int) (engine.Index, bool) {
	if !covered(fromYear) || !covered(toYear) {
		return engine.Index{}, false
	}
	id := fmt.Sprintf("demo-subaccount-%d-%d", fromYear, toYear)
	if toYear <= fromYear {
		return engine.Index{Fraction: 0, ID: id}, true
	}
	return engine.Index{Fraction: compound(subAccountFraction, float64(toYear-fromYear)) - 1, ID: id}, true
}

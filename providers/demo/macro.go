package demo

import (
	"fmt"
	"math"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// =============================================================================
// MACRO, CONTRIBUTION RULE, LIFE TABLE
// =============================================================================

const (
	wageGrowth = 0.03
	cpiRate    = 0.025

	// Month at which a year's price level is measured.
	cpiReferenceMonth = 6

	contributionRate = 0.1952
)

func compound(rate, years float64) float64 { return math.Pow(1+rate, years) }

// Macro projects wages and prices at constant rates.
type Macro struct{}

func (Macro) SourceID() string { return fmt.Sprintf("demo-macro-%d", BaseYear) }

func (Macro) BaseYear() int { return BaseYear }

func (Macro) WageGrowthFactor(anchorYear, year int) (float64, bool) {
	if !covered(anchorYear) || !covered(year) {
		return 0, false
	}
	return compound(wageGrowth, float64(year-anchorYear)), true
}

func (Macro) CPIDiscountFactor(claimYear, claimMonth, anchorYear int) (float64, bool) {
	if !covered(claimYear) || !covered(anchorYear) || claimMonth < 1 || claimMonth > 12 {
		return 0, false
	}
	years := float64(claimYear-anchorYear) + float64(claimMonth-cpiReferenceMonth)/12
	return compound(cpiRate, years), true
}

// ContributionRule is the demo contribution rule.
type ContributionRule struct{}

func (ContributionRule) SourceID() string { return "demo-contribution-19.52" }

func (ContributionRule) Rule() engine.ContributionRule {
	return engine.ContributionRule{
		Rate:       contributionRate,
		AbsenceMin: 0,
		AbsenceMax: 1,
		ID:         "demo-contribution-19.52",
	}
}

// LifeTable is a linear demo life table.
type LifeTable struct{}

const (
	lifeBaseMale      = 21.5
	lifeBaseFemale    = 25.0
	lifeReferenceAge  = 60
	lifeAgeSlope      = 0.75
	lifeYearSlope     = 0.04
	lifeReferenceYear = 2025
)

func (LifeTable) SourceID() string { return "demo-life-v1" }

func (LifeTable) AgeBounds(g engine.Gender) (int, int) {
	if g == engine.Female {
		return 55, 70
	}
	return 60, 70
}

func (t LifeTable) RemainingYears(g engine.Gender, age, windowYear int) (engine.LifeTableEntry, bool) {
	lo, hi := t.AgeBounds(g)
	if !g.Valid() || age < lo || age > hi || !covered(windowYear) {
		return engine.LifeTableEntry{}, false
	}
	base := lifeBaseMale
	if g == engine.Female {
		base = lifeBaseFemale
	}
	years := base - lifeAgeSlope*float64(age-lifeReferenceAge) + lifeYearSlope*float64(windowYear-lifeReferenceYear)
	return engine.LifeTableEntry{Years: years, TableID: fmt.Sprintf("demo-life-%d", windowYear)}, true
}

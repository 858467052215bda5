package engine

import "strings"

// =============================================================================
// PROVIDERS - Contracts for external economic and actuarial data
// =============================================================================
//
// The engine never embeds statistical data. Every figure it needs comes
// through one of the seven interfaces below, so a demo bundle and a bundle
// backed by official tables are interchangeable without touching the
// pipeline. Lookups report absence with ok=false; the stage that asked turns
// that into a MissingDataError.
//
// Fractions are growth rates: 0.10 means +10%.

// Sourced identifies the data set behind a provider. The identifier ends up
// in Output.Assumptions.
type Sourced interface {
	SourceID() string
}

// Index is a single valorization index.
type Index struct {
	Fraction float64
	ID       string
}

// AnnualIndexProvider supplies the yearly valorization index.
type AnnualIndexProvider interface {
	Sourced
	AnnualIndex(year int) (Index, bool)
}

// QuarterlyIndexProvider supplies quarterly indices and the month-to-quarter
// mapping used to derive the entitlement quarter.
type QuarterlyIndexProvider interface {
	Sourced
	QuarterFor(month int) Quarter
	QuarterlyIndex(year int, q Quarter) (Index, bool)
}

// SpecialIndex is the one-time multiplier for capital accrued before the
// reform cutoff year.
type SpecialIndex struct {
	Multiplier float64
	CutoffYear int
	ID         string
}

// InitialCapitalIndexProvider supplies the one-time special index.
type InitialCapitalIndexProvider interface {
	Sourced
	SpecialIndex() (SpecialIndex, bool)
}

// LifeTableEntry is a remaining-life figure in years.
type LifeTableEntry struct {
	Years   float64
	TableID string
}

// LifeExpectancyProvider supplies remaining-life years from a table edition
// keyed by its window year, and the retirement ages the table covers.
type LifeExpectancyProvider interface {
	Sourced
	AgeBounds(g Gender) (min, max int)
	RemainingYears(g Gender, age, windowYear int) (LifeTableEntry, bool)
}

// MacroProvider supplies wage growth and consumer price projections.
type MacroProvider interface {
	Sourced

	// BaseYear is the default anchor ("today") of the data vintage.
	BaseYear() int

	// WageGrowthFactor is the multiplier turning an anchor-year wage into
	// a wage of the given year. Years before the anchor yield factors below 1
	// under positive growth.
	WageGrowthFactor(anchorYear, year int) (float64, bool)

	// CPIDiscountFactor converts a nominal amount paid in claimYear/claimMonth
	// into anchor-year terms. It is above 1 when the anchor precedes the claim
	// date and below 1 when it follows it.
	CPIDiscountFactor(claimYear, claimMonth, anchorYear int) (float64, bool)
}

// ContributionRule is the contribution rate and accepted absence factor range.
type ContributionRule struct {
	Rate       float64
	AbsenceMin float64
	AbsenceMax float64
	ID         string
}

// ContributionRuleProvider supplies the contribution rule.
type ContributionRuleProvider interface {
	Sourced
	Rule() ContributionRule
}

// SubAccountValorizer supplies the cumulative valorization of a sub-account
// balance between two years, as a single fraction.
type SubAccountValorizer interface {
	Sourced
	Valorization(fromYear, toYear int) (Index, bool)
}

// =============================================================================
// PROVIDER BUNDLE
// =============================================================================

// Providers is one complete set of data sources. Kind names the bundle
// ("demo", "table", ...) and is reported in Assumptions.
type Providers struct {
	Kind           string
	Annual         AnnualIndexProvider
	Quarterly      QuarterlyIndexProvider
	InitialCapital InitialCapitalIndexProvider
	LifeTable      LifeExpectancyProvider
	Macro          MacroProvider
	Contribution   ContributionRuleProvider
	SubAccount     SubAccountValorizer
}

// Validate checks that every provider is present.
func (p Providers) Validate() error {
	var missing []string
	if p.Annual == nil {
		missing = append(missing, "annual")
	}
	if p.Quarterly == nil {
		missing = append(missing, "quarterly")
	}
	if p.InitialCapital == nil {
		missing = append(missing, "initial capital")
	}
	if p.LifeTable == nil {
		missing = append(missing, "life table")
	}
	if p.Macro == nil {
		missing = append(missing, "macro")
	}
	if p.Contribution == nil {
		missing = append(missing, "contribution")
	}
	if p.SubAccount == nil {
		missing = append(missing, "sub-account")
	}
	if len(missing) > 0 {
		return &bundleError{missing: missing}
	}
	return nil
}

type bundleError struct {
	missing []string
}

func (e *bundleError) Error() string {
	return ErrIncompleteBundle.Error() + ": missing " + strings.Join(e.missing, ", ")
}

func (e *bundleError) Unwrap() error { return ErrIncompleteBundle }

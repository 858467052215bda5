package engine

import "fmt"

// =============================================================================
// QUARTERLY FINALIZATION
// =============================================================================
//
// Rule: exactly ONE quarterly index is applied, the latest quarter already
// published when the entitlement quarter begins.
//
//	entitlement Q1 -> Q3 of the previous year
//	entitlement Q2 -> Q4 of the previous year
//	entitlement Q3 -> Q1 of the retirement year
//	entitlement Q4 -> Q2 of the retirement year
//
// FinalizationIndexFor is the only place this mapping exists; the
// explanation text is generated from it too.

// FinalizationIndexFor returns the year and quarter of the single index
// applied for an entitlement in (retirementYear, q).
func FinalizationIndexFor(retirementYear int, q Quarter) (int, Quarter) {
	switch q {
	case Q1:
		return retirementYear - 1, Q3
	case Q2:
		return retirementYear - 1, Q4
	case Q3:
		return retirementYear, Q1
	default:
		return retirementYear, Q2
	}
}

// DescribeFinalization renders the rule as applied for q.
func DescribeFinalization(retirementYear int, q Quarter) string {
	year, iq := FinalizationIndexFor(retirementYear, q)
	return fmt.Sprintf("quarterly finalization: entitlement %s applies one index, %s %d", q, iq, year)
}

// FinalizeQuarterly compounds the last annual-valorized capital by the
// quarterly index selected for the entitlement quarter. With no working
// years the capital is zero and stays zero.
func FinalizeQuarterly(states []AnnualValorizedState, ent EntitlementContext, quarterly QuarterlyIndexProvider) (FinalizationStep, error) {
	before := ZeroMoney()
	if n := len(states); n > 0 {
		before = states[n-1].Capital
	}

	year, iq := FinalizationIndexFor(ent.RetirementYear, ent.Quarter)
	idx, ok := quarterly.QuarterlyIndex(year, iq)
	if !ok {
		return FinalizationStep{}, &MissingDataError{Provider: quarterly.SourceID(), Key: fmt.Sprintf("quarterly index %s %d", iq, year)}
	}
	if err := checkFraction("quarterly finalization", "quarterly index", year, idx.Fraction); err != nil {
		return FinalizationStep{}, err
	}

	after := before.Mul(growth(idx.Fraction)).Round(internalScale)
	if err := checkCapital("quarterly finalization", year, after); err != nil {
		return FinalizationStep{}, err
	}

	return FinalizationStep{
		Quarter:       ent.Quarter,
		IndexYear:     year,
		IndexQuarter:  iq,
		IndexIDs:      []string{idx.ID},
		Fraction:      idx.Fraction,
		CapitalBefore: before,
		CapitalAfter:  after,
	}, nil
}

package engine

import "github.com/shopspring/decimal"

// ComputeContributions converts wages into contributions:
//
//	contribution = wage * rate * absenceFactor
//
// The absence factor is checked against the rule's bounds before any row is
// computed. The result is linear in both wage and absence factor.
func ComputeContributions(wages []YearlyWage, absenceFactor float64, rules ContributionRuleProvider) ([]YearlyContribution, error) {
	rule := rules.Rule()

	if !isFinite(absenceFactor) || absenceFactor < rule.AbsenceMin || absenceFactor > rule.AbsenceMax {
		verr := &ValidationError{}
		verr.add("absence_factor", "must be within [%s, %s]", formatFloat(rule.AbsenceMin), formatFloat(rule.AbsenceMax))
		return nil, verr
	}
	if !isFinite(rule.Rate) || rule.Rate <= 0 || rule.Rate >= 1 {
		return nil, &IntegrityError{Stage: "contributions", Quantity: "contribution rate", Value: formatFloat(rule.Rate)}
	}

	multiplier := decimal.NewFromFloat(rule.Rate).Mul(decimal.NewFromFloat(absenceFactor))

	out := make([]YearlyContribution, len(wages))
	for i, w := range wages {
		out[i] = YearlyContribution{
			Year:         w.Year,
			Wage:         w.AnnualWage,
			Contribution: w.AnnualWage.Mul(multiplier),
		}
	}
	return out, nil
}

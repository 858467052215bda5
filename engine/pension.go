package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CalculatePension converts the base capital into monthly figures:
//
//	monthlyNominal  = base / (lifeYears * 12)
//	monthlyReal     = monthlyNominal * CPIDiscountFactor(claimYear, claimMonth, anchorYear)
//	replacementRate = monthlyReal / grossMonthly
func CalculatePension(base BaseComposition, life LifeExpectancySelection, ent EntitlementContext, anchorYear int, grossMonthly Money, macro MacroProvider) (PensionCalcsResult, error) {
	if base.Base.IsNegative() {
		return PensionCalcsResult{}, &IntegrityError{Stage: "pension", Quantity: "base capital", Value: base.Base.Decimal().String()}
	}
	if !isFinite(life.Years) || life.Years <= 0 {
		return PensionCalcsResult{}, &IntegrityError{Stage: "pension", Quantity: "life years", Value: formatFloat(life.Years)}
	}
	if !grossMonthly.IsPositive() {
		return PensionCalcsResult{}, &IntegrityError{Stage: "pension", Quantity: "gross monthly", Value: grossMonthly.Decimal().String()}
	}

	cpi, ok := macro.CPIDiscountFactor(ent.RetirementYear, ent.ClaimMonth, anchorYear)
	if !ok {
		return PensionCalcsResult{}, &MissingDataError{
			Provider: macro.SourceID(),
			Key:      fmt.Sprintf("cpi %d-%02d anchored at %d", ent.RetirementYear, ent.ClaimMonth, anchorYear),
		}
	}
	if err := checkPositiveFactor("pension", "cpi discount factor", ent.RetirementYear, cpi); err != nil {
		return PensionCalcsResult{}, err
	}

	months := decimal.NewFromFloat(life.Years).Mul(monthsPerYear)
	nominal := base.Base.Div(months)
	realValue := nominal.Mul(decimal.NewFromFloat(cpi))
	rate := realValue.Decimal().Div(grossMonthly.Decimal())

	return PensionCalcsResult{
		MonthlyNominal:  nominal,
		MonthlyReal:     realValue,
		ReplacementRate: rate,
		CPIFactor:       cpi,
	}, nil
}

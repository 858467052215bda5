package engine

import (
	"strconv"

	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// ProjectWages produces one wage row per year in [startYear, retirementYear-1]:
//
//	annualWage = grossMonthly * 12 * WageGrowthFactor(anchorYear, year)
//
// No clamping is applied; caps belong to the macro provider.
func ProjectWages(startYear, retirementYear, anchorYear int, grossMonthly Money, macro MacroProvider) ([]YearlyWage, error) {
	if retirementYear <= startYear {
		return []YearlyWage{}, nil
	}

	annualBase := grossMonthly.Mul(monthsPerYear)
	wages := make([]YearlyWage, 0, retirementYear-startYear)

	for year := startYear; year < retirementYear; year++ {
		factor, ok := macro.WageGrowthFactor(anchorYear, year)
		if !ok {
			return nil, &MissingDataError{Provider: macro.SourceID(), Key: "wage growth " + strconv.Itoa(anchorYear) + "->" + strconv.Itoa(year)}
		}
		if err := checkPositiveFactor("wages", "wage growth factor", year, factor); err != nil {
			return nil, err
		}
		wages = append(wages, YearlyWage{
			Year:       year,
			AnnualWage: annualBase.Mul(decimal.NewFromFloat(factor)),
		})
	}
	return wages, nil
}

func itoa(v int) string { return strconv.Itoa(v) }

package engine

import "github.com/shopspring/decimal"

// ValorizeInitialCapital applies the one-time special index to pre-reform
// capital, then the annual index of every year after the cutoff up to (but
// excluding) the retirement year.
//
// A nil or non-positive capital short-circuits to an empty, not-applied
// result. Otherwise the trail starts with exactly one special entry, is
// strictly chronological, and Amount equals the last entry's amount.
func ValorizeInitialCapital(capital *Money, retirementYear int, special InitialCapitalIndexProvider, annual AnnualIndexProvider) (ValorizedInitialCapital, error) {
	if capital == nil || !capital.IsPositive() {
		return ValorizedInitialCapital{Amount: ZeroMoney(), Trail: []TrailEntry{}}, nil
	}

	si, ok := special.SpecialIndex()
	if !ok {
		return ValorizedInitialCapital{}, &MissingDataError{Provider: special.SourceID(), Key: "special initial capital index"}
	}
	if err := checkPositiveFactor("initial capital", "special multiplier", si.CutoffYear, si.Multiplier); err != nil {
		return ValorizedInitialCapital{}, err
	}

	amount := capital.Mul(decimal.NewFromFloat(si.Multiplier)).Round(internalScale)
	trail := []TrailEntry{{
		Year:    si.CutoffYear,
		IndexID: si.ID,
		Factor:  si.Multiplier,
		Special: true,
		Amount:  amount,
	}}

	for year := si.CutoffYear + 1; year < retirementYear; year++ {
		idx, ok := annual.AnnualIndex(year)
		if !ok {
			return ValorizedInitialCapital{}, &MissingDataError{Provider: annual.SourceID(), Key: "annual index " + itoa(year)}
		}
		if err := checkFraction("initial capital", "annual index", year, idx.Fraction); err != nil {
			return ValorizedInitialCapital{}, err
		}

		amount = amount.Mul(growth(idx.Fraction)).Round(internalScale)
		if err := checkCapital("initial capital", year, amount); err != nil {
			return ValorizedInitialCapital{}, err
		}
		trail = append(trail, TrailEntry{
			Year:    year,
			IndexID: idx.ID,
			Factor:  1 + idx.Fraction,
			Amount:  amount,
		})
	}

	return ValorizedInitialCapital{Applied: true, Amount: amount, Trail: trail}, nil
}

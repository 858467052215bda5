package table

import (
	"fmt"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// Snapshot samples a provider bundle into Tables covering calendar years
// [from, to]. Lookups the bundle cannot answer are left out, so a bundle
// built from the snapshot reports the same gaps as missing data.
//
// Yearly rates are derived from one-year factors: rate[y] is the growth
// from y-1 to y, so the first year of the range has no rate.
func Snapshot(p engine.Providers, from, to int) (*Tables, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if to < from {
		return nil, fmt.Errorf("snapshot range [%d, %d] is empty", from, to)
	}

	t := &Tables{
		Meta: Meta{
			BaseYear:         p.Macro.BaseYear(),
			AnnualSetID:      p.Annual.SourceID(),
			QuarterlySetID:   p.Quarterly.SourceID(),
			InitialCapitalID: p.InitialCapital.SourceID(),
			LifeTableID:      p.LifeTable.SourceID(),
			MacroVintage:     p.Macro.SourceID(),
			SubAccountID:     p.SubAccount.SourceID(),
		},
		MonthQuarters: make([]int, 12),
	}

	for m := 1; m <= 12; m++ {
		t.MonthQuarters[m-1] = int(p.Quarterly.QuarterFor(m))
	}

	for y := from; y <= to; y++ {
		if idx, ok := p.Annual.AnnualIndex(y); ok {
			t.Annual = append(t.Annual, AnnualRow{Year: y, Fraction: idx.Fraction, ID: idx.ID})
		}
		for q := engine.Q1; q <= engine.Q4; q++ {
			if idx, ok := p.Quarterly.QuarterlyIndex(y, q); ok {
				t.Quarterly = append(t.Quarterly, QuarterlyRow{Year: y, Quarter: int(q), Fraction: idx.Fraction, ID: idx.ID})
			}
		}
		if y == from {
			continue
		}
		if f, ok := p.Macro.WageGrowthFactor(y-1, y); ok {
			t.WageGrowth = append(t.WageGrowth, RateRow{Year: y, Rate: f - 1})
		}
		if f, ok := p.Macro.CPIDiscountFactor(y, cpiReferenceMonth, y-1); ok {
			t.CPI = append(t.CPI, RateRow{Year: y, Rate: f - 1})
		}
		if idx, ok := p.SubAccount.Valorization(y-1, y); ok {
			t.SubAccount = append(t.SubAccount, RateRow{Year: y, Rate: idx.Fraction})
		}
	}

	if si, ok := p.InitialCapital.SpecialIndex(); ok {
		t.Special = &SpecialRow{Multiplier: si.Multiplier, CutoffYear: si.CutoffYear, ID: si.ID}
	}

	for _, g := range []engine.Gender{engine.Female, engine.Male} {
		lo, hi := p.LifeTable.AgeBounds(g)
		t.AgeBounds = append(t.AgeBounds, AgeBoundsRow{Gender: string(g), Min: lo, Max: hi})
		for age := lo; age <= hi; age++ {
			for w := from; w <= to; w++ {
				if e, ok := p.LifeTable.RemainingYears(g, age, w); ok {
					t.Life = append(t.Life, LifeRow{Gender: string(g), Age: age, WindowYear: w, Years: e.Years, TableID: e.TableID})
				}
			}
		}
	}

	rule := p.Contribution.Rule()
	t.Contribution = ContributionRow{Rate: rule.Rate, AbsenceMin: rule.AbsenceMin, AbsenceMax: rule.AbsenceMax, ID: rule.ID}

	return t, nil
}

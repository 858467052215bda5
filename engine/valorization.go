package engine

// ValorizeAnnually folds the chronological contribution series left to right:
//
//	capital = (capital + contribution) * (1 + fraction(year))
//
// The running capital is rounded to internalScale places after each year.
// A fraction outside [-0.5, 1.0], a non-finite fraction or a negative capital
// is a data defect and fails the calculation.
func ValorizeAnnually(contributions []YearlyContribution, annual AnnualIndexProvider) ([]AnnualValorizedState, error) {
	states := make([]AnnualValorizedState, 0, len(contributions))
	capital := ZeroMoney()
	prevYear := 0

	for i, c := range contributions {
		if i > 0 && c.Year <= prevYear {
			return nil, &IntegrityError{Stage: "annual valorization", Quantity: "year order", Year: c.Year, Value: itoa(prevYear) + " then " + itoa(c.Year)}
		}
		prevYear = c.Year

		idx, ok := annual.AnnualIndex(c.Year)
		if !ok {
			return nil, &MissingDataError{Provider: annual.SourceID(), Key: "annual index " + itoa(c.Year)}
		}
		if err := checkFraction("annual valorization", "annual index", c.Year, idx.Fraction); err != nil {
			return nil, err
		}

		capital = capital.Add(c.Contribution).Mul(growth(idx.Fraction)).Round(internalScale)
		if err := checkCapital("annual valorization", c.Year, capital); err != nil {
			return nil, err
		}

		states = append(states, AnnualValorizedState{
			Year:         c.Year,
			Wage:         c.Wage,
			Contribution: c.Contribution,
			Index:        idx,
			Capital:      capital,
		})
	}
	return states, nil
}

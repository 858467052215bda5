package engine

import "fmt"

// MinRemainingYears is the floor applied to a life table figure. It keeps
// the annuity divisor away from zero for degenerate table entries.
const MinRemainingYears = 3.0

// SelectLifeExpectancy resolves remaining-life years for the retirement age
// from the table edition whose April-to-March window contains the claim month.
func SelectLifeExpectancy(ent EntitlementContext, gender Gender, life LifeExpectancyProvider) (LifeExpectancySelection, error) {
	window := FiscalWindowFor(ent.RetirementYear, ent.ClaimMonth)

	entry, ok := life.RemainingYears(gender, ent.RetirementAge, window.Year)
	if !ok {
		return LifeExpectancySelection{}, &MissingDataError{
			Provider: life.SourceID(),
			Key:      fmt.Sprintf("life table %s age %d window %d", gender, ent.RetirementAge, window.Year),
		}
	}
	if !isFinite(entry.Years) || entry.Years <= 0 {
		return LifeExpectancySelection{}, &IntegrityError{Stage: "life expectancy", Quantity: "remaining years", Year: window.Year, Value: formatFloat(entry.Years)}
	}

	sel := LifeExpectancySelection{
		Years:      entry.Years,
		WindowYear: window.Year,
		Window:     window,
		TableID:    entry.TableID,
	}
	if sel.Years < MinRemainingYears {
		sel.Years = MinRemainingYears
		sel.FloorApplied = true
	}
	return sel, nil
}

package engine

// Statutory retirement ages used when the caller does not override them.
const (
	DefaultRetirementAgeFemale = 60
	DefaultRetirementAgeMale   = 65
)

// DefaultRetirementAge returns the statutory age for the gender.
func DefaultRetirementAge(g Gender) int {
	if g == Female {
		return DefaultRetirementAgeFemale
	}
	return DefaultRetirementAgeMale
}

// EntitlementRequest is the input of stage 1.
type EntitlementRequest struct {
	BirthYear     int
	Gender        Gender
	RetirementAge *int
	StartWorkYear int
	ClaimMonth    int
}

// ResolveEntitlement resolves retirement age and year and maps the claim
// month to its entitlement quarter.
func ResolveEntitlement(req EntitlementRequest, quarterly QuarterlyIndexProvider, life LifeExpectancyProvider) (EntitlementContext, error) {
	age := DefaultRetirementAge(req.Gender)
	defaulted := true
	if req.RetirementAge != nil {
		age = *req.RetirementAge
		defaulted = false
	}

	lo, hi := life.AgeBounds(req.Gender)
	if age < lo || age > hi {
		return EntitlementContext{}, &AgeBoundsError{Gender: req.Gender, Age: age, Min: lo, Max: hi}
	}

	retirementYear := req.BirthYear + age
	if req.StartWorkYear > retirementYear {
		return EntitlementContext{}, &ChronologyError{StartWorkYear: req.StartWorkYear, RetirementYear: retirementYear}
	}

	claimMonth := req.ClaimMonth
	if claimMonth == 0 {
		claimMonth = DefaultClaimMonth
	}
	if claimMonth < 1 || claimMonth > 12 {
		verr := &ValidationError{}
		verr.add("claim_month", "must be within [1, 12]")
		return EntitlementContext{}, verr
	}

	q := quarterly.QuarterFor(claimMonth)
	if !q.Valid() {
		return EntitlementContext{}, &IntegrityError{Stage: "entitlement", Quantity: "quarter for month " + itoa(claimMonth), Value: itoa(int(q))}
	}

	return EntitlementContext{
		RetirementAge:  age,
		RetirementYear: retirementYear,
		ClaimMonth:     claimMonth,
		Quarter:        q,
		AgeDefaulted:   defaulted,
	}, nil
}

package engine

// =============================================================================
// INPUT VALIDATION - Runs once, before stage 1
// =============================================================================

const (
	DefaultClaimMonth    = 6
	DefaultAbsenceFactor = 1.0

	// MinWorkingAge is the earliest age at which contributions can start.
	MinWorkingAge = 15

	minCalendarYear = 1900
	maxCalendarYear = 2200
)

// ValidateInput checks field-level rules and returns a normalized copy of in
// with defaults filled (claim month, absence factor, anchor year). All
// invalid fields are reported together in a *ValidationError.
//
// Rules that depend on provider data (age bounds, absence bounds) and rules
// spanning resolved values (start of work vs retirement year) are enforced
// by the stages that own them.
func ValidateInput(in Input, defaultAnchorYear int) (Input, error) {
	verr := &ValidationError{}

	if in.BirthYear < minCalendarYear || in.BirthYear > maxCalendarYear {
		verr.add("birth_year", "must be within [%d, %d]", minCalendarYear, maxCalendarYear)
	}
	if !in.Gender.Valid() {
		verr.add("gender", "must be %q or %q", Male, Female)
	}
	if in.StartWorkYear < in.BirthYear+MinWorkingAge {
		verr.add("start_work_year", "must be at least birth year + %d", MinWorkingAge)
	}
	if !in.GrossMonthly.IsPositive() {
		verr.add("gross_monthly", "must be positive")
	}
	if in.RetirementAge != nil && (*in.RetirementAge < MinWorkingAge || *in.RetirementAge > 100) {
		verr.add("retirement_age", "must be within [%d, 100]", MinWorkingAge)
	}
	if in.InitialCapital != nil && in.InitialCapital.IsNegative() {
		verr.add("initial_capital", "must not be negative")
	}
	if in.SubAccountBalance != nil && in.SubAccountBalance.IsNegative() {
		verr.add("sub_account_balance", "must not be negative")
	}
	if in.AbsenceFactor != nil && !isFinite(*in.AbsenceFactor) {
		verr.add("absence_factor", "must be a finite number")
	}
	if in.ClaimMonth != nil && (*in.ClaimMonth < 1 || *in.ClaimMonth > 12) {
		verr.add("claim_month", "must be within [1, 12]")
	}
	if in.AnchorYear != nil && (*in.AnchorYear < minCalendarYear || *in.AnchorYear > maxCalendarYear) {
		verr.add("anchor_year", "must be within [%d, %d]", minCalendarYear, maxCalendarYear)
	}

	if len(verr.Fields) > 0 {
		return Input{}, verr
	}

	out := in
	if out.ClaimMonth == nil {
		out.ClaimMonth = intPtr(DefaultClaimMonth)
	}
	if out.AbsenceFactor == nil {
		f := DefaultAbsenceFactor
		out.AbsenceFactor = &f
	}
	if out.AnchorYear == nil {
		out.AnchorYear = intPtr(defaultAnchorYear)
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

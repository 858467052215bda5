package engine_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/demo"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newDemoEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(demo.New(), engine.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return eng
}

// referenceInput is a man born 1990 who started work in 2010 earning 6500.
func referenceInput(t *testing.T) engine.Input {
	return engine.Input{
		BirthYear:     1990,
		Gender:        engine.Male,
		StartWorkYear: 2010,
		GrossMonthly:  money(t, "6500"),
		ClaimMonth:    intp(6),
	}
}

func floatp(v float64) *float64 { return &v }

var outputComparers = cmp.Options{
	cmp.Comparer(func(a, b engine.Money) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
}

// =============================================================================
// PIPELINE PROPERTIES
// =============================================================================

func TestCalculate_ReferenceScenario(t *testing.T) {
	// GIVEN: The reference worker with the demo bundle
	// WHEN: Calculating with defaults
	// THEN: Retirement at 65 in 2055, one trajectory row per year 2010-2054

	out, err := newDemoEngine(t).Calculate(referenceInput(t))
	require.NoError(t, err)

	assert.Equal(t, 65, out.Scenario.RetirementAge)
	assert.Equal(t, 2055, out.Scenario.RetirementYear)
	assert.Equal(t, engine.Q2, out.Scenario.Quarter)
	assert.Equal(t, demo.BaseYear, out.Scenario.AnchorYear)

	require.Len(t, out.Trajectory, 45)
	assert.Equal(t, 2010, out.Trajectory[0].Year)
	assert.Equal(t, 2054, out.Trajectory[44].Year)
	for i, row := range out.Trajectory {
		assert.False(t, row.Wage.IsNegative())
		assert.False(t, row.Contribution.IsNegative())
		if i > 0 {
			assert.True(t, row.CumulativeCapital.GreaterThan(out.Trajectory[i-1].CumulativeCapital))
		}
	}

	assert.True(t, out.MonthlyNominal.IsPositive())
	assert.True(t, out.MonthlyReal.IsPositive())
	assert.True(t, out.ReplacementRate.IsPositive())

	assert.Equal(t, 2054, out.Finalization.IndexYear)
	assert.Equal(t, engine.Q4, out.Finalization.IndexQuarter)
	assert.Equal(t, []string{"demo-Q4-2054"}, out.Finalization.IndexIDs)

	assert.Equal(t, 2055, out.LifeExpectancy.WindowYear)
	assert.InDelta(t, 18.95, out.LifeExpectancy.Years, 1e-9)
}

func TestCalculate_AssumptionsNameEverySource(t *testing.T) {
	out, err := newDemoEngine(t).Calculate(referenceInput(t))
	require.NoError(t, err)

	assert.Equal(t, engine.Assumptions{
		ProviderKind:        "demo",
		AnnualIndexSet:      "demo-annual-v1",
		QuarterlyIndexSet:   "demo-quarterly-v1",
		InitialCapitalIndex: "demo-initial-capital-v1",
		LifeTable:           "demo-life-v1",
		MacroVintage:        "demo-macro-2025",
		ContributionRule:    "demo-contribution-19.52",
		SubAccountIndex:     "demo-subaccount-v1",
		EngineVersion:       engine.EngineVersion,
	}, out.Assumptions)
}

func TestCalculate_Deterministic(t *testing.T) {
	// GIVEN: One input and one bundle
	// WHEN: Calculating twice
	// THEN: Outputs are identical, down to the serialized bytes

	eng := newDemoEngine(t)
	in := referenceInput(t)
	capital := money(t, "25000")
	in.InitialCapital = &capital

	first, err := eng.Calculate(in)
	require.NoError(t, err)
	second, err := eng.Calculate(in)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, outputComparers); diff != "" {
		t.Errorf("outputs differ (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCalculate_ConcurrentCallersAgree(t *testing.T) {
	eng := newDemoEngine(t)
	want, err := eng.Calculate(referenceInput(t))
	require.NoError(t, err)

	in := referenceInput(t)
	var wg sync.WaitGroup
	results := make([]*engine.Output, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = eng.Calculate(in)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.NotNil(t, got)
		assert.Empty(t, cmp.Diff(want, got, outputComparers))
	}
}

func TestCalculate_HigherWageHigherPension(t *testing.T) {
	eng := newDemoEngine(t)

	low, err := eng.Calculate(referenceInput(t))
	require.NoError(t, err)

	in := referenceInput(t)
	in.GrossMonthly = money(t, "13000")
	high, err := eng.Calculate(in)
	require.NoError(t, err)

	assert.True(t, high.MonthlyNominal.GreaterThan(low.MonthlyNominal))
	assert.True(t, high.MonthlyReal.GreaterThan(low.MonthlyReal))
}

func TestCalculate_AbsenceLowersPension(t *testing.T) {
	eng := newDemoEngine(t)

	full, err := eng.Calculate(referenceInput(t))
	require.NoError(t, err)

	in := referenceInput(t)
	in.AbsenceFactor = floatp(0.5)
	partial, err := eng.Calculate(in)
	require.NoError(t, err)

	assert.True(t, partial.MonthlyNominal.LessThan(full.MonthlyNominal))
}

func TestCalculate_LaterRetirementHigherPension(t *testing.T) {
	eng := newDemoEngine(t)

	in := referenceInput(t)
	in.RetirementAge = intp(62)
	early, err := eng.Calculate(in)
	require.NoError(t, err)

	in.RetirementAge = intp(67)
	late, err := eng.Calculate(in)
	require.NoError(t, err)

	assert.Len(t, early.Trajectory, 42)
	assert.Len(t, late.Trajectory, 47)
	assert.True(t, late.MonthlyNominal.GreaterThan(early.MonthlyNominal))
}

func TestCalculate_RealVersusNominalByAnchor(t *testing.T) {
	// GIVEN: Retirement in June 2055
	// WHEN: The anchor is the claim year, a later year, or an earlier year
	// THEN: Real equals, does not exceed, or is not below nominal

	eng := newDemoEngine(t)

	for _, tc := range []struct {
		name   string
		anchor int
		check  func(nominal, actual engine.Money) bool
	}{
		{"same year", 2055, func(n, r engine.Money) bool { return r.Equal(n) }},
		{"later anchor", 2060, func(n, r engine.Money) bool { return !r.GreaterThan(n) }},
		{"earlier anchor", 2030, func(n, r engine.Money) bool { return !r.LessThan(n) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			in := referenceInput(t)
			in.AnchorYear = intp(tc.anchor)

			out, err := eng.Calculate(in)
			require.NoError(t, err)
			assert.True(t, tc.check(out.MonthlyNominal, out.MonthlyReal), "nominal %s real %s", out.MonthlyNominal, out.MonthlyReal)
		})
	}
}

func TestCalculate_InitialCapitalAndSubAccountRaiseBase(t *testing.T) {
	eng := newDemoEngine(t)

	plain, err := eng.Calculate(referenceInput(t))
	require.NoError(t, err)

	in := referenceInput(t)
	capital := money(t, "50000")
	sub := money(t, "10000")
	in.InitialCapital = &capital
	in.SubAccountBalance = &sub
	out, err := eng.Calculate(in)
	require.NoError(t, err)

	assert.True(t, out.InitialCapital.Applied)
	require.NotEmpty(t, out.InitialCapital.Trail)
	assert.True(t, out.InitialCapital.Trail[0].Special)
	assert.True(t, out.InitialCapital.Amount.Equal(out.InitialCapital.Trail[len(out.InitialCapital.Trail)-1].Amount))
	assert.True(t, out.Composition.SubAccount.GreaterThan(sub))
	assert.True(t, out.Composition.Base.GreaterThan(plain.Composition.Base))
	assert.True(t, out.MonthlyNominal.GreaterThan(plain.MonthlyNominal))
}

func TestCalculate_NoWorkingYears(t *testing.T) {
	// GIVEN: A woman who starts work in her retirement year
	// WHEN: Calculating
	// THEN: Empty trajectory and a zero pension, not an error

	out, err := newDemoEngine(t).Calculate(engine.Input{
		BirthYear:     1990,
		Gender:        engine.Female,
		StartWorkYear: 2050,
		GrossMonthly:  money(t, "5000"),
	})
	require.NoError(t, err)

	assert.Empty(t, out.Trajectory)
	assert.True(t, out.Composition.Base.IsZero())
	assert.True(t, out.MonthlyNominal.IsZero())
	assert.True(t, out.ReplacementRate.IsZero())
}

func TestCalculate_ExplainersNarrateRules(t *testing.T) {
	out, err := newDemoEngine(t).Calculate(referenceInput(t))
	require.NoError(t, err)

	require.NotEmpty(t, out.Explain)
	assert.Contains(t, out.Explain[0], engine.EngineVersion)

	var finalization, initial string
	for _, line := range out.Explain {
		switch {
		case strings.HasPrefix(line, "quarterly finalization"):
			finalization = line
		case strings.HasPrefix(line, "initial capital"):
			initial = line
		}
	}
	assert.Contains(t, finalization, "Q4 2054")
	assert.Contains(t, initial, "not applied")
}

// =============================================================================
// FAILURES
// =============================================================================

func TestCalculate_InvalidInputReportsEveryField(t *testing.T) {
	_, err := newDemoEngine(t).Calculate(engine.Input{
		BirthYear:     1800,
		Gender:        "X",
		StartWorkYear: 1700,
	})

	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	assert.ElementsMatch(t, []string{"birth_year", "gender", "start_work_year", "gross_monthly"}, fields)
	assert.True(t, engine.IsClientError(err))
}

func TestCalculate_AbsenceOutsideRule(t *testing.T) {
	in := referenceInput(t)
	in.AbsenceFactor = floatp(1.4)

	out, err := newDemoEngine(t).Calculate(in)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, engine.ErrValidation))
}

func TestCalculate_OutsideProviderCoverage(t *testing.T) {
	in := engine.Input{
		BirthYear:     1920,
		Gender:        engine.Male,
		StartWorkYear: 1940,
		GrossMonthly:  money(t, "1000"),
	}

	out, err := newDemoEngine(t).Calculate(in)
	assert.Nil(t, out)
	assert.True(t, engine.IsMissingData(err))
	assert.False(t, engine.IsClientError(err))
}

func TestNew_IncompleteBundle(t *testing.T) {
	p := demo.New()
	p.Macro = nil
	p.SubAccount = nil

	_, err := engine.New(p)
	require.ErrorIs(t, err, engine.ErrIncompleteBundle)
	assert.Contains(t, err.Error(), "macro, sub-account")
}

func TestValidateInput_FillsDefaults(t *testing.T) {
	in := referenceInput(t)
	in.ClaimMonth = nil

	got, err := engine.ValidateInput(in, 2031)
	require.NoError(t, err)

	assert.Equal(t, engine.DefaultClaimMonth, *got.ClaimMonth)
	assert.Equal(t, engine.DefaultAbsenceFactor, *got.AbsenceFactor)
	assert.Equal(t, 2031, *got.AnchorYear)
	assert.Nil(t, in.AnchorYear, "caller input is not mutated")
}

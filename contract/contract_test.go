package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamio90/zus-retirement-simulator-sub000/contract"
	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/demo"
)

func money(t *testing.T, s string) engine.Money {
	t.Helper()
	m, err := engine.ParseMoney(s)
	require.NoError(t, err)
	return m
}

// =============================================================================
// CONTRIBUTION BASES
// =============================================================================

func TestContributionBase_PerCategory(t *testing.T) {
	for _, tc := range []struct {
		name     string
		contract contract.Contract
		base     string
	}{
		{"employment", contract.Employment{GrossMonthly: money(t, "6500")}, "6500"},
		{"civil law", contract.CivilLaw{GrossMonthly: money(t, "3000")}, "3000"},
		{"civil law student", contract.CivilLaw{GrossMonthly: money(t, "3000"), StudentUnder26: true}, "0"},
		{"self-employed above minimum", contract.SelfEmployed{DeclaredBase: money(t, "9000")}, "9000"},
		{"self-employed below minimum", contract.SelfEmployed{DeclaredBase: money(t, "1000")}, "5203.8"},
		{"self-employed preferential", contract.SelfEmployed{DeclaredBase: money(t, "1000"), Preferential: true}, "1399.8"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.contract.ContributionBase()
			assert.True(t, got.Equal(money(t, tc.base)), "got %s", got)
		})
	}
}

func TestBaseRatio(t *testing.T) {
	assert.Equal(t, 1.0, contract.BaseRatio(contract.Employment{GrossMonthly: money(t, "6500")}))
	assert.Equal(t, 0.0, contract.BaseRatio(contract.CivilLaw{GrossMonthly: money(t, "3000"), StudentUnder26: true}))
	assert.Equal(t, 1.0, contract.BaseRatio(contract.SelfEmployed{DeclaredBase: money(t, "100")}))
}

// =============================================================================
// APPLY
// =============================================================================

func TestApply_StudentContributesNothing(t *testing.T) {
	// GIVEN: A student under 26 on a civil-law contract
	// WHEN: Calculating through the engine
	// THEN: The pension is zero but the income is still the reference wage

	in, err := contract.Apply(contract.CivilLaw{GrossMonthly: money(t, "3000"), StudentUnder26: true}, engine.Input{
		BirthYear:     2004,
		Gender:        engine.Female,
		StartWorkYear: 2023,
	})
	require.NoError(t, err)
	assert.True(t, in.GrossMonthly.Equal(money(t, "3000")))
	require.NotNil(t, in.AbsenceFactor)
	assert.Equal(t, 0.0, *in.AbsenceFactor)

	out, err := engine.Calculate(in, demo.New())
	require.NoError(t, err)
	assert.True(t, out.MonthlyNominal.IsZero())
}

func TestApply_EmploymentKeepsAbsenceFactor(t *testing.T) {
	absence := 0.8
	in, err := contract.Apply(contract.Employment{GrossMonthly: money(t, "6500")}, engine.Input{AbsenceFactor: &absence})
	require.NoError(t, err)
	assert.Equal(t, 0.8, *in.AbsenceFactor)
	assert.True(t, in.GrossMonthly.Equal(money(t, "6500")))
}

func TestApply_InvalidContract(t *testing.T) {
	_, err := contract.Apply(contract.Employment{}, engine.Input{})
	assert.ErrorIs(t, err, contract.ErrInvalid)

	_, err = contract.Apply(contract.SelfEmployed{DeclaredBase: money(t, "-1")}, engine.Input{})
	assert.ErrorIs(t, err, contract.ErrInvalid)
}

// =============================================================================
// JSON
// =============================================================================

func TestDecode_TaggedForms(t *testing.T) {
	c, err := contract.Decode([]byte(`{"type": "self_employed", "declared_base": "5000.50", "preferential": true}`))
	require.NoError(t, err)

	se, ok := c.(contract.SelfEmployed)
	require.True(t, ok)
	assert.True(t, se.DeclaredBase.Equal(money(t, "5000.50")))
	assert.True(t, se.Preferential)

	c, err = contract.Decode([]byte(`{"type": "civil_law", "gross_monthly": 2500, "student_under_26": true}`))
	require.NoError(t, err)
	assert.Equal(t, contract.TypeCivilLaw, c.Type())
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := contract.Decode([]byte(`{"type": "b2b"}`))
	assert.ErrorIs(t, err, contract.ErrUnknownType)

	_, err = contract.Decode([]byte(`{"gross_monthly": 100}`))
	assert.ErrorIs(t, err, contract.ErrUnknownType)
}

func TestEncode_IncludesType(t *testing.T) {
	data, err := contract.Encode(contract.Employment{GrossMonthly: money(t, "6500")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "employment", "gross_monthly": 6500}`, string(data))

	back, err := contract.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, contract.TypeEmployment, back.Type())
}

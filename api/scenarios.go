/*
scenarios.go - Preset simulations for demos and smoke tests

PURPOSE:

	Provides ready-made requests that exercise the main paths of the
	calculation: the reference worker, a high earner, reduced activity,
	pre-reform capital, and each contract category.

AVAILABLE SCENARIOS:

	reference:          1990 M, working since 2010 at 6 500/month
	high-earner:        Reference worker at 13 000/month
	career-breaks:      Reference worker with 70% activity
	pre-reform-capital: 1968 F with initial capital and a sub-account
	late-retirement:    Reference worker retiring at 68
	self-employed:      Preferential self-employed base
	student-civil-law:  Student under 26 on a civil-law contract

USAGE VIA API:

	POST /api/scenarios/{id}/run

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and request

SEE ALSO:
  - handlers.go: ListScenarios, RunScenario handlers
  - contract/contract.go: Contract JSON forms
*/
package api

import (
	json "github.com/goccy/go-json"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "reference",
		Name:        "Reference Worker",
		Description: "Man born 1990, employed since 2010 at 6 500 gross per month",
		Request: SimulateRequest{
			BirthYear:     1990,
			Gender:        engine.Male,
			StartWorkYear: 2010,
			GrossMonthly:  moneyp(6500),
		},
	},
	{
		ID:          "high-earner",
		Name:        "High Earner",
		Description: "Reference worker at twice the wage",
		Request: SimulateRequest{
			BirthYear:     1990,
			Gender:        engine.Male,
			StartWorkYear: 2010,
			GrossMonthly:  moneyp(13000),
		},
	},
	{
		ID:          "career-breaks",
		Name:        "Career Breaks",
		Description: "Reference worker contributing for 70% of each year",
		Request: SimulateRequest{
			BirthYear:     1990,
			Gender:        engine.Male,
			StartWorkYear: 2010,
			GrossMonthly:  moneyp(6500),
			AbsenceFactor: floatp(0.7),
		},
	},
	{
		ID:          "pre-reform-capital",
		Name:        "Pre-Reform Capital",
		Description: "Woman born 1968 with initial capital from before 1999 and a sub-account",
		Request: SimulateRequest{
			BirthYear:         1968,
			Gender:            engine.Female,
			StartWorkYear:     1990,
			GrossMonthly:      moneyp(7200),
			InitialCapital:    moneyp(85000),
			SubAccountBalance: moneyp(42000),
		},
	},
	{
		ID:          "late-retirement",
		Name:        "Late Retirement",
		Description: "Reference worker retiring at 68 in September",
		Request: SimulateRequest{
			BirthYear:     1990,
			Gender:        engine.Male,
			StartWorkYear: 2010,
			GrossMonthly:  moneyp(6500),
			RetirementAge: intp(68),
			ClaimMonth:    intp(9),
		},
	},
	{
		ID:          "self-employed",
		Name:        "Self-Employed (Preferential)",
		Description: "Woman born 1995 on the preferential self-employed base",
		Request: SimulateRequest{
			BirthYear:     1995,
			Gender:        engine.Female,
			StartWorkYear: 2020,
			Contract:      json.RawMessage(`{"type": "self_employed", "declared_base": 0, "preferential": true}`),
		},
	},
	{
		ID:          "student-civil-law",
		Name:        "Student on Civil-Law Contract",
		Description: "Student under 26 whose civil-law income carries no contributions",
		Request: SimulateRequest{
			BirthYear:     2004,
			Gender:        engine.Female,
			StartWorkYear: 2023,
			Contract:      json.RawMessage(`{"type": "civil_law", "gross_monthly": 3000, "student_under_26": true}`),
		},
	},
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

func moneyp(v int64) *engine.Money {
	m := engine.NewMoneyFromInt(v)
	return &m
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

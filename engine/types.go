/*
Package engine provides the notional-defined-contribution pension calculation.

PURPOSE:
  Projects a worker's yearly wages, converts them into contributions,
  compounds those through annual and quarterly valorization, blends in
  pre-existing capital and turns the resulting base capital into a monthly
  pension estimate, both nominal and in anchor-year money.

KEY CONCEPTS IN THIS FILE (types.go):
  - Input / Output: the only public contract of the engine
  - Scenario: the resolved retirement parameters
  - Intermediate records: one per pipeline stage, consumed by the next stage
  - Assumptions: which data sources fed a calculation

DESIGN PRINCIPLES:
  1. Purity: every stage is a function of its arguments and providers
  2. Precision: money is decimal (see money.go), provider floats are guarded
  3. Determinism: identical Input + identical Providers => identical Output
  4. Auditability: every index applied is recorded by its identifier

PIPELINE:
  1 entitlement    -> EntitlementContext
  2 wages          -> []YearlyWage
  3 contributions  -> []YearlyContribution
  4 annual         -> []AnnualValorizedState
  5 initial cap.   -> ValorizedInitialCapital
  6 quarterly      -> FinalizationStep
  7 composition    -> BaseComposition
  8 life table     -> LifeExpectancySelection
  9 pension        -> PensionCalcsResult
  10 assembly      -> Output

SEE ALSO:
  - providers.go: Data source contracts
  - engine.go: Orchestrator
  - errors.go: Failure categories
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

func (g Gender) Valid() bool { return g == Male || g == Female }

// Quarter is a calendar quarter, 1..4.
type Quarter int

const (
	Q1 Quarter = iota + 1
	Q2
	Q3
	Q4
)

func (q Quarter) Valid() bool { return q >= Q1 && q <= Q4 }

func (q Quarter) String() string { return fmt.Sprintf("Q%d", int(q)) }

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Input is everything a single calculation needs besides the providers.
// Pointer fields are optional.
type Input struct {
	BirthYear         int      `json:"birth_year"`
	Gender            Gender   `json:"gender"`
	StartWorkYear     int      `json:"start_work_year"`
	GrossMonthly      Money    `json:"gross_monthly"`
	RetirementAge     *int     `json:"retirement_age,omitempty"`
	InitialCapital    *Money   `json:"initial_capital,omitempty"`
	SubAccountBalance *Money   `json:"sub_account_balance,omitempty"`
	AbsenceFactor     *float64 `json:"absence_factor,omitempty"`
	ClaimMonth        *int     `json:"claim_month,omitempty"`
	AnchorYear        *int     `json:"anchor_year,omitempty"`
}

// Scenario is the resolved set of retirement parameters.
type Scenario struct {
	RetirementAge  int     `json:"retirement_age"`
	RetirementYear int     `json:"retirement_year"`
	ClaimMonth     int     `json:"claim_month"`
	Quarter        Quarter `json:"entitlement_quarter"`
	Gender         Gender  `json:"gender"`
	AnchorYear     int     `json:"anchor_year"`
}

// TrajectoryRow is one working year of the capital trajectory.
type TrajectoryRow struct {
	Year              int     `json:"year"`
	Wage              Money   `json:"wage"`
	Contribution      Money   `json:"contribution"`
	IndexFraction     float64 `json:"index_fraction"`
	IndexID           string  `json:"index_id"`
	CumulativeCapital Money   `json:"cumulative_capital"`
}

// FinalizationSummary reports the quarterly step.
type FinalizationSummary struct {
	Quarter       Quarter  `json:"entitlement_quarter"`
	IndexYear     int      `json:"index_year"`
	IndexQuarter  Quarter  `json:"index_quarter"`
	IndexIDs      []string `json:"index_ids"`
	CapitalBefore Money    `json:"capital_before"`
	CapitalAfter  Money    `json:"capital_after"`
}

// InitialCapitalSummary reports the initial capital trail. Applied is false
// when no positive initial capital was supplied.
type InitialCapitalSummary struct {
	Applied bool         `json:"applied"`
	Amount  Money        `json:"amount"`
	Trail   []TrailEntry `json:"trail"`
}

// CompositionSummary reports the base capital and its components.
type CompositionSummary struct {
	Contributions  Money `json:"contributions"`
	InitialCapital Money `json:"initial_capital"`
	SubAccount     Money `json:"sub_account"`
	Base           Money `json:"base"`
}

// LifeExpectancySummary reports the life table lookup.
type LifeExpectancySummary struct {
	Years        float64 `json:"years"`
	WindowYear   int     `json:"window_year"`
	TableID      string  `json:"table_id"`
	FloorApplied bool    `json:"floor_applied"`
}

// Assumptions names every data source used by a calculation.
type Assumptions struct {
	ProviderKind        string `json:"provider_kind"`
	AnnualIndexSet      string `json:"annual_index_set"`
	QuarterlyIndexSet   string `json:"quarterly_index_set"`
	InitialCapitalIndex string `json:"initial_capital_index"`
	LifeTable           string `json:"life_table"`
	MacroVintage        string `json:"macro_vintage"`
	ContributionRule    string `json:"contribution_rule"`
	SubAccountIndex     string `json:"sub_account_index"`
	EngineVersion       string `json:"engine_version"`
}

// Output is the result of one calculation.
type Output struct {
	Scenario        Scenario              `json:"scenario"`
	MonthlyNominal  Money                 `json:"monthly_nominal"`
	MonthlyReal     Money                 `json:"monthly_real"`
	ReplacementRate decimal.Decimal       `json:"replacement_rate"`
	Trajectory      []TrajectoryRow       `json:"capital_trajectory"`
	Finalization    FinalizationSummary   `json:"finalization"`
	InitialCapital  InitialCapitalSummary `json:"initial_capital"`
	Composition     CompositionSummary    `json:"composition"`
	LifeExpectancy  LifeExpectancySummary `json:"life_expectancy"`
	Assumptions     Assumptions           `json:"assumptions"`
	Explain         []string              `json:"explain"`
}

// =============================================================================
// INTERMEDIATE RECORDS
// =============================================================================

type EntitlementContext struct {
	RetirementAge  int
	RetirementYear int
	ClaimMonth     int
	Quarter        Quarter
	AgeDefaulted   bool
}

type YearlyWage struct {
	Year       int
	AnnualWage Money
}

type YearlyContribution struct {
	Year         int
	Wage         Money
	Contribution Money
}

type AnnualValorizedState struct {
	Year         int
	Wage         Money
	Contribution Money
	Index        Index
	Capital      Money
}

// TrailEntry is one step of initial-capital valorization.
type TrailEntry struct {
	Year    int     `json:"year"`
	IndexID string  `json:"index_id"`
	Factor  float64 `json:"factor"`
	Special bool    `json:"special"`
	Amount  Money   `json:"amount"`
}

type ValorizedInitialCapital struct {
	Applied bool
	Amount  Money
	Trail   []TrailEntry
}

type FinalizationStep struct {
	Quarter       Quarter
	IndexYear     int
	IndexQuarter  Quarter
	IndexIDs      []string
	Fraction      float64
	CapitalBefore Money
	CapitalAfter  Money
}

type BaseComposition struct {
	Contributions  Money
	InitialCapital Money
	SubAccount     Money
	SubAccountID   string
	Base           Money
}

type LifeExpectancySelection struct {
	Years        float64
	WindowYear   int
	Window       FiscalWindow
	TableID      string
	FloorApplied bool
}

type PensionCalcsResult struct {
	MonthlyNominal  Money
	MonthlyReal     Money
	ReplacementRate decimal.Decimal
	CPIFactor       float64
}

/*
Package table implements the engine providers on top of row tables.

PURPOSE:
  Official statistical and actuarial data arrives as tables: one index per
  year or quarter, one remaining-life figure per gender, age and table
  edition, one growth rate per year. This package holds those rows
  (Tables), loads them from a Source and exposes them through the seven
  engine provider interfaces.

KEY CONCEPTS:
  Tables:  The row data of one complete bundle plus its source identifiers
  Source:  Where Tables come from (memory, SQLite, ...)
  Load:    Source -> engine.Providers
  Snapshot: engine.Providers -> Tables, sampling any bundle over a year range

RATES VS FACTORS:
  Macro and sub-account series are stored as yearly rates. rate[y] is the
  growth from year y-1 to year y (price series: June to June). Multi-year
  factors are compounded on demand and memoized per bundle.

SEE ALSO:
  - bundle.go: Provider implementations
  - snapshot.go: Sampling a bundle into tables
  - store/sqlite: Persistent Source
*/
package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoTables is returned by a Source that holds no tables yet.
	ErrNoTables = errors.New("no provider tables stored")

	// ErrInvalidTables is returned when Tables are structurally unusable.
	ErrInvalidTables = errors.New("invalid provider tables")
)

// Kind is the bundle kind reported in Assumptions.
const Kind = "table"

// =============================================================================
// ROWS
// =============================================================================

// Meta carries the scalar settings and source identifiers of a bundle.
type Meta struct {
	BaseYear         int    `json:"base_year" yaml:"base_year"`
	AnnualSetID      string `json:"annual_set_id" yaml:"annual_set_id"`
	QuarterlySetID   string `json:"quarterly_set_id" yaml:"quarterly_set_id"`
	InitialCapitalID string `json:"initial_capital_id" yaml:"initial_capital_id"`
	LifeTableID      string `json:"life_table_id" yaml:"life_table_id"`
	MacroVintage     string `json:"macro_vintage" yaml:"macro_vintage"`
	SubAccountID     string `json:"sub_account_id" yaml:"sub_account_id"`
}

type AnnualRow struct {
	Year     int     `json:"year" yaml:"year"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
	ID       string  `json:"id" yaml:"id"`
}

type QuarterlyRow struct {
	Year     int     `json:"year" yaml:"year"`
	Quarter  int     `json:"quarter" yaml:"quarter"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
	ID       string  `json:"id" yaml:"id"`
}

type SpecialRow struct {
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	CutoffYear int     `json:"cutoff_year" yaml:"cutoff_year"`
	ID         string  `json:"id" yaml:"id"`
}

type AgeBoundsRow struct {
	Gender string `json:"gender" yaml:"gender"`
	Min    int    `json:"min" yaml:"min"`
	Max    int    `json:"max" yaml:"max"`
}

type LifeRow struct {
	Gender     string  `json:"gender" yaml:"gender"`
	Age        int     `json:"age" yaml:"age"`
	WindowYear int     `json:"window_year" yaml:"window_year"`
	Years      float64 `json:"years" yaml:"years"`
	TableID    string  `json:"table_id" yaml:"table_id"`
}

// RateRow is the growth rate from Year-1 to Year.
type RateRow struct {
	Year int     `json:"year" yaml:"year"`
	Rate float64 `json:"rate" yaml:"rate"`
}

type ContributionRow struct {
	Rate       float64 `json:"rate" yaml:"rate"`
	AbsenceMin float64 `json:"absence_min" yaml:"absence_min"`
	AbsenceMax float64 `json:"absence_max" yaml:"absence_max"`
	ID         string  `json:"id" yaml:"id"`
}

// Tables is the complete row data of one provider bundle. MonthQuarters
// maps month 1..12 (index 0..11) to its quarter; empty means calendar
// quarters.
type Tables struct {
	Meta          Meta            `json:"meta" yaml:"meta"`
	MonthQuarters []int           `json:"month_quarters,omitempty" yaml:"month_quarters,omitempty"`
	Annual        []AnnualRow     `json:"annual" yaml:"annual"`
	Quarterly     []QuarterlyRow  `json:"quarterly" yaml:"quarterly"`
	Special       *SpecialRow     `json:"special,omitempty" yaml:"special,omitempty"`
	AgeBounds     []AgeBoundsRow  `json:"age_bounds" yaml:"age_bounds"`
	Life          []LifeRow       `json:"life" yaml:"life"`
	WageGrowth    []RateRow       `json:"wage_growth" yaml:"wage_growth"`
	CPI           []RateRow       `json:"cpi" yaml:"cpi"`
	SubAccount    []RateRow       `json:"sub_account" yaml:"sub_account"`
	Contribution  ContributionRow `json:"contribution" yaml:"contribution"`
}

// Validate checks structural completeness. It does not judge the values;
// the engine guards every figure it reads.
func (t *Tables) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil tables", ErrInvalidTables)
	}
	if t.Meta.BaseYear <= 0 {
		return fmt.Errorf("%w: base year not set", ErrInvalidTables)
	}
	if n := len(t.MonthQuarters); n != 0 && n != 12 {
		return fmt.Errorf("%w: month quarter mapping has %d entries, want 12", ErrInvalidTables, n)
	}
	if t.Contribution.ID == "" {
		return fmt.Errorf("%w: contribution rule not set", ErrInvalidTables)
	}
	for _, b := range t.AgeBounds {
		if b.Min > b.Max {
			return fmt.Errorf("%w: age bounds for %s are [%d, %d]", ErrInvalidTables, b.Gender, b.Min, b.Max)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t *Tables) Clone() *Tables {
	c := *t
	c.MonthQuarters = append([]int(nil), t.MonthQuarters...)
	c.Annual = append([]AnnualRow(nil), t.Annual...)
	c.Quarterly = append([]QuarterlyRow(nil), t.Quarterly...)
	c.AgeBounds = append([]AgeBoundsRow(nil), t.AgeBounds...)
	c.Life = append([]LifeRow(nil), t.Life...)
	c.WageGrowth = append([]RateRow(nil), t.WageGrowth...)
	c.CPI = append([]RateRow(nil), t.CPI...)
	c.SubAccount = append([]RateRow(nil), t.SubAccount...)
	if t.Special != nil {
		s := *t.Special
		c.Special = &s
	}
	return &c
}

// =============================================================================
// SOURCES
// =============================================================================

// Source supplies Tables.
type Source interface {
	LoadTables(ctx context.Context) (*Tables, error)
}

// Store is a Source that can also be written to.
type Store interface {
	Source
	SaveTables(ctx context.Context, t *Tables) error
}

// Memory is an in-memory Store (for testing/dev).
type Memory struct {
	mu     sync.RWMutex
	tables *Tables
}

// NewMemory creates a Memory store, optionally pre-loaded.
func NewMemory(t *Tables) *Memory {
	m := &Memory{}
	if t != nil {
		m.tables = t.Clone()
	}
	return m
}

// SaveTables replaces the stored tables.
func (m *Memory) SaveTables(_ context.Context, t *Tables) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = t.Clone()
	return nil
}

// LoadTables returns a copy of the stored tables.
func (m *Memory) LoadTables(_ context.Context) (*Tables, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tables == nil {
		return nil, ErrNoTables
	}
	return m.tables.Clone(), nil
}

var _ Store = (*Memory)(nil)

/*
Package contract derives contribution bases from contract categories.

PURPOSE:
  Callers describe a worker by contract rather than by a bare gross wage.
  Each contract category determines the income the replacement rate is
  measured against and the base contributions are assessed on. Apply folds
  both into an engine.Input, expressing a reduced base as a lower absence
  factor so the engine itself stays contract-agnostic.

CATEGORIES:
  employment     base = gross monthly wage
  civil_law      base = gross, or 0 for a student under 26
  self_employed  base = max(declared base, statutory minimum)
                 minimum = 60% of the projected average wage, or 30% of the
                 minimum wage under the preferential scheme

JSON:
  {"type": "employment", "gross_monthly": 6500}
  {"type": "civil_law", "gross_monthly": 3000, "student_under_26": true}
  {"type": "self_employed", "declared_base": 5000, "preferential": false}

SEE ALSO:
  - engine/types.go: Input
  - api/dto.go: SimulateRequest accepts a contract instead of gross_monthly
*/
package contract

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// Type identifies a contract category.
type Type string

const (
	TypeEmployment   Type = "employment"
	TypeCivilLaw     Type = "civil_law"
	TypeSelfEmployed Type = "self_employed"
)

// Statutory reference amounts for the self-employed minimum base.
var (
	ProjectedAverageWage = decimal.RequireFromString("8673.00")
	MinimumWage          = decimal.RequireFromString("4666.00")

	StandardBaseShare     = decimal.RequireFromString("0.60")
	PreferentialBaseShare = decimal.RequireFromString("0.30")
)

var (
	ErrUnknownType = errors.New("unknown contract type")
	ErrInvalid     = errors.New("invalid contract")
)

// Contract is one of the closed set of contract categories.
type Contract interface {
	Type() Type

	// Income is the gross monthly income the replacement rate refers to.
	Income() engine.Money

	// ContributionBase is the monthly amount contributions are assessed on.
	ContributionBase() engine.Money

	Validate() error

	isContract()
}

// =============================================================================
// CATEGORIES
// =============================================================================

// Employment is a standard employment contract.
type Employment struct {
	GrossMonthly engine.Money `json:"gross_monthly"`
}

func (Employment) Type() Type { return TypeEmployment }
func (c Employment) Income() engine.Money { return c.GrossMonthly }
func (c Employment) ContributionBase() engine.Money { return c.GrossMonthly }
func (Employment) isContract() {}

func (c Employment) Validate() error {
	if !c.GrossMonthly.IsPositive() {
		return fmt.Errorf("%w: gross_monthly must be positive", ErrInvalid)
	}
	return nil
}

// CivilLaw is a civil-law contract. Students under 26 are exempt.
type CivilLaw struct {
	GrossMonthly   engine.Money `json:"gross_monthly"`
	StudentUnder26 bool         `json:"student_under_26"`
}

func (CivilLaw) Type() Type { return TypeCivilLaw }
func (c CivilLaw) Income() engine.Money { return c.GrossMonthly }
func (CivilLaw) isContract() {}

func (c CivilLaw) ContributionBase() engine.Money {
	if c.StudentUnder26 {
		return engine.ZeroMoney()
	}
	return c.GrossMonthly
}

func (c CivilLaw) Validate() error {
	if !c.GrossMonthly.IsPositive() {
		return fmt.Errorf("%w: gross_monthly must be positive", ErrInvalid)
	}
	return nil
}

// SelfEmployed is business activity with a declared contribution base. The
// base is also the income the replacement rate refers to.
type SelfEmployed struct {
	DeclaredBase engine.Money `json:"declared_base"`
	Preferential bool         `json:"preferential"`
}

func (SelfEmployed) Type() Type { return TypeSelfEmployed }
func (c SelfEmployed) Income() engine.Money { return c.ContributionBase() }
func (SelfEmployed) isContract() {}

// MinimumBase is the lowest base the scheme accepts.
func (c SelfEmployed) MinimumBase() engine.Money {
	if c.Preferential {
		return engine.MoneyFromDecimal(MinimumWage.Mul(PreferentialBaseShare))
	}
	return engine.MoneyFromDecimal(ProjectedAverageWage.Mul(StandardBaseShare))
}

func (c SelfEmployed) ContributionBase() engine.Money {
	return c.DeclaredBase.Max(c.MinimumBase())
}

func (c SelfEmployed) Validate() error {
	if c.DeclaredBase.IsNegative() {
		return fmt.Errorf("%w: declared_base must not be negative", ErrInvalid)
	}
	return nil
}

// =============================================================================
// APPLY
// =============================================================================

// BaseRatio is ContributionBase / Income, or 0 without income.
func BaseRatio(c Contract) float64 {
	income := c.Income()
	if !income.IsPositive() {
		return 0
	}
	ratio, _ := c.ContributionBase().Decimal().Div(income.Decimal()).Float64()
	return ratio
}

// Apply sets the gross income of in from the contract and scales its
// absence factor by the contract's base ratio.
func Apply(c Contract, in engine.Input) (engine.Input, error) {
	if err := c.Validate(); err != nil {
		return engine.Input{}, err
	}
	out := in
	out.GrossMonthly = c.Income()

	ratio := BaseRatio(c)
	if ratio != 1 {
		absence := engine.DefaultAbsenceFactor
		if in.AbsenceFactor != nil {
			absence = *in.AbsenceFactor
		}
		scaled := absence * ratio
		out.AbsenceFactor = &scaled
	}
	return out, nil
}

// =============================================================================
// JSON
// =============================================================================

// Decode parses a contract from its tagged JSON form.
func Decode(data []byte) (Contract, error) {
	var envelope struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse contract: %w", err)
	}

	var c Contract
	var err error
	switch envelope.Type {
	case TypeEmployment:
		var v Employment
		err = json.Unmarshal(data, &v)
		c = v
	case TypeCivilLaw:
		var v CivilLaw
		err = json.Unmarshal(data, &v)
		c = v
	case TypeSelfEmployed:
		var v SelfEmployed
		err = json.Unmarshal(data, &v)
		c = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s contract: %w", envelope.Type, err)
	}
	return c, nil
}

// Encode renders a contract in its tagged JSON form.
func Encode(c Contract) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typ, err := json.Marshal(c.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}

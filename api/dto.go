/*
dto.go - Request and response bodies of the HTTP API

PURPOSE:
  Defines the JSON structures exchanged with clients. The calculation
  result itself is engine.Output, which already carries its JSON contract;
  this file only adds the request envelope and the error body.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers
  - *DTO: Listing entries

INCOME:
  A SimulateRequest names the income either directly (gross_monthly) or
  through a contract object (see contract package). Supplying both is a
  validation error.

SEE ALSO:
  - handlers.go: Uses these types
  - contract/contract.go: Contract JSON forms
*/
package api

import (
	json "github.com/goccy/go-json"

	"github.com/kamio90/zus-retirement-simulator-sub000/contract"
	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SimulateRequest is the body of POST /api/simulate.
type SimulateRequest struct {
	BirthYear         int             `json:"birth_year"`
	Gender            engine.Gender   `json:"gender"`
	StartWorkYear     int             `json:"start_work_year"`
	GrossMonthly      *engine.Money   `json:"gross_monthly,omitempty"`
	Contract          json.RawMessage `json:"contract,omitempty"`
	RetirementAge     *int            `json:"retirement_age,omitempty"`
	InitialCapital    *engine.Money   `json:"initial_capital,omitempty"`
	SubAccountBalance *engine.Money   `json:"sub_account_balance,omitempty"`
	AbsenceFactor     *float64        `json:"absence_factor,omitempty"`
	ClaimMonth        *int            `json:"claim_month,omitempty"`
	AnchorYear        *int            `json:"anchor_year,omitempty"`
}

// ToInput converts the request into an engine.Input, resolving a contract
// when one is given. Engine-level validation happens later.
func (r SimulateRequest) ToInput() (engine.Input, error) {
	in := engine.Input{
		BirthYear:         r.BirthYear,
		Gender:            r.Gender,
		StartWorkYear:     r.StartWorkYear,
		RetirementAge:     r.RetirementAge,
		InitialCapital:    r.InitialCapital,
		SubAccountBalance: r.SubAccountBalance,
		AbsenceFactor:     r.AbsenceFactor,
		ClaimMonth:        r.ClaimMonth,
		AnchorYear:        r.AnchorYear,
	}

	if len(r.Contract) == 0 || string(r.Contract) == "null" {
		if r.GrossMonthly != nil {
			in.GrossMonthly = *r.GrossMonthly
		}
		return in, nil
	}

	if r.GrossMonthly != nil {
		return engine.Input{}, fieldError("gross_monthly", "must not be combined with contract")
	}
	c, err := contract.Decode(r.Contract)
	if err != nil {
		return engine.Input{}, fieldError("contract", err.Error())
	}
	in, err = contract.Apply(c, in)
	if err != nil {
		return engine.Input{}, fieldError("contract", err.Error())
	}
	return in, nil
}

func fieldError(field, message string) error {
	return &engine.ValidationError{Fields: []engine.FieldError{{Field: field, Message: message}}}
}

// SimulateResponse wraps a calculation result with its identifier.
type SimulateResponse struct {
	CalculationID string         `json:"calculation_id"`
	Result        *engine.Output `json:"result"`
}

// ScenarioDTO is a preset simulation.
type ScenarioDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Request     SimulateRequest `json:"request"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	ProviderKind  string `json:"provider_kind"`
	EngineVersion string `json:"engine_version"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  int                 `json:"status"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []engine.FieldError `json:"fields,omitempty"`
}

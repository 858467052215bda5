/*
engine.go - Orchestrator of the pension pipeline

PURPOSE:
  Runs the ten stages in their fixed order, threading intermediate state
  forward, and assembles the Output. No stage reads a later stage's result.

ORDER:
  0. ValidateInput          (boundary validation, defaults)
  1. ResolveEntitlement     retirement age/year, entitlement quarter
  2. ProjectWages           one wage per working year
  3. ComputeContributions   wage * rate * absence
  4. ValorizeAnnually       yearly compounding fold
  5. ValorizeInitialCapital special index once, then annual indices
  6. FinalizeQuarterly      one quarterly index on the last capital
  7. ComposeBase            contributions + initial capital + sub-account
  8. SelectLifeExpectancy   April-March table window, floored
  9. CalculatePension       nominal, real, replacement rate
  10. AssembleOutput        rounding, assumptions, explainers

PURITY:
  An Engine holds only its Providers and a logger. It keeps no state between
  calls, so one Engine can serve concurrent callers. Logging is a side channel
  and never influences a result.

EXAMPLE:
  eng, err := engine.New(demo.New(), engine.WithLogger(logger))
  out, err := eng.Calculate(engine.Input{
      BirthYear:     1990,
      Gender:        engine.Male,
      StartWorkYear: 2010,
      GrossMonthly:  engine.NewMoney(6500),
  })

SEE ALSO:
  - types.go: Input, Output and the intermediate records
  - providers.go: Provider interfaces
*/
package engine

import (
	"go.uber.org/zap"
)

// Engine runs calculations against one provider bundle.
type Engine struct {
	providers Providers
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for stage-level debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine. The bundle must be complete.
func New(p Providers, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{providers: p, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Providers returns the bundle this Engine calculates with.
func (e *Engine) Providers() Providers { return e.providers }

// Assumptions reports the source identifiers of the bundle.
func (e *Engine) Assumptions() Assumptions { return assumptionsOf(e.providers) }

// Calculate is a convenience wrapper for a one-off calculation.
func Calculate(in Input, p Providers) (*Output, error) {
	e, err := New(p)
	if err != nil {
		return nil, err
	}
	return e.Calculate(in)
}

// Calculate runs the full pipeline for one input. It returns either a
// complete Output or an error, never both.
func (e *Engine) Calculate(in Input) (*Output, error) {
	p := e.providers

	// 0. Boundary validation
	valid, err := ValidateInput(in, p.Macro.BaseYear())
	if err != nil {
		return nil, err
	}
	anchorYear := *valid.AnchorYear

	// 1. Entitlement
	ent, err := ResolveEntitlement(EntitlementRequest{
		BirthYear:     valid.BirthYear,
		Gender:        valid.Gender,
		RetirementAge: valid.RetirementAge,
		StartWorkYear: valid.StartWorkYear,
		ClaimMonth:    *valid.ClaimMonth,
	}, p.Quarterly, p.LifeTable)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("entitlement resolved",
		zap.Int("retirement_age", ent.RetirementAge),
		zap.Int("retirement_year", ent.RetirementYear),
		zap.Stringer("quarter", ent.Quarter))

	// 2. Wages
	wages, err := ProjectWages(valid.StartWorkYear, ent.RetirementYear, anchorYear, valid.GrossMonthly, p.Macro)
	if err != nil {
		return nil, err
	}

	// 3. Contributions
	contributions, err := ComputeContributions(wages, *valid.AbsenceFactor, p.Contribution)
	if err != nil {
		return nil, err
	}

	// 4. Annual valorization
	states, err := ValorizeAnnually(contributions, p.Annual)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("annual valorization done", zap.Int("years", len(states)))

	// 5. Initial capital
	initial, err := ValorizeInitialCapital(valid.InitialCapital, ent.RetirementYear, p.InitialCapital, p.Annual)
	if err != nil {
		return nil, err
	}

	// 6. Quarterly finalization
	final, err := FinalizeQuarterly(states, ent, p.Quarterly)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("quarterly finalization done",
		zap.Int("index_year", final.IndexYear),
		zap.Stringer("index_quarter", final.IndexQuarter))

	// 7. Base composition
	base, err := ComposeBase(final, initial, valid.SubAccountBalance, anchorYear, ent.RetirementYear, p.SubAccount)
	if err != nil {
		return nil, err
	}

	// 8. Life expectancy
	life, err := SelectLifeExpectancy(ent, valid.Gender, p.LifeTable)
	if err != nil {
		return nil, err
	}

	// 9. Pension
	pension, err := CalculatePension(base, life, ent, anchorYear, valid.GrossMonthly, p.Macro)
	if err != nil {
		return nil, err
	}

	// 10. Assembly
	out := AssembleOutput(PipelineResult{
		Input:       valid,
		Entitlement: ent,
		States:      states,
		Initial:     initial,
		Final:       final,
		Base:        base,
		Life:        life,
		Pension:     pension,
	}, p)

	e.logger.Debug("calculation complete",
		zap.Stringer("monthly_nominal", out.MonthlyNominal),
		zap.Stringer("monthly_real", out.MonthlyReal))
	return &out, nil
}

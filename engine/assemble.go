package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// EngineVersion is reported in Assumptions and in the first explainer.
const EngineVersion = "1.0.0"

// RateFormat documents how every rate in the output is expressed.
const RateFormat = "fraction (0.05 = +5%)"

const replacementRateScale = 4

// PipelineResult carries the intermediates of stages 1-9 into assembly.
type PipelineResult struct {
	Input       Input
	Entitlement EntitlementContext
	States      []AnnualValorizedState
	Initial     ValorizedInitialCapital
	Final       FinalizationStep
	Base        BaseComposition
	Life        LifeExpectancySelection
	Pension     PensionCalcsResult
}

// AssembleOutput maps the intermediates into the public Output. It only
// rounds and copies; explainers are derived from the same values and never
// feed back into a number.
func AssembleOutput(r PipelineResult, p Providers) Output {
	anchorYear := *r.Input.AnchorYear

	trajectory := make([]TrajectoryRow, len(r.States))
	for i, s := range r.States {
		trajectory[i] = TrajectoryRow{
			Year:              s.Year,
			Wage:              s.Wage.Round(outputScale),
			Contribution:      s.Contribution.Round(outputScale),
			IndexFraction:     s.Index.Fraction,
			IndexID:           s.Index.ID,
			CumulativeCapital: s.Capital.Round(outputScale),
		}
	}

	trail := make([]TrailEntry, len(r.Initial.Trail))
	for i, t := range r.Initial.Trail {
		t.Amount = t.Amount.Round(outputScale)
		trail[i] = t
	}

	ids := make([]string, len(r.Final.IndexIDs))
	copy(ids, r.Final.IndexIDs)

	return Output{
		Scenario: Scenario{
			RetirementAge:  r.Entitlement.RetirementAge,
			RetirementYear: r.Entitlement.RetirementYear,
			ClaimMonth:     r.Entitlement.ClaimMonth,
			Quarter:        r.Entitlement.Quarter,
			Gender:         r.Input.Gender,
			AnchorYear:     anchorYear,
		},
		MonthlyNominal:  r.Pension.MonthlyNominal.Round(outputScale),
		MonthlyReal:     r.Pension.MonthlyReal.Round(outputScale),
		ReplacementRate: r.Pension.ReplacementRate.Round(replacementRateScale),
		Trajectory:      trajectory,
		Finalization: FinalizationSummary{
			Quarter:       r.Final.Quarter,
			IndexYear:     r.Final.IndexYear,
			IndexQuarter:  r.Final.IndexQuarter,
			IndexIDs:      ids,
			CapitalBefore: r.Final.CapitalBefore.Round(outputScale),
			CapitalAfter:  r.Final.CapitalAfter.Round(outputScale),
		},
		InitialCapital: InitialCapitalSummary{
			Applied: r.Initial.Applied,
			Amount:  r.Initial.Amount.Round(outputScale),
			Trail:   trail,
		},
		Composition: CompositionSummary{
			Contributions:  r.Base.Contributions.Round(outputScale),
			InitialCapital: r.Base.InitialCapital.Round(outputScale),
			SubAccount:     r.Base.SubAccount.Round(outputScale),
			Base:           r.Base.Base.Round(outputScale),
		},
		LifeExpectancy: LifeExpectancySummary{
			Years:        r.Life.Years,
			WindowYear:   r.Life.WindowYear,
			TableID:      r.Life.TableID,
			FloorApplied: r.Life.FloorApplied,
		},
		Assumptions: assumptionsOf(p),
		Explain:     explain(r, p),
	}
}

func assumptionsOf(p Providers) Assumptions {
	return Assumptions{
		ProviderKind:        p.Kind,
		AnnualIndexSet:      p.Annual.SourceID(),
		QuarterlyIndexSet:   p.Quarterly.SourceID(),
		InitialCapitalIndex: p.InitialCapital.SourceID(),
		LifeTable:           p.LifeTable.SourceID(),
		MacroVintage:        p.Macro.SourceID(),
		ContributionRule:    p.Contribution.SourceID(),
		SubAccountIndex:     p.SubAccount.SourceID(),
		EngineVersion:       EngineVersion,
	}
}

func explain(r PipelineResult, p Providers) []string {
	ent := r.Entitlement
	lines := []string{
		fmt.Sprintf("engine %s; rates are expressed as %s; provider bundle %q", EngineVersion, RateFormat, p.Kind),
	}

	ageSource := "override"
	if ent.AgeDefaulted {
		ageSource = "statutory default for " + string(r.Input.Gender)
	}
	lines = append(lines, fmt.Sprintf("entitlement: retirement age %d (%s), retirement year %d, claim month %d maps to %s",
		ent.RetirementAge, ageSource, ent.RetirementYear, ent.ClaimMonth, ent.Quarter))

	lines = append(lines, fmt.Sprintf("annual valorization: %d contribution years compounded with index set %s, contribution rule %s, absence factor %s",
		len(r.States), p.Annual.SourceID(), p.Contribution.SourceID(), strconv.FormatFloat(*r.Input.AbsenceFactor, 'f', -1, 64)))

	lines = append(lines, fmt.Sprintf("%s (%s, %+.2f%%)",
		DescribeFinalization(ent.RetirementYear, ent.Quarter), strings.Join(r.Final.IndexIDs, ", "), r.Final.Fraction*100))

	if r.Initial.Applied {
		special := r.Initial.Trail[0]
		lines = append(lines, fmt.Sprintf("initial capital: special index %s (x%s) applied once at %d, followed by %d annual indices",
			special.IndexID, strconv.FormatFloat(special.Factor, 'f', -1, 64), special.Year, len(r.Initial.Trail)-1))
	} else {
		lines = append(lines, "initial capital: none supplied, special index not applied")
	}

	if r.Input.SubAccountBalance != nil {
		lines = append(lines, fmt.Sprintf("sub-account: valorized from %d to %d with %s", *r.Input.AnchorYear, ent.RetirementYear, r.Base.SubAccountID))
	} else {
		lines = append(lines, "sub-account: none supplied")
	}

	lifeLine := fmt.Sprintf("life expectancy: %.2f years for age %d from table %s, window %s",
		r.Life.Years, ent.RetirementAge, r.Life.TableID, r.Life.Window)
	if r.Life.FloorApplied {
		lifeLine += fmt.Sprintf("; floored at %.0f years", MinRemainingYears)
	}
	lines = append(lines, lifeLine)

	lines = append(lines, fmt.Sprintf("real pension expressed in %d money, cpi factor %.4f (macro vintage %s)",
		*r.Input.AnchorYear, r.Pension.CPIFactor, p.Macro.SourceID()))

	return lines
}

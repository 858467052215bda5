package engine

// ComposeBase sums the finalized contribution capital, the valorized initial
// capital and, when supplied, the sub-account balance valorized from the
// anchor year to the retirement year:
//
//	base = contributions + initialCapital + subAccount
//
// The base is floored at zero. Each component is kept for auditing.
func ComposeBase(final FinalizationStep, initial ValorizedInitialCapital, subAccount *Money, anchorYear, retirementYear int, valorizer SubAccountValorizer) (BaseComposition, error) {
	comp := BaseComposition{
		Contributions:  final.CapitalAfter,
		InitialCapital: initial.Amount,
		SubAccount:     ZeroMoney(),
	}

	if subAccount != nil {
		idx, ok := valorizer.Valorization(anchorYear, retirementYear)
		if !ok {
			return BaseComposition{}, &MissingDataError{Provider: valorizer.SourceID(), Key: "sub-account valorization " + itoa(anchorYear) + "->" + itoa(retirementYear)}
		}
		if err := checkPositiveFactor("composition", "sub-account factor", retirementYear, 1+idx.Fraction); err != nil {
			return BaseComposition{}, err
		}
		comp.SubAccount = subAccount.Mul(growth(idx.Fraction)).Round(internalScale)
		comp.SubAccountID = idx.ID
	}

	base := comp.Contributions.Add(comp.InitialCapital).Add(comp.SubAccount)
	comp.Base = base.Max(ZeroMoney())
	return comp, nil
}

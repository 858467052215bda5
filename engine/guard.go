package engine

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GUARDS - Provider floats are checked before they touch money
// =============================================================================

const (
	// Physical range of a single valorization fraction.
	minIndexFraction = -0.5
	maxIndexFraction = 1.0
)

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// checkFraction rejects non-finite fractions and fractions outside the
// physical range of a single index.
func checkFraction(stage, quantity string, year int, f float64) error {
	if !isFinite(f) || f < minIndexFraction || f > maxIndexFraction {
		return &IntegrityError{Stage: stage, Quantity: quantity, Year: year, Value: formatFloat(f)}
	}
	return nil
}

// checkPositiveFactor rejects non-finite and non-positive multipliers.
func checkPositiveFactor(stage, quantity string, year int, f float64) error {
	if !isFinite(f) || f <= 0 {
		return &IntegrityError{Stage: stage, Quantity: quantity, Year: year, Value: formatFloat(f)}
	}
	return nil
}

// checkCapital rejects negative running capital.
func checkCapital(stage string, year int, m Money) error {
	if m.IsNegative() {
		return &IntegrityError{Stage: stage, Quantity: "capital", Year: year, Value: m.Decimal().String()}
	}
	return nil
}

// growth returns 1 + fraction as an exact decimal.
func growth(fraction float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(decimal.NewFromFloat(fraction))
}

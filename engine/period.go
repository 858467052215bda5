package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// FISCAL WINDOW - Which life table edition applies to a claim date
// =============================================================================

// LifeTableStartMonth is the month a life table edition takes effect.
// An edition published for year Y applies from April 1 of Y to March 31 of Y+1.
const LifeTableStartMonth = time.April

// FiscalWindow is a closed date range [Start, End] identified by the year in
// which it starts.
type FiscalWindow struct {
	Year  int
	Start time.Time
	End   time.Time
}

// Contains returns true if t is within [Start, End].
func (w FiscalWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w FiscalWindow) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// FiscalWindowFor returns the window containing the first day of the given
// claim month. Months before April belong to the previous year's window.
func FiscalWindowFor(year, month int) FiscalWindow {
	date := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(year, LifeTableStartMonth, 1, 0, 0, 0, 0, time.UTC)

	// Before the window start we are in the previous year's window
	if date.Before(start) {
		start = time.Date(year-1, LifeTableStartMonth, 1, 0, 0, 0, 0, time.UTC)
	}

	end := start.AddDate(1, 0, 0).AddDate(0, 0, -1)
	return FiscalWindow{Year: start.Year(), Start: start, End: end}
}

package table

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// cpiReferenceMonth is the month at which a year's price level is measured.
const cpiReferenceMonth = 6

// Load reads tables from src and builds a provider bundle from them.
func Load(ctx context.Context, src Source) (engine.Providers, error) {
	t, err := src.LoadTables(ctx)
	if err != nil {
		return engine.Providers{}, err
	}
	return New(t)
}

// New builds a provider bundle over t. The rows are indexed once; t is not
// retained.
func New(t *Tables) (engine.Providers, error) {
	if err := t.Validate(); err != nil {
		return engine.Providers{}, err
	}

	d := &data{
		meta:      t.Meta,
		annual:    make(map[int]AnnualRow, len(t.Annual)),
		quarterly: make(map[quarterKey]QuarterlyRow, len(t.Quarterly)),
		bounds:    make(map[engine.Gender]AgeBoundsRow, len(t.AgeBounds)),
		life:      make(map[lifeKey]LifeRow, len(t.Life)),
		wage:      rates(t.WageGrowth),
		cpi:       rates(t.CPI),
		sub:       rates(t.SubAccount),
		rule:      t.Contribution,
		cache:     &factorCache{factors: make(map[factorKey]cachedFactor)},
	}

	for m := 1; m <= 12; m++ {
		q := engine.Quarter((m-1)/3 + 1)
		if len(t.MonthQuarters) == 12 {
			q = engine.Quarter(t.MonthQuarters[m-1])
		}
		d.monthQuarters[m-1] = q
	}
	for _, r := range t.Annual {
		d.annual[r.Year] = r
	}
	for _, r := range t.Quarterly {
		d.quarterly[quarterKey{year: r.Year, quarter: engine.Quarter(r.Quarter)}] = r
	}
	if t.Special != nil {
		s := *t.Special
		d.special = &s
	}
	for _, r := range t.AgeBounds {
		d.bounds[engine.Gender(r.Gender)] = r
	}
	for _, r := range t.Life {
		d.life[lifeKey{gender: engine.Gender(r.Gender), age: r.Age, window: r.WindowYear}] = r
	}

	return engine.Providers{
		Kind:           Kind,
		Annual:         annualProvider{d},
		Quarterly:      quarterlyProvider{d},
		InitialCapital: specialProvider{d},
		LifeTable:      lifeProvider{d},
		Macro:          macroProvider{d},
		Contribution:   ruleProvider{d},
		SubAccount:     subAccountProvider{d},
	}, nil
}

// =============================================================================
// INDEXED DATA
// =============================================================================

type quarterKey struct {
	year    int
	quarter engine.Quarter
}

type lifeKey struct {
	gender engine.Gender
	age    int
	window int
}

type data struct {
	meta          Meta
	monthQuarters [12]engine.Quarter
	annual        map[int]AnnualRow
	quarterly     map[quarterKey]QuarterlyRow
	special       *SpecialRow
	bounds        map[engine.Gender]AgeBoundsRow
	life          map[lifeKey]LifeRow
	wage          map[int]float64
	cpi           map[int]float64
	sub           map[int]float64
	rule          ContributionRow
	cache         *factorCache
}

func rates(rows []RateRow) map[int]float64 {
	m := make(map[int]float64, len(rows))
	for _, r := range rows {
		m[r.Year] = r.Rate
	}
	return m
}

// =============================================================================
// FACTOR CACHE - Memoized compounding
// =============================================================================

type series int

const (
	seriesWage series = iota
	seriesCPI
	seriesSubAccount
)

type factorKey struct {
	series   series
	from, to int
}

type cachedFactor struct {
	value float64
	ok    bool
}

// factorCache memoizes compounded factors. Entries are pure functions of
// the immutable rates, so hits and misses yield the same value.
type factorCache struct {
	mu      sync.Mutex
	factors map[factorKey]cachedFactor
}

func (c *factorCache) get(k factorKey, compute func() (float64, bool)) (float64, bool) {
	c.mu.Lock()
	if f, hit := c.factors[k]; hit {
		c.mu.Unlock()
		return f.value, f.ok
	}
	c.mu.Unlock()

	v, ok := compute()

	c.mu.Lock()
	c.factors[k] = cachedFactor{value: v, ok: ok}
	c.mu.Unlock()
	return v, ok
}

// compound returns the product of (1 + rate[y]) for y in (from, to]. A
// backwards range yields the reciprocal. Any missing year makes the whole
// factor unavailable.
func (d *data) compound(s series, r map[int]float64, from, to int) (float64, bool) {
	return d.cache.get(factorKey{series: s, from: from, to: to}, func() (float64, bool) {
		lo, hi, invert := from, to, false
		if to < from {
			lo, hi, invert = to, from, true
		}
		f := 1.0
		for y := lo + 1; y <= hi; y++ {
			rate, ok := r[y]
			if !ok {
				return 0, false
			}
			f *= 1 + rate
		}
		if invert {
			return 1 / f, true
		}
		return f, true
	})
}

// =============================================================================
// PROVIDERS
// =============================================================================

type annualProvider struct{ d *data }

func (p annualProvider) SourceID() string { return p.d.meta.AnnualSetID }

func (p annualProvider) AnnualIndex(year int) (engine.Index, bool) {
	r, ok := p.d.annual[year]
	if !ok {
		return engine.Index{}, false
	}
	return engine.Index{Fraction: r.Fraction, ID: r.ID}, true
}

type quarterlyProvider struct{ d *data }

func (p quarterlyProvider) SourceID() string { return p.d.meta.QuarterlySetID }

func (p quarterlyProvider) QuarterFor(month int) engine.Quarter {
	if month < 1 || month > 12 {
		return 0
	}
	return p.d.monthQuarters[month-1]
}

func (p quarterlyProvider) QuarterlyIndex(year int, q engine.Quarter) (engine.Index, bool) {
	r, ok := p.d.quarterly[quarterKey{year: year, quarter: q}]
	if !ok {
		return engine.Index{}, false
	}
	return engine.Index{Fraction: r.Fraction, ID: r.ID}, true
}

type specialProvider struct{ d *data }

func (p specialProvider) SourceID() string { return p.d.meta.InitialCapitalID }

func (p specialProvider) SpecialIndex() (engine.SpecialIndex, bool) {
	if p.d.special == nil {
		return engine.SpecialIndex{}, false
	}
	s := p.d.special
	return engine.SpecialIndex{Multiplier: s.Multiplier, CutoffYear: s.CutoffYear, ID: s.ID}, true
}

type lifeProvider struct{ d *data }

func (p lifeProvider) SourceID() string { return p.d.meta.LifeTableID }

// AgeBounds reports an empty range for a gender without bounds, so every
// age is rejected.
func (p lifeProvider) AgeBounds(g engine.Gender) (int, int) {
	b, ok := p.d.bounds[g]
	if !ok {
		return 0, -1
	}
	return b.Min, b.Max
}

func (p lifeProvider) RemainingYears(g engine.Gender, age, windowYear int) (engine.LifeTableEntry, bool) {
	r, ok := p.d.life[lifeKey{gender: g, age: age, window: windowYear}]
	if !ok {
		return engine.LifeTableEntry{}, false
	}
	return engine.LifeTableEntry{Years: r.Years, TableID: r.TableID}, true
}

type macroProvider struct{ d *data }

func (p macroProvider) SourceID() string { return p.d.meta.MacroVintage }

func (p macroProvider) BaseYear() int { return p.d.meta.BaseYear }

func (p macroProvider) WageGrowthFactor(anchorYear, year int) (float64, bool) {
	return p.d.compound(seriesWage, p.d.wage, anchorYear, year)
}

// CPIDiscountFactor walks the price level from June of the anchor year to
// June of the claim year, then part of the adjacent year's rate for the
// months between June and the claim month.
func (p macroProvider) CPIDiscountFactor(claimYear, claimMonth, anchorYear int) (float64, bool) {
	if claimMonth < 1 || claimMonth > 12 {
		return 0, false
	}
	f, ok := p.d.compound(seriesCPI, p.d.cpi, anchorYear, claimYear)
	if !ok {
		return 0, false
	}

	offset := claimMonth - cpiReferenceMonth
	if offset == 0 {
		return f, true
	}
	rateYear := claimYear
	if offset > 0 {
		rateYear = claimYear + 1
	}
	rate, ok := p.d.cpi[rateYear]
	if !ok {
		return 0, false
	}
	return f * math.Pow(1+rate, float64(offset)/12), true
}

type ruleProvider struct{ d *data }

func (p ruleProvider) SourceID() string { return p.d.rule.ID }

func (p ruleProvider) Rule() engine.ContributionRule {
	r := p.d.rule
	return engine.ContributionRule{Rate: r.Rate, AbsenceMin: r.AbsenceMin, AbsenceMax: r.AbsenceMax, ID: r.ID}
}

type subAccountProvider struct{ d *data }

func (p subAccountProvider) SourceID() string { return p.d.meta.SubAccountID }

func (p subAccountProvider) Valorization(fromYear, toYear int) (engine.Index, bool) {
	id := fmt.Sprintf("%s:%d-%d", p.d.meta.SubAccountID, fromYear, toYear)
	if toYear <= fromYear {
		return engine.Index{Fraction: 0, ID: id}, true
	}
	f, ok := p.d.compound(seriesSubAccount, p.d.sub, fromYear, toYear)
	if !ok {
		return engine.Index{}, false
	}
	return engine.Index{Fraction: f - 1, ID: id}, true
}

// Compile-time checks
var (
	_ engine.AnnualIndexProvider         = annualProvider{}
	_ engine.QuarterlyIndexProvider      = quarterlyProvider{}
	_ engine.InitialCapitalIndexProvider = specialProvider{}
	_ engine.LifeExpectancyProvider      = lifeProvider{}
	_ engine.MacroProvider               = macroProvider{}
	_ engine.ContributionRuleProvider    = ruleProvider{}
	_ engine.SubAccountValorizer         = subAccountProvider{}
)

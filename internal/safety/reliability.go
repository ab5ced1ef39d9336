package safety

import (
	"cmp"
	"math"
	"slices"
)

// Badge thresholds. The Reliable boundary is strict: exactly 80 is Medium.
const (
	ReliableAbovePct = 80
	LowBelowPct      = 60
)

// Badge is the display grade derived from a reliability percentage.
type Badge string

const (
	BadgeReliable Badge = "Reliable"
	BadgeMedium   Badge = "Medium"
	BadgeLow      Badge = "Low"
	BadgeNoData   Badge = "No Data"
)

// ClassifyBadge grades a reliability percentage.
func ClassifyBadge(pct int) Badge {
	switch {
	case pct > ReliableAbovePct:
		return BadgeReliable
	case pct < LowBelowPct:
		return BadgeLow
	default:
		return BadgeMedium
	}
}

// SupplierRef identifies a supplier.
type SupplierRef struct {
	ID   uint
	Name string
}

// SupplierVerdict is one quality test outcome attributed to the supplier of
// the tested batch.
type SupplierVerdict struct {
	Supplier SupplierRef
	Verdict  Verdict
}

// Reliability is the pass rate of one supplier. Pct is nil when the supplier
// has no recorded tests; that is "no data", not 0% and not 100%.
type Reliability struct {
	Supplier SupplierRef
	Pct      *int
	Total    int
	Failed   int
}

// HasData reports whether at least one test was recorded.
func (r Reliability) HasData() bool {
	return r.Pct != nil
}

// Badge grades the supplier, BadgeNoData when nothing was tested.
func (r Reliability) Badge() Badge {
	if r.Pct == nil {
		return BadgeNoData
	}
	return ClassifyBadge(*r.Pct)
}

// AggregateReliability computes round((1 - failed/total) * 100) per supplier.
//
// Suppliers listed in known but absent from results are returned without a
// percentage. The result is ordered by percentage descending, then name;
// suppliers without data come last.
func AggregateReliability(results []SupplierVerdict, known ...SupplierRef) []Reliability {
	byID := make(map[uint]*Reliability, len(known))
	order := make([]uint, 0, len(known))

	track := func(ref SupplierRef) *Reliability {
		if r, ok := byID[ref.ID]; ok {
			if r.Supplier.Name == "" {
				r.Supplier.Name = ref.Name
			}
			return r
		}
		r := &Reliability{Supplier: ref}
		byID[ref.ID] = r
		order = append(order, ref.ID)
		return r
	}

	for _, ref := range known {
		track(ref)
	}
	for _, res := range results {
		r := track(res.Supplier)
		if !res.Verdict.Valid() {
			continue
		}
		r.Total++
		if res.Verdict == Fail {
			r.Failed++
		}
	}

	out := make([]Reliability, 0, len(order))
	for _, id := range order {
		r := *byID[id]
		if r.Total > 0 {
			pct := int(math.Round((1 - float64(r.Failed)/float64(r.Total)) * 100))
			r.Pct = &pct
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, compareReliability)
	return out
}

func compareReliability(a, b Reliability) int {
	switch {
	case a.Pct == nil && b.Pct == nil:
		return cmp.Compare(a.Supplier.Name, b.Supplier.Name)
	case a.Pct == nil:
		return 1
	case b.Pct == nil:
		return -1
	}
	if c := cmp.Compare(*b.Pct, *a.Pct); c != 0 {
		return c
	}
	return cmp.Compare(a.Supplier.Name, b.Supplier.Name)
}

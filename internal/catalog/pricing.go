package catalog

import (
	"math"
	"slices"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
)

// SortTiers orders tiers by MinQty.
func SortTiers(tiers []PriceTier) {
	slices.SortStableFunc(tiers, func(a, b PriceTier) int {
		return a.MinQty - b.MinQty
	})
}

// ValidateTiers checks tiers sorted by MinQty: the first starts at or above
// moq, ranges never overlap, and only the last may be open-ended.
func ValidateTiers(moq int, tiers []PriceTier) error {
	if len(tiers) == 0 {
		return nil
	}
	if tiers[0].MinQty < moq {
		return httpx.Invalid("first price tier must start at or above the MOQ (%d)", moq)
	}
	last := len(tiers) - 1
	for i, t := range tiers {
		if t.MinQty <= 0 {
			return httpx.Invalid("price tier %d: min_qty must be positive", i+1)
		}
		if t.UnitPrice <= 0 {
			return httpx.Invalid("price tier %d: unit_price must be positive", i+1)
		}
		if t.MaxQty == nil {
			if i != last {
				return httpx.Invalid("price tier %d: only the last tier may be open-ended", i+1)
			}
		} else if *t.MaxQty < t.MinQty {
			return httpx.Invalid("price tier %d: max_qty must be at least min_qty", i+1)
		}
		if i > 0 {
			prev := tiers[i-1]
			if prev.MaxQty != nil && t.MinQty <= *prev.MaxQty {
				return httpx.Invalid("price tier %d overlaps tier %d", i+1, i)
			}
		}
	}
	return nil
}

// UnitPriceFor returns the tier price covering qty, falling back to the
// base price.
func (p *Product) UnitPriceFor(qty int) float64 {
	for _, t := range p.PriceTiers {
		if qty < t.MinQty {
			continue
		}
		if t.MaxQty == nil || qty <= *t.MaxQty {
			return t.UnitPrice
		}
	}
	return p.BasePrice
}

// EstimateTotal prices qty units rounded to two decimals.
func (p *Product) EstimateTotal(qty int) float64 {
	return roundTo2(p.UnitPriceFor(qty) * float64(qty))
}

func roundTo2(val float64) float64 {
	return math.Round(val*100) / 100
}

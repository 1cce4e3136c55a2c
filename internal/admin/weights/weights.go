package weights

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
)

// Metal identifies a precious metal tracked by the report.
type Metal string

const (
	MetalSilver   Metal = "silver"
	MetalGold     Metal = "gold"
	MetalPlatinum Metal = "platinum"
	MetalCopper   Metal = "copper"
)

// Metals lists the tracked metals in report column order.
var Metals = []Metal{MetalSilver, MetalGold, MetalPlatinum, MetalCopper}

// Unit is a weight denomination.
type Unit string

const (
	UnitOunces Unit = "ounces"
	UnitGrams  Unit = "grams"
)

// Units lists the denominations in report column order.
var Units = []Unit{UnitOunces, UnitGrams}

// ParseUnit recognises a stored weight denomination.
func ParseUnit(raw string) (Unit, bool) {
	switch Unit(strings.ToLower(strings.TrimSpace(raw))) {
	case UnitOunces:
		return UnitOunces, true
	case UnitGrams:
		return UnitGrams, true
	}
	return "", false
}

// Abbrev is the suffix shown next to totals.
func (u Unit) Abbrev() string {
	if u == UnitOunces {
		return "oz"
	}
	return "grams"
}

// Labels maps a localised metal-type label to its metal.
type Labels map[string]Metal

// Lookup resolves a product's metal label. Surrounding whitespace is ignored.
func (l Labels) Lookup(label string) (Metal, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	metal, ok := l[label]
	return metal, ok
}

// Breakdown holds weight sums per metal and unit. A nil Breakdown reads as
// all zeros but must be made before Add.
type Breakdown map[Metal]map[Unit]decimal.Decimal

// Get returns the sum for a metal and unit, zero when absent.
func (b Breakdown) Get(metal Metal, unit Unit) decimal.Decimal {
	if units, ok := b[metal]; ok {
		if value, ok := units[unit]; ok {
			return value
		}
	}
	return decimal.Zero
}

// Add accumulates value into the metal and unit bucket.
func (b Breakdown) Add(metal Metal, unit Unit, value decimal.Decimal) {
	units, ok := b[metal]
	if !ok {
		units = make(map[Unit]decimal.Decimal, len(Units))
		b[metal] = units
	}
	units[unit] = units[unit].Add(value)
}

// Merge adds every bucket of other into b.
func (b Breakdown) Merge(other Breakdown) {
	for metal, units := range other {
		for unit, value := range units {
			b.Add(metal, unit, value)
		}
	}
}

// IsZero reports whether every bucket is zero.
func (b Breakdown) IsZero() bool {
	for _, units := range b {
		for _, value := range units {
			if !value.IsZero() {
				return false
			}
		}
	}
	return true
}

// Extract sums product weights across line items. Items whose product is
// unknown, or whose metal label, unit or value is missing or unusable,
// contribute nothing.
func Extract(items []orders.LineItem, products map[int64]orders.Product, labels Labels) Breakdown {
	out := make(Breakdown, len(Metals))
	for _, item := range items {
		metal, unit, value, ok := ItemWeight(products[item.ProductID], labels)
		if !ok || item.Quantity <= 0 {
			continue
		}
		out.Add(metal, unit, value.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return out
}

// ItemWeight resolves the per-unit weight metadata of a product.
func ItemWeight(product orders.Product, labels Labels) (Metal, Unit, decimal.Decimal, bool) {
	metal, ok := labels.Lookup(product.MetalType)
	if !ok {
		return "", "", decimal.Zero, false
	}
	unit, ok := ParseUnit(product.WeightUnit)
	if !ok {
		return "", "", decimal.Zero, false
	}
	raw := strings.TrimSpace(product.WeightValue)
	if raw == "" {
		return "", "", decimal.Zero, false
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return "", "", decimal.Zero, false
	}
	return metal, unit, value, true
}

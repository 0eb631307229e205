// Package rates reconciles the different ways a listing's price is expressed
// upstream into one canonical nightly rate.
package rates

import (
	"strings"

	"staybook/internal/domain/shared/money"
)

type DurationUnit string

const (
	UnitDaily   DurationUnit = "Daily"
	UnitWeekly  DurationUnit = "Weekly"
	UnitMonthly DurationUnit = "Monthly"
)

// Days returns the number of nights the unit covers, or false when unknown.
func (u DurationUnit) Days() (int64, bool) {
	switch strings.ToLower(strings.TrimSpace(string(u))) {
	case "daily":
		return 1, true
	case "weekly":
		return 7, true
	case "monthly":
		return 30, true
	default:
		return 0, false
	}
}

// Fields is the raw upstream shape. Zero means absent.
type Fields struct {
	Nightly      money.Amount `json:"nightly,omitempty" bson:"nightly,omitempty"`
	Daily        money.Amount `json:"daily,omitempty" bson:"daily,omitempty"`
	Weekly       money.Amount `json:"weekly,omitempty" bson:"weekly,omitempty"`
	Monthly      money.Amount `json:"monthly,omitempty" bson:"monthly,omitempty"`
	Price        money.Amount `json:"price,omitempty" bson:"price,omitempty"`
	DurationUnit DurationUnit `json:"durationUnit,omitempty" bson:"duration_unit,omitempty"`
}

type Kind string

const (
	KindNone     Kind = "none"
	KindNightly  Kind = "nightly"
	KindDaily    Kind = "legacy_daily"
	KindWeekly   Kind = "legacy_weekly"
	KindMonthly  Kind = "legacy_monthly"
	KindLump     Kind = "lump"
	KindRawPrice Kind = "raw_price"
)

// Source is the resolved pricing shape: exactly one variant selected by Kind.
type Source struct {
	Kind   Kind
	Amount money.Amount
	Unit   DurationUnit
}

// Classify picks the variant that wins for the given fields.
// Order: nightly, daily, weekly, monthly, lump price with a known unit, raw price.
func Classify(f Fields) Source {
	switch {
	case f.Nightly > 0:
		return Source{Kind: KindNightly, Amount: f.Nightly}
	case f.Daily > 0:
		return Source{Kind: KindDaily, Amount: f.Daily}
	case f.Weekly > 0:
		return Source{Kind: KindWeekly, Amount: f.Weekly}
	case f.Monthly > 0:
		return Source{Kind: KindMonthly, Amount: f.Monthly}
	}
	if f.Price > 0 && f.DurationUnit != "" {
		if _, ok := f.DurationUnit.Days(); ok {
			return Source{Kind: KindLump, Amount: f.Price, Unit: f.DurationUnit}
		}
	}
	if f.Price > 0 {
		return Source{Kind: KindRawPrice, Amount: f.Price}
	}
	return Source{Kind: KindNone}
}

// Nightly converts the selected variant into a per-night rate.
func (s Source) Nightly() money.Amount {
	switch s.Kind {
	case KindNightly, KindDaily, KindRawPrice:
		return money.NonNegative(s.Amount)
	case KindWeekly:
		return money.DivRound(s.Amount, 7)
	case KindMonthly:
		return money.DivRound(s.Amount, 30)
	case KindLump:
		days, ok := s.Unit.Days()
		if !ok {
			return money.NonNegative(s.Amount)
		}
		return money.DivRound(s.Amount, days)
	default:
		return 0
	}
}

// NormalizeNightlyRate never fails: missing data resolves to zero and callers
// gate on the zero rate themselves.
func NormalizeNightlyRate(f Fields) money.Amount {
	return Classify(f).Nightly()
}

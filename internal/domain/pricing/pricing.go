package pricing

import (
	"errors"

	"staybook/internal/domain/shared/money"
)

var ErrInvalidPolicy = errors.New("pricing: invalid policy")

type DiscountTier string

const (
	TierNone    DiscountTier = "none"
	TierWeekly  DiscountTier = "weekly"
	TierMonthly DiscountTier = "monthly"
)

// Policy carries the platform-wide constants of the calculation.
type Policy struct {
	ServiceChargePercent float64
	MinDiscountPercent   float64
	MaxDiscountPercent   float64
	WeeklyMinNights      int
	MonthlyMinNights     int
}

func DefaultPolicy() Policy {
	return Policy{
		ServiceChargePercent: 8,
		MinDiscountPercent:   0,
		MaxDiscountPercent:   100,
		WeeklyMinNights:      7,
		MonthlyMinNights:     30,
	}
}

func (p Policy) Validate() error {
	switch {
	case p.ServiceChargePercent < 0 || p.ServiceChargePercent > 100:
		return errors.Join(ErrInvalidPolicy, errors.New("service charge percent must be within [0,100]"))
	case p.MinDiscountPercent < 0 || p.MaxDiscountPercent > 100 || p.MinDiscountPercent > p.MaxDiscountPercent:
		return errors.Join(ErrInvalidPolicy, errors.New("discount bounds must satisfy 0 <= min <= max <= 100"))
	case p.WeeklyMinNights <= 0 || p.MonthlyMinNights <= p.WeeklyMinNights:
		return errors.Join(ErrInvalidPolicy, errors.New("tier thresholds must satisfy 0 < weekly < monthly"))
	}
	return nil
}

type Input struct {
	NightlyRate        money.Amount
	Nights             int
	CleaningFee        money.Amount
	WeeklyDiscountPct  float64
	MonthlyDiscountPct float64
	SecurityDeposit    money.Amount
}

// Breakdown is derived output; it is recomputed on every input change.
type Breakdown struct {
	NightlyRate            money.Amount `json:"nightlyRate"`
	Nights                 int          `json:"nights"`
	Subtotal               money.Amount `json:"subtotal"`
	WeeklyDiscountApplied  money.Amount `json:"weeklyDiscountApplied"`
	MonthlyDiscountApplied money.Amount `json:"monthlyDiscountApplied"`
	CleaningFee            money.Amount `json:"cleaningFee"`
	SecurityDeposit        money.Amount `json:"securityDeposit"`
	Total                  money.Amount `json:"total"`
	ServiceCharge          money.Amount `json:"serviceCharge"`
	Payable                money.Amount `json:"payable"`
	Tier                   DiscountTier `json:"discountTier"`
}

// Discounted is the subtotal after the applied tier discount.
func (b Breakdown) Discounted() money.Amount {
	return b.Subtotal - b.WeeklyDiscountApplied - b.MonthlyDiscountApplied
}

// Bookable reports whether the breakdown is usable for a submission.
func (b Breakdown) Bookable() bool {
	return b.Nights > 0 && b.Payable > 0
}

type Calculator struct {
	Policy Policy
}

func NewCalculator(p Policy) Calculator {
	return Calculator{Policy: p}
}

// Compute is pure: identical inputs give identical breakdowns. Rounding is
// half-up at every step.
func (c Calculator) Compute(in Input) Breakdown {
	policy := c.Policy
	if policy.Validate() != nil {
		policy = DefaultPolicy()
	}

	rate := money.NonNegative(in.NightlyRate)
	if in.Nights <= 0 || rate == 0 {
		return Breakdown{Tier: TierNone}
	}

	out := Breakdown{
		NightlyRate:     rate,
		Nights:          in.Nights,
		Subtotal:        rate * money.Amount(in.Nights),
		CleaningFee:     money.NonNegative(in.CleaningFee),
		SecurityDeposit: money.NonNegative(in.SecurityDeposit),
		Tier:            TierNone,
	}

	monthly := c.clampDiscount(policy, in.MonthlyDiscountPct)
	weekly := c.clampDiscount(policy, in.WeeklyDiscountPct)
	switch {
	case in.Nights >= policy.MonthlyMinNights && monthly > 0:
		out.MonthlyDiscountApplied = money.Percent(out.Subtotal, monthly)
		out.Tier = TierMonthly
	case in.Nights >= policy.WeeklyMinNights && weekly > 0:
		out.WeeklyDiscountApplied = money.Percent(out.Subtotal, weekly)
		out.Tier = TierWeekly
	}

	out.Total = out.Discounted() + out.CleaningFee
	out.ServiceCharge = money.Percent(out.Total, policy.ServiceChargePercent)
	out.Payable = out.Total + out.ServiceCharge
	return out
}

func (c Calculator) clampDiscount(policy Policy, pct float64) float64 {
	if pct <= 0 {
		return 0
	}
	return money.ClampPercent(pct, policy.MinDiscountPercent, policy.MaxDiscountPercent)
}

// ComputePricing uses the default platform policy.
func ComputePricing(in Input) Breakdown {
	return NewCalculator(DefaultPolicy()).Compute(in)
}

package policies

import (
	"context"

	domainpricing "staybook/internal/domain/pricing"
)

// PricingPolicySource yields the platform pricing constants in force.
type PricingPolicySource interface {
	Current(ctx context.Context) (domainpricing.Policy, error)
}

type StaticPricingPolicy struct {
	Policy domainpricing.Policy
}

func (s StaticPricingPolicy) Current(context.Context) (domainpricing.Policy, error) {
	return s.Policy, nil
}

package quotes

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
)

const quoteStayKey = "pricing.quote"

// QuoteStayQuery re-runs step-one validation and pricing for a candidate
// stay. It is the authoritative server-side check behind the date picker.
type QuoteStayQuery struct {
	ListingID string `validate:"required"`
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int `validate:"gte=0"`
	Note      string
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

type QuoteStayHandler struct {
	Listings  domainlistings.Repository
	Validator *domainbooking.Validator
	Policy    policies.PricingPolicySource
	Clock     policies.Clock
	Telemetry policies.Telemetry
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (*dto.Quote, error) {
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return nil, err
	}
	policy, err := h.Policy.Current(ctx)
	if err != nil {
		return nil, err
	}

	cand := domainbooking.Candidate{CheckIn: q.CheckIn, CheckOut: q.CheckOut, Guests: q.Guests, Note: q.Note}
	res := h.Validator.ValidateStep1(cand, listing, h.Clock.Now())
	breakdown := domainpricing.NewCalculator(policy).Compute(listing.PricingInput(cand.Nights()))
	if h.Telemetry != nil {
		h.Telemetry.ObserveQuote(breakdown)
	}

	return &dto.Quote{
		ListingID:  string(listing.ID),
		CheckIn:    q.CheckIn,
		CheckOut:   q.CheckOut,
		Guests:     q.Guests,
		Validation: dto.MapValidation(res),
		Pricing:    breakdown,
		Bookable:   res.Valid && breakdown.Bookable(),
	}, nil
}

var _ queries.Handler[QuoteStayQuery, *dto.Quote] = (*QuoteStayHandler)(nil)

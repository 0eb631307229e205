package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/rates"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/stay"
)

var (
	ErrIDRequired      = errors.New("listings: id is required")
	ErrGuestsLimit     = errors.New("listings: max guests must be at least 1")
	ErrNegativeFee     = errors.New("listings: fees must be non-negative")
	ErrDiscountPercent = errors.New("listings: discount percent must be non-negative")
	ErrLeadTime        = errors.New("listings: lead time must be non-negative")
	ErrBookingMode     = errors.New("listings: booking mode must be instant or request")
	ErrTimeZone        = errors.New("listings: unknown time zone")
	ErrListingNotFound = errors.New("listings: not found")
	ErrIntervalTaken   = errors.New("listings: interval overlaps an existing reservation")
)

type ListingID string

type BookingMode string

const (
	ModeInstant BookingMode = "instant"
	ModeRequest BookingMode = "request"
)

// Listing is the read-only pricing and policy snapshot of a property, owned by
// the upstream property-data service.
type Listing struct {
	ID                 ListingID
	Title              string
	Pricing            rates.Fields
	CleaningFee        money.Amount
	SecurityDeposit    money.Amount
	WeeklyDiscountPct  float64
	MonthlyDiscountPct float64
	MaxGuests          int
	Stay               stay.Policy
	MinLeadTime        time.Duration
	Mode               BookingMode
	Booked             []daterange.DateRange
	Version            int64
	FetchedAt          time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	// AddBookedInterval atomically appends a reservation and fails with
	// ErrIntervalTaken when it overlaps an existing one.
	AddBookedInterval(ctx context.Context, id ListingID, r daterange.DateRange) error
	RemoveBookedInterval(ctx context.Context, id ListingID, r daterange.DateRange) error
}

type CreateListingParams struct {
	ID                 ListingID
	Title              string
	Pricing            rates.Fields
	CleaningFee        money.Amount
	SecurityDeposit    money.Amount
	WeeklyDiscountPct  float64
	MonthlyDiscountPct float64
	MaxGuests          int
	AllowedCheckIn     string
	AllowedCheckOut    string
	TimeZone           string
	MinLeadTime        time.Duration
	Mode               BookingMode
	Booked             []daterange.DateRange
	Now                time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	if params.CleaningFee < 0 || params.SecurityDeposit < 0 {
		return nil, ErrNegativeFee
	}
	if params.WeeklyDiscountPct < 0 || params.MonthlyDiscountPct < 0 {
		return nil, ErrDiscountPercent
	}
	if params.MinLeadTime < 0 {
		return nil, ErrLeadTime
	}
	mode := params.Mode
	if mode == "" {
		mode = ModeRequest
	}
	if mode != ModeInstant && mode != ModeRequest {
		return nil, ErrBookingMode
	}
	loc := time.UTC
	if tz := strings.TrimSpace(params.TimeZone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, errors.Join(ErrTimeZone, err)
		}
		loc = l
	}
	policy, err := stay.NewPolicy(params.AllowedCheckIn, params.AllowedCheckOut, loc)
	if err != nil {
		return nil, err
	}

	return &Listing{
		ID:                 params.ID,
		Title:              strings.TrimSpace(params.Title),
		Pricing:            params.Pricing,
		CleaningFee:        params.CleaningFee,
		SecurityDeposit:    params.SecurityDeposit,
		WeeklyDiscountPct:  params.WeeklyDiscountPct,
		MonthlyDiscountPct: params.MonthlyDiscountPct,
		MaxGuests:          params.MaxGuests,
		Stay:               policy,
		MinLeadTime:        params.MinLeadTime,
		Mode:               mode,
		Booked:             append([]daterange.DateRange(nil), params.Booked...),
		FetchedAt:          params.Now.UTC(),
	}, nil
}

func (l *Listing) NightlyRate() money.Amount {
	return rates.NormalizeNightlyRate(l.Pricing)
}

func (l *Listing) Intervals() availability.IntervalSet {
	return availability.NewIntervalSet(l.Booked, l.Stay.Location)
}

func (l *Listing) Location() *time.Location {
	if l.Stay.Location == nil {
		return time.UTC
	}
	return l.Stay.Location
}

// PricingInput assembles the calculator input for a stay of the given nights.
func (l *Listing) PricingInput(nights int) pricing.Input {
	return pricing.Input{
		NightlyRate:        l.NightlyRate(),
		Nights:             nights,
		CleaningFee:        l.CleaningFee,
		WeeklyDiscountPct:  l.WeeklyDiscountPct,
		MonthlyDiscountPct: l.MonthlyDiscountPct,
		SecurityDeposit:    l.SecurityDeposit,
	}
}

// Copy detaches the snapshot so a booking attempt can hold it unchanged.
func (l *Listing) Copy() *Listing {
	clone := *l
	clone.Booked = append([]daterange.DateRange(nil), l.Booked...)
	return &clone
}

package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/rates"
	domainrange "staybook/internal/domain/shared/daterange"
)

type listingFixture struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Nightly            int64             `json:"nightly"`
	Daily              int64             `json:"daily"`
	Weekly             int64             `json:"weekly"`
	Monthly            int64             `json:"monthly"`
	Price              int64             `json:"price"`
	DurationUnit       string            `json:"durationUnit"`
	CleaningFee        int64             `json:"cleaningFee"`
	SecurityDeposit    int64             `json:"securityDeposit"`
	WeeklyDiscountPct  float64           `json:"weeklyDiscountPct"`
	MonthlyDiscountPct float64           `json:"monthlyDiscountPct"`
	MaxGuests          int               `json:"maxGuests"`
	AllowedCheckIn     string            `json:"allowedCheckIn"`
	AllowedCheckOut    string            `json:"allowedCheckOut"`
	TimeZone           string            `json:"timeZone"`
	MinLeadTime        string            `json:"minLeadTime"`
	Mode               string            `json:"mode"`
	BookedIntervals    []intervalFixture `json:"bookedIntervals"`
}

type intervalFixture struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// LoadListingFixtures imports listing snapshots from a JSON file. A missing
// file is not an error; invalid entries are logged and skipped.
func LoadListingFixtures(ctx context.Context, repo domainlistings.Repository, path string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return 0, nil
		}
		return 0, fmt.Errorf("read fixtures: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return 0, nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return 0, fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	imported := 0
	for _, fx := range fixtures {
		listing, err := fx.toListing(now)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := repo.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		imported++
		logger.Info("listing fixture imported", "listing_id", listing.ID, "booked", len(listing.Booked))
	}
	return imported, nil
}

func (fx listingFixture) toListing(now time.Time) (*domainlistings.Listing, error) {
	var lead time.Duration
	if raw := strings.TrimSpace(fx.MinLeadTime); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("minLeadTime: %w", err)
		}
		lead = d
	}
	booked := make([]domainrange.DateRange, 0, len(fx.BookedIntervals))
	for _, b := range fx.BookedIntervals {
		in, err := time.Parse(time.RFC3339, b.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("booked checkIn: %w", err)
		}
		out, err := time.Parse(time.RFC3339, b.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("booked checkOut: %w", err)
		}
		dr, err := domainrange.New(in, out)
		if err != nil {
			return nil, err
		}
		booked = append(booked, dr)
	}
	return domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:    domainlistings.ListingID(fx.ID),
		Title: fx.Title,
		Pricing: rates.Fields{
			Nightly:      fx.Nightly,
			Daily:        fx.Daily,
			Weekly:       fx.Weekly,
			Monthly:      fx.Monthly,
			Price:        fx.Price,
			DurationUnit: rates.DurationUnit(fx.DurationUnit),
		},
		CleaningFee:        fx.CleaningFee,
		SecurityDeposit:    fx.SecurityDeposit,
		WeeklyDiscountPct:  fx.WeeklyDiscountPct,
		MonthlyDiscountPct: fx.MonthlyDiscountPct,
		MaxGuests:          fx.MaxGuests,
		AllowedCheckIn:     fx.AllowedCheckIn,
		AllowedCheckOut:    fx.AllowedCheckOut,
		TimeZone:           fx.TimeZone,
		MinLeadTime:        lead,
		Mode:               domainlistings.BookingMode(fx.Mode),
		Booked:             booked,
		Now:                now,
	})
}

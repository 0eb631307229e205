package dto

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
)

type Validation struct {
	Valid       bool              `json:"valid"`
	Errors      map[string]string `json:"errors,omitempty"`
	Unavailable bool              `json:"unavailable"`
}

func MapValidation(r booking.Result) Validation {
	out := Validation{Valid: r.Valid, Unavailable: r.Unavailable}
	if len(r.Errors) > 0 {
		out.Errors = make(map[string]string, len(r.Errors))
		for f, msg := range r.Errors {
			out.Errors[string(f)] = msg
		}
	}
	return out
}

type Quote struct {
	ListingID  string            `json:"listingId"`
	CheckIn    time.Time         `json:"checkIn"`
	CheckOut   time.Time         `json:"checkOut"`
	Guests     int               `json:"guests"`
	Validation Validation        `json:"validation"`
	Pricing    pricing.Breakdown `json:"pricing"`
	Bookable   bool              `json:"bookable"`
}

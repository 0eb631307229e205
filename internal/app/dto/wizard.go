package dto

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
)

type Candidate struct {
	CheckIn  *time.Time `json:"checkIn,omitempty"`
	CheckOut *time.Time `json:"checkOut,omitempty"`
	Guests   int        `json:"guests"`
	Note     string     `json:"note,omitempty"`
	Nights   int        `json:"nights"`
}

type Wizard struct {
	ID         string              `json:"id"`
	ListingID  string              `json:"listingId"`
	State      string              `json:"state"`
	Candidate  Candidate           `json:"candidate"`
	Contact    booking.ContactInfo `json:"contact"`
	Quote      pricing.Breakdown   `json:"quote"`
	Validation *Validation         `json:"validation,omitempty"`
	Stale      bool                `json:"stale"`
	Receipt    *booking.Receipt    `json:"receipt,omitempty"`
	LastError  string              `json:"lastError,omitempty"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func MapWizard(w *booking.Wizard) Wizard {
	if w == nil {
		return Wizard{}
	}
	out := Wizard{
		ID:        string(w.ID),
		ListingID: string(w.ListingID),
		State:     string(w.State),
		Candidate: Candidate{
			Guests: w.Candidate.Guests,
			Note:   w.Candidate.Note,
			Nights: w.Candidate.Nights(),
		},
		Contact:   w.Contact,
		Quote:     w.Quote,
		Stale:     w.Stale,
		Receipt:   w.Receipt,
		LastError: w.LastError,
		UpdatedAt: w.UpdatedAt,
	}
	if !w.Candidate.CheckIn.IsZero() {
		in := w.Candidate.CheckIn
		out.Candidate.CheckIn = &in
	}
	if !w.Candidate.CheckOut.IsZero() {
		co := w.Candidate.CheckOut
		out.Candidate.CheckOut = &co
	}
	return out
}

// WithValidation attaches the result of the last step check.
func (w Wizard) WithValidation(r booking.Result) Wizard {
	v := MapValidation(r)
	w.Validation = &v
	return w
}

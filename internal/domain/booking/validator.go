package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/stay"
)

const (
	MaxNoteLength  = 500
	MinNameLength  = 2
	MinPhoneLength = 7
)

type Field string

const (
	FieldCheckIn      Field = "checkIn"
	FieldCheckOut     Field = "checkOut"
	FieldNights       Field = "nights"
	FieldLeadTime     Field = "leadTime"
	FieldGuests       Field = "guests"
	FieldNote         Field = "note"
	FieldAvailability Field = "availability"
	FieldFullName     Field = "fullName"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phoneNumber"
	FieldWhatsApp     Field = "whatsAppNumber"
)

// Candidate is the step-one input of a booking attempt.
type Candidate struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Note     string
}

func (c Candidate) Nights() int {
	if c.CheckIn.IsZero() || c.CheckOut.IsZero() {
		return 0
	}
	return stay.Nights(c.CheckIn, c.CheckOut)
}

type ContactInfo struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	WhatsAppNumber string `json:"whatsAppNumber,omitempty"`
}

// Result is a validation outcome. Failures are values, never errors.
type Result struct {
	Valid       bool             `json:"valid"`
	Errors      map[Field]string `json:"errors,omitempty"`
	Unavailable bool             `json:"unavailable"`
}

func (r *Result) add(field Field, msg string) {
	if r.Errors == nil {
		r.Errors = make(map[Field]string)
	}
	r.Errors[field] = msg
}

func (r Result) Has(field Field) bool {
	_, ok := r.Errors[field]
	return ok
}

func (r *Result) seal() Result {
	r.Valid = len(r.Errors) == 0 && !r.Unavailable
	return *r
}

// Validator runs every check of a step and reports all failures together.
type Validator struct {
	// DefaultLeadTime applies when a listing carries no lead time of its own.
	DefaultLeadTime time.Duration
}

var fieldValidate = validator.New()

func NewValidator(defaultLeadTime time.Duration) *Validator {
	return &Validator{DefaultLeadTime: defaultLeadTime}
}

func (v *Validator) ValidateStep1(c Candidate, listing *listings.Listing, now time.Time) Result {
	var res Result
	if listing == nil {
		res.add(FieldAvailability, "listing is unavailable")
		res.Unavailable = true
		return res.seal()
	}

	hasIn, hasOut := !c.CheckIn.IsZero(), !c.CheckOut.IsZero()
	if !hasIn {
		res.add(FieldCheckIn, "check-in date is required")
	}
	if !hasOut {
		res.add(FieldCheckOut, "check-out date is required")
	}

	if hasIn {
		if err := listing.Stay.ValidateCheckIn(c.CheckIn); err != nil {
			res.add(FieldCheckIn, fmt.Sprintf("check-in must be at or after %s", listing.Stay.CheckIn))
		}
		lead := listing.MinLeadTime
		if lead == 0 {
			lead = v.DefaultLeadTime
		}
		if c.CheckIn.Before(now.Add(lead)) {
			if lead > 0 {
				res.add(FieldLeadTime, fmt.Sprintf("check-in must be at least %s from now", lead))
			} else {
				res.add(FieldLeadTime, "check-in must not be in the past")
			}
		}
	}

	if hasIn && hasOut {
		err := listing.Stay.ValidateCheckOut(c.CheckOut, c.CheckIn)
		switch {
		case errors.Is(err, stay.ErrCheckOutNotAfterIn):
			res.add(FieldCheckOut, "check-out must be after check-in")
		case errors.Is(err, stay.ErrCheckOutTooLate):
			res.add(FieldCheckOut, fmt.Sprintf("same-day check-out must be at or before %s", listing.Stay.CheckOut))
		}
		if c.Nights() <= 0 {
			res.add(FieldNights, "stay must cover at least one night")
		}
		if c.CheckOut.After(c.CheckIn) && listing.Intervals().Overlaps(c.CheckIn, c.CheckOut) {
			res.Unavailable = true
			res.add(FieldAvailability, "selected dates are unavailable")
		}
	}

	if c.Guests < 1 || c.Guests > listing.MaxGuests {
		res.add(FieldGuests, fmt.Sprintf("guests must be between 1 and %d", listing.MaxGuests))
	}
	if utf8.RuneCountInString(c.Note) > MaxNoteLength {
		res.add(FieldNote, fmt.Sprintf("note must be at most %d characters", MaxNoteLength))
	}
	return res.seal()
}

func (v *Validator) ValidateStep2(contact ContactInfo) Result {
	var res Result
	if utf8.RuneCountInString(strings.TrimSpace(contact.FullName)) < MinNameLength {
		res.add(FieldFullName, fmt.Sprintf("full name must be at least %d characters", MinNameLength))
	}
	if err := fieldValidate.Var(strings.TrimSpace(contact.Email), "required,email"); err != nil {
		res.add(FieldEmail, "email address is invalid")
	}
	if utf8.RuneCountInString(strings.TrimSpace(contact.PhoneNumber)) < MinPhoneLength {
		res.add(FieldPhone, fmt.Sprintf("phone number must be at least %d characters", MinPhoneLength))
	}
	if wa := strings.TrimSpace(contact.WhatsAppNumber); wa != "" && utf8.RuneCountInString(wa) < MinPhoneLength {
		res.add(FieldWhatsApp, fmt.Sprintf("WhatsApp number must be at least %d characters", MinPhoneLength))
	}
	return res.seal()
}

package booking

import (
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingSubmitted struct {
	WizardID     WizardID             `json:"wizardId"`
	ListingID    listings.ListingID   `json:"listingId"`
	SubmissionID string               `json:"submissionId"`
	Reference    string               `json:"reference"`
	Range        daterange.DateRange  `json:"range"`
	Guests       int                  `json:"guests"`
	Payable      money.Amount         `json:"payable"`
	Mode         listings.BookingMode `json:"mode"`
	At           time.Time            `json:"at"`
}

func (e BookingSubmitted) EventName() string     { return "booking.submitted" }
func (e BookingSubmitted) AggregateID() string   { return string(e.ListingID) }
func (e BookingSubmitted) OccurredAt() time.Time { return e.At }

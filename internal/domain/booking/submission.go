package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// ErrAvailabilityConflict is returned by a Submitter when the authoritative
// calendar already holds an overlapping reservation.
var ErrAvailabilityConflict = errors.New("booking: requested dates are no longer available")

var ErrSubmissionFailed = errors.New("booking: submission failed")

type Details struct {
	CheckInDateTime  string `json:"checkInDateTime"`
	CheckOutDateTime string `json:"checkOutDateTime"`
	GuestNumber      int    `json:"guestNumber"`
	Note             string `json:"note,omitempty"`
}

type Payment struct {
	AmountToBePaid money.Amount `json:"amountToBePaid"`
}

// Submission is the payload handed to the downstream booking service.
type Submission struct {
	ID        string               `json:"submissionId"`
	ListingID listings.ListingID   `json:"listingId"`
	Contact   ContactInfo          `json:"contact"`
	Booking   Details              `json:"booking"`
	Payment   Payment              `json:"payment"`
	Mode      listings.BookingMode `json:"mode"`
	Range     daterange.DateRange  `json:"-"`
}

func NewSubmission(id string, listing *listings.Listing, c Candidate, contact ContactInfo, payable money.Amount) Submission {
	return Submission{
		ID:        id,
		ListingID: listing.ID,
		Contact:   contact,
		Booking: Details{
			CheckInDateTime:  c.CheckIn.Format(time.RFC3339),
			CheckOutDateTime: c.CheckOut.Format(time.RFC3339),
			GuestNumber:      c.Guests,
			Note:             c.Note,
		},
		Payment: Payment{AmountToBePaid: payable},
		Mode:    listing.Mode,
		Range:   daterange.DateRange{CheckIn: c.CheckIn, CheckOut: c.CheckOut},
	}
}

// Receipt acknowledges a submission. PaymentRedirect is opaque and only
// instant bookings carry one.
type Receipt struct {
	Reference       string    `json:"reference"`
	PaymentRedirect string    `json:"paymentRedirect,omitempty"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

type Submitter interface {
	Submit(ctx context.Context, s Submission) (Receipt, error)
}

type SubmitterFunc func(ctx context.Context, s Submission) (Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, s Submission) (Receipt, error) {
	return f(ctx, s)
}

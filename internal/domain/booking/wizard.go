package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	ErrInvalidState      = errors.New("booking: invalid wizard state transition")
	ErrStepInvalid       = errors.New("booking: step has validation errors")
	ErrDegeneratePricing = errors.New("booking: stay has no payable amount")
	ErrIntervalsStale    = errors.New("booking: availability must be refreshed")
	ErrListingMismatch   = errors.New("booking: listing does not belong to wizard")
	ErrWizardNotFound    = errors.New("booking: wizard not found")
	ErrSubmitterMissing  = errors.New("booking: submitter is not configured")
	ErrSnapshotMissing   = errors.New("booking: listing snapshot is missing")
	ErrValidatorMissing  = errors.New("booking: validator is not configured")
	ErrConcurrentUpdate  = errors.New("booking: wizard was changed by another request")
)

type WizardID string

type WizardState string

const (
	StateCollectingDates   WizardState = "COLLECTING_DATES"
	StateCollectingContact WizardState = "COLLECTING_CONTACT"
	StateSubmitted         WizardState = "SUBMITTED"
)

// Wizard is the two-step booking attempt. State changes only through
// Advance, Back, Submit and RefreshIntervals; the Set* methods edit input.
type Wizard struct {
	ID        WizardID
	ListingID listings.ListingID
	State     WizardState
	Candidate Candidate
	Contact   ContactInfo
	Listing   *listings.Listing
	Quote     pricing.Breakdown
	Stale     bool
	Receipt   *Receipt
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// WizardRepository saves with optimistic versioning and reports a stale
// version as ErrConcurrentUpdate.
type WizardRepository interface {
	ByID(ctx context.Context, id WizardID) (*Wizard, error)
	Save(ctx context.Context, w *Wizard) error
}

func NewWizard(id WizardID, listing *listings.Listing, now time.Time) (*Wizard, error) {
	if listing == nil {
		return nil, ErrSnapshotMissing
	}
	at := now.UTC()
	return &Wizard{
		ID:        id,
		ListingID: listing.ID,
		State:     StateCollectingDates,
		Candidate: Candidate{Guests: 1},
		Listing:   listing.Copy(),
		CreatedAt: at,
		UpdatedAt: at,
	}, nil
}

func (w *Wizard) SetCandidate(c Candidate, now time.Time) error {
	if w.State != StateCollectingDates {
		return ErrInvalidState
	}
	w.Candidate = c
	w.Quote = pricing.Breakdown{}
	w.touch(now)
	return nil
}

func (w *Wizard) SetContact(contact ContactInfo, now time.Time) error {
	if w.State != StateCollectingContact {
		return ErrInvalidState
	}
	w.Contact = contact
	w.touch(now)
	return nil
}

// Evaluate computes the step-one result and the live quote without changing
// the wizard.
func (w *Wizard) Evaluate(v *Validator, calc pricing.Calculator, now time.Time) (Result, pricing.Breakdown) {
	res := v.ValidateStep1(w.Candidate, w.Listing, now)
	if w.Listing == nil {
		return res, pricing.Breakdown{Tier: pricing.TierNone}
	}
	return res, calc.Compute(w.Listing.PricingInput(w.Candidate.Nights()))
}

// Advance moves to contact collection when step one is valid and the stay has
// a payable amount. The returned result carries field errors on failure.
func (w *Wizard) Advance(v *Validator, calc pricing.Calculator, now time.Time) (Result, error) {
	if w.State != StateCollectingDates {
		return Result{}, ErrInvalidState
	}
	if v == nil {
		return Result{}, ErrValidatorMissing
	}
	if w.Stale {
		return Result{}, ErrIntervalsStale
	}
	res, quote := w.Evaluate(v, calc, now)
	if !res.Valid {
		return res, ErrStepInvalid
	}
	if !quote.Bookable() {
		return res, ErrDegeneratePricing
	}
	w.Quote = quote
	w.State = StateCollectingContact
	w.LastError = ""
	w.touch(now)
	return res, nil
}

func (w *Wizard) Back(now time.Time) error {
	if w.State != StateCollectingContact {
		return ErrInvalidState
	}
	w.State = StateCollectingDates
	w.touch(now)
	return nil
}

type SubmitParams struct {
	Validator    *Validator
	Submitter    Submitter
	SubmissionID string
	Now          time.Time
}

// Submit hands the booking to the submitter. A conflict sends the wizard back
// to date collection with a stale snapshot; any other failure keeps the state
// so the guest can retry without re-entering contact details.
func (w *Wizard) Submit(ctx context.Context, p SubmitParams) (Result, error) {
	if w.State != StateCollectingContact {
		return Result{}, ErrInvalidState
	}
	if p.Validator == nil {
		return Result{}, ErrValidatorMissing
	}
	if p.Submitter == nil {
		return Result{}, ErrSubmitterMissing
	}
	res := p.Validator.ValidateStep2(w.Contact)
	if !res.Valid {
		return res, ErrStepInvalid
	}

	sub := NewSubmission(p.SubmissionID, w.Listing, w.Candidate, w.Contact, w.Quote.Payable)
	receipt, err := p.Submitter.Submit(ctx, sub)
	switch {
	case errors.Is(err, ErrAvailabilityConflict):
		w.State = StateCollectingDates
		w.Stale = true
		w.Quote = pricing.Breakdown{}
		w.LastError = err.Error()
		w.touch(p.Now)
		w.Record(availability.OverbookingPrevented{ListingID: string(w.ListingID), Range: sub.Range, At: w.UpdatedAt})
		return res, err
	case err != nil:
		w.LastError = err.Error()
		w.touch(p.Now)
		return res, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	if receipt.SubmittedAt.IsZero() {
		receipt.SubmittedAt = p.Now.UTC()
	}
	w.Receipt = &receipt
	w.State = StateSubmitted
	w.LastError = ""
	w.touch(p.Now)
	w.Record(BookingSubmitted{
		WizardID:     w.ID,
		ListingID:    w.ListingID,
		SubmissionID: sub.ID,
		Reference:    receipt.Reference,
		Range:        sub.Range,
		Guests:       w.Candidate.Guests,
		Payable:      w.Quote.Payable,
		Mode:         sub.Mode,
		At:           w.UpdatedAt,
	})
	return res, nil
}

// RefreshIntervals replaces the listing snapshot with a fresh one and clears
// the stale flag. If the candidate no longer passes step one while collecting
// contact details, the wizard drops back to date collection.
func (w *Wizard) RefreshIntervals(listing *listings.Listing, v *Validator, now time.Time) (Result, error) {
	if w.State == StateSubmitted {
		return Result{}, ErrInvalidState
	}
	if listing == nil {
		return Result{}, ErrSnapshotMissing
	}
	if listing.ID != w.ListingID {
		return Result{}, ErrListingMismatch
	}
	if v == nil {
		return Result{}, ErrValidatorMissing
	}
	w.Listing = listing.Copy()
	w.Stale = false
	res := v.ValidateStep1(w.Candidate, w.Listing, now)
	if w.State == StateCollectingContact && !res.Valid {
		w.State = StateCollectingDates
		w.Quote = pricing.Breakdown{}
	}
	w.touch(now)
	return res, nil
}

func (w *Wizard) Range() daterange.DateRange {
	return daterange.DateRange{CheckIn: w.Candidate.CheckIn, CheckOut: w.Candidate.CheckOut}
}

func (w *Wizard) touch(now time.Time) {
	w.UpdatedAt = now.UTC()
}

// Clone returns a detached copy without pending events.
func (w *Wizard) Clone() *Wizard {
	c := *w
	c.EventRecorder = events.EventRecorder{}
	if w.Listing != nil {
		c.Listing = w.Listing.Copy()
	}
	if w.Receipt != nil {
		r := *w.Receipt
		c.Receipt = &r
	}
	return &c
}

package wizard

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	domainbooking "staybook/internal/domain/booking"
)

const (
	updateDatesKey = "wizard.update_dates"
	advanceKey     = "wizard.advance"
	backKey        = "wizard.back"
	refreshKey     = "wizard.refresh"
)

type UpdateDatesCommand struct {
	WizardID string `validate:"required"`
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int `validate:"gte=0"`
	Note     string
}

func (c UpdateDatesCommand) Key() string { return updateDatesKey }

// UpdateDatesHandler stores the step-one input and answers with the live
// validation and quote. It never changes the wizard state.
type UpdateDatesHandler struct {
	Deps
}

func (h *UpdateDatesHandler) Handle(ctx context.Context, cmd UpdateDatesCommand) (*dto.Wizard, error) {
	w, err := h.load(ctx, cmd.WizardID)
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	cand := domainbooking.Candidate{CheckIn: cmd.CheckIn, CheckOut: cmd.CheckOut, Guests: cmd.Guests, Note: cmd.Note}
	if err := w.SetCandidate(cand, now); err != nil {
		return nil, err
	}
	calc, err := h.calculator(ctx)
	if err != nil {
		return nil, err
	}
	res, quote := w.Evaluate(h.Validator, calc, now)
	if err := h.save(ctx, w); err != nil {
		return nil, err
	}
	v := dto.MapWizard(w).WithValidation(res)
	v.Quote = quote
	return &v, nil
}

type AdvanceWizardCommand struct {
	WizardID string `validate:"required"`
}

func (c AdvanceWizardCommand) Key() string { return advanceKey }

type AdvanceWizardHandler struct {
	Deps
}

func (h *AdvanceWizardHandler) Handle(ctx context.Context, cmd AdvanceWizardCommand) (*dto.Wizard, error) {
	w, err := h.load(ctx, cmd.WizardID)
	if err != nil {
		return nil, err
	}
	calc, err := h.calculator(ctx)
	if err != nil {
		return nil, err
	}
	res, err := w.Advance(h.Validator, calc, h.Clock.Now())
	if err != nil {
		return nil, reject(w, res, err)
	}
	if err := h.save(ctx, w); err != nil {
		return nil, err
	}
	return viewWith(w, res), nil
}

type BackWizardCommand struct {
	WizardID string `validate:"required"`
}

func (c BackWizardCommand) Key() string { return backKey }

type BackWizardHandler struct {
	Deps
}

func (h *BackWizardHandler) Handle(ctx context.Context, cmd BackWizardCommand) (*dto.Wizard, error) {
	w, err := h.load(ctx, cmd.WizardID)
	if err != nil {
		return nil, err
	}
	if err := w.Back(h.Clock.Now()); err != nil {
		return nil, err
	}
	if err := h.save(ctx, w); err != nil {
		return nil, err
	}
	return view(w), nil
}

type RefreshIntervalsCommand struct {
	WizardID string `validate:"required"`
}

func (c RefreshIntervalsCommand) Key() string { return refreshKey }

// RefreshIntervalsHandler reloads the listing snapshot from the repository.
type RefreshIntervalsHandler struct {
	Deps
}

func (h *RefreshIntervalsHandler) Handle(ctx context.Context, cmd RefreshIntervalsCommand) (*dto.Wizard, error) {
	w, err := h.load(ctx, cmd.WizardID)
	if err != nil {
		return nil, err
	}
	listing, err := h.Listings.ByID(ctx, w.ListingID)
	if err != nil {
		return nil, err
	}
	res, err := w.RefreshIntervals(listing, h.Validator, h.Clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.save(ctx, w); err != nil {
		return nil, err
	}
	return viewWith(w, res), nil
}

var (
	_ commands.Handler[UpdateDatesCommand, *dto.Wizard]      = (*UpdateDatesHandler)(nil)
	_ commands.Handler[AdvanceWizardCommand, *dto.Wizard]    = (*AdvanceWizardHandler)(nil)
	_ commands.Handler[BackWizardCommand, *dto.Wizard]       = (*BackWizardHandler)(nil)
	_ commands.Handler[RefreshIntervalsCommand, *dto.Wizard] = (*RefreshIntervalsHandler)(nil)
)

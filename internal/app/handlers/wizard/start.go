package wizard

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
)

const (
	startWizardKey = "wizard.start"
	getWizardKey   = "wizard.get"
)

type StartWizardCommand struct {
	ListingID string `validate:"required"`
}

func (c StartWizardCommand) Key() string { return startWizardKey }

type StartWizardHandler struct {
	Deps
}

func (h *StartWizardHandler) Handle(ctx context.Context, cmd StartWizardCommand) (*dto.Wizard, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	w, err := domainbooking.NewWizard(domainbooking.WizardID(h.IDs.NewID()), listing, h.Clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.save(ctx, w); err != nil {
		return nil, err
	}
	return view(w), nil
}

type GetWizardQuery struct {
	WizardID string `validate:"required"`
}

func (q GetWizardQuery) Key() string { return getWizardKey }

// GetWizardHandler returns the wizard with a fresh evaluation of its current
// step so clients can render live errors and the running quote.
type GetWizardHandler struct {
	Deps
}

func (h *GetWizardHandler) Handle(ctx context.Context, q GetWizardQuery) (*dto.Wizard, error) {
	w, err := h.load(ctx, q.WizardID)
	if err != nil {
		return nil, err
	}
	switch w.State {
	case domainbooking.StateCollectingDates:
		calc, err := h.calculator(ctx)
		if err != nil {
			return nil, err
		}
		res, quote := w.Evaluate(h.Validator, calc, h.Clock.Now())
		v := dto.MapWizard(w).WithValidation(res)
		v.Quote = quote
		return &v, nil
	case domainbooking.StateCollectingContact:
		return viewWith(w, h.Validator.ValidateStep2(w.Contact)), nil
	default:
		return view(w), nil
	}
}

var _ commands.Handler[StartWizardCommand, *dto.Wizard] = (*StartWizardHandler)(nil)
var _ queries.Handler[GetWizardQuery, *dto.Wizard] = (*GetWizardHandler)(nil)

package wizard

import (
	"context"
	"errors"

	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
)

// RejectedError carries the wizard view alongside an expected business
// rejection so transports can render field errors.
type RejectedError struct {
	Wizard dto.Wizard
	Err    error
}

func (e *RejectedError) Error() string { return e.Err.Error() }
func (e *RejectedError) Unwrap() error { return e.Err }

var ErrDependenciesMissing = errors.New("wizard: handler dependencies missing")

// Deps is shared by every wizard handler.
type Deps struct {
	Wizards   domainbooking.WizardRepository
	Listings  domainlistings.Repository
	Validator *domainbooking.Validator
	Policy    policies.PricingPolicySource
	Clock     policies.Clock
	IDs       policies.IDGenerator
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
}

func (d Deps) ready() error {
	if d.Wizards == nil || d.Listings == nil || d.Validator == nil || d.Policy == nil || d.Clock == nil || d.IDs == nil {
		return ErrDependenciesMissing
	}
	return nil
}

func (d Deps) load(ctx context.Context, id string) (*domainbooking.Wizard, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	return d.Wizards.ByID(ctx, domainbooking.WizardID(id))
}

func (d Deps) calculator(ctx context.Context) (domainpricing.Calculator, error) {
	policy, err := d.Policy.Current(ctx)
	if err != nil {
		return domainpricing.Calculator{}, err
	}
	return domainpricing.NewCalculator(policy), nil
}

// save persists the wizard and moves its pending events to the outbox.
func (d Deps) save(ctx context.Context, w *domainbooking.Wizard) error {
	if err := d.Wizards.Save(ctx, w); err != nil {
		return err
	}
	return outbox.Drain(ctx, d.Outbox, d.Encoder, w)
}

func view(w *domainbooking.Wizard) *dto.Wizard {
	v := dto.MapWizard(w)
	return &v
}

func viewWith(w *domainbooking.Wizard, res domainbooking.Result) *dto.Wizard {
	v := dto.MapWizard(w).WithValidation(res)
	return &v
}

func reject(w *domainbooking.Wizard, res domainbooking.Result, err error) error {
	return &RejectedError{Wizard: *viewWith(w, res), Err: err}
}

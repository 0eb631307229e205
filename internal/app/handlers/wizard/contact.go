package wizard

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
)

const (
	updateContactKey = "wizard.update_contact"
	submitKey        = "wizard.submit"
)

type UpdateContactCommand struct {
	WizardID string `validate:"required"`
	Contact  domainbooking.ContactInfo
}

func (c UpdateContactCommand) Key() string { return updateContactKey }

type UpdateContactHandler struct {
	Deps
}

func (h *UpdateContactHandler) Handle(ctx context.Context, cmd UpdateContactCommand) (*dto.Wizard, error) {
	w, err := h.load(ctx, cmd.WizardID)
	if err != nil {
		return nil, err
	}
	if err := w.SetContact(cmd.Contact, h.Clock.Now()); err != nil {
		return nil, err
	}
	if err := h.save(ctx, w); err != nil {
		return nil, err
	}
	return viewWith(w, h.Validator.ValidateStep2(w.Contact)), nil
}

type SubmitWizardCommand struct {
	WizardID        string `validate:"required"`
	IdempotencyKeyV string `validate:"omitempty,max=128"`
}

func (c SubmitWizardCommand) Key() string { return submitKey }

func (c SubmitWizardCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return submitKey + ":" + c.WizardID + ":" + c.IdempotencyKeyV
}

func (c SubmitWizardCommand) ResultPrototype() any { return &dto.Wizard{} }

type SubmitWizardHandler struct {
	Deps
	Submitter domainbooking.Submitter
	Timeout   time.Duration
	Telemetry policies.Telemetry
}

func (h *SubmitWizardHandler) Handle(ctx context.Context, cmd SubmitWizardCommand) (*dto.Wizard, error) {
	if h.Submitter == nil {
		return nil, domainbooking.ErrSubmitterMissing
	}
	w, err := h.load(ctx, cmd.WizardID)
	if err != nil {
		return nil, err
	}

	submitCtx := ctx
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	res, err := w.Submit(submitCtx, domainbooking.SubmitParams{
		Validator:    h.Validator,
		Submitter:    h.Submitter,
		SubmissionID: h.IDs.NewID(),
		Now:          h.Clock.Now(),
	})
	h.observe(w, err)
	if err != nil {
		if errors.Is(err, domainbooking.ErrInvalidState) {
			return nil, err
		}
		// conflicts and downstream failures still change what the guest sees
		if saveErr := h.save(ctx, w); saveErr != nil {
			return nil, errors.Join(err, saveErr)
		}
		return nil, reject(w, res, err)
	}
	if err := h.save(ctx, w); err != nil {
		return nil, err
	}
	return viewWith(w, res), nil
}

func (h *SubmitWizardHandler) observe(w *domainbooking.Wizard, err error) {
	if h.Telemetry == nil || w.Listing == nil {
		return
	}
	result := "submitted"
	switch {
	case err == nil:
	case errors.Is(err, domainbooking.ErrAvailabilityConflict):
		result = "conflict"
	case errors.Is(err, domainbooking.ErrSubmissionFailed):
		result = "failed"
	default:
		result = "rejected"
	}
	h.Telemetry.ObserveSubmission(string(w.Listing.Mode), result)
}

var (
	_ commands.Handler[UpdateContactCommand, *dto.Wizard] = (*UpdateContactHandler)(nil)
	_ commands.Handler[SubmitWizardCommand, *dto.Wizard]  = (*SubmitWizardHandler)(nil)
	_ middleware.IdempotentCommand                        = SubmitWizardCommand{}
)

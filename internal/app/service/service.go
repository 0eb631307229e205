// Package service registers every command and query handler on the buses and
// wraps them with the middleware pipeline.
package service

import (
	"errors"
	"time"

	"staybook/internal/app/commands"
	availabilityapp "staybook/internal/app/handlers/availability"
	quotesapp "staybook/internal/app/handlers/quotes"
	wizardapp "staybook/internal/app/handlers/wizard"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
)

type Options struct {
	Listings    domainlistings.Repository
	Wizards     domainbooking.WizardRepository
	Validator   *domainbooking.Validator
	Policy      policies.PricingPolicySource
	Clock       policies.Clock
	IDs         policies.IDGenerator
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Submitter   domainbooking.Submitter
	Telemetry   policies.Telemetry
	Idempotency middleware.IdempotencyStore

	SubmitTimeout  time.Duration
	IdempotencyTTL time.Duration

	// optional
	Messages middleware.Validator
	Recorder middleware.Recorder
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
	// Keys lists every registered message key.
	Keys []string
}

// Build panics on missing mandatory dependencies; it runs once at startup.
func Build(o Options) Buses {
	if o.Clock == nil {
		o.Clock = policies.SystemClock{}
	}
	if o.IDs == nil {
		o.IDs = policies.UUIDGenerator{}
	}
	if o.Telemetry == nil {
		o.Telemetry = policies.NopTelemetry{}
	}
	if o.Encoder == nil {
		o.Encoder = outbox.JSONEventEncoder{IDGenerator: o.IDs.NewID}
	}

	deps := wizardapp.Deps{
		Wizards:   o.Wizards,
		Listings:  o.Listings,
		Validator: o.Validator,
		Policy:    o.Policy,
		Clock:     o.Clock,
		IDs:       o.IDs,
		Outbox:    o.Outbox,
		Encoder:   o.Encoder,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, wizardapp.StartWizardCommand{}.Key(), &wizardapp.StartWizardHandler{Deps: deps})
	commands.RegisterHandler(commandBus, wizardapp.UpdateDatesCommand{}.Key(), &wizardapp.UpdateDatesHandler{Deps: deps})
	commands.RegisterHandler(commandBus, wizardapp.AdvanceWizardCommand{}.Key(), &wizardapp.AdvanceWizardHandler{Deps: deps})
	commands.RegisterHandler(commandBus, wizardapp.BackWizardCommand{}.Key(), &wizardapp.BackWizardHandler{Deps: deps})
	commands.RegisterHandler(commandBus, wizardapp.RefreshIntervalsCommand{}.Key(), &wizardapp.RefreshIntervalsHandler{Deps: deps})
	commands.RegisterHandler(commandBus, wizardapp.UpdateContactCommand{}.Key(), &wizardapp.UpdateContactHandler{Deps: deps})
	commands.RegisterHandler(commandBus, wizardapp.SubmitWizardCommand{}.Key(), &wizardapp.SubmitWizardHandler{
		Deps:      deps,
		Submitter: o.Submitter,
		Timeout:   o.SubmitTimeout,
		Telemetry: o.Telemetry,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		Listings: o.Listings,
	})
	queries.RegisterHandler(queryBus, quotesapp.QuoteStayQuery{}.Key(), &quotesapp.QuoteStayHandler{
		Listings:  o.Listings,
		Validator: o.Validator,
		Policy:    o.Policy,
		Clock:     o.Clock,
		Telemetry: o.Telemetry,
	})
	queries.RegisterHandler(queryBus, wizardapp.GetWizardQuery{}.Key(), &wizardapp.GetWizardHandler{Deps: deps})

	var cmdMW []middleware.CommandMiddleware
	var queryMW []middleware.QueryMiddleware
	if o.Recorder != nil {
		cmdMW = append(cmdMW, middleware.Metrics(o.Recorder, IsRejection))
		queryMW = append(queryMW, middleware.QueryMetrics(o.Recorder, IsRejection))
	}
	if o.Messages != nil {
		cmdMW = append(cmdMW, middleware.Validation(o.Messages))
		queryMW = append(queryMW, middleware.QueryValidation(o.Messages))
	}
	if o.Idempotency != nil {
		cmdMW = append(cmdMW, middleware.Idempotency(o.Idempotency, middleware.IdempotencyOptions{
			TTL: o.IdempotencyTTL,
			Now: o.Clock.Now,
		}))
	}

	return Buses{
		Commands: middleware.ChainCommands(commandBus, cmdMW...),
		Queries:  middleware.ChainQueries(queryBus, queryMW...),
		Keys:     append(commandBus.Keys(), queryBus.Keys()...),
	}
}

// IsRejection reports expected business outcomes that metrics count apart
// from failures.
func IsRejection(err error) bool {
	var rejected *wizardapp.RejectedError
	switch {
	case errors.As(err, &rejected):
		return true
	case errors.Is(err, domainlistings.ErrListingNotFound),
		errors.Is(err, domainbooking.ErrWizardNotFound),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainbooking.ErrIntervalsStale),
		errors.Is(err, domainbooking.ErrConcurrentUpdate),
		errors.Is(err, middleware.ErrIdempotencyKeyReused):
		return true
	}
	return false
}

package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	quotesapp "staybook/internal/app/handlers/quotes"
	wizardapp "staybook/internal/app/handlers/wizard"
	"staybook/internal/app/middleware"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/service"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/rates"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/submission"
	"staybook/internal/infra/validation"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequentialIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "id-" + string(rune('a'+s.n-1))
}

type observation struct {
	kind, key, outcome string
}

type recorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recorder) ObserveMessage(kind, key, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{kind, key, outcome})
}

type fixture struct {
	buses    service.Buses
	listings *memory.ListingRepository
	outbox   *memory.Outbox
	recorder *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := memory.NewListingRepository()
	l, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:                "lst-1",
		Title:             "Alfama loft",
		Pricing:           rates.Fields{Nightly: 20000},
		CleaningFee:       5000,
		SecurityDeposit:   15000,
		WeeklyDiscountPct: 10,
		MaxGuests:         4,
		AllowedCheckIn:    "15:00",
		AllowedCheckOut:   "11:00",
		Mode:              domainlistings.ModeInstant,
		Booked:            []daterange.DateRange{{CheckIn: at(10, 15), CheckOut: at(12, 11)}},
		Now:               now,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), l))

	box := memory.NewOutbox()
	rec := &recorder{}
	buses := service.Build(service.Options{
		Listings:    repo,
		Wizards:     memory.NewWizardRepository(),
		Validator:   domainbooking.NewValidator(0),
		Policy:      policies.StaticPricingPolicy{Policy: domainpricing.DefaultPolicy()},
		Clock:       policies.FixedClock{At: now},
		IDs:         &sequentialIDs{},
		Outbox:      box,
		Submitter:   &submission.ReservingSubmitter{Listings: repo, PaymentRedirectBase: "https://pay.example.com", Now: func() time.Time { return now }},
		Idempotency: memory.NewIdempotencyStore(),
		Messages:    validation.NewStructValidator(),
		Recorder:    rec,

		SubmitTimeout: time.Second,
	})
	return fixture{buses: buses, listings: repo, outbox: box, recorder: rec}
}

func (f fixture) dispatch(t *testing.T, cmd commands.Command) (*dto.Wizard, error) {
	t.Helper()
	res, err := f.buses.Commands.Dispatch(context.Background(), cmd)
	if err != nil {
		return nil, err
	}
	view, ok := res.(*dto.Wizard)
	require.True(t, ok, "unexpected result %T", res)
	return view, nil
}

func (f fixture) readyToSubmit(t *testing.T, in, out time.Time) string {
	t.Helper()
	started, err := f.dispatch(t, wizardapp.StartWizardCommand{ListingID: "lst-1"})
	require.NoError(t, err)
	id := started.ID

	_, err = f.dispatch(t, wizardapp.UpdateDatesCommand{WizardID: id, CheckIn: in, CheckOut: out, Guests: 2})
	require.NoError(t, err)
	_, err = f.dispatch(t, wizardapp.AdvanceWizardCommand{WizardID: id})
	require.NoError(t, err)
	_, err = f.dispatch(t, wizardapp.UpdateContactCommand{WizardID: id, Contact: domainbooking.ContactInfo{
		FullName:    "Ana Lima",
		Email:       "ana@example.com",
		PhoneNumber: "+5511999",
	}})
	require.NoError(t, err)
	return id
}

func TestWizardFlowSubmitsOnce(t *testing.T) {
	f := newFixture(t)
	id := f.readyToSubmit(t, at(13, 15), at(23, 11))

	view, err := f.dispatch(t, wizardapp.SubmitWizardCommand{WizardID: id, IdempotencyKeyV: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StateSubmitted), view.State)
	assert.Equal(t, int64(199800), view.Quote.Payable)
	require.NotNil(t, view.Receipt)
	assert.Equal(t, "https://pay.example.com/"+view.Receipt.Reference, view.Receipt.PaymentRedirect)

	replay, err := f.dispatch(t, wizardapp.SubmitWizardCommand{WizardID: id, IdempotencyKeyV: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, view.Receipt.Reference, replay.Receipt.Reference)

	_, err = f.dispatch(t, wizardapp.SubmitWizardCommand{WizardID: id})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)

	stored, err := f.listings.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Len(t, stored.Booked, 2)

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "booking.submitted", pending[0].Name)
	assert.Equal(t, "lst-1", pending[0].Aggregate)
}

func TestWizardConflictRequiresRefresh(t *testing.T) {
	f := newFixture(t)
	first := f.readyToSubmit(t, at(13, 15), at(16, 11))
	second := f.readyToSubmit(t, at(14, 15), at(18, 11))

	_, err := f.dispatch(t, wizardapp.SubmitWizardCommand{WizardID: first})
	require.NoError(t, err)

	_, err = f.dispatch(t, wizardapp.SubmitWizardCommand{WizardID: second})
	require.ErrorIs(t, err, domainbooking.ErrAvailabilityConflict)
	var rejected *wizardapp.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, string(domainbooking.StateCollectingDates), rejected.Wizard.State)
	assert.True(t, rejected.Wizard.Stale)

	_, err = f.dispatch(t, wizardapp.AdvanceWizardCommand{WizardID: second})
	assert.ErrorIs(t, err, domainbooking.ErrIntervalsStale)

	refreshed, err := f.dispatch(t, wizardapp.RefreshIntervalsCommand{WizardID: second})
	require.NoError(t, err)
	assert.False(t, refreshed.Stale)
	require.NotNil(t, refreshed.Validation)
	assert.True(t, refreshed.Validation.Unavailable)

	names := []string{}
	for _, rec := range f.outbox.Pending() {
		names = append(names, rec.Name)
	}
	assert.ElementsMatch(t, []string{"booking.submitted", "calendar.overbooking_prevented"}, names)
}

func TestUpdateDatesReturnsLiveValidation(t *testing.T) {
	f := newFixture(t)
	started, err := f.dispatch(t, wizardapp.StartWizardCommand{ListingID: "lst-1"})
	require.NoError(t, err)

	view, err := f.dispatch(t, wizardapp.UpdateDatesCommand{WizardID: started.ID, CheckIn: at(9, 15), CheckOut: at(11, 11), Guests: 9})
	require.NoError(t, err)

	assert.Equal(t, string(domainbooking.StateCollectingDates), view.State)
	require.NotNil(t, view.Validation)
	assert.False(t, view.Validation.Valid)
	assert.True(t, view.Validation.Unavailable)
	assert.Contains(t, view.Validation.Errors, string(domainbooking.FieldGuests))
	assert.Equal(t, 2, view.Quote.Nights)

	_, err = f.dispatch(t, wizardapp.AdvanceWizardCommand{WizardID: started.ID})
	assert.ErrorIs(t, err, domainbooking.ErrStepInvalid)
}

func TestQueriesThroughBus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quote, err := queries.Ask[quotesapp.QuoteStayQuery, *dto.Quote](ctx, f.buses.Queries, quotesapp.QuoteStayQuery{
		ListingID: "lst-1",
		CheckIn:   at(13, 15),
		CheckOut:  at(23, 11),
		Guests:    2,
	})
	require.NoError(t, err)
	assert.True(t, quote.Bookable)
	assert.Equal(t, int64(14800), quote.Pricing.ServiceCharge)

	cal, err := queries.Ask[availabilityapp.GetCalendarQuery, *dto.Calendar](ctx, f.buses.Queries, availabilityapp.GetCalendarQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-10", "2025-03-11"}, cal.DisabledDays)

	_, err = queries.Ask[quotesapp.QuoteStayQuery, *dto.Quote](ctx, f.buses.Queries, quotesapp.QuoteStayQuery{ListingID: "missing"})
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
}

func TestMessageValidationAndMetrics(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatch(t, wizardapp.StartWizardCommand{})
	assert.ErrorIs(t, err, validation.ErrInvalidMessage)

	_, err = f.dispatch(t, wizardapp.BackWizardCommand{WizardID: "nope"})
	assert.ErrorIs(t, err, domainbooking.ErrWizardNotFound)

	f.recorder.mu.Lock()
	defer f.recorder.mu.Unlock()
	require.Len(t, f.recorder.obs, 2)
	assert.Equal(t, observation{"command", "wizard.start", middleware.OutcomeError}, f.recorder.obs[0])
	assert.Equal(t, observation{"command", "wizard.back", middleware.OutcomeRejected}, f.recorder.obs[1])
}

func TestBuildRegistersEveryMessage(t *testing.T) {
	f := newFixture(t)
	assert.ElementsMatch(t, []string{
		"wizard.start",
		"wizard.update_dates",
		"wizard.advance",
		"wizard.back",
		"wizard.refresh",
		"wizard.update_contact",
		"wizard.submit",
		"availability.calendar",
		"pricing.quote",
		"wizard.get",
	}, f.buses.Keys)
}

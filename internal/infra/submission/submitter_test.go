package submission

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/rates"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/storage/memory"
)

type recordingPublisher struct {
	topic   string
	key     string
	payload []byte
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, payload []byte, _ map[string]string) error {
	p.topic, p.key, p.payload = topic, key, payload
	return p.err
}

var submittedAt = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func seedListing(t *testing.T, mode listings.BookingMode) *memory.ListingRepository {
	t.Helper()
	repo := memory.NewListingRepository()
	l, err := listings.NewListing(listings.CreateListingParams{
		ID:              "lst-1",
		Pricing:         rates.Fields{Nightly: 10000},
		MaxGuests:       2,
		AllowedCheckIn:  "15:00",
		AllowedCheckOut: "11:00",
		Mode:            mode,
		Booked: []daterange.DateRange{{
			CheckIn:  time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC),
		}},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), l))
	return repo
}

func submissionFor(in, out time.Time, mode listings.BookingMode) booking.Submission {
	return booking.Submission{
		ID:        "sub-1",
		ListingID: "lst-1",
		Contact:   booking.ContactInfo{FullName: "Ana Costa", Email: "ana@example.com", PhoneNumber: "+351912345678"},
		Booking: booking.Details{
			CheckInDateTime:  in.Format(time.RFC3339),
			CheckOutDateTime: out.Format(time.RFC3339),
			GuestNumber:      2,
		},
		Payment: booking.Payment{AmountToBePaid: 21600},
		Mode:    mode,
		Range:   daterange.DateRange{CheckIn: in, CheckOut: out},
	}
}

func freeStay() (time.Time, time.Time) {
	return time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC), time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)
}

func TestSubmitReservesAndPublishes(t *testing.T) {
	repo := seedListing(t, listings.ModeRequest)
	pub := &recordingPublisher{}
	s := &ReservingSubmitter{Listings: repo, Publisher: pub, TopicPrefix: "dev.", Now: func() time.Time { return submittedAt }}
	in, out := freeStay()

	receipt, err := s.Submit(context.Background(), submissionFor(in, out, listings.ModeRequest))
	require.NoError(t, err)

	assert.Equal(t, "sub-1", receipt.Reference)
	assert.Empty(t, receipt.PaymentRedirect)
	assert.Equal(t, submittedAt, receipt.SubmittedAt)
	assert.Equal(t, "dev.booking.submissions.v1", pub.topic)
	assert.Equal(t, "lst-1", pub.key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &body))
	assert.Equal(t, "request", body["mode"])
	assert.Equal(t, float64(21600), body["payment"].(map[string]any)["amountToBePaid"])

	stored, err := repo.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Len(t, stored.Booked, 2)
}

func TestSubmitInstantCarriesPaymentRedirect(t *testing.T) {
	repo := seedListing(t, listings.ModeInstant)
	s := &ReservingSubmitter{Listings: repo, PaymentRedirectBase: "https://pay.example.com/checkout/"}
	in, out := freeStay()

	receipt, err := s.Submit(context.Background(), submissionFor(in, out, listings.ModeInstant))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/checkout/sub-1", receipt.PaymentRedirect)
}

func TestSubmitOverlapIsAvailabilityConflict(t *testing.T) {
	repo := seedListing(t, listings.ModeRequest)
	pub := &recordingPublisher{}
	s := &ReservingSubmitter{Listings: repo, Publisher: pub}
	in := time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC)
	out := time.Date(2025, 3, 13, 11, 0, 0, 0, time.UTC)

	_, err := s.Submit(context.Background(), submissionFor(in, out, listings.ModeRequest))
	require.ErrorIs(t, err, booking.ErrAvailabilityConflict)
	assert.Empty(t, pub.topic)
}

func TestSubmitPublishFailureReleasesReservation(t *testing.T) {
	repo := seedListing(t, listings.ModeRequest)
	boom := errors.New("broker unavailable")
	s := &ReservingSubmitter{Listings: repo, Publisher: &recordingPublisher{err: boom}}
	in, out := freeStay()

	_, err := s.Submit(context.Background(), submissionFor(in, out, listings.ModeRequest))
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, booking.ErrAvailabilityConflict)

	stored, err := repo.ByID(context.Background(), "lst-1")
	require.NoError(t, err)
	assert.Len(t, stored.Booked, 1)

	// a retry succeeds once the broker recovers
	s.Publisher = &recordingPublisher{}
	_, err = s.Submit(context.Background(), submissionFor(in, out, listings.ModeRequest))
	require.NoError(t, err)
}

func TestSubmitUnknownListing(t *testing.T) {
	s := &ReservingSubmitter{Listings: memory.NewListingRepository()}
	in, out := freeStay()

	_, err := s.Submit(context.Background(), submissionFor(in, out, listings.ModeRequest))
	assert.ErrorIs(t, err, listings.ErrListingNotFound)
}

func TestSubmitRequiresRepository(t *testing.T) {
	_, err := (&ReservingSubmitter{}).Submit(context.Background(), booking.Submission{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSubmitRecordsReservationEvent(t *testing.T) {
	repo := seedListing(t, listings.ModeRequest)
	box := memory.NewOutbox()
	s := &ReservingSubmitter{Listings: repo, Outbox: box, Now: func() time.Time { return submittedAt }}
	in, out := freeStay()

	_, err := s.Submit(context.Background(), submissionFor(in, out, listings.ModeRequest))
	require.NoError(t, err)

	pending := box.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "calendar.reserved", pending[0].Name)
	assert.Equal(t, "lst-1", pending[0].Aggregate)
	assert.Equal(t, submittedAt, pending[0].OccurredAt)
}

package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
)

// Publisher is satisfied by the Kafka producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

const SubmissionsTopic = "booking.submissions.v1"

// ReservingSubmitter re-checks availability against the listing repository by
// atomically reserving the interval, then optionally forwards the payload to
// the booking service. A failed publish releases the reservation.
type ReservingSubmitter struct {
	Listings            listings.Repository
	Publisher           Publisher
	TopicPrefix         string
	PaymentRedirectBase string
	Logger              *slog.Logger
	Now                 func() time.Time

	// Outbox, when set, receives a calendar.reserved event per reservation.
	Outbox  appoutbox.Outbox
	Encoder appoutbox.EventEncoder
}

var ErrNotConfigured = errors.New("submission: listings repository is required")

func (s *ReservingSubmitter) Submit(ctx context.Context, sub booking.Submission) (booking.Receipt, error) {
	if s.Listings == nil {
		return booking.Receipt{}, ErrNotConfigured
	}
	if err := s.Listings.AddBookedInterval(ctx, sub.ListingID, sub.Range); err != nil {
		if errors.Is(err, listings.ErrIntervalTaken) {
			return booking.Receipt{}, fmt.Errorf("%w: %v", booking.ErrAvailabilityConflict, err)
		}
		return booking.Receipt{}, err
	}
	if s.Publisher != nil {
		if err := s.publish(ctx, sub); err != nil {
			s.release(sub)
			return booking.Receipt{}, err
		}
	}
	receipt := booking.Receipt{Reference: sub.ID, SubmittedAt: s.now()}
	reserved := availability.IntervalReserved{
		ListingID:    string(sub.ListingID),
		SubmissionID: sub.ID,
		Range:        sub.Range,
		At:           receipt.SubmittedAt,
	}
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, []events.DomainEvent{reserved}); err != nil {
		s.logger().Warn("reservation event not recorded", "listing_id", sub.ListingID, "error", err)
	}
	if sub.Mode == listings.ModeInstant && s.PaymentRedirectBase != "" {
		receipt.PaymentRedirect = strings.TrimRight(s.PaymentRedirectBase, "/") + "/" + sub.ID
	}
	s.logger().Info("booking submitted",
		"listing_id", sub.ListingID,
		"submission_id", sub.ID,
		"mode", sub.Mode,
		"amount", sub.Payment.AmountToBePaid,
	)
	return receipt, nil
}

func (s *ReservingSubmitter) publish(ctx context.Context, sub booking.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"content-type":  "application/json",
		"submission-id": sub.ID,
	}
	return s.Publisher.Publish(ctx, s.TopicPrefix+SubmissionsTopic, string(sub.ListingID), payload, headers)
}

// release runs detached from the request context, which may already be done.
func (s *ReservingSubmitter) release(sub booking.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Listings.RemoveBookedInterval(ctx, sub.ListingID, sub.Range); err != nil {
		s.logger().Error("release reservation failed",
			"listing_id", sub.ListingID,
			"submission_id", sub.ID,
			"error", err,
		)
	}
}

func (s *ReservingSubmitter) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ReservingSubmitter) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

var _ booking.Submitter = (*ReservingSubmitter)(nil)

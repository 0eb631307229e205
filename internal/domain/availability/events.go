package availability

import (
	"time"

	"staybook/internal/domain/shared/daterange"
)

type IntervalReserved struct {
	ListingID    string              `json:"listingId"`
	SubmissionID string              `json:"submissionId"`
	Range        daterange.DateRange `json:"range"`
	At           time.Time           `json:"at"`
}

func (e IntervalReserved) EventName() string     { return "calendar.reserved" }
func (e IntervalReserved) AggregateID() string   { return e.ListingID }
func (e IntervalReserved) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	ListingID string              `json:"listingId"`
	Range     daterange.DateRange `json:"range"`
	At        time.Time           `json:"at"`
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return e.ListingID }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }

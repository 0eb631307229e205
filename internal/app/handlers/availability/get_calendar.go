package availability

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	domainlistings "staybook/internal/domain/listings"
)

const getCalendarKey = "availability.calendar"

type GetCalendarQuery struct {
	ListingID string `validate:"required"`
	From      time.Time
	To        time.Time `validate:"omitempty,gtefield=From"`
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	Listings domainlistings.Repository
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*dto.Calendar, error) {
	listing, err := h.Listings.ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return nil, err
	}
	cal := dto.MapCalendar(listing, listing.Intervals(), q.From, q.To)
	return &cal, nil
}

var _ queries.Handler[GetCalendarQuery, *dto.Calendar] = (*GetCalendarHandler)(nil)

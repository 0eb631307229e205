package dto

import (
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/listings"
)

const dayLayout = "2006-01-02"

type CalendarInterval struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}

type Calendar struct {
	ListingID       string             `json:"listingId"`
	TimeZone        string             `json:"timeZone"`
	AllowedCheckIn  string             `json:"allowedCheckIn"`
	AllowedCheckOut string             `json:"allowedCheckOut"`
	MaxGuests       int                `json:"maxGuests"`
	Mode            string             `json:"mode"`
	NightlyRate     int64              `json:"nightlyRate"`
	DisabledDays    []string           `json:"disabledDays"`
	Booked          []CalendarInterval `json:"booked"`
}

// MapCalendar renders the booked intervals of a listing. Only days between
// from and to (inclusive, when set) are listed as disabled.
func MapCalendar(l *listings.Listing, set availability.IntervalSet, from, to time.Time) Calendar {
	if l == nil {
		return Calendar{}
	}
	out := Calendar{
		ListingID:       string(l.ID),
		TimeZone:        l.Location().String(),
		AllowedCheckIn:  l.Stay.CheckIn.String(),
		AllowedCheckOut: l.Stay.CheckOut.String(),
		MaxGuests:       l.MaxGuests,
		Mode:            string(l.Mode),
		NightlyRate:     l.NightlyRate(),
		DisabledDays:    []string{},
		Booked:          make([]CalendarInterval, 0, set.Len()),
	}
	for _, d := range set.DisabledWholeDays() {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out.DisabledDays = append(out.DisabledDays, d.Format(dayLayout))
	}
	for _, r := range set.Intervals() {
		out.Booked = append(out.Booked, CalendarInterval{CheckIn: r.CheckIn, CheckOut: r.CheckOut})
	}
	return out
}

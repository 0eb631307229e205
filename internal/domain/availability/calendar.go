package availability

import (
	"sort"
	"time"

	"staybook/internal/domain/shared/daterange"
)

// IntervalSet is a read-only snapshot of a listing's confirmed and pending
// reservations. Intervals are half-open: a checkout on day N does not block a
// check-in on day N.
type IntervalSet struct {
	intervals []daterange.DateRange
	loc       *time.Location
}

// NewIntervalSet keeps only well-formed intervals (checkIn < checkOut).
// Calendar days are computed in loc, UTC when nil.
func NewIntervalSet(intervals []daterange.DateRange, loc *time.Location) IntervalSet {
	if loc == nil {
		loc = time.UTC
	}
	kept := make([]daterange.DateRange, 0, len(intervals))
	for _, r := range intervals {
		if r.Validate() != nil {
			continue
		}
		kept = append(kept, r)
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].CheckIn.Before(kept[j].CheckIn)
	})
	return IntervalSet{intervals: kept, loc: loc}
}

func (s IntervalSet) Len() int {
	return len(s.intervals)
}

func (s IntervalSet) Intervals() []daterange.DateRange {
	out := make([]daterange.DateRange, len(s.intervals))
	copy(out, s.intervals)
	return out
}

// Overlaps reports whether [start, end) intersects any stored interval.
func (s IntervalSet) Overlaps(start, end time.Time) bool {
	for _, r := range s.intervals {
		if start.Before(r.CheckOut) && end.After(r.CheckIn) {
			return true
		}
	}
	return false
}

// DisabledWholeDays lists calendar days that cannot be picked at all: from the
// start day of each interval through the day before its checkout. The checkout
// day stays selectable for a same-day arrival.
func (s IntervalSet) DisabledWholeDays() []time.Time {
	seen := make(map[int64]struct{})
	days := make([]time.Time, 0)
	for _, r := range s.intervals {
		first := daterange.StartOfDay(r.CheckIn.In(s.loc))
		last := daterange.StartOfDay(r.CheckOut.In(s.loc)).AddDate(0, 0, -1)
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if _, ok := seen[d.Unix()]; ok {
				continue
			}
			seen[d.Unix()] = struct{}{}
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// IsDayDisabled reports whether the calendar day containing t is fully blocked.
func (s IntervalSet) IsDayDisabled(t time.Time) bool {
	day := daterange.StartOfDay(t.In(s.loc))
	for _, d := range s.DisabledWholeDays() {
		if d.Equal(day) {
			return true
		}
	}
	return false
}

// With returns a copy that also contains r.
func (s IntervalSet) With(r daterange.DateRange) IntervalSet {
	return NewIntervalSet(append(s.Intervals(), r), s.loc)
}

package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"staybook/internal/domain/shared/daterange"
)

func at(day, hour int) time.Time {
	return time.Date(2026, time.July, day, hour, 0, 0, 0, time.UTC)
}

func sampleSet() IntervalSet {
	return NewIntervalSet([]daterange.DateRange{
		{CheckIn: at(10, 14), CheckOut: at(13, 11)},
		{CheckIn: at(20, 14), CheckOut: at(21, 11)},
	}, time.UTC)
}

func TestOverlaps(t *testing.T) {
	set := sampleSet()

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{name: "strictly inside", start: at(11, 0), end: at(12, 0), want: true},
		{name: "covers whole interval", start: at(9, 14), end: at(14, 11), want: true},
		{name: "overlaps the tail", start: at(12, 14), end: at(15, 11), want: true},
		{name: "starts exactly at checkout", start: at(13, 11), end: at(15, 11), want: false},
		{name: "ends exactly at checkin", start: at(8, 14), end: at(10, 14), want: false},
		{name: "between intervals", start: at(14, 14), end: at(19, 11), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Overlaps(tt.start, tt.end))
		})
	}
}

func TestDisabledWholeDaysKeepsCheckoutDaySelectable(t *testing.T) {
	days := sampleSet().DisabledWholeDays()

	want := []time.Time{
		time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, days)

	set := sampleSet()
	assert.True(t, set.IsDayDisabled(at(12, 23)))
	assert.False(t, set.IsDayDisabled(at(13, 8)), "checkout day is free for arrivals")
	assert.False(t, set.IsDayDisabled(at(21, 8)))
}

func TestDisabledWholeDaysDeduplicatesOverlappingIntervals(t *testing.T) {
	set := NewIntervalSet([]daterange.DateRange{
		{CheckIn: at(1, 14), CheckOut: at(3, 11)},
		{CheckIn: at(2, 14), CheckOut: at(4, 11)},
	}, time.UTC)

	assert.Len(t, set.DisabledWholeDays(), 3)
}

func TestNewIntervalSetDropsMalformedIntervals(t *testing.T) {
	set := NewIntervalSet([]daterange.DateRange{
		{CheckIn: at(5, 14), CheckOut: at(5, 14)},
		{CheckIn: at(7, 14), CheckOut: at(6, 11)},
		{CheckIn: at(8, 14), CheckOut: at(9, 11)},
	}, nil)

	assert.Equal(t, 1, set.Len())
	assert.False(t, set.Overlaps(at(5, 0), at(7, 0)))
}

func TestWithDoesNotMutateReceiver(t *testing.T) {
	set := sampleSet()
	extended := set.With(daterange.DateRange{CheckIn: at(25, 14), CheckOut: at(27, 11)})

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 3, extended.Len())
	assert.True(t, extended.Overlaps(at(26, 0), at(26, 12)))
	assert.False(t, set.Overlaps(at(26, 0), at(26, 12)))
}

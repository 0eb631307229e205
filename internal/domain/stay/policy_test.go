package stay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.June, day, hour, minute, 0, 0, time.UTC)
}

func testPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := NewPolicy("14:00", "11:00", time.UTC)
	require.NoError(t, err)
	return p
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", tod.String())

	tod, err = ParseTimeOfDay("7:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05", tod.String())

	for _, raw := range []string{"", "24:00", "12:60", "noon", "12:5", "1200"} {
		_, err := ParseTimeOfDay(raw)
		assert.ErrorIs(t, err, ErrInvalidTimeOfDay, raw)
	}
}

func TestValidateCheckIn(t *testing.T) {
	p := testPolicy(t)

	assert.NoError(t, p.ValidateCheckIn(at(10, 14, 0)))
	assert.NoError(t, p.ValidateCheckIn(at(10, 20, 0)))
	assert.ErrorIs(t, p.ValidateCheckIn(at(10, 13, 59)), ErrCheckInTooEarly)
}

func TestValidateCheckOutSameDayBoundary(t *testing.T) {
	p, err := NewPolicy("08:00", "11:00", time.UTC)
	require.NoError(t, err)
	in := at(10, 8, 0)

	assert.NoError(t, p.ValidateCheckOut(at(10, 11, 0), in), "exactly at allowed check-out")
	assert.ErrorIs(t, p.ValidateCheckOut(at(10, 11, 1), in), ErrCheckOutTooLate, "one minute later")
	assert.NoError(t, p.ValidateCheckOut(at(11, 11, 1), in), "same clock time on the next day")
	assert.NoError(t, p.ValidateCheckOut(at(11, 22, 0), in), "later day has no upper bound")
}

func TestValidateCheckOutSecondsCount(t *testing.T) {
	p := testPolicy(t)
	in := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	p.CheckIn = TimeOfDay{}
	out := time.Date(2026, time.June, 10, 11, 0, 30, 0, time.UTC)
	assert.ErrorIs(t, p.ValidateCheckOut(out, in), ErrCheckOutTooLate)
}

func TestValidateCheckOutOrdering(t *testing.T) {
	p := testPolicy(t)
	assert.ErrorIs(t, p.ValidateCheckOut(at(10, 14, 0), at(10, 14, 0)), ErrCheckOutNotAfterIn)
	assert.ErrorIs(t, p.ValidateCheckOut(at(9, 20, 0), at(10, 14, 0)), ErrCheckOutNotAfterIn)
}

func TestSameDayUsesPolicyLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	p, err := NewPolicy("00:00", "11:00", loc)
	require.NoError(t, err)

	// 22:00 UTC on the 10th is 01:00 on the 11th locally; 09:00 UTC the 11th is 12:00 local.
	in := time.Date(2026, time.June, 10, 22, 0, 0, 0, time.UTC)
	out := time.Date(2026, time.June, 11, 9, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, p.ValidateCheckOut(out, in), ErrCheckOutTooLate)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Nights(at(1, 14, 0), at(4, 11, 0)))
	assert.Equal(t, 1, Nights(at(1, 8, 0), at(1, 11, 0)))
	assert.Equal(t, 0, Nights(at(4, 8, 0), at(1, 11, 0)))
}

func TestValidateCombined(t *testing.T) {
	p := testPolicy(t)
	assert.NoError(t, p.Validate(at(1, 15, 0), at(3, 10, 0)))
	assert.ErrorIs(t, p.Validate(at(1, 9, 0), at(3, 10, 0)), ErrCheckInTooEarly)
	assert.ErrorIs(t, p.Validate(at(3, 15, 0), at(1, 10, 0)), ErrCheckOutNotAfterIn)
}

func TestClampIsSeparateFromValidation(t *testing.T) {
	p := testPolicy(t)

	clamped := p.ClampCheckIn(at(10, 9, 15))
	assert.Equal(t, at(10, 14, 0), clamped)
	assert.NoError(t, p.ValidateCheckIn(clamped))
	assert.ErrorIs(t, p.ValidateCheckIn(at(10, 9, 15)), ErrCheckInTooEarly, "validation never clamps")

	assert.Equal(t, at(10, 16, 0), p.ClampCheckIn(at(10, 16, 0)))

	in := at(10, 14, 0)
	p.CheckIn = MustTimeOfDay("06:00")
	assert.Equal(t, at(10, 11, 0), p.ClampCheckOut(at(10, 13, 0), at(10, 6, 0)))
	assert.Equal(t, at(12, 13, 0), p.ClampCheckOut(at(12, 13, 0), in))
}

func TestNewPolicyDefaults(t *testing.T) {
	p, err := NewPolicy("", "", nil)
	require.NoError(t, err)
	assert.NoError(t, p.ValidateCheckIn(at(1, 0, 0)))
	assert.NoError(t, p.ValidateCheckOut(at(1, 23, 59), at(1, 0, 0)))

	_, err = NewPolicy("25:00", "11:00", nil)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

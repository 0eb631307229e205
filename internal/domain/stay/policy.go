package stay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"staybook/internal/domain/shared/daterange"
)

var (
	ErrInvalidTimeOfDay   = errors.New("stay: time of day must be HH:MM")
	ErrCheckInTooEarly    = errors.New("stay: check-in is earlier than allowed")
	ErrCheckOutNotAfterIn = errors.New("stay: check-out must be after check-in")
	ErrCheckOutTooLate    = errors.New("stay: same-day check-out is later than allowed")
	ErrNoNights           = errors.New("stay: stay must cover at least one night")
)

// TimeOfDay is a wall-clock offset from midnight with second precision.
type TimeOfDay struct {
	seconds int
}

func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	return TimeOfDay{seconds: h*3600 + m*60}, nil
}

func MustTimeOfDay(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{seconds: t.Hour()*3600 + t.Minute()*60 + t.Second()}
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t.seconds < other.seconds }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t.seconds > other.seconds }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.seconds/3600, (t.seconds%3600)/60)
}

// On places the time of day on the calendar day of d.
func (t TimeOfDay) On(d time.Time) time.Time {
	return daterange.StartOfDay(d).Add(time.Duration(t.seconds) * time.Second)
}

// Policy holds a listing's allowed check-in and check-out times of day.
// Calendar-day comparisons happen in Location (UTC when unset).
type Policy struct {
	CheckIn  TimeOfDay
	CheckOut TimeOfDay
	Location *time.Location
}

var endOfDay = TimeOfDay{seconds: 23*3600 + 59*60}

// NewPolicy parses "HH:MM" values. Empty check-in means any time; empty
// check-out means the end of the day.
func NewPolicy(checkIn, checkOut string, loc *time.Location) (Policy, error) {
	p := Policy{CheckOut: endOfDay, Location: loc}
	if strings.TrimSpace(checkIn) != "" {
		t, err := ParseTimeOfDay(checkIn)
		if err != nil {
			return Policy{}, fmt.Errorf("check-in: %w", err)
		}
		p.CheckIn = t
	}
	if strings.TrimSpace(checkOut) != "" {
		t, err := ParseTimeOfDay(checkOut)
		if err != nil {
			return Policy{}, fmt.Errorf("check-out: %w", err)
		}
		p.CheckOut = t
	}
	return p, nil
}

func (p Policy) local(t time.Time) time.Time {
	if p.Location == nil {
		return t.UTC()
	}
	return t.In(p.Location)
}

func (p Policy) ValidateCheckIn(in time.Time) error {
	if TimeOfDayOf(p.local(in)).Before(p.CheckIn) {
		return ErrCheckInTooEarly
	}
	return nil
}

func (p Policy) ValidateCheckOut(out, in time.Time) error {
	if !out.After(in) {
		return ErrCheckOutNotAfterIn
	}
	localOut := p.local(out)
	if daterange.SameDay(p.local(in), localOut) && TimeOfDayOf(localOut).After(p.CheckOut) {
		return ErrCheckOutTooLate
	}
	return nil
}

// Validate runs both checks plus the night count and returns the first failure.
func (p Policy) Validate(in, out time.Time) error {
	if err := p.ValidateCheckIn(in); err != nil {
		return err
	}
	if err := p.ValidateCheckOut(out, in); err != nil {
		return err
	}
	if Nights(in, out) <= 0 {
		return ErrNoNights
	}
	return nil
}

// ClampCheckIn lifts an earlier selection up to the allowed check-in time on
// the same day. Input assistance only; gating always goes through Validate.
func (p Policy) ClampCheckIn(in time.Time) time.Time {
	local := p.local(in)
	if !TimeOfDayOf(local).Before(p.CheckIn) {
		return in
	}
	return p.CheckIn.On(local)
}

// ClampCheckOut pulls a same-day selection back to the allowed check-out time.
func (p Policy) ClampCheckOut(out, in time.Time) time.Time {
	local := p.local(out)
	if !daterange.SameDay(p.local(in), local) || !TimeOfDayOf(local).After(p.CheckOut) {
		return out
	}
	return p.CheckOut.On(local)
}

// Nights is ceil((out-in)/24h) floored at zero.
func Nights(in, out time.Time) int {
	return daterange.DateRange{CheckIn: in, CheckOut: out}.Nights()
}

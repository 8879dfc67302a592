package domain

import (
	"fmt"
	"math"
	"time"
)

// NightlyRate is the room price per night shown by the calendar, in pounds.
const NightlyRate = 100

const Currency = "£"

// DateRange is a check-in/check-out pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	s, e := dateOnly(start), dateOnly(end)
	if s.After(e) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return DateRange{Start: s, End: e}, nil
}

// MustDateRange is NewDateRange for static tables.
func MustDateRange(start, end time.Time) DateRange {
	r, err := NewDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// SameMonth reports whether both ends fall in one calendar month.
func (r DateRange) SameMonth() bool {
	return r.Start.Year() == r.End.Year() && r.Start.Month() == r.End.Month()
}

// Nights is the number of nights the calendar displays for the range.
// Within one month it is endDay - startDay; across months it is the
// calendar-night count.
func (r DateRange) Nights() int {
	if r.SameMonth() {
		return r.End.Day() - r.Start.Day()
	}
	return int(math.Round(r.End.Sub(r.Start).Hours() / 24))
}

func (r DateRange) Price() int { return r.Nights() * NightlyRate }

// NightsLabel renders the summary line the calendar shows under a selection,
// e.g. "3 night(s) - £300".
func (r DateRange) NightsLabel() string {
	return fmt.Sprintf("%d night(s) - %s%d", r.Nights(), Currency, r.Price())
}

func (r DateRange) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

// MonthDate returns day `day` of the month `offset` months away from now.
// Month overflow rolls the year like a calendar does.
func MonthDate(now time.Time, offset, day int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(offset), day, 0, 0, 0, 0, now.Location())
}

// MonthDelta is how many months the calendar has to move from current to target.
func MonthDelta(current, target time.Time) int {
	return int(target.Month()-current.Month()) + 12*(target.Year()-current.Year())
}

// MonthLabel is the calendar header text, e.g. "March 2025".
func MonthLabel(t time.Time) string { return t.Format("January 2006") }

// DayLabel is the zero-padded day number printed in a calendar cell.
func DayLabel(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type Guest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// BookingRequest is what a scenario types into the booking form.
// A nil Range means no dates are selected.
type BookingRequest struct {
	Range *DateRange
	Guest Guest
}

type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

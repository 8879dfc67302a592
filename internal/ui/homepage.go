package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hotel_acceptance/internal/check"
	"hotel_acceptance/internal/domain"
)

// HomePage exposes the booking and contact forms of the AUT landing page as
// semantic operations. Field and button lookups stay inside this type.
type HomePage struct {
	drv Driver
	now func() time.Time

	// room booking form
	RoomBook  Element
	BackDate  Element
	NextDate  Element
	MonthView Element
	Firstname Element
	Lastname  Element
	Email     Element
	Phone     Element
	BookBtn   Element
	CancelBtn Element
	CloseBtn  Element

	// contact form
	ContactName    Element
	ContactEmail   Element
	ContactPhone   Element
	ContactSubject Element
	ContactMessage Element
	SubmitBtn      Element

	// requests the two forms send
	BookingAPI Endpoint
	MessageAPI Endpoint
}

// NewHomePage binds the page elements to drv. now is the clock the calendar
// opens on; nil means time.Now.
func NewHomePage(drv Driver, now func() time.Time) *HomePage {
	if now == nil {
		now = time.Now
	}
	return &HomePage{
		drv: drv,
		now: now,

		RoomBook:  Button("Book this room").FirstMatch(),
		BackDate:  Button("Back").FirstMatch(),
		NextDate:  Button("Next").FirstMatch(),
		MonthView: Label("Month View"),
		Firstname: Placeholder("Firstname"),
		Lastname:  Placeholder("Lastname"),
		Email:     Placeholder("Email").FirstMatch(),
		Phone:     Placeholder("Phone").FirstMatch(),
		BookBtn:   Button("Book").Exactly(),
		CancelBtn: Button("Cancel"),
		CloseBtn:  Button("Close"),

		ContactName:    TestID("ContactName"),
		ContactEmail:   TestID("ContactEmail"),
		ContactPhone:   TestID("ContactPhone"),
		ContactSubject: TestID("ContactSubject"),
		ContactMessage: TestID("ContactDescription"),
		SubmitBtn:      Button("Submit"),

		BookingAPI: Endpoint{Method: http.MethodPost, Path: "/api/booking"},
		MessageAPI: Endpoint{Method: http.MethodPost, Path: "/api/message"},
	}
}

func (h *HomePage) Open(ctx context.Context) error { return h.drv.Open(ctx, "/") }

// DateCell is the in-range calendar cell for t. Cells greyed out for the
// adjacent months are excluded so a day number never matches twice.
func (h *HomePage) DateCell(t time.Time) Element {
	return CSS(".rbc-date-cell:not(.rbc-off-range)").Within(h.MonthView).Containing(domain.DayLabel(t))
}

// NightsText is the summary the calendar prints for a selection.
func NightsText(r domain.DateRange) Element { return Text(r.NightsLabel()).FirstMatch() }

// SelectDates moves the calendar to the month of r.Start and drags across
// the range. Checks are soft; only interaction errors are returned.
func (h *HomePage) SelectDates(ctx context.Context, rec *check.Recorder, r domain.DateRange) error {
	if !r.SameMonth() {
		return fmt.Errorf("select %s: %w", r, domain.ErrRangeSpansMonths)
	}

	delta := domain.MonthDelta(h.now(), r.Start)
	nav := h.NextDate
	if delta < 0 {
		nav, delta = h.BackDate, -delta
	}
	// one click at a time; the calendar re-renders between clicks
	for i := 0; i < delta; i++ {
		if err := h.drv.Click(ctx, nav); err != nil {
			return fmt.Errorf("calendar navigation %d/%d: %w", i+1, delta, err)
		}
	}
	if err := rec.Soft("calendar month", h.drv.ExpectVisible(ctx, Text(domain.MonthLabel(r.Start)))); err != nil {
		return err
	}

	start, end := h.DateCell(r.Start), h.DateCell(r.End)
	// The widget only registers the range when the button is pressed again
	// over the end cell before being released back over the start cell.
	gesture := []struct {
		name string
		do   func() error
	}{
		{"hover start", func() error { return h.drv.Hover(ctx, start) }},
		{"press", func() error { return h.drv.MouseDown(ctx) }},
		{"hover end", func() error { return h.drv.Hover(ctx, end) }},
		{"press", func() error { return h.drv.MouseDown(ctx) }},
		{"hover start", func() error { return h.drv.Hover(ctx, start) }},
		{"release", func() error { return h.drv.MouseUp(ctx) }},
	}
	for _, g := range gesture {
		if err := g.do(); err != nil {
			return fmt.Errorf("select %s: %s: %w", r, g.name, err)
		}
	}
	return nil
}

// OpenBooking opens the booking form and waits until its fields show.
func (h *HomePage) OpenBooking(ctx context.Context, rec *check.Recorder) error {
	return rec.Step(`Click "Book this room" button`, func() error {
		if err := h.drv.Click(ctx, h.RoomBook); err != nil {
			return err
		}
		for _, f := range []struct {
			name string
			el   Element
		}{
			{"firstname visible", h.Firstname},
			{"lastname visible", h.Lastname},
			{"email visible", h.Email},
			{"phone visible", h.Phone},
		} {
			if err := rec.Soft(f.name, h.drv.ExpectVisible(ctx, f.el)); err != nil {
				return err
			}
		}
		return nil
	})
}

// FillGuest types the guest details in form order, soft-checking each echo.
func (h *HomePage) FillGuest(ctx context.Context, rec *check.Recorder, g domain.Guest) error {
	return h.fillAll(ctx, rec, []field{
		{"Enter Firstname", "firstname", h.Firstname, g.FirstName},
		{"Enter Lastname", "lastname", h.Lastname, g.LastName},
		{"Enter Email", "email", h.Email, g.Email},
		{"Enter Phone Number", "phone", h.Phone, g.Phone},
	})
}

// BookRoom walks the whole reservation journey and submits the form,
// returning once the AUT has answered. The outcome is left to the caller.
func (h *HomePage) BookRoom(ctx context.Context, rec *check.Recorder, req domain.BookingRequest) error {
	if err := h.OpenBooking(ctx, rec); err != nil {
		return err
	}
	if req.Range != nil {
		r := *req.Range
		err := rec.Step("Select date", func() error {
			if err := h.SelectDates(ctx, rec, r); err != nil {
				return err
			}
			return rec.Soft("nights and price", h.drv.ExpectVisible(ctx, NightsText(r)))
		})
		if err != nil {
			return err
		}
	}
	if err := h.FillGuest(ctx, rec, req.Guest); err != nil {
		return err
	}
	return rec.Step(`Click "Book" button`, func() error {
		return h.drv.Submit(ctx, h.BookBtn, h.BookingAPI)
	})
}

// CheckNights selects r without submitting and requires the calendar to
// show the matching nights and price.
func (h *HomePage) CheckNights(ctx context.Context, rec *check.Recorder, r domain.DateRange) error {
	if err := h.SelectDates(ctx, rec, r); err != nil {
		return err
	}
	return hard(rec, "nights and price "+r.NightsLabel(), h.drv.ExpectVisible(ctx, NightsText(r)))
}

func (h *HomePage) CloseConfirmation(ctx context.Context, rec *check.Recorder) error {
	return rec.Step(`Click "Close" button`, func() error {
		return h.drv.Click(ctx, h.CloseBtn)
	})
}

// SendMessage fills the contact form and submits it, returning once the AUT
// has answered. The outcome is left to the caller.
func (h *HomePage) SendMessage(ctx context.Context, rec *check.Recorder, m domain.ContactMessage) error {
	err := h.fillAll(ctx, rec, []field{
		{"Enter Name", "name", h.ContactName, m.Name},
		{"Enter Email", "email", h.ContactEmail, m.Email},
		{"Enter Phone number", "phone", h.ContactPhone, m.Phone},
		{"Enter Subject", "subject", h.ContactSubject, m.Subject},
		{"Enter Message", "message", h.ContactMessage, m.Message},
	})
	if err != nil {
		return err
	}
	return rec.Step("Click Submit button", func() error {
		return h.drv.Submit(ctx, h.SubmitBtn, h.MessageAPI)
	})
}

type field struct {
	step  string
	name  string
	el    Element
	value string
}

func (h *HomePage) fillAll(ctx context.Context, rec *check.Recorder, fields []field) error {
	for _, f := range fields {
		err := rec.Step(f.step, func() error {
			if err := h.drv.Fill(ctx, f.el, f.value); err != nil {
				return err
			}
			return rec.Soft(f.name+" echo", h.drv.ExpectValue(ctx, f.el, f.value))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// hard turns a failed expectation into the scenario's terminal failure and
// passes any other error through untouched.
func hard(rec *check.Recorder, name string, err error) error {
	var ee *ExpectationError
	if err != nil && !errors.As(err, &ee) {
		return err
	}
	return rec.Hard(name, err)
}

package app

import (
	"time"

	"hotel_acceptance/internal/domain"
	"hotel_acceptance/internal/fixtures"
	"hotel_acceptance/internal/ui"
)

// Precondition is AUT state a scenario needs before it starts.
type Precondition int

const (
	NoPrecondition Precondition = iota
	// RangeAlreadyBooked means the request's range is booked for the
	// request's guest before the scenario submits it again.
	RangeAlreadyBooked
)

type BookingScenario struct {
	ID           string
	Title        string
	Request      domain.BookingRequest
	Precondition Precondition
	Expect       ui.Expectation
}

type ContactScenario struct {
	ID      string
	Title   string
	Message domain.ContactMessage
	Expect  ui.Expectation
}

// NightDisplay checks the nights and price the calendar prints for each
// range, without submitting anything.
type NightDisplay struct {
	ID     string
	Title  string
	Ranges []domain.DateRange
}

func bookingOK() ui.Expectation {
	return ui.Expectation{Success: true, Heading: domain.HeadingBookingSuccess}
}

func bookingRejected(msg string) ui.Expectation {
	return ui.Expectation{Heading: domain.HeadingBookingSuccess, Messages: []string{msg}}
}

func contactOK(name string) ui.Expectation {
	return ui.Expectation{Success: true, Heading: domain.ContactHeading(name)}
}

func contactRejected(msgs ...string) ui.Expectation {
	return ui.Expectation{Heading: domain.HeadingContactSuccess, Messages: msgs}
}

// BookingScenarios is the room booking table. Ranges are relative to now:
// offset months ahead (negative for the past) and a start and end day.
func BookingScenarios(now time.Time, d fixtures.RoomBook) []BookingScenario {
	span := func(offset, from, to int) *domain.DateRange {
		r := domain.MustDateRange(domain.MonthDate(now, offset, from), domain.MonthDate(now, offset, to))
		return &r
	}
	guest := d.Guest()
	with := func(edit func(g *domain.Guest)) domain.Guest {
		g := guest
		edit(&g)
		return g
	}
	form := ui.NewHomePage(nil, nil)
	first := domain.MustRule(domain.FormBooking, "firstname")
	last := domain.MustRule(domain.FormBooking, "lastname")
	phone := domain.MustRule(domain.FormBooking, "phone")

	return []BookingScenario{
		{ID: "RBK-01", Title: "user can book a room",
			Request: domain.BookingRequest{Range: span(1, 7, 10), Guest: guest},
			Expect:  bookingOK()},
		{ID: "RBK-02", Title: "book a room without choosing the date",
			Request: domain.BookingRequest{Guest: guest},
			Expect:  bookingRejected(domain.MsgMustNotBeNull)},
		{ID: "RBK-03", Title: "user can't book an already booked room",
			Request:      domain.BookingRequest{Range: span(1, 14, 17), Guest: guest},
			Precondition: RangeAlreadyBooked,
			Expect:       bookingRejected(domain.MsgAlreadyBooked)},
		{ID: "RBK-04", Title: "user can't book a room with a past date",
			Request: domain.BookingRequest{Range: span(-1, 7, 10), Guest: guest},
			Expect:  ui.Expectation{Heading: domain.HeadingBookingSuccess, Visible: []ui.Element{form.Firstname}}},

		{ID: "RBK-06", Title: "book a room leaving Firstname field empty",
			Request: domain.BookingRequest{Range: span(1, 21, 23), Guest: with(func(g *domain.Guest) { g.FirstName = "" })},
			Expect:  bookingRejected(first.BlankMessage())},
		{ID: "RBK-07", Title: "book a room leaving Lastname field empty",
			Request: domain.BookingRequest{Range: span(1, 21, 23), Guest: with(func(g *domain.Guest) { g.LastName = "" })},
			Expect:  bookingRejected(last.BlankMessage())},
		{ID: "RBK-08", Title: "book a room leaving Email field empty",
			Request: domain.BookingRequest{Range: span(1, 21, 23), Guest: with(func(g *domain.Guest) { g.Email = "" })},
			Expect:  bookingRejected(domain.MsgMustNotBeEmpty)},
		{ID: "RBK-09", Title: "book a room leaving Phone field empty",
			Request: domain.BookingRequest{Range: span(1, 21, 23), Guest: with(func(g *domain.Guest) { g.Phone = "" })},
			Expect:  bookingRejected(domain.MsgMustNotBeEmpty)},

		{ID: "RBK-10", Title: "book a room with 2 characters for the Firstname",
			Request: domain.BookingRequest{Range: span(1, 21, 23), Guest: with(func(g *domain.Guest) { g.FirstName = d.FirstName2Char })},
			Expect:  bookingRejected(first.SizeMessage())},
		{ID: "RBK-11", Title: "book a room with 3 characters for the Firstname",
			Request: domain.BookingRequest{Range: span(1, 21, 23), Guest: with(func(g *domain.Guest) { g.FirstName = d.FirstName3Char })},
			Expect:  bookingOK()},
		{ID: "RBK-12", Title: "book a room with 18 characters for the Firstname",
			Request: domain.BookingRequest{Range: span(2, 2, 5), Guest: with(func(g *domain.Guest) { g.FirstName = d.FirstName18Char })},
			Expect:  bookingOK()},
		{ID: "RBK-13", Title: "book a room with 19 characters for the Firstname",
			Request: domain.BookingRequest{Range: span(2, 7, 9), Guest: with(func(g *domain.Guest) { g.FirstName = d.FirstName19Char })},
			Expect:  bookingRejected(first.SizeMessage())},
		{ID: "RBK-14", Title: "book a room with 2 characters for the Lastname",
			Request: domain.BookingRequest{Range: span(2, 7, 9), Guest: with(func(g *domain.Guest) { g.LastName = d.LastName2Char })},
			Expect:  bookingRejected(last.SizeMessage())},
		{ID: "RBK-15", Title: "book a room with 3 characters for the Lastname",
			Request: domain.BookingRequest{Range: span(2, 7, 9), Guest: with(func(g *domain.Guest) { g.LastName = d.LastName3Char })},
			Expect:  bookingOK()},
		{ID: "RBK-16", Title: "book a room with 30 characters for the Lastname",
			Request: domain.BookingRequest{Range: span(2, 11, 13), Guest: with(func(g *domain.Guest) { g.LastName = d.LastName30Char })},
			Expect:  bookingOK()},
		{ID: "RBK-17", Title: "book a room with 31 characters for the Lastname",
			Request: domain.BookingRequest{Range: span(2, 15, 17), Guest: with(func(g *domain.Guest) { g.LastName = d.LastName31Char })},
			Expect:  bookingRejected(last.SizeMessage())},

		{ID: "RBK-18", Title: "book a room with a wrong email format",
			Request: domain.BookingRequest{Range: span(2, 15, 17), Guest: with(func(g *domain.Guest) { g.Email = d.WrongEmailFormat })},
			Expect:  bookingRejected(domain.MsgMalformedEmail)},
		{ID: "RBK-19", Title: "book a room with a non-numeric characters for the Phone Number",
			Request: domain.BookingRequest{Range: span(2, 15, 17), Guest: with(func(g *domain.Guest) { g.Phone = d.NonNumberPhone })},
			Expect:  ui.Expectation{Heading: domain.HeadingBookingSuccess, Visible: []ui.Element{form.Phone}}},
		{ID: "RBK-20", Title: "book a room with a very short Phone Number",
			Request: domain.BookingRequest{Range: span(2, 19, 21), Guest: with(func(g *domain.Guest) { g.Phone = d.VeryShortPhone })},
			Expect:  bookingRejected(phone.SizeMessage())},
		{ID: "RBK-21", Title: "book a room with a very long Phone Number",
			Request: domain.BookingRequest{Range: span(2, 19, 21), Guest: with(func(g *domain.Guest) { g.Phone = d.VeryLongPhone })},
			Expect:  bookingRejected(phone.SizeMessage())},
	}
}

// NightDisplayScenario selects four ranges in the current month.
func NightDisplayScenario(now time.Time) NightDisplay {
	pairs := [][2]int{{7, 10}, {1, 8}, {9, 20}, {15, 21}}
	nd := NightDisplay{
		ID:    "RBK-05",
		Title: "it displays the right number of nights and cost when choosing the date",
	}
	for _, p := range pairs {
		nd.Ranges = append(nd.Ranges, domain.MustDateRange(domain.MonthDate(now, 0, p[0]), domain.MonthDate(now, 0, p[1])))
	}
	return nd
}

// ContactScenarios is the contact form table. The name length cases only
// assert that the message was not accepted; the form publishes no name
// bounds and no message text for them. The non-numeric phone case is the
// same.
func ContactScenarios(d fixtures.SendEmail) []ContactScenario {
	base := d.Contact()
	with := func(edit func(m *domain.ContactMessage)) domain.ContactMessage {
		m := base
		edit(&m)
		return m
	}
	rule := func(field string) domain.FieldRule { return domain.MustRule(domain.FormContact, field) }

	return []ContactScenario{
		{ID: "SND-01", Title: "the user can send an Email",
			Message: base, Expect: contactOK(base.Name)},
		{ID: "SND-02", Title: "send an email leaving Name field empty",
			Message: with(func(m *domain.ContactMessage) { m.Name = "" }), Expect: contactRejected(rule("name").BlankMessage())},
		{ID: "SND-03", Title: "send an email leaving Email field empty",
			Message: with(func(m *domain.ContactMessage) { m.Email = "" }), Expect: contactRejected(rule("email").BlankMessage())},
		{ID: "SND-04", Title: "send an email leaving Phone Number field empty",
			Message: with(func(m *domain.ContactMessage) { m.Phone = "" }), Expect: contactRejected(rule("phone").BlankMessage())},
		{ID: "SND-05", Title: "send an email leaving Subject field empty",
			Message: with(func(m *domain.ContactMessage) { m.Subject = "" }), Expect: contactRejected(rule("subject").BlankMessage())},
		{ID: "SND-06", Title: "send an email leaving Message field empty",
			Message: with(func(m *domain.ContactMessage) { m.Message = "" }), Expect: contactRejected(rule("message").BlankMessage())},
		{ID: "SND-07", Title: "send an email with a very short Name",
			Message: with(func(m *domain.ContactMessage) { m.Name = d.VeryShortName }), Expect: contactRejected()},
		{ID: "SND-08", Title: "send an email with a very long Name",
			Message: with(func(m *domain.ContactMessage) { m.Name = d.VeryLongName }), Expect: contactRejected()},
		{ID: "SND-09", Title: "send an email with a wrong email format",
			Message: with(func(m *domain.ContactMessage) { m.Email = d.WrongEmailFormat }), Expect: contactRejected(domain.MsgMalformedEmail)},
		{ID: "SND-10", Title: "send an email with a non-numeric characters for the Phone Number",
			Message: with(func(m *domain.ContactMessage) { m.Phone = d.NonNumberPhone }), Expect: contactRejected()},
		{ID: "SND-11", Title: "send an email with a very short Phone Number",
			Message: with(func(m *domain.ContactMessage) { m.Phone = d.VeryShortPhone }), Expect: contactRejected(rule("phone").SizeMessage())},
		{ID: "SND-12", Title: "send an email with a very long Phone Number",
			Message: with(func(m *domain.ContactMessage) { m.Phone = d.VeryLongPhone }), Expect: contactRejected(rule("phone").SizeMessage())},
		{ID: "SND-13", Title: "send an email with 4 characters for the subject",
			Message: with(func(m *domain.ContactMessage) { m.Subject = d.Subject4Char }), Expect: contactRejected(rule("subject").SizeMessage())},
		{ID: "SND-14", Title: "send an email with 5 characters for the subject",
			Message: with(func(m *domain.ContactMessage) { m.Subject = d.Subject5Char }), Expect: contactOK(base.Name)},
		{ID: "SND-15", Title: "send an email with 100 characters for the subject",
			Message: with(func(m *domain.ContactMessage) { m.Subject = d.Subject100Char }), Expect: contactOK(base.Name)},
		{ID: "SND-16", Title: "send an email with 101 characters for the subject",
			Message: with(func(m *domain.ContactMessage) { m.Subject = d.Subject101Char }), Expect: contactRejected(rule("subject").SizeMessage())},
		{ID: "SND-17", Title: "send an email with 19 characters for the Message",
			Message: with(func(m *domain.ContactMessage) { m.Message = d.Message19Char }), Expect: contactRejected(rule("message").SizeMessage())},
		{ID: "SND-18", Title: "send an email with 20 characters for the Message",
			Message: with(func(m *domain.ContactMessage) { m.Message = d.Message20Char }), Expect: contactOK(base.Name)},
		{ID: "SND-19", Title: "send an email with 2000 characters for the Message",
			Message: with(func(m *domain.ContactMessage) { m.Message = d.Message2000Char }), Expect: contactOK(base.Name)},
		{ID: "SND-20", Title: "send an email with 2001 characters for the Message",
			Message: with(func(m *domain.ContactMessage) { m.Message = d.Message2001Char }), Expect: contactRejected(rule("message").SizeMessage())},
	}
}

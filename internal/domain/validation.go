package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Form string

const (
	FormBooking Form = "booking"
	FormContact Form = "contact"
)

type Format string

const (
	FormatNone  Format = ""
	FormatEmail Format = "email"
)

// FieldRule is one row of the validation boundary table. Min and Max are
// character counts; zero Max means the AUT publishes no length bound.
type FieldRule struct {
	Form   Form
	Field  string
	Label  string
	Min    int
	Max    int
	Format Format
}

// Boundaries is the validation boundary table the scenario inputs are
// chosen from. The AUT enforces it; the suite only observes outcomes.
var Boundaries = []FieldRule{
	{Form: FormBooking, Field: "firstname", Label: "Firstname", Min: 3, Max: 18},
	{Form: FormBooking, Field: "lastname", Label: "Lastname", Min: 3, Max: 30},
	{Form: FormBooking, Field: "email", Label: "Email", Format: FormatEmail},
	{Form: FormBooking, Field: "phone", Label: "Phone", Min: 11, Max: 21},

	// name bounds are not published by the contact form
	{Form: FormContact, Field: "name", Label: "Name"},
	{Form: FormContact, Field: "email", Label: "Email", Format: FormatEmail},
	{Form: FormContact, Field: "phone", Label: "Phone", Min: 11, Max: 21},
	{Form: FormContact, Field: "subject", Label: "Subject", Min: 5, Max: 100},
	{Form: FormContact, Field: "message", Label: "Message", Min: 20, Max: 2000},
}

func Rule(form Form, field string) (FieldRule, bool) {
	for _, r := range Boundaries {
		if r.Form == form && r.Field == field {
			return r, true
		}
	}
	return FieldRule{}, false
}

// MustRule panics on an unknown field; the table is static.
func MustRule(form Form, field string) FieldRule {
	r, ok := Rule(form, field)
	if !ok {
		panic(fmt.Sprintf("no boundary rule for %s.%s", form, field))
	}
	return r
}

func (r FieldRule) Bounded() bool { return r.Max > 0 }

// Probes returns the boundary-value lengths {min-1, min, max, max+1}.
func (r FieldRule) Probes() []int {
	if !r.Bounded() {
		return nil
	}
	return []int{r.Min - 1, r.Min, r.Max, r.Max + 1}
}

// Tag is the validator tag equivalent of the rule.
func (r FieldRule) Tag() string {
	tags := []string{"required"}
	if r.Format == FormatEmail {
		tags = append(tags, "email")
	}
	if r.Bounded() {
		tags = append(tags, fmt.Sprintf("min=%d", r.Min), fmt.Sprintf("max=%d", r.Max))
	}
	return strings.Join(tags, ",")
}

var validate = validator.New()

// Accepts predicts whether the AUT accepts value for this field.
func (r FieldRule) Accepts(value string) bool {
	return validate.Var(value, r.Tag()) == nil
}

// SizeMessage is the text the AUT shows for a length violation.
func (r FieldRule) SizeMessage() string {
	if r.Form == FormContact {
		return fmt.Sprintf("%s must be between %d and %d characters", r.Label, r.Min, r.Max)
	}
	return fmt.Sprintf("size must be between %d and %d", r.Min, r.Max)
}

// BlankMessage is the text the AUT shows when the field is left empty.
func (r FieldRule) BlankMessage() string {
	if r.Form == FormContact {
		return r.Label + " may not be blank"
	}
	switch r.Field {
	case "firstname", "lastname":
		return r.Label + " should not be blank"
	default:
		return MsgMustNotBeEmpty
	}
}

// Literal texts observed on the page.
const (
	HeadingBookingSuccess = "Booking Successful!"
	HeadingContactSuccess = "Thanks for getting in touch"

	MsgMustNotBeNull  = "must not be null"
	MsgMustNotBeEmpty = "must not be empty"
	MsgAlreadyBooked  = "already booked"
	MsgMalformedEmail = "must be a well-formed email address"
)

// ContactHeading is the success heading for a named sender.
func ContactHeading(name string) string { return HeadingContactSuccess + " " + name }

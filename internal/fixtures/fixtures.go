// Package fixtures holds the literal field values the scenarios type into
// the forms. The JSON records are embedded; FIXTURES_DIR may point at a
// directory with replacements of the same names.
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"hotel_acceptance/internal/domain"
)

const (
	RoomBookFile  = "room-book-data.json"
	SendEmailFile = "send-email-data.json"
)

//go:embed data/*.json
var embedded embed.FS

type RoomBook struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	FirstName2Char  string `json:"firstName2Char"`
	FirstName3Char  string `json:"firstName3Char"`
	FirstName18Char string `json:"firstName18Char"`
	FirstName19Char string `json:"firstName19Char"`
	LastName2Char   string `json:"lastName2Char"`
	LastName3Char   string `json:"lastName3Char"`
	LastName30Char  string `json:"lastName30Char"`
	LastName31Char  string `json:"lastName31Char"`

	WrongEmailFormat string `json:"wrongEmailFormat"`
	NonNumberPhone   string `json:"nonNumberPhone"`
	VeryShortPhone   string `json:"veryShortPhone"`
	VeryLongPhone    string `json:"veryLongPhone"`
}

// Guest is the valid guest every booking scenario starts from.
func (r RoomBook) Guest() domain.Guest {
	return domain.Guest{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone}
}

type SendEmail struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`

	VeryShortName    string `json:"veryShortName"`
	VeryLongName     string `json:"veryLongName"`
	WrongEmailFormat string `json:"wrongEmailFormat"`
	NonNumberPhone   string `json:"nonNumberPhone"`
	VeryShortPhone   string `json:"veryShortPhone"`
	VeryLongPhone    string `json:"veryLongPhone"`

	Subject4Char    string `json:"subject4Char"`
	Subject5Char    string `json:"subject5Char"`
	Subject100Char  string `json:"subject100Char"`
	Subject101Char  string `json:"subject101Char"`
	Message19Char   string `json:"message19Char"`
	Message20Char   string `json:"message20Char"`
	Message2000Char string `json:"message2000Char"`
	Message2001Char string `json:"message2001Char"`
}

// Contact is the valid contact message every contact scenario starts from.
func (s SendEmail) Contact() domain.ContactMessage {
	return domain.ContactMessage{Name: s.Name, Email: s.Email, Phone: s.Phone, Subject: s.Subject, Message: s.Message}
}

type Data struct {
	RoomBook  RoomBook
	SendEmail SendEmail
}

// Load reads both records from dir, or from the embedded copies when dir is
// empty.
func Load(dir string) (Data, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return Data{}, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	var d Data
	if err := decode(fsys, RoomBookFile, &d.RoomBook); err != nil {
		return Data{}, err
	}
	if err := decode(fsys, SendEmailFile, &d.SendEmail); err != nil {
		return Data{}, err
	}
	return d, nil
}

// MustLoad is Load for test setup.
func MustLoad(dir string) Data {
	d, err := Load(dir)
	if err != nil {
		panic(err)
	}
	return d
}

func decode(fsys fs.FS, name string, dst any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	return nil
}

// Verify checks every boundary variant against the validation table so a
// mis-sized fixture cannot silently test the wrong edge.
func (d Data) Verify() error {
	rb, se := d.RoomBook, d.SendEmail
	var errs []error
	length := func(name, v string, want int) {
		if got := utf8.RuneCountInString(v); got != want {
			errs = append(errs, fmt.Errorf("%s: length %d, want %d", name, got, want))
		}
	}
	probes := func(form domain.Form, field string, names [4]string, vals [4]string) {
		p := domain.MustRule(form, field).Probes()
		for i := range names {
			length(names[i], vals[i], p[i])
		}
	}
	probes(domain.FormBooking, "firstname",
		[4]string{"firstName2Char", "firstName3Char", "firstName18Char", "firstName19Char"},
		[4]string{rb.FirstName2Char, rb.FirstName3Char, rb.FirstName18Char, rb.FirstName19Char})
	probes(domain.FormBooking, "lastname",
		[4]string{"lastName2Char", "lastName3Char", "lastName30Char", "lastName31Char"},
		[4]string{rb.LastName2Char, rb.LastName3Char, rb.LastName30Char, rb.LastName31Char})
	probes(domain.FormContact, "subject",
		[4]string{"subject4Char", "subject5Char", "subject100Char", "subject101Char"},
		[4]string{se.Subject4Char, se.Subject5Char, se.Subject100Char, se.Subject101Char})
	probes(domain.FormContact, "message",
		[4]string{"message19Char", "message20Char", "message2000Char", "message2001Char"},
		[4]string{se.Message19Char, se.Message20Char, se.Message2000Char, se.Message2001Char})

	for form, set := range map[domain.Form][2]string{
		domain.FormBooking: {rb.VeryShortPhone, rb.VeryLongPhone},
		domain.FormContact: {se.VeryShortPhone, se.VeryLongPhone},
	} {
		rule := domain.MustRule(form, "phone")
		if n := utf8.RuneCountInString(set[0]); n >= rule.Min {
			errs = append(errs, fmt.Errorf("%s veryShortPhone: length %d not below %d", form, n, rule.Min))
		}
		if n := utf8.RuneCountInString(set[1]); n <= rule.Max {
			errs = append(errs, fmt.Errorf("%s veryLongPhone: length %d not above %d", form, n, rule.Max))
		}
	}

	email := domain.MustRule(domain.FormBooking, "email")
	for name, v := range map[string]string{
		"room-book email": rb.Email, "send-email email": se.Email,
	} {
		if !email.Accepts(v) {
			errs = append(errs, fmt.Errorf("%s %q is not a valid address", name, v))
		}
	}
	for name, v := range map[string]string{
		"room-book wrongEmailFormat": rb.WrongEmailFormat, "send-email wrongEmailFormat": se.WrongEmailFormat,
	} {
		if email.Accepts(v) {
			errs = append(errs, fmt.Errorf("%s %q is a valid address", name, v))
		}
	}
	return errors.Join(errs...)
}

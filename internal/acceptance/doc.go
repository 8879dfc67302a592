// Package acceptance holds the browser suites for the booking and contact
// forms. They run against a live AUT and are built only with
// -tags acceptance.
package acceptance

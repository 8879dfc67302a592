package ui

import (
	"context"
	"fmt"
)

// Driver is the browser-automation layer the façade drives. Every call
// blocks until the interaction completed or its timeout elapsed; calls from
// one scenario are never issued concurrently.
type Driver interface {
	Open(ctx context.Context, path string) error
	Click(ctx context.Context, el Element) error
	Hover(ctx context.Context, el Element) error
	MouseDown(ctx context.Context) error
	MouseUp(ctx context.Context) error
	Fill(ctx context.Context, el Element, value string) error

	// Submit clicks el and blocks until the AUT has answered the request
	// to api that the click sends.
	Submit(ctx context.Context, el Element, api Endpoint) error

	// Settle waits until the page has no in-flight network activity.
	Settle(ctx context.Context) error

	// Expect* poll until the condition holds or the expectation timeout
	// elapses, then return an *ExpectationError.
	ExpectVisible(ctx context.Context, el Element) error
	ExpectHidden(ctx context.Context, el Element) error
	ExpectValue(ctx context.Context, el Element, want string) error
}

// Endpoint is an AUT API route a form submits to.
type Endpoint struct {
	Method string
	Path   string
}

func (e Endpoint) String() string { return e.Method + " " + e.Path }

// ExpectationError reports a page condition that did not hold in time.
type ExpectationError struct {
	Element Element
	Want    string
	Err     error
}

func (e *ExpectationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: expected %s", e.Element, e.Want)
	}
	return fmt.Sprintf("%s: expected %s: %v", e.Element, e.Want, e.Err)
}

func (e *ExpectationError) Unwrap() error { return e.Err }

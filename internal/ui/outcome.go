package ui

import (
	"context"
	"fmt"

	"hotel_acceptance/internal/check"
)

// Expectation is the visible end state a scenario asserts after submitting.
type Expectation struct {
	Success  bool
	Heading  string    // success heading of the form under test
	Messages []string  // texts that must be visible on failure
	Visible  []Element // elements that must still be visible on failure
}

// Await runs the terminal checks of exp. It expects the form to have been
// submitted through BookRoom or SendMessage, which return only after the
// AUT answered, and lets the page settle first. The first check that does
// not hold ends the scenario.
func (h *HomePage) Await(ctx context.Context, rec *check.Recorder, exp Expectation) error {
	return rec.Step("Check result", func() error {
		if err := h.drv.Settle(ctx); err != nil {
			return err
		}
		heading := Heading(exp.Heading)
		if exp.Success {
			return hard(rec, fmt.Sprintf("heading %q visible", exp.Heading), h.drv.ExpectVisible(ctx, heading))
		}
		for _, m := range exp.Messages {
			if err := hard(rec, fmt.Sprintf("message %q visible", m), h.drv.ExpectVisible(ctx, Text(m).FirstMatch())); err != nil {
				return err
			}
		}
		if err := hard(rec, fmt.Sprintf("heading %q hidden", exp.Heading), h.drv.ExpectHidden(ctx, heading)); err != nil {
			return err
		}
		for _, el := range exp.Visible {
			if err := hard(rec, el.String()+" visible", h.drv.ExpectVisible(ctx, el)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Package uitest provides a scriptable in-memory ui.Driver for tests.
package uitest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hotel_acceptance/internal/ui"
)

// Driver records every call and answers expectations from an in-memory
// page model. Reactions to clicks can be scripted with OnClick.
type Driver struct {
	mu      sync.Mutex
	calls   []string
	visible map[string]bool
	values  map[string]string
	onClick map[string]reaction
	fail    map[string]error
	echo    func(el ui.Element, v string) string
}

func New() *Driver {
	return &Driver{
		visible: map[string]bool{},
		values:  map[string]string{},
		onClick: map[string]reaction{},
		fail:    map[string]error{},
	}
}

// Show marks elements visible. It is meant for OnClick reactions, which run
// with the driver locked; call it directly only before the driver is used.
func (d *Driver) Show(els ...ui.Element) {
	for _, el := range els {
		d.visible[el.String()] = true
	}
}

func (d *Driver) Hide(els ...ui.Element) {
	for _, el := range els {
		delete(d.visible, el.String())
	}
}

// reaction is how the page changes after a click. A non-zero delay models
// an AUT that answers late.
type reaction struct {
	delay time.Duration
	fn    func(d *Driver)
}

// OnClick runs fn after el is clicked.
func (d *Driver) OnClick(el ui.Element, fn func(d *Driver)) {
	d.OnClickAfter(el, 0, fn)
}

// OnClickAfter runs fn delay after el is clicked. Click returns at once and
// fn lands in the background; Submit waits for it like it waits for the
// AUT's response.
func (d *Driver) OnClickAfter(el ui.Element, delay time.Duration, fn func(d *Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClick[el.String()] = reaction{delay: delay, fn: fn}
}

func (d *Driver) apply(fn func(*Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d)
}

// FailOn makes the call with the given record (see Calls) return err.
func (d *Driver) FailOn(call string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[call] = err
}

// EchoWith rewrites what a filled field reports back, e.g. to emulate a
// maxlength attribute truncating input.
func (d *Driver) EchoWith(fn func(el ui.Element, v string) string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.echo = fn
}

func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Count returns how many times call was recorded.
func (d *Driver) Count(call string) int {
	n := 0
	for _, c := range d.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (d *Driver) record(ctx context.Context, call string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
	return d.fail[call]
}

func (d *Driver) Open(ctx context.Context, path string) error {
	return d.record(ctx, "open "+path)
}

func (d *Driver) Click(ctx context.Context, el ui.Element) error {
	if err := d.record(ctx, "click "+el.String()); err != nil {
		return err
	}
	r := d.reactionFor(el)
	switch {
	case r.fn == nil:
	case r.delay == 0:
		d.apply(r.fn)
	default:
		time.AfterFunc(r.delay, func() { d.apply(r.fn) })
	}
	return nil
}

// Submit records "await-response <api>" and then the click. The click's
// reaction stands in for the response and is applied before Submit returns.
func (d *Driver) Submit(ctx context.Context, el ui.Element, api ui.Endpoint) error {
	if err := d.record(ctx, "await-response "+api.String()); err != nil {
		return err
	}
	if err := d.record(ctx, "click "+el.String()); err != nil {
		return err
	}
	r := d.reactionFor(el)
	if r.fn == nil {
		return nil
	}
	if r.delay > 0 {
		t := time.NewTimer(r.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	d.apply(r.fn)
	return nil
}

func (d *Driver) reactionFor(el ui.Element) reaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.onClick[el.String()]
}

func (d *Driver) Hover(ctx context.Context, el ui.Element) error {
	return d.record(ctx, "hover "+el.String())
}

func (d *Driver) MouseDown(ctx context.Context) error { return d.record(ctx, "down") }

func (d *Driver) MouseUp(ctx context.Context) error { return d.record(ctx, "up") }

func (d *Driver) Fill(ctx context.Context, el ui.Element, value string) error {
	if err := d.record(ctx, fmt.Sprintf("fill %s=%q", el, value)); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.echo != nil {
		value = d.echo(el, value)
	}
	d.values[el.String()] = value
	return nil
}

func (d *Driver) Settle(ctx context.Context) error { return d.record(ctx, "settle") }

var errTimeout = errors.New("timeout")

func (d *Driver) ExpectVisible(ctx context.Context, el ui.Element) error {
	if err := d.record(ctx, "expect-visible "+el.String()); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible[el.String()] {
		return &ui.ExpectationError{Element: el, Want: "visible", Err: errTimeout}
	}
	return nil
}

func (d *Driver) ExpectHidden(ctx context.Context, el ui.Element) error {
	if err := d.record(ctx, "expect-hidden "+el.String()); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.visible[el.String()] {
		return &ui.ExpectationError{Element: el, Want: "hidden", Err: errTimeout}
	}
	return nil
}

func (d *Driver) ExpectValue(ctx context.Context, el ui.Element, want string) error {
	if err := d.record(ctx, "expect-value "+el.String()); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if got := d.values[el.String()]; got != want {
		return &ui.ExpectationError{Element: el, Want: fmt.Sprintf("value %q", want), Err: fmt.Errorf("got %q", got)}
	}
	return nil
}

var _ ui.Driver = (*Driver)(nil)

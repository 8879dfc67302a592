package browser

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"hotel_acceptance/internal/adapters/observability"
	"hotel_acceptance/internal/ui"
)

// Page is a ui.Driver over one playwright page.
type Page struct {
	name   string
	page   playwright.Page
	bctx   playwright.BrowserContext
	expect playwright.PlaywrightAssertions
	opts   Options
	log    zerolog.Logger
}

var _ ui.Driver = (*Page)(nil)

// do runs one interaction. Playwright calls cannot be interrupted, so ctx
// is only checked before the call starts.
func (p *Page) do(ctx context.Context, action string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	observability.ObserveInteraction(action, err, time.Since(start))
	if err != nil {
		p.log.Debug().Str("action", action).Err(err).Msg("interaction failed")
	}
	return err
}

func (p *Page) Open(ctx context.Context, path string) error {
	return p.do(ctx, "open", func() error {
		_, err := p.page.Goto(path, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateDomcontentloaded})
		return err
	})
}

func (p *Page) Click(ctx context.Context, el ui.Element) error {
	return p.do(ctx, "click", func() error { return p.locate(el).Click() })
}

func (p *Page) Hover(ctx context.Context, el ui.Element) error {
	return p.do(ctx, "hover", func() error { return p.locate(el).Hover() })
}

func (p *Page) MouseDown(ctx context.Context) error {
	return p.do(ctx, "mouse_down", func() error { return p.page.Mouse().Down() })
}

func (p *Page) MouseUp(ctx context.Context) error {
	return p.do(ctx, "mouse_up", func() error { return p.page.Mouse().Up() })
}

func (p *Page) Fill(ctx context.Context, el ui.Element, value string) error {
	return p.do(ctx, "fill", func() error { return p.locate(el).Fill(value) })
}

// Submit clicks el and waits for the response to api. Clicking a form
// button sends a background request rather than navigating, so load states
// say nothing about whether the AUT has answered.
func (p *Page) Submit(ctx context.Context, el ui.Element, api ui.Endpoint) error {
	return p.do(ctx, "submit", func() error {
		var clickErr error
		resp, err := p.page.ExpectEvent("response", func() error {
			clickErr = p.locate(el).Click()
			return clickErr
		}, playwright.PageExpectEventOptions{
			Predicate: func(r playwright.Response) bool { return answers(r, api) },
		})
		if clickErr != nil {
			return clickErr
		}
		if err != nil {
			return &ui.ExpectationError{Element: el, Want: "response to " + api.String(), Err: err}
		}
		if r, ok := resp.(playwright.Response); ok {
			p.log.Debug().Str("api", api.String()).Int("status", r.Status()).Msg("form answered")
		}
		return nil
	})
}

// answers reports whether r is the AUT's answer to a request for api.
func answers(r playwright.Response, api ui.Endpoint) bool {
	if r.Request().Method() != api.Method {
		return false
	}
	u, err := url.Parse(r.URL())
	if err != nil {
		return false
	}
	return strings.TrimSuffix(u.Path, "/") == api.Path
}

func (p *Page) Settle(ctx context.Context) error {
	return p.do(ctx, "settle", func() error {
		return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: playwright.LoadStateNetworkidle})
	})
}

func (p *Page) ExpectVisible(ctx context.Context, el ui.Element) error {
	return p.assert(ctx, el, "visible", func(a playwright.LocatorAssertions) error { return a.ToBeVisible() })
}

func (p *Page) ExpectHidden(ctx context.Context, el ui.Element) error {
	return p.assert(ctx, el, "hidden", func(a playwright.LocatorAssertions) error { return a.ToBeHidden() })
}

func (p *Page) ExpectValue(ctx context.Context, el ui.Element, want string) error {
	return p.assert(ctx, el, "value "+want, func(a playwright.LocatorAssertions) error { return a.ToHaveValue(want) })
}

func (p *Page) assert(ctx context.Context, el ui.Element, want string, fn func(playwright.LocatorAssertions) error) error {
	return p.do(ctx, "expect", func() error {
		if err := fn(p.expect.Locator(p.locate(el))); err != nil {
			return &ui.ExpectationError{Element: el, Want: want, Err: err}
		}
		return nil
	})
}

package browser

import (
	"github.com/playwright-community/playwright-go"

	"hotel_acceptance/internal/ui"
)

// locate turns an element description into a playwright locator, scoped to
// its parent when it has one.
func (p *Page) locate(el ui.Element) playwright.Locator {
	var l playwright.Locator
	if el.Parent != nil {
		l = within(p.locate(*el.Parent), el)
	} else {
		l = onPage(p.page, el)
	}
	if el.HasText != "" {
		l = l.Filter(playwright.LocatorFilterOptions{HasText: el.HasText})
	}
	if el.First {
		l = l.First()
	}
	return l
}

func exact(el ui.Element) *bool {
	if !el.Exact {
		return nil
	}
	return playwright.Bool(true)
}

func onPage(pg playwright.Page, el ui.Element) playwright.Locator {
	switch el.By {
	case ui.ByRole:
		return pg.GetByRole(playwright.AriaRole(el.Role), playwright.PageGetByRoleOptions{Name: el.Value, Exact: exact(el)})
	case ui.ByPlaceholder:
		return pg.GetByPlaceholder(el.Value, playwright.PageGetByPlaceholderOptions{Exact: exact(el)})
	case ui.ByTestID:
		return pg.GetByTestId(el.Value)
	case ui.ByText:
		return pg.GetByText(el.Value, playwright.PageGetByTextOptions{Exact: exact(el)})
	case ui.ByLabel:
		return pg.GetByLabel(el.Value, playwright.PageGetByLabelOptions{Exact: exact(el)})
	default:
		return pg.Locator(el.Value)
	}
}

func within(parent playwright.Locator, el ui.Element) playwright.Locator {
	switch el.By {
	case ui.ByRole:
		return parent.GetByRole(playwright.AriaRole(el.Role), playwright.LocatorGetByRoleOptions{Name: el.Value, Exact: exact(el)})
	case ui.ByPlaceholder:
		return parent.GetByPlaceholder(el.Value, playwright.LocatorGetByPlaceholderOptions{Exact: exact(el)})
	case ui.ByTestID:
		return parent.GetByTestId(el.Value)
	case ui.ByText:
		return parent.GetByText(el.Value, playwright.LocatorGetByTextOptions{Exact: exact(el)})
	case ui.ByLabel:
		return parent.GetByLabel(el.Value, playwright.LocatorGetByLabelOptions{Exact: exact(el)})
	default:
		return parent.Locator(el.Value)
	}
}

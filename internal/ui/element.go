package ui

import (
	"fmt"
	"strings"
)

type Strategy int

const (
	ByCSS Strategy = iota
	ByRole
	ByPlaceholder
	ByTestID
	ByText
	ByLabel
)

// Element describes how to find a page element. Drivers translate it into
// their own locator type; the façade never touches browser objects directly.
type Element struct {
	By      Strategy
	Role    string // ByRole only, e.g. "button"
	Value   string // accessible name, placeholder, test id, text, label or CSS
	Exact   bool
	HasText string
	First   bool
	Parent  *Element
}

func Role(role, name string) Element  { return Element{By: ByRole, Role: role, Value: name} }
func Placeholder(text string) Element { return Element{By: ByPlaceholder, Value: text} }
func TestID(id string) Element        { return Element{By: ByTestID, Value: id} }
func Text(text string) Element        { return Element{By: ByText, Value: text} }
func Label(text string) Element       { return Element{By: ByLabel, Value: text} }
func CSS(selector string) Element     { return Element{By: ByCSS, Value: selector} }

func Button(name string) Element  { return Role("button", name) }
func Heading(name string) Element { return Role("heading", name) }

func (e Element) Exactly() Element { e.Exact = true; return e }

func (e Element) FirstMatch() Element { e.First = true; return e }

// Containing keeps only matches whose text contains s.
func (e Element) Containing(s string) Element { e.HasText = s; return e }

func (e Element) Within(parent Element) Element { e.Parent = &parent; return e }

func (e Element) String() string {
	var b strings.Builder
	if e.Parent != nil {
		b.WriteString(e.Parent.String())
		b.WriteString(" >> ")
	}
	switch e.By {
	case ByRole:
		fmt.Fprintf(&b, "role=%s[name=%q", e.Role, e.Value)
		if e.Exact {
			b.WriteString(" exact")
		}
		b.WriteString("]")
	case ByPlaceholder:
		fmt.Fprintf(&b, "placeholder=%q", e.Value)
	case ByTestID:
		fmt.Fprintf(&b, "testid=%q", e.Value)
	case ByText:
		fmt.Fprintf(&b, "text=%q", e.Value)
	case ByLabel:
		fmt.Fprintf(&b, "label=%q", e.Value)
	default:
		fmt.Fprintf(&b, "css=%s", e.Value)
	}
	if e.HasText != "" {
		fmt.Fprintf(&b, " has-text=%q", e.HasText)
	}
	if e.First {
		b.WriteString(" >> nth=0")
	}
	return b.String()
}

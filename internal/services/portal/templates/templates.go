// Package templates renders the portal's HTML surface. Components are
// plain templ components so handlers can compose full pages and HTMX
// fragments from the same building blocks.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/message"
)

// Localizer resolves localized strings for template rendering.
type Localizer interface {
	Sprintf(key message.Reference, a ...any) string
}

// T translates a message key, falling back to the key text when no
// localizer is available or the key has no translation.
func T(loc Localizer, key message.Reference, a ...any) string {
	fallback := ""
	if s, ok := key.(string); ok {
		fallback = s
	}
	if loc == nil {
		return fallback
	}
	translated := loc.Sprintf(key, a...)
	if translated == "" {
		return fallback
	}
	return translated
}

// Fragments renders components in order as one component. Nil entries are
// skipped.
func Fragments(items ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, item := range items {
			if item == nil {
				continue
			}
			if err := item.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Wrap nests child inside layout as its children, so pass-through layouts
// compose without handlers touching templ contexts directly.
func Wrap(layout templ.Component, child templ.Component) templ.Component {
	if layout == nil {
		if child == nil {
			return templ.NopComponent
		}
		return child
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		inner := child
		if inner == nil {
			inner = templ.NopComponent
		}
		return layout.Render(templ.WithChildren(ctx, inner), w)
	})
}

package hxprops

import (
	"context"

	"github.com/a-h/templ"
)

// Binder is implemented by generated props structs. LoadBindings copies a
// Resolution's values and enum flags into typed fields.
//
// Example:
//
//	var p components.CardProps
//	if err := res.Bind(&p); err != nil {
//	    return err
//	}
//	if p.VariantPrimary { ... }
//
// Run 'hxprops generate' to produce the implementation from a template's
// {# props ... #} declaration.
type Binder interface {
	LoadBindings(values map[string]any, flags map[string]bool) error
}

// Props is implemented by generated props structs to act as a call site.
// ComponentName is the registered component; Assignments are the set
// fields in declaration order.
//
//	reg.InstantiateProps(components.CardProps{Title: "Hi", Variant: "primary"}, "")
type Props interface {
	ComponentName() string
	Assignments() []Assignment
}

// RenderFunc produces a component's markup from its resolved props.
//
// Render receives a fully validated Resolution and should be pure: it reads
// bindings, attributes and slots and produces HTML without side effects.
//
//	func renderCard(ctx context.Context, res *hxprops.Resolution) templ.Component {
//	    return cardTemplate(res.Values["title"].(string), res.Attrs, res.Slots)
//	}
type RenderFunc func(ctx context.Context, res *Resolution) templ.Component

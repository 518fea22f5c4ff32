package hxprops

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxprops/lib/attrs"
	"github.com/pthm/hxprops/lib/coerce"
	"github.com/pthm/hxprops/lib/paramspec"
	"github.com/pthm/hxprops/lib/speccache"
)

// Component is a named template with a parameter declaration and a render
// function.
//
// The declaration uses the same mini-language as a template's
// {# props ... #} comment:
//
//	card := hxprops.New("card", `title size:int=3 variant=primary,secondary`, renderCard).
//	    Fallbacks(hxprops.Attr("class", "card")).
//	    Check(func(v map[string]any) error { ... })
//
// Components are registered with a Registry, which resolves call sites
// against the declaration and renders the result.
type Component struct {
	name      string
	decl      string
	render    RenderFunc
	fallbacks []attrs.Pair
	check     coerce.CrossCheck
	sensitive bool
}

// New creates a component. decl is the text that would appear inside a
// {# props ... #} comment; it is parsed on first use.
func New(name, decl string, render RenderFunc) *Component {
	return &Component{name: name, decl: decl, render: render}
}

// FromTemplate creates a component whose declaration is extracted from a
// template's {# props ... #} comment. A template without one declares no
// parameters.
func FromTemplate(name, template string, render RenderFunc) *Component {
	src, _ := paramspec.Extract(template)
	return New(name, src.Declaration, render)
}

// Fallbacks sets attribute defaults applied where a call site does not set
// the attribute. Modifier fallbacks such as "class:active" compose with the
// call site's own tokens.
func (c *Component) Fallbacks(pairs ...Assignment) *Component {
	c.fallbacks = make([]attrs.Pair, len(pairs))
	for i, p := range pairs {
		c.fallbacks[i] = attrs.Pair{Key: p.Key, Value: p.Value}
	}
	return c
}

// Check sets a cross-field check that runs after every parameter binds.
func (c *Component) Check(fn coerce.CrossCheck) *Component {
	c.check = fn
	return c
}

// Sensitive marks the component's re-render tokens as encrypted rather
// than signed.
//
// Signed tokens (the default) are readable but tamper-proof. Use Sensitive
// for components whose call sites carry IDs or other data that should stay
// opaque to clients.
func (c *Component) Sensitive() *Component {
	c.sensitive = true
	return c
}

// Name returns the component's name.
func (c *Component) Name() string {
	return c.name
}

// Declaration returns the parameter declaration.
func (c *Component) Declaration() string {
	return c.decl
}

// IsSensitive returns whether re-render tokens are encrypted.
func (c *Component) IsSensitive() bool {
	return c.sensitive
}

// cacheKey namespaces components away from file-backed templates sharing
// the same cache.
func (c *Component) cacheKey() string {
	return "component:" + c.name
}

func (c *Component) load(string) (speccache.Entry, error) {
	return speccache.Entry{
		Source:  paramspec.Source{Declaration: c.decl, Line: 1, Text: c.decl},
		Version: "0",
	}, nil
}

func (c *Component) request(assigns []Assignment, content string) Request {
	return Request{
		Template:  c.cacheKey(),
		Loader:    c.load,
		Probe:     speccache.AlwaysFresh,
		Attrs:     assigns,
		Fallbacks: c.fallbacks,
		Check:     c.check,
		Outer:     c.name,
		HTML:      content,
	}
}

// lazyComponent creates a placeholder that loads content on trigger.
func lazyComponent(url string, placeholder templ.Component, trigger string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, fmt.Sprintf(`<div hx-get="%s" hx-trigger="%s" hx-swap="%s">`,
			templ.EscapeString(url), trigger, SwapOuter))
		if err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}

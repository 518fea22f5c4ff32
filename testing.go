package hxprops

import (
	"bytes"
	"context"
	"strings"

	"github.com/pthm/hxprops/internal/logger"
	"github.com/pthm/hxprops/lib/speccache"
)

// TestResult holds the result of rendering a component for testing.
//
// Provides convenience methods for asserting on HTML content, bindings,
// flags, attributes and slots.
type TestResult struct {
	HTML       string
	Resolution *Resolution
}

// TestInstantiate renders a registered component and returns testable
// output.
//
//	result, err := hxprops.TestInstantiate(reg, "card", []hxprops.Assignment{
//	    hxprops.Attr("title", "Hello"),
//	    hxprops.Attr("variant", "primary"),
//	}, "")
//	if !result.HasFlag("variantPrimary") {
//	    t.Fatal("primary flag not set")
//	}
func TestInstantiate(reg *Registry, name string, assigns []Assignment, content string) (*TestResult, error) {
	return TestInstantiateWithContext(context.Background(), reg, name, assigns, content)
}

// TestInstantiateWithContext renders a component with a custom context.
//
// Use this when testing render functions that read values from context:
//
//	ctx := context.WithValue(context.Background(), "user", testUser)
//	result, err := hxprops.TestInstantiateWithContext(ctx, reg, "card", attrs, "")
func TestInstantiateWithContext(ctx context.Context, reg *Registry, name string, assigns []Assignment, content string) (*TestResult, error) {
	var buf bytes.Buffer
	res, err := reg.render(ctx, &buf, name, assigns, content)
	if err != nil {
		return nil, err
	}
	return &TestResult{HTML: buf.String(), Resolution: res}, nil
}

// TestResolve resolves decl directly, without a registry or render
// function. Use it to unit test a declaration:
//
//	res, err := hxprops.TestResolve(`size:int=3 variant=primary,ghost`,
//	    hxprops.Attr("size", "5"), hxprops.Attr("class", "x"))
func TestResolve(decl string, assigns ...Assignment) (*Resolution, error) {
	engine, err := NewEngine(nil, WithLogger(logger.Discard()))
	if err != nil {
		return nil, err
	}
	return engine.Resolve(Request{
		Template: "test",
		Loader:   New("test", decl, nil).load,
		Probe:    speccache.AlwaysFresh,
		Attrs:    assigns,
	})
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.HTML, s) {
			return true
		}
	}
	return false
}

// HasFlag checks if an enum flag was bound, e.g. "variantPrimary".
func (r *TestResult) HasFlag(flag string) bool {
	return r.Resolution.Flags[flag]
}

// Binding returns a resolved parameter value.
func (r *TestResult) Binding(name string) (any, bool) {
	v, ok := r.Resolution.Values[name]
	return v, ok
}

// Attr returns a resolved attribute rendered as a string, or "" when
// absent.
func (r *TestResult) Attr(key string) string {
	v, err := r.Resolution.Attrs.Get(key)
	if err != nil || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.(bool); ok && b {
		return key
	}
	return ""
}

// Slot returns a slot's captured markup; "" selects the default content.
func (r *TestResult) Slot(name string) string {
	return r.Resolution.Slot(name).String()
}

package hxprops

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
)

type ctxKey struct{}

func TestTestInstantiate(t *testing.T) {
	reg := testRegistry(t, "")
	result, err := TestInstantiate(reg, "card", []Assignment{
		Attr("title", "Hello"),
		Attr("variant", "primary"),
		Attr("disabled", true),
	}, `<content:footer>foot</content:footer>body`)
	if err != nil {
		t.Fatalf("TestInstantiate() error = %v", err)
	}

	if !result.HTMLContains("<h1>Hello</h1>") {
		t.Errorf("HTML = %q", result.HTML)
	}
	if !result.HTMLContainsAll("body", "<footer>foot</footer>") {
		t.Errorf("HTMLContainsAll() = false for %q", result.HTML)
	}
	if !result.HTMLContainsAny("nope", "body") || result.HTMLContainsAny("nope") {
		t.Error("HTMLContainsAny() gave the wrong answer")
	}
	if !result.HasFlag("variantPrimary") || result.HasFlag("variantGhost") {
		t.Errorf("Flags = %v", result.Resolution.Flags)
	}
	if v, ok := result.Binding("title"); !ok || v != "Hello" {
		t.Errorf("Binding(title) = %v, %v", v, ok)
	}
	if _, ok := result.Binding("disabled"); ok {
		t.Error("Binding(disabled) found an attribute")
	}
	if got := result.Attr("class"); got != "card" {
		t.Errorf("Attr(class) = %q, want card", got)
	}
	if got := result.Attr("disabled"); got != "disabled" {
		t.Errorf("Attr(disabled) = %q, want disabled", got)
	}
	if got := result.Attr("missing"); got != "" {
		t.Errorf("Attr(missing) = %q", got)
	}
	if got := result.Slot("footer"); got != "foot" {
		t.Errorf("Slot(footer) = %q", got)
	}
	if got := result.Slot(""); got != "body" {
		t.Errorf("Slot(\"\") = %q", got)
	}
}

func TestTestInstantiateWithContext(t *testing.T) {
	reg := testRegistry(t, "")
	reg.Add(New("who", "", func(ctx context.Context, res *Resolution) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, ctx.Value(ctxKey{}).(string))
			return err
		})
	}))

	ctx := context.WithValue(context.Background(), ctxKey{}, "alice")
	result, err := TestInstantiateWithContext(ctx, reg, "who", nil, "")
	if err != nil {
		t.Fatalf("TestInstantiateWithContext() error = %v", err)
	}
	if result.HTML != "alice" {
		t.Errorf("HTML = %q, want alice", result.HTML)
	}
}

func TestTestInstantiateError(t *testing.T) {
	reg := testRegistry(t, "")
	_, err := TestInstantiate(reg, "card", nil, "")
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("TestInstantiate() error = %v, want ErrMissingRequired", err)
	}
}

func TestTestResolve(t *testing.T) {
	res, err := TestResolve(`size:int=3 theme=,light,dark-mode`, Attr("theme", "dark-mode"), Attr("class", "x"))
	if err != nil {
		t.Fatalf("TestResolve() error = %v", err)
	}
	if res.Values["size"] != 3 {
		t.Errorf("size = %v, want 3", res.Values["size"])
	}
	if !res.Flags["themeDarkMode"] || res.Flags["themeLight"] {
		t.Errorf("Flags = %v", res.Flags)
	}
	if v, _ := res.Attr("class"); v != "x" {
		t.Errorf("Attr(class) = %v", v)
	}

	if _, err := TestResolve(`size:int`, Attr("size", "abc")); !errors.Is(err, ErrTypeCoercion) {
		t.Errorf("TestResolve() error = %v, want ErrTypeCoercion", err)
	}
}

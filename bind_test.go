package hxprops

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

// cardProps mirrors what 'hxprops generate' writes for
// {# props title size:int=3 note:str? tags:list[str]=[] price:decimal=0 variant=primary,secondary #}
type cardProps struct {
	Title            any
	Size             int
	Note             *string
	Tags             []string
	Price            decimal.Decimal
	Variant          string
	VariantPrimary   bool
	VariantSecondary bool
}

func (cardProps) ComponentName() string { return "card" }

func (p *cardProps) LoadBindings(values map[string]any, flags map[string]bool) error {
	if err := Bind(values, "title", &p.Title); err != nil {
		return err
	}
	if err := Bind(values, "size", &p.Size); err != nil {
		return err
	}
	if err := BindOptional(values, "note", &p.Note); err != nil {
		return err
	}
	if err := BindList(values, "tags", &p.Tags); err != nil {
		return err
	}
	if err := Bind(values, "price", &p.Price); err != nil {
		return err
	}
	if err := Bind(values, "variant", &p.Variant); err != nil {
		return err
	}
	p.VariantPrimary = flags["variantPrimary"]
	p.VariantSecondary = flags["variantSecondary"]
	return nil
}

func (p cardProps) Assignments() []Assignment {
	out := make([]Assignment, 0, 6)
	if p.Title != nil {
		out = append(out, Assignment{Key: "title", Value: p.Title})
	}
	out = append(out, Assignment{Key: "size", Value: p.Size})
	if p.Note != nil {
		out = append(out, Assignment{Key: "note", Value: *p.Note})
	}
	if p.Tags != nil {
		out = append(out, Assignment{Key: "tags", Value: p.Tags})
	}
	out = append(out, Assignment{Key: "price", Value: p.Price})
	if p.Variant != "" {
		out = append(out, Assignment{Key: "variant", Value: p.Variant})
	}
	return out
}

const cardDecl = `title size:int=3 note:str? tags:list[str]=[] price:decimal=0 variant=primary,secondary`

func TestResolutionBind(t *testing.T) {
	res, err := TestResolve(cardDecl,
		Attr("title", "Hello"),
		Attr("size", "7"),
		Attr("note", "n"),
		Attr("tags", "a, b"),
		Attr("price", "9.99"),
		Attr("variant", "secondary"),
	)
	if err != nil {
		t.Fatalf("TestResolve() error = %v", err)
	}

	var p cardProps
	if err := res.Bind(&p); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if p.Title != "Hello" || p.Size != 7 || p.Note == nil || *p.Note != "n" {
		t.Errorf("Bind() = %+v", p)
	}
	if !reflect.DeepEqual(p.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v, want [a b]", p.Tags)
	}
	if !p.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("Price = %v, want 9.99", p.Price)
	}
	if p.Variant != "secondary" || p.VariantPrimary || !p.VariantSecondary {
		t.Errorf("variant fields = %q %v %v", p.Variant, p.VariantPrimary, p.VariantSecondary)
	}
}

func TestBindOptionalNil(t *testing.T) {
	note := "stale"
	p := &note
	if err := BindOptional(map[string]any{"note": nil}, "note", &p); err != nil {
		t.Fatalf("BindOptional() error = %v", err)
	}
	if p != nil {
		t.Errorf("BindOptional(nil) = %v, want nil", *p)
	}
}

func TestBindMismatch(t *testing.T) {
	var n int
	err := Bind(map[string]any{"n": "abc"}, "n", &n)
	if !errors.Is(err, ErrTypeCoercion) {
		t.Errorf("Bind() error = %v, want ErrTypeCoercion", err)
	}

	var items []int
	err = BindList(map[string]any{"items": []any{1, "x"}}, "items", &items)
	if !errors.Is(err, ErrTypeCoercion) {
		t.Errorf("BindList() error = %v, want ErrTypeCoercion", err)
	}
}

func TestBindMissingKeyZeroes(t *testing.T) {
	n := 5
	if err := Bind(map[string]any{}, "n", &n); err != nil || n != 0 {
		t.Errorf("Bind(missing) = %d, %v, want 0, nil", n, err)
	}
}

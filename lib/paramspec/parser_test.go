package paramspec

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	list, err := Parse(`title size:int=3 ratio:float=.5 on:bool=True label="Hello, world" none=None tags:list[str]=["a", 'b'] variant=primary,secondary, tone=,light,dark data-id aria-label=''`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantNames := []string{"title", "size", "ratio", "on", "label", "none", "tags", "variant", "tone", "data-id", "aria-label"}
	if !reflect.DeepEqual(list.Names(), wantNames) {
		t.Errorf("Names() = %v, want %v", list.Names(), wantNames)
	}

	tests := []struct {
		name     string
		def      any
		required bool
		typ      string
	}{
		{"title", Required, true, ""},
		{"size", 3, false, "int"},
		{"ratio", 0.5, false, "float"},
		{"on", true, false, "bool"},
		{"label", "Hello, world", false, ""},
		{"none", nil, false, ""},
		{"tags", []any{"a", "b"}, false, "list[str]"},
		{"variant", "primary,secondary", true, ""},
		{"tone", ",light,dark", false, ""},
		{"data-id", Required, true, ""},
		{"aria-label", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := list.Get(tt.name)
			if !ok {
				t.Fatalf("Get(%q) missing", tt.name)
			}
			if !reflect.DeepEqual(p.Default, tt.def) {
				t.Errorf("Default = %#v, want %#v", p.Default, tt.def)
			}
			if p.Required() != tt.required {
				t.Errorf("Required() = %v, want %v", p.Required(), tt.required)
			}
			got := ""
			if p.Type != nil {
				got = p.Type.String()
			}
			if got != tt.typ {
				t.Errorf("Type = %q, want %q", got, tt.typ)
			}
		})
	}

	variant, _ := list.Get("variant")
	if variant.Enum == nil || !reflect.DeepEqual(variant.Enum.Allowed, []string{"primary", "secondary"}) {
		t.Errorf("variant.Enum = %+v", variant.Enum)
	}
}

func TestOptionalWithoutDefaultIsNotRequired(t *testing.T) {
	list, err := Parse(`note:str? count:int? email:str(email)? age:int(min=0) title`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tests := []struct {
		name     string
		required bool
	}{
		{"note", false},
		{"count", false},
		{"email", false},
		{"age", true},
		{"title", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := list.Get(tt.name)
			if p.Required() != tt.required {
				t.Errorf("Required() = %v, want %v", p.Required(), tt.required)
			}
			if p.HasDefault() {
				t.Errorf("HasDefault() = true, Default = %#v", p.Default)
			}
		})
	}
}

func TestParseTypedEnums(t *testing.T) {
	for _, decl := range []string{"v:str=a,b", "v:str?=a,b", "v:string?=,a,b", "v:str(nonempty)=a,b"} {
		t.Run(decl, func(t *testing.T) {
			list, err := Parse(decl)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", decl, err)
			}
			if p, _ := list.Get("v"); p.Enum == nil {
				t.Errorf("Parse(%q) Enum = nil", decl)
			}
		})
	}
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		decl string
		want string
	}{
		{"x:int", "int"},
		{"x:string", "str"},
		{"x:decimal=1.5", "decimal"},
		{"x:int?", "int?"},
		{"x:optional[float]", "float?"},
		{"x:list[int?]", "list[int?]"},
		{"x:int(min=0,max=10)", "int(min=0, max=10)"},
		{`x:str(pattern="^[a-z ]+$")`, `str(pattern="^[a-z ]+$")`},
		{"x:list[int(min=1)]", "list[int(min=1)]"},
		{"x:str(email)?", "str(email)?"},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			list, err := Parse(tt.decl)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.decl, err)
			}
			p, _ := list.Get("x")
			if p.Type.String() != tt.want {
				t.Errorf("Type = %q, want %q", p.Type.String(), tt.want)
			}
		})
	}
}

func TestParseAnnotatedStructure(t *testing.T) {
	list, err := Parse("age:int(min=0, max=150)")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p, _ := list.Get("age")
	a, ok := p.Type.(Annotated)
	if !ok {
		t.Fatalf("Type = %T, want Annotated", p.Type)
	}
	if a.Elem != (Primitive{Kind: Int}) {
		t.Errorf("Elem = %v, want int", a.Elem)
	}
	if len(a.Validators) != 2 {
		t.Fatalf("Validators = %d, want 2", len(a.Validators))
	}
	if err := a.Validators[0].Check(-1); err == nil {
		t.Error("min=0 accepted -1")
	}
	if err := a.Validators[1].Check(150); err != nil {
		t.Errorf("max=150 rejected 150: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		decl  string
		token string
		msg   string
	}{
		{"invalid name", "9lives", "9lives", "invalid parameter name"},
		{"reserved prefix", "_secret", "_secret", "reserved"},
		{"reserved name", "attrs", "attrs", "reserved"},
		{"hyphen without prefix", "my-prop", "my-prop", "invalid parameter name"},
		{"duplicate", "a b=1 a=2", "a=2", "duplicate parameter"},
		{"bare word default", "size=md", "size=md", "invalid default"},
		{"empty default", "size=", "size=", "invalid default"},
		{"unterminated list", "x=[1,2", "x=[1,2", "invalid default"},
		{"comma with brackets", "x=a,(b)", "x=a,(b)", "invalid default"},
		{"unknown type", "x:uuid", "x:uuid", "unknown type"},
		{"unknown validator", "x:int(even)", "x:int(even)", "unknown validator"},
		{"bad validator arg", "x:str(minlen=\"a\")", "x:str(minlen=\"a\")", "minlen"},
		{"typed enum", "x:int=a,b", "x:int=a,b", "enum parameters"},
		{"optional typed enum", "x:int?=a,b", "x:int?=a,b", "enum parameters"},
		{"empty name", "=3", "=3", "empty parameter name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.decl)
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("Parse(%q) error = %v, want *SyntaxError", tt.decl, err)
			}
			if syn.Token != tt.token {
				t.Errorf("Token = %q, want %q", syn.Token, tt.token)
			}
			if !strings.Contains(syn.Msg, tt.msg) {
				t.Errorf("Msg = %q, want it to contain %q", syn.Msg, tt.msg)
			}
			if syn.Hint == "" {
				t.Error("Hint is empty")
			}
		})
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(`label="oops`)
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
}

func TestSyntaxErrorCarriesSourceLine(t *testing.T) {
	tmpl := "<div>\n  {# props 1bad #}\n</div>"
	src, ok := Extract(tmpl)
	if !ok {
		t.Fatal("Extract() found nothing")
	}
	_, err := defaultParser.Parse(src)
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if syn.Line != 2 {
		t.Errorf("Line = %d, want 2", syn.Line)
	}
	if syn.Text != "  {# props 1bad #}" {
		t.Errorf("Text = %q", syn.Text)
	}
	if !strings.HasPrefix(err.Error(), "line 2: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCustomValidator(t *testing.T) {
	p := NewParser(Options{
		Validators: map[string]ValidatorFactory{
			"even": func(arg any, hasArg bool) (func(any) error, error) {
				return func(v any) error {
					if n, ok := v.(int); ok && n%2 != 0 {
						return errors.New("must be even")
					}
					return nil
				}, nil
			},
		},
	})
	list, err := p.Parse(Source{Declaration: "n:int(even)"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	param, _ := list.Get("n")
	if err := param.Type.(Annotated).Validators[0].Check(3); err == nil {
		t.Error("even accepted 3")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a b", []string{"a", "b"}},
		{"a, b,", []string{"a", "b"}},
		{`x="a b" y='c d'`, []string{`x="a b"`, `y='c d'`}},
		{`x=[1, 2] y:int(min=0, max=3)`, []string{`x=[1, 2]`, `y:int(min=0, max=3)`}},
		{`x="say \"hi\""`, []string{`x="say \"hi\""`}},
		{"  \n a \t b  ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		got, err := tokenize(tt.in)
		if err != nil {
			t.Fatalf("tokenize(%q) error = %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtract(t *testing.T) {
	if _, ok := Extract("<div>no props</div>"); ok {
		t.Error("Extract() found a declaration in a plain template")
	}
	src, ok := Extract("{# props a b=1 #}\n<p></p>")
	if !ok {
		t.Fatal("Extract() found nothing")
	}
	if src.Declaration != "a b=1" || src.Line != 1 {
		t.Errorf("Extract() = %+v", src)
	}
}

package paramspec

import (
	"fmt"
	"strings"
)

// Kind is a primitive value kind.
type Kind int

const (
	Int Kind = iota + 1
	Float
	Bool
	String
	Decimal
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "str"
	case Decimal:
		return "decimal"
	default:
		return "unknown"
	}
}

var kindNames = map[string]Kind{
	"int":     Int,
	"float":   Float,
	"bool":    Bool,
	"str":     String,
	"string":  String,
	"decimal": Decimal,
}

// Type describes the target of coercion. The set of implementations is
// closed: Primitive, Optional, ListOf and Annotated.
type Type interface {
	fmt.Stringer
	isType()
}

// Primitive is a scalar kind.
type Primitive struct {
	Kind Kind
}

// Optional admits nil in addition to Elem.
type Optional struct {
	Elem Type
}

// ListOf is a list whose items are Elem.
type ListOf struct {
	Elem Type
}

// Annotated is Elem followed by validators run against the coerced value.
type Annotated struct {
	Elem       Type
	Validators []Validator
}

// IsOptional reports whether t admits nil, looking through validators.
func IsOptional(t Type) bool {
	switch t := t.(type) {
	case Optional:
		return true
	case Annotated:
		return IsOptional(t.Elem)
	}
	return false
}

func (Primitive) isType() {}
func (Optional) isType()  {}
func (ListOf) isType()    {}
func (Annotated) isType() {}

func (t Primitive) String() string { return t.Kind.String() }
func (t Optional) String() string  { return t.Elem.String() + "?" }
func (t ListOf) String() string    { return "list[" + t.Elem.String() + "]" }

func (t Annotated) String() string {
	names := make([]string, len(t.Validators))
	for i, v := range t.Validators {
		names[i] = v.String()
	}
	return t.Elem.String() + "(" + strings.Join(names, ", ") + ")"
}

// parseType parses a raw type token such as "int?", "list[str]" or
// "int(min=0, max=10)".
func (p *Parser) parseType(raw string) (Type, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("empty type")
	}

	if inner, ok := strings.CutSuffix(s, "?"); ok {
		elem, err := p.parseType(inner)
		if err != nil {
			return nil, err
		}
		return Optional{Elem: elem}, nil
	}

	if i := openParen(s); i > 0 && strings.HasSuffix(s, ")") {
		elem, err := p.parseType(s[:i])
		if err != nil {
			return nil, err
		}
		validators, err := p.parseValidators(s[i+1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return Annotated{Elem: elem, Validators: validators}, nil
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "optional[") && strings.HasSuffix(s, "]") {
		elem, err := p.parseType(s[len("optional[") : len(s)-1])
		if err != nil {
			return nil, err
		}
		return Optional{Elem: elem}, nil
	}
	if strings.HasPrefix(lower, "list[") && strings.HasSuffix(s, "]") {
		elem, err := p.parseType(s[len("list[") : len(s)-1])
		if err != nil {
			return nil, err
		}
		return ListOf{Elem: elem}, nil
	}

	if k, ok := kindNames[lower]; ok {
		return Primitive{Kind: k}, nil
	}
	return nil, fmt.Errorf("unknown type %q", s)
}

// openParen finds the first "(" outside brackets and quotes.
func openParen(s string) int {
	depth := 0
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[':
			depth++
		case r == ']':
			depth--
		case r == '(' && depth == 0:
			return i
		}
	}
	return -1
}

func (p *Parser) parseValidators(body string) ([]Validator, error) {
	var out []Validator
	for _, item := range splitTopLevel(body, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, rawArg, hasArg := strings.Cut(item, "=")
		name = strings.TrimSpace(name)

		factory, ok := p.validators[name]
		if !ok {
			return nil, fmt.Errorf("unknown validator %q", name)
		}

		var arg any
		if hasArg {
			v, err := parseLiteral(strings.TrimSpace(rawArg))
			if err != nil {
				return nil, fmt.Errorf("validator %s: %w", name, err)
			}
			arg = v
		}

		check, err := factory(arg, hasArg)
		if err != nil {
			return nil, fmt.Errorf("validator %s: %w", name, err)
		}
		out = append(out, Validator{Name: name, Arg: arg, HasArg: hasArg, Check: check})
	}
	return out, nil
}

// Package paramspec parses the parameter declaration of a component
// template into an ordered list of typed parameters.
//
// A declaration is a whitespace-separated list of entries:
//
//	{# props title size:int=3 variant=primary,secondary tags:list[str]=[] email:str(email)? #}
//
// An entry without "=" is required. A bare default containing commas is an
// enum declaration; everything else must be a literal.
package paramspec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pthm/hxprops/lib/enum"
)

// Source is a declaration together with its location in the template.
type Source struct {
	Declaration string
	Line        int    // 1-based line of the declaration, 0 if unknown
	Text        string // the template line the declaration starts on
}

type requiredMarker struct{}

func (requiredMarker) String() string { return "<required>" }

// Required is the Default of a parameter declared without one.
var Required any = requiredMarker{}

// Param is one declared parameter.
type Param struct {
	Name    string
	Default any // Required when no default was declared
	RawType string
	Type    Type // nil for untyped parameters
	Enum    *enum.Enum
}

// Required reports whether a call site must supply the parameter. Enum
// parameters are required when their first slot is non-empty; optional
// types without a default bind nil instead.
func (p Param) Required() bool {
	if p.Enum != nil {
		return p.Enum.Required
	}
	return !p.HasDefault() && !IsOptional(p.Type)
}

// HasDefault reports whether the declaration gave a default.
func (p Param) HasDefault() bool {
	_, ok := p.Default.(requiredMarker)
	return !ok
}

// List is an ordered map of parameters keyed by name.
type List struct {
	params []Param
	index  map[string]int
}

// Len returns the number of parameters.
func (l *List) Len() int { return len(l.params) }

// Get returns the parameter called name.
func (l *List) Get(name string) (Param, bool) {
	i, ok := l.index[name]
	if !ok {
		return Param{}, false
	}
	return l.params[i], true
}

// Params returns the parameters in declaration order.
func (l *List) Params() []Param {
	return append([]Param(nil), l.params...)
}

// Names returns the parameter names in declaration order.
func (l *List) Names() []string {
	names := make([]string, len(l.params))
	for i, p := range l.params {
		names[i] = p.Name
	}
	return names
}

// SyntaxError reports a malformed declaration.
type SyntaxError struct {
	Token string
	Msg   string
	Hint  string
	Line  int
	Text  string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Msg)
	if e.Token != "" {
		fmt.Fprintf(&b, " in %q", e.Token)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, "\n  %s", strings.TrimSpace(e.Text))
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", e.Hint)
	}
	return b.String()
}

// Options configures name rules and the validator set.
type Options struct {
	ReservedPrefix string
	ReservedNames  []string
	HyphenPrefixes []string
	Validators     map[string]ValidatorFactory
}

// DefaultOptions returns the options used by Parse.
func DefaultOptions() Options {
	return Options{
		ReservedPrefix: "_",
		ReservedNames:  []string{"attrs", "contents"},
		HyphenPrefixes: []string{"data-", "aria-"},
	}
}

// Parser parses declarations. It is safe for concurrent use.
type Parser struct {
	opts       Options
	validators map[string]ValidatorFactory
	reserved   map[string]bool
}

// NewParser creates a parser. Options.Validators are added to, and may
// override, the builtin validators.
func NewParser(opts Options) *Parser {
	p := &Parser{
		opts:       opts,
		validators: BuiltinValidators(),
		reserved:   make(map[string]bool, len(opts.ReservedNames)),
	}
	for name, f := range opts.Validators {
		p.validators[name] = f
	}
	for _, name := range opts.ReservedNames {
		p.reserved[name] = true
	}
	return p
}

var defaultParser = NewParser(DefaultOptions())

// Parse parses a declaration with the default options.
func Parse(decl string) (*List, error) {
	return defaultParser.Parse(Source{Declaration: decl})
}

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	hyphenRest = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)
)

// Parse parses src into a List. The first problem found is returned as a
// *SyntaxError.
func (p *Parser) Parse(src Source) (*List, error) {
	fail := func(token, msg, hint string) error {
		return &SyntaxError{Token: token, Msg: msg, Hint: hint, Line: src.Line, Text: src.Text}
	}

	tokens, err := tokenize(src.Declaration)
	if err != nil {
		return nil, fail("", err.Error(), "close the quote or escape it with a backslash")
	}

	list := &List{index: make(map[string]int, len(tokens))}
	for _, tok := range tokens {
		lhs, rhs, hasDefault := splitAssignment(tok)
		name, rawType, typed := strings.Cut(lhs, ":")

		if err := p.checkName(name); err != nil {
			return nil, fail(tok, err.Error(), nameHint(p.opts))
		}
		if _, dup := list.index[name]; dup {
			return nil, fail(tok, fmt.Sprintf("duplicate parameter %q", name), "declare each parameter once")
		}

		param := Param{Name: name, Default: Required}

		if typed {
			param.RawType = rawType
			t, err := p.parseType(rawType)
			if err != nil {
				return nil, fail(tok, err.Error(), "types are int, float, bool, str, decimal, T?, list[T] or T(validator, ...)")
			}
			param.Type = t
		}

		if hasDefault {
			if isBareEnum(rhs) {
				e, _ := enum.ParseDefault(rhs)
				if typed && !isStringType(param.Type) {
					return nil, fail(tok, "enum parameters must be untyped or str", "drop the type or quote the default")
				}
				param.Enum = e
				param.Default = rhs
			} else {
				v, err := parseLiteral(rhs)
				if err != nil {
					return nil, fail(tok, "invalid default: "+err.Error(),
						`quote string defaults (size="md") or list enum values with commas (size=sm,md,lg)`)
				}
				param.Default = v
			}
		}

		list.index[name] = len(list.params)
		list.params = append(list.params, param)
	}
	return list, nil
}

func (p *Parser) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty parameter name")
	}
	if p.opts.ReservedPrefix != "" && strings.HasPrefix(name, p.opts.ReservedPrefix) {
		return fmt.Errorf("parameter names starting with %q are reserved", p.opts.ReservedPrefix)
	}
	if p.reserved[name] {
		return fmt.Errorf("parameter name %q is reserved", name)
	}
	if identifier.MatchString(name) {
		return nil
	}
	for _, prefix := range p.opts.HyphenPrefixes {
		if rest, ok := strings.CutPrefix(name, prefix); ok && hyphenRest.MatchString(rest) {
			return nil
		}
	}
	return fmt.Errorf("invalid parameter name %q", name)
}

func nameHint(opts Options) string {
	hint := "use letters, digits and underscores, starting with a letter"
	if len(opts.HyphenPrefixes) > 0 {
		hint += "; hyphens are allowed after " + strings.Join(opts.HyphenPrefixes, " or ")
	}
	return hint
}

func isStringType(t Type) bool {
	switch t := t.(type) {
	case Primitive:
		return t.Kind == String
	case Optional:
		return isStringType(t.Elem)
	case Annotated:
		return isStringType(t.Elem)
	}
	return false
}

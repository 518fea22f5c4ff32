package coerce

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pthm/hxprops/lib/enum"
	"github.com/pthm/hxprops/lib/paramspec"
)

// Assignment is one call-site key/value pair.
type Assignment struct {
	Key   string
	Value any
}

// CrossCheck inspects the bound values after every field has passed. A
// returned FieldError keeps its Field; any other error is reported without
// one.
type CrossCheck func(values map[string]any) error

// Options tunes Validate.
type Options struct {
	// Cutoff is the enum suggestion threshold. Zero means enum.DefaultCutoff.
	Cutoff float64
	Check  CrossCheck
}

// ErrorKind classifies a FieldError.
type ErrorKind string

const (
	KindMissing   ErrorKind = "missing"
	KindType      ErrorKind = "type"
	KindValidator ErrorKind = "validator"
	KindEnum      ErrorKind = "enum"
	KindCheck     ErrorKind = "check"
)

// FieldError is one problem with one parameter.
type FieldError struct {
	Field      string
	Kind       ErrorKind
	Message    string
	Value      any
	Allowed    []string
	Suggestion string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationError aggregates every FieldError of one call.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes each FieldError to errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		errs[i] = fe
	}
	return errs
}

// Outcome is the result of validating one call.
type Outcome struct {
	Values map[string]any
	Flags  map[string]bool
	Extra  []Assignment // supplied keys that match no parameter
	Errors []FieldError
}

// OK reports whether the call bound cleanly.
func (o *Outcome) OK() bool { return len(o.Errors) == 0 }

// Err returns a *ValidationError, or nil when the call bound cleanly.
func (o *Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return &ValidationError{Errors: o.Errors}
}

// Field returns the errors reported for one parameter.
func (o *Outcome) Field(name string) []FieldError {
	var out []FieldError
	for _, fe := range o.Errors {
		if fe.Field == name {
			out = append(out, fe)
		}
	}
	return out
}

// Validate binds supplied values to specs. Every parameter is checked and
// all failures are collected; the cross check runs only when none occurred.
// When the same key is supplied twice the later value wins.
func Validate(specs *paramspec.List, supplied []Assignment, opts Options) *Outcome {
	out := &Outcome{
		Values: make(map[string]any, specs.Len()),
		Flags:  make(map[string]bool),
	}

	given := make(map[string]any, len(supplied))
	for _, a := range supplied {
		if _, ok := specs.Get(a.Key); ok {
			given[a.Key] = a.Value
			continue
		}
		out.Extra = append(out.Extra, a)
	}

	resolver := enum.Resolver{Cutoff: opts.Cutoff}
	for _, p := range specs.Params() {
		v, ok := given[p.Name]
		if p.Enum != nil {
			bindEnum(out, resolver, p, v, ok)
			continue
		}

		if !ok {
			if p.Required() {
				out.fail(FieldError{Field: p.Name, Kind: KindMissing, Message: "required"})
				continue
			}
			if !p.HasDefault() {
				out.Values[p.Name] = nil
				continue
			}
			v = cloneDefault(p.Default)
			if v == nil {
				out.Values[p.Name] = nil
				continue
			}
		}

		if p.Type == nil {
			out.Values[p.Name] = v
			continue
		}

		c := Coerce(v, p.Type)
		if !Conforms(c, p.Type) {
			out.fail(FieldError{Field: p.Name, Kind: KindType, Message: mismatch(c, p.Type), Value: v})
			continue
		}
		if msgs := runValidators(c, p.Type); len(msgs) > 0 {
			for _, msg := range msgs {
				out.fail(FieldError{Field: p.Name, Kind: KindValidator, Message: msg, Value: c})
			}
			continue
		}
		out.Values[p.Name] = c
	}

	if out.OK() && opts.Check != nil {
		if err := runCheck(opts.Check, out.Values); err != nil {
			var fe FieldError
			if !errors.As(err, &fe) {
				fe = FieldError{Message: err.Error()}
			}
			fe.Kind = KindCheck
			out.fail(fe)
		}
	}
	return out
}

func (o *Outcome) fail(fe FieldError) {
	o.Errors = append(o.Errors, fe)
}

func bindEnum(out *Outcome, r enum.Resolver, p paramspec.Param, v any, supplied bool) {
	var s string
	if supplied && v != nil {
		if str, ok := v.(string); ok {
			s = str
		} else {
			s = fmt.Sprint(v)
		}
	}

	if strings.TrimSpace(s) == "" {
		if p.Enum.Required {
			out.fail(FieldError{
				Field:   p.Name,
				Kind:    KindMissing,
				Message: "required; expected one of: " + strings.Join(p.Enum.Allowed, ", "),
				Allowed: p.Enum.Allowed,
			})
			return
		}
		out.Values[p.Name] = ""
		return
	}

	res := r.Resolve(p.Name, s, p.Enum)
	for _, rej := range res.Rejections {
		out.fail(FieldError{
			Field:      p.Name,
			Kind:       KindEnum,
			Message:    rej.Error(),
			Value:      rej.Token,
			Allowed:    rej.Allowed,
			Suggestion: rej.Suggestion,
		})
	}
	if !res.OK() {
		return
	}
	out.Values[p.Name] = res.Value()
	for flag := range res.Flags {
		out.Flags[flag] = true
	}
}

// runValidators applies every validator reachable from t, innermost first.
// List validators see each element.
func runValidators(value any, t paramspec.Type) []string {
	switch t := t.(type) {
	case paramspec.Optional:
		if value == nil {
			return nil
		}
		return runValidators(value, t.Elem)
	case paramspec.ListOf:
		items, _ := value.([]any)
		var msgs []string
		for i, item := range items {
			for _, msg := range runValidators(item, t.Elem) {
				msgs = append(msgs, fmt.Sprintf("item %d: %s", i+1, msg))
			}
		}
		return msgs
	case paramspec.Annotated:
		msgs := runValidators(value, t.Elem)
		for _, v := range t.Validators {
			if err := check(v, value); err != nil {
				msgs = append(msgs, err.Error())
			}
		}
		return msgs
	default:
		return nil
	}
}

func check(v paramspec.Validator, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator %s panicked: %v", v.Name, r)
		}
	}()
	return v.Check(value)
}

func runCheck(c CrossCheck, values map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return c(values)
}

// cloneDefault copies list defaults so callers cannot mutate the parsed spec.
func cloneDefault(v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = cloneDefault(item)
	}
	return out
}

// Package enum interprets comma-delimited prop defaults as a set of allowed
// values and validates space-separated selections against it.
package enum

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Delimiter separates allowed values in an enum default.
const Delimiter = ","

// DefaultCutoff is the minimum similarity for a suggestion.
const DefaultCutoff = 0.6

// Enum is the allowed-value set derived from a default such as
// "primary,secondary". A leading empty slot (",primary,secondary") makes the
// prop optional.
type Enum struct {
	Allowed  []string
	Required bool
}

// ParseDefault interprets s as an enum declaration. It reports false when s
// does not contain the delimiter. Empty slots are dropped and repeated values
// keep their first position.
func ParseDefault(s string) (*Enum, bool) {
	if !strings.Contains(s, Delimiter) {
		return nil, false
	}
	slots := strings.Split(s, Delimiter)
	e := &Enum{Required: strings.TrimSpace(slots[0]) != ""}
	seen := make(map[string]bool, len(slots))
	for _, slot := range slots {
		v := strings.TrimSpace(slot)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		e.Allowed = append(e.Allowed, v)
	}
	return e, true
}

// Contains reports exact membership.
func (e *Enum) Contains(v string) bool {
	for _, a := range e.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// String renders the allowed values back into declaration form.
func (e *Enum) String() string {
	s := strings.Join(e.Allowed, Delimiter)
	if !e.Required {
		return Delimiter + s
	}
	return s
}

// Rejection describes a token that is not an allowed value.
type Rejection struct {
	Token      string
	Allowed    []string
	Suggestion string
}

func (r Rejection) Error() string {
	msg := fmt.Sprintf("invalid value %q, expected one of: %s", r.Token, strings.Join(r.Allowed, ", "))
	if r.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", r.Suggestion)
	}
	return msg
}

// Result is the outcome of resolving one supplied value.
type Result struct {
	Tokens     []string
	Flags      map[string]bool
	Rejections []Rejection
}

// Value returns the accepted tokens joined with single spaces.
func (r Result) Value() string {
	return strings.Join(r.Tokens, " ")
}

// OK reports whether every token was accepted.
func (r Result) OK() bool {
	return len(r.Rejections) == 0
}

// Resolver validates selections and derives flags.
type Resolver struct {
	// Cutoff is the minimum Ratio for a suggestion. Zero means DefaultCutoff.
	Cutoff float64
}

// Resolve splits value on whitespace and checks each token against e. Every
// accepted token binds a flag named by FlagName; unselected values get no
// flag at all.
func (r Resolver) Resolve(prop, value string, e *Enum) Result {
	res := Result{Flags: make(map[string]bool)}
	for _, tok := range strings.Fields(value) {
		if !e.Contains(tok) {
			res.Rejections = append(res.Rejections, Rejection{
				Token:      tok,
				Allowed:    e.Allowed,
				Suggestion: Suggest(tok, e.Allowed, r.cutoff()),
			})
			continue
		}
		res.Tokens = append(res.Tokens, tok)
		res.Flags[FlagName(prop, tok)] = true
	}
	return res
}

func (r Resolver) cutoff() float64 {
	if r.Cutoff <= 0 {
		return DefaultCutoff
	}
	return r.Cutoff
}

// FlagName derives the boolean binding for a selected value:
// FlagName("theme", "dark-mode") is "themeDarkMode".
func FlagName(prop, token string) string {
	parts := strings.Split(token, "-")
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	b.WriteString(prop)
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(title.String(p))
	}
	return b.String()
}

// Package attrs holds the attribute collection a component receives from its
// call site: ordered entries, dotted sub-groups and conditional class-like
// modifiers that are composed into a single value at render time.
package attrs

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownAttribute is returned by Get when neither the key nor its
// hyphenated form is present.
var ErrUnknownAttribute = errors.New("attrs: no such attribute")

// True is the value of a bare attribute such as `disabled`.
const True = true

// Pair is a single resolved attribute.
type Pair struct {
	Key   string
	Value any
}

// tokens is an insertion-ordered set of modifier tokens with an active flag.
type tokens struct {
	order []string
	on    map[string]bool
}

func newTokens() *tokens {
	return &tokens{on: make(map[string]bool)}
}

func (t *tokens) set(token string, active bool) {
	if _, ok := t.on[token]; !ok {
		t.order = append(t.order, token)
	}
	t.on[token] = active
}

func (t *tokens) has(token string) bool {
	_, ok := t.on[token]
	return ok
}

func (t *tokens) active() []string {
	var out []string
	for _, tok := range t.order {
		if t.on[tok] {
			out = append(out, tok)
		}
	}
	return out
}

func (t *tokens) clone() *tokens {
	c := &tokens{order: append([]string(nil), t.order...), on: make(map[string]bool, len(t.on))}
	for k, v := range t.on {
		c.on[k] = v
	}
	return c
}

// Set is an ordered attribute collection.
//
// A Set is created per component instantiation and is not safe for
// concurrent mutation. Reads (ResolveAll, Get, String) never mutate it.
type Set struct {
	opts *options

	keys    []string
	entries map[string]any

	groups []string
	nested map[string]*Set

	bases    []string // modifier targets in first-seen order
	appends  map[string]*tokens
	prepends map[string]*tokens
}

// New creates an empty Set.
func New(opts ...Option) *Set {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return newSet(o)
}

func newSet(o *options) *Set {
	return &Set{
		opts:     o,
		entries:  make(map[string]any),
		nested:   make(map[string]*Set),
		appends:  make(map[string]*tokens),
		prepends: make(map[string]*tokens),
	}
}

// Classify routes an assignment using this set's options.
func (s *Set) Classify(key string, value any) Route {
	return classify(s.opts, key, value)
}

// Set stores an assignment, routing it by Classify.
func (s *Set) Set(key string, value any) {
	r := s.Classify(key, value)
	switch r.Kind {
	case Passthrough, Plain:
		s.put(key, value)
	case Nested:
		s.group(r.Key).Set(r.Rest, value)
	case Modifier:
		s.modifiers(s.appends, r.Key).set(r.Token, truthy(value))
	case AppendMarker:
		m := s.modifiers(s.appends, r.Key)
		for _, tok := range r.Tokens {
			m.set(tok, true)
		}
	case PrependMarker:
		m := s.modifiers(s.prepends, r.Key)
		for _, tok := range r.Tokens {
			m.set(tok, true)
		}
	}
}

func (s *Set) put(key string, value any) {
	if _, ok := s.entries[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.entries[key] = value
}

func (s *Set) group(name string) *Set {
	child, ok := s.nested[name]
	if !ok {
		child = newSet(s.opts)
		s.nested[name] = child
		s.groups = append(s.groups, name)
	}
	return child
}

func (s *Set) modifiers(m map[string]*tokens, base string) *tokens {
	t, ok := m[base]
	if !ok {
		if !s.isBase(base) {
			s.bases = append(s.bases, base)
		}
		t = newTokens()
		m[base] = t
	}
	return t
}

func (s *Set) isBase(base string) bool {
	_, a := s.appends[base]
	_, p := s.prepends[base]
	return a || p
}

// Len reports the number of literal entries.
func (s *Set) Len() int {
	return len(s.keys)
}

// Empty reports whether the set has no entries, groups or modifiers.
func (s *Set) Empty() bool {
	return len(s.keys) == 0 && len(s.groups) == 0 && len(s.bases) == 0
}

// Has reports whether key resolves to something: a literal entry or a
// modifier target.
func (s *Set) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Get returns the resolved value for key. If key is absent it retries with
// the camelCase key converted to lowercase hyphenated form, so dataId finds
// data-id.
func (s *Set) Get(key string) (any, error) {
	if v, ok := s.lookup(key); ok {
		return v, nil
	}
	if alt := kebab(key); alt != key {
		if v, ok := s.lookup(alt); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, key)
}

func (s *Set) lookup(key string) (any, bool) {
	raw, literal := s.entries[key]
	if s.isBase(key) {
		return s.compose(key, raw), true
	}
	return raw, literal
}

// Nested returns the child set for a group, or an empty set when the group
// was never assigned.
func (s *Set) Nested(name string) *Set {
	if child, ok := s.nested[name]; ok {
		return child
	}
	return newSet(s.opts)
}

// Groups returns the nested group names in assignment order.
func (s *Set) Groups() []string {
	return append([]string(nil), s.groups...)
}

// Modifiers returns the conditional tokens recorded for base, active or not.
// Prepended and appended tokens are reported together.
func (s *Set) Modifiers(base string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range []map[string]*tokens{s.prepends, s.appends} {
		if t, ok := m[base]; ok {
			for tok, on := range t.on {
				out[tok] = on
			}
		}
	}
	return out
}

// ResolveAll returns every literal entry in assignment order, composing
// modifier tokens into the value where present, followed by synthesized
// entries for modifier targets that have no literal value.
func (s *Set) ResolveAll() []Pair {
	out := make([]Pair, 0, len(s.keys)+len(s.bases))
	for _, k := range s.keys {
		v := s.entries[k]
		if s.isBase(k) {
			v = s.compose(k, v)
		}
		out = append(out, Pair{Key: k, Value: v})
	}
	for _, base := range s.bases {
		if _, literal := s.entries[base]; literal {
			continue
		}
		if v := s.compose(base, nil); v != nil {
			out = append(out, Pair{Key: base, Value: v})
		}
	}
	return out
}

// compose joins prepended, base and appended tokens without duplicates.
// It returns nil when nothing remains.
func (s *Set) compose(key string, raw any) any {
	var out []string
	seen := make(map[string]bool)
	add := func(toks []string) {
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	if t, ok := s.prepends[key]; ok {
		add(t.active())
	}
	add(baseTokens(raw))
	if t, ok := s.appends[key]; ok {
		add(t.active())
	}

	if len(out) == 0 {
		return nil
	}
	return strings.Join(out, " ")
}

func baseTokens(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		return nil
	case string:
		return strings.Fields(v)
	default:
		return strings.Fields(fmt.Sprint(v))
	}
}

// Clone returns a deep copy: nested sets and modifier maps are copied.
func (s *Set) Clone() *Set {
	c := newSet(s.opts)
	c.keys = append([]string(nil), s.keys...)
	for k, v := range s.entries {
		c.entries[k] = v
	}
	c.groups = append([]string(nil), s.groups...)
	for k, child := range s.nested {
		c.nested[k] = child.Clone()
	}
	c.bases = append([]string(nil), s.bases...)
	for k, t := range s.appends {
		c.appends[k] = t.clone()
	}
	for k, t := range s.prepends {
		c.prepends[k] = t.clone()
	}
	return c
}

// truthy decides whether a modifier is active. Strings follow the same
// closed-world rule as boolean props.
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	default:
		return false
	}
}

// kebab converts dataId to data-id.
func kebab(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package attrs

import "strings"

// RouteKind identifies how a key/value assignment is stored in a Set.
type RouteKind int

const (
	// Plain overwrites the literal entry for the key.
	Plain RouteKind = iota
	// Passthrough stores the key verbatim, bypassing every other rule.
	Passthrough
	// Nested forwards the remainder of a dotted key to a child set.
	Nested
	// Modifier records a conditional token (base:token) on a base key.
	Modifier
	// AppendMarker records tokens to append to the base value ("& a b").
	AppendMarker
	// PrependMarker records tokens to prepend to the base value ("a b &").
	PrependMarker
)

func (k RouteKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Passthrough:
		return "passthrough"
	case Nested:
		return "nested"
	case Modifier:
		return "modifier"
	case AppendMarker:
		return "append"
	case PrependMarker:
		return "prepend"
	default:
		return "unknown"
	}
}

// Route is the classification of one assignment.
//
// Key is the key the route writes to: the literal key for Plain and
// Passthrough, the group name for Nested and the base key for the modifier
// kinds. Rest is the remaining dotted path for Nested, Token the modifier
// token, and Tokens the marker tokens.
type Route struct {
	Kind   RouteKind
	Key    string
	Rest   string
	Token  string
	Tokens []string
}

// DefaultPassthrough lists key prefixes of client-side framework attributes
// (Alpine, Vue, htmx) that are stored verbatim.
var DefaultPassthrough = []string{
	"@", ":", "#",
	"x-on:", "x-bind:", "x-model", "x-transition",
	"v-on:", "v-bind:", "v-model", "v-slot:",
	"hx-on:", "hx-on::",
}

const (
	DefaultAppendMarker  = "&"
	DefaultPrependMarker = "&"
)

type options struct {
	passthrough   []string
	appendMarker  string
	prependMarker string
}

func defaultOptions() *options {
	return &options{
		passthrough:   DefaultPassthrough,
		appendMarker:  DefaultAppendMarker,
		prependMarker: DefaultPrependMarker,
	}
}

// Option configures a Set.
type Option func(*options)

// WithPassthrough replaces the passthrough prefix allow-list.
func WithPassthrough(prefixes ...string) Option {
	return func(o *options) {
		o.passthrough = append([]string(nil), prefixes...)
	}
}

// WithMarkers sets the append and prepend markers. Empty values keep the
// defaults.
func WithMarkers(appendMarker, prependMarker string) Option {
	return func(o *options) {
		if appendMarker != "" {
			o.appendMarker = appendMarker
		}
		if prependMarker != "" {
			o.prependMarker = prependMarker
		}
	}
}

// Classify routes an assignment using the default options.
func Classify(key string, value any) Route {
	return classify(defaultOptions(), key, value)
}

func classify(o *options, key string, value any) Route {
	for _, prefix := range o.passthrough {
		if prefix != "" && strings.HasPrefix(key, prefix) {
			return Route{Kind: Passthrough, Key: key}
		}
	}

	if i := strings.IndexByte(key, '.'); i > 0 && i < len(key)-1 {
		return Route{Kind: Nested, Key: key[:i], Rest: key[i+1:]}
	}

	if i := strings.IndexByte(key, ':'); i > 0 && i < len(key)-1 {
		return Route{Kind: Modifier, Key: key[:i], Token: key[i+1:]}
	}

	if s, ok := value.(string); ok {
		// A marker with no tokens is an ordinary value.
		if rest, found := strings.CutPrefix(s, o.appendMarker+" "); found && strings.TrimSpace(rest) != "" {
			return Route{Kind: AppendMarker, Key: key, Tokens: strings.Fields(rest)}
		}
		if rest, found := strings.CutSuffix(s, " "+o.prependMarker); found && strings.TrimSpace(rest) != "" {
			return Route{Kind: PrependMarker, Key: key, Tokens: strings.Fields(rest)}
		}
	}

	return Route{Kind: Plain, Key: key}
}

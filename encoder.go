package hxprops

import (
	"github.com/pthm/hxprops/lib/encoding"
)

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// Call is the content of a re-render token.
type Call = encoding.Call

// NewEncoder creates a new encoder with the given key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

func toPairs(assigns []Assignment) []encoding.Pair {
	out := make([]encoding.Pair, len(assigns))
	for i, a := range assigns {
		out[i] = encoding.Pair{Key: a.Key, Value: a.Value}
	}
	return out
}

func fromPairs(pairs []encoding.Pair) []Assignment {
	out := make([]Assignment, len(pairs))
	for i, p := range pairs {
		out[i] = Assignment{Key: p.Key, Value: p.Value}
	}
	return out
}

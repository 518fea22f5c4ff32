package hxprops

import (
	"fmt"

	"github.com/pthm/hxprops/lib/coerce"
)

// Assignment is one call-site key/value pair. Order matters: later
// assignments of the same key win, and unmatched keys reach the attribute
// set in call order.
type Assignment = coerce.Assignment

// Attr builds an Assignment.
func Attr(key string, value any) Assignment {
	return Assignment{Key: key, Value: value}
}

// Bind copies values[key] into dst. A missing or nil value leaves dst at
// its zero value. Generated LoadBindings methods call this for every plain
// field.
func Bind[T any](values map[string]any, key string, dst *T) error {
	v, ok := values[key]
	if !ok || v == nil {
		var zero T
		*dst = zero
		return nil
	}
	t, ok := v.(T)
	if !ok {
		return bindError(key, v, dst)
	}
	*dst = t
	return nil
}

// BindOptional binds an optional field: nil stays nil.
func BindOptional[T any](values map[string]any, key string, dst **T) error {
	v, ok := values[key]
	if !ok || v == nil {
		*dst = nil
		return nil
	}
	t, ok := v.(T)
	if !ok {
		return bindError(key, v, *dst)
	}
	*dst = &t
	return nil
}

// BindList binds a list field element by element.
func BindList[T any](values map[string]any, key string, dst *[]T) error {
	v, ok := values[key]
	if !ok || v == nil {
		*dst = nil
		return nil
	}
	if typed, ok := v.([]T); ok {
		*dst = typed
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return bindError(key, v, dst)
	}
	out := make([]T, len(items))
	for i, item := range items {
		t, ok := item.(T)
		if !ok {
			return fmt.Errorf("%w: %s: item %d: cannot bind %T to %T", ErrTypeCoercion, key, i, item, t)
		}
		out[i] = t
	}
	*dst = out
	return nil
}

func bindError(key string, v, dst any) error {
	return fmt.Errorf("%w: %s: cannot bind %T to %T", ErrTypeCoercion, key, v, dst)
}

package hxprops

import (
	"github.com/a-h/templ"

	"github.com/pthm/hxprops/lib/attrs"
)

// Action builds the hx-* attributes that re-render a call site.
//
// Attrs spreads them onto an element in a templ template; Assignments passes
// them to another component, whose attribute set receives them like any
// other unmatched call-site attribute:
//
//	<button { reg.Refresh("stats", attrs).Target("#stats").OnEvent("saved").Attrs()... }>
//	@reg.Instantiate("button", reg.Refresh("stats", attrs).Assignments(), "Reload")
type Action struct {
	url     string
	err     error
	target  string
	swap    SwapMode
	trigger string
	confirm string
}

// Refresh returns an action that GETs the re-render URL for a call site.
// When no token can be built the action renders no attributes and Err
// reports why.
func (reg *Registry) Refresh(name string, assigns []Assignment) *Action {
	u, err := reg.URL(name, assigns)
	return &Action{url: u, err: err}
}

// Target sets hx-target.
func (a *Action) Target(selector string) *Action {
	a.target = selector
	return a
}

// Swap sets hx-swap.
func (a *Action) Swap(mode SwapMode) *Action {
	a.swap = mode
	return a
}

// Trigger sets hx-trigger verbatim.
func (a *Action) Trigger(trigger string) *Action {
	a.trigger = trigger
	return a
}

// OnEvent triggers the action when event fires anywhere on the page.
func (a *Action) OnEvent(event string) *Action {
	a.trigger = event + " from:body"
	return a
}

// Confirm sets hx-confirm.
func (a *Action) Confirm(message string) *Action {
	a.confirm = message
	return a
}

// URL returns the re-render URL.
func (a *Action) URL() string { return a.url }

// Err returns the error from building the URL, if any.
func (a *Action) Err() error { return a.err }

// Assignments returns the hx-* attributes in a fixed order.
func (a *Action) Assignments() []Assignment {
	if a.err != nil {
		return nil
	}
	out := []Assignment{{Key: "hx-get", Value: a.url}}
	add := func(key, value string) {
		if value != "" {
			out = append(out, Assignment{Key: key, Value: value})
		}
	}
	add("hx-target", a.target)
	add("hx-swap", string(a.swap))
	add("hx-trigger", a.trigger)
	add("hx-confirm", a.confirm)
	return out
}

// Attrs returns the attributes for templ spreading.
func (a *Action) Attrs() templ.Attributes {
	set := attrs.New()
	for _, as := range a.Assignments() {
		set.Set(as.Key, as.Value)
	}
	return set.Attributes()
}

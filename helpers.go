package hxprops

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    hxprops.Render(w, r, reg.Instantiate("card", attrs, ""))
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// ParseAssignment parses "key=value" into an Assignment with a string
// value. A bare "key" is a boolean attribute and gets the value true.
//
//	hxprops.ParseAssignment("size=3")      // {size "3"}
//	hxprops.ParseAssignment("disabled")    // {disabled true}
//	hxprops.ParseAssignment(`title="a b"`) // {title "a b"}
func ParseAssignment(s string) (Assignment, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return Assignment{}, fmt.Errorf("hxprops: empty attribute name in %q", s)
	}
	if !ok {
		return Assignment{Key: key, Value: true}, nil
	}
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return Assignment{Key: key, Value: value}, nil
}

// ParseAssignments parses each of args with ParseAssignment, keeping order.
func ParseAssignments(args []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(args))
	for _, a := range args {
		assign, err := ParseAssignment(a)
		if err != nil {
			return nil, err
		}
		out = append(out, assign)
	}
	return out, nil
}

// QueryAssignments turns form or query values into assignments, sorted by
// key; repeated keys keep their order. Use it to pass an HTMX request's
// parameters to a component.
func QueryAssignments(values url.Values) []Assignment {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []Assignment
	for _, k := range keys {
		for _, v := range values[k] {
			out = append(out, Assignment{Key: k, Value: v})
		}
	}
	return out
}

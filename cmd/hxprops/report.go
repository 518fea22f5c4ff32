package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pthm/hxprops"
	"github.com/pthm/hxprops/lib/attrs"
	"github.com/pthm/hxprops/lib/paramspec"
	"github.com/pthm/hxprops/lib/slots"
)

var styles = struct {
	ok, err, dim, key, hint lipgloss.Style
}{
	ok:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	err:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	key:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	hint: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
}

// reportSpecs prints one line per template that parsed.
func reportSpecs(w io.Writer, name string, specs *paramspec.List) {
	fmt.Fprintf(w, "%s %s %s\n", styles.ok.Render("ok"), name,
		styles.dim.Render(fmt.Sprintf("(%d params)", specs.Len())))
}

// reportError prints an engine error with field details and suggestions.
func reportError(w io.Writer, name string, err error) {
	fmt.Fprintf(w, "%s %s\n", styles.err.Render("FAIL"), name)

	var se *hxprops.SyntaxError
	if errors.As(err, &se) {
		for _, line := range strings.Split(se.Error(), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		return
	}
	if errs := hxprops.FieldErrors(err); errs != nil {
		for _, fe := range errs {
			fmt.Fprintf(w, "    %s %s %s\n", styles.key.Render(fe.Field), styles.dim.Render("["+string(fe.Kind)+"]"), fe.Message)
			if fe.Suggestion != "" {
				fmt.Fprintf(w, "      %s\n", styles.hint.Render(fmt.Sprintf("did you mean %q?", fe.Suggestion)))
			}
		}
		return
	}
	fmt.Fprintf(w, "    %v\n", err)
}

// reportResolution prints a resolved scope.
func reportResolution(w io.Writer, res *hxprops.Resolution) {
	section := func(title string) {
		fmt.Fprintln(w, styles.ok.Render(title))
	}

	section("values")
	for _, k := range sortedKeys(res.Values) {
		fmt.Fprintf(w, "  %s = %#v\n", styles.key.Render(k), res.Values[k])
	}

	if len(res.Flags) > 0 {
		section("flags")
		for _, k := range sortedKeys(res.Flags) {
			fmt.Fprintf(w, "  %s\n", styles.key.Render(k))
		}
	}

	if !res.Attrs.Empty() {
		section("attrs")
		printAttrs(w, res.Attrs, "  ")
	}

	if !res.Slots.Default.Empty() || len(res.Slots.Order) > 0 {
		section("contents")
		printRun(w, "default", res.Slots.Default)
		for _, name := range res.Slots.Order {
			printRun(w, name, res.Slots.Named[name])
		}
	}
}

func printAttrs(w io.Writer, set *attrs.Set, indent string) {
	for _, p := range set.ResolveAll() {
		fmt.Fprintf(w, "%s%s = %#v\n", indent, styles.key.Render(p.Key), p.Value)
	}
	for _, g := range set.Groups() {
		fmt.Fprintf(w, "%s%s.\n", indent, styles.key.Render(g))
		printAttrs(w, set.Nested(g), indent+"  ")
	}
}

func printRun(w io.Writer, name string, r slots.Run) {
	fmt.Fprintf(w, "  %s %q\n", styles.key.Render(name+":"), r.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var stdout io.Writer = os.Stdout

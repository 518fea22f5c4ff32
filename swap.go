package hxprops

// SwapMode defines HTMX swap strategies for how a re-rendered component
// replaces its target.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

const (
	// SwapOuter replaces the entire element including its tag. This is
	// the default.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces only the element's contents.
	SwapInner SwapMode = "innerHTML"

	SwapBeforeEnd   SwapMode = "beforeend"
	SwapAfterEnd    SwapMode = "afterend"
	SwapBeforeBegin SwapMode = "beforebegin"
	SwapAfterBegin  SwapMode = "afterbegin"

	// SwapNone discards the response.
	SwapNone SwapMode = "none"
)

package hxcmp

// SwapMode defines HTMX swap strategies for how response HTML replaces the target.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

const (
	// SwapOuter replaces the entire element including its tag (outerHTML).
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces only the element's contents (innerHTML).
	SwapInner SwapMode = "innerHTML"

	// SwapNone performs no swap - response is discarded.
	// Sent as HX-Reswap when a request must not touch the page.
	SwapNone SwapMode = "none"
)

// String returns the hx-swap attribute value.
func (m SwapMode) String() string {
	return string(m)
}

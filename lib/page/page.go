// Package page provides the document-query capability the extraction
// states run against: a queryable view of one rendered page with a scroll
// position and click dispatch.
package page

import "github.com/PuerkitoBio/goquery"

// View is one live page. Implementations range from a statically fetched
// document to a driven browser session; the extraction states only ever go
// through this surface.
type View interface {
	// Find runs a CSS selector against the current document.
	Find(selector string) *goquery.Selection
	// ViewportHeight is the visible height in pixels.
	ViewportHeight() float64
	// ScrollTop is the current scroll offset in pixels.
	ScrollTop() float64
	// ScrollBy moves the scroll offset by the given delta in pixels.
	ScrollBy(px float64)
	// Click dispatches a click on the first node of sel. Returns false
	// when the view cannot interact with the node.
	Click(sel *goquery.Selection) bool
}

// Package domain contains core business entities and rules.
package domain

// Quote represents a quotation shown on the slot machine.
// Text is the unique key within a loaded collection.
type Quote struct {
	// Text is the body of the quote.
	Text string

	// Author is who said or wrote the quote.
	Author string

	// ImageURL is an optional background image for the quote.
	ImageURL string
}

// SameAs reports whether two quotes share the same key.
func (q Quote) SameAs(other Quote) bool {
	return q.Text == other.Text
}

// QuoteConfig is the quote configuration loaded once at startup.
type QuoteConfig struct {
	// PinnedText, when it matches a quote, forces that quote to be selected.
	PinnedText string

	// Quotes is the collection in insertion order.
	Quotes []Quote
}

// IndexOf returns the position of the quote whose text matches, or -1.
func IndexOf(quotes []Quote, text string) int {
	for i := range quotes {
		if quotes[i].Text == text {
			return i
		}
	}

	return -1
}

// Package search holds the free-text filter sent to the backend test queries.
//
// The text is kept verbatim: no trimming, no minimum length and no client-side
// matching. Matching semantics belong to the backend.
package search

import "net/url"

// Param is the query parameter carrying the filter.
const Param = "search"

// Query is a single free-text filter. The zero value is "no filter".
type Query struct {
	text string
}

func New(text string) Query {
	return Query{text: text}
}

// Set replaces the text, verbatim.
func (q *Query) Set(text string) {
	q.text = text
}

func (q Query) Text() string { return q.text }

// Filter returns the text to send and whether a filter should be sent at all.
// An empty text means "no filter".
func (q Query) Filter() (string, bool) {
	return q.text, q.text != ""
}

// Encode adds the filter to v, omitting the parameter when there is no filter.
func (q Query) Encode(v url.Values) {
	if text, ok := q.Filter(); ok {
		v.Set(Param, text)
	}
}

// FromValues reads a Query from v; an absent or empty parameter yields no filter.
func FromValues(v url.Values) Query {
	return New(v.Get(Param))
}

// Package html turns fetched HTML context into markdown before it is
// chunked. Pages are parsed with goquery, noise elements are dropped and
// the remainder is converted with html-to-markdown. Conversion failures
// fall back to plain tag stripping.
package html

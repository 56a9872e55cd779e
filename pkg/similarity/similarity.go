// Package similarity measures how alike two short texts are.
//
// The measure is the Ratcliff/Obershelp matching-block ratio 2*M/T computed
// over Unicode code points, where M is the number of matched elements and T
// the combined length. It is evaluated in both argument orders and the larger
// value is reported, so Ratio(a, b) == Ratio(b, a).
package similarity

import (
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// Text is a pre-tokenized string that can be compared repeatedly.
type Text struct {
	raw    string
	tokens []string
	counts map[string]int
}

// Prepare normalizes s to NFC and splits it into code points.
func Prepare(s string) Text {
	normalized := norm.NFC.String(s)

	tokens := make([]string, 0, len(normalized))
	counts := make(map[string]int)

	for _, r := range normalized {
		tok := string(r)
		tokens = append(tokens, tok)
		counts[tok]++
	}

	return Text{raw: s, tokens: tokens, counts: counts}
}

// String returns the original text.
func (t Text) String() string {
	return t.raw
}

// Len returns the number of code points after normalization.
func (t Text) Len() int {
	return len(t.tokens)
}

// Ratio returns the similarity of a and b in [0, 1].
func Ratio(a, b string) float64 {
	return RatioText(Prepare(a), Prepare(b))
}

// RatioText is Ratio for prepared texts.
func RatioText(a, b Text) float64 {
	if a.Len() == 0 && b.Len() == 0 {
		return 1.0
	}

	forward := difflib.NewMatcher(a.tokens, b.tokens).Ratio()
	backward := difflib.NewMatcher(b.tokens, a.tokens).Ratio()

	if backward > forward {
		return backward
	}

	return forward
}

// Exceeds reports whether RatioText(a, b) > threshold, skipping the full
// comparison when an upper bound already rules it out.
func Exceeds(a, b Text, threshold float64) bool {
	if upperBoundByLength(a, b) <= threshold {
		return false
	}

	if upperBoundByCounts(a, b) <= threshold {
		return false
	}

	return RatioText(a, b) > threshold
}

// upperBoundByLength bounds the ratio using only the lengths.
func upperBoundByLength(a, b Text) float64 {
	la, lb := a.Len(), b.Len()
	if la+lb == 0 {
		return 1.0
	}

	return 2.0 * float64(min(la, lb)) / float64(la+lb)
}

// upperBoundByCounts bounds the ratio by the multiset intersection of code points.
func upperBoundByCounts(a, b Text) float64 {
	total := a.Len() + b.Len()
	if total == 0 {
		return 1.0
	}

	small, large := a.counts, b.counts
	if len(small) > len(large) {
		small, large = large, small
	}

	matches := 0
	for tok, n := range small {
		matches += min(n, large[tok])
	}

	return 2.0 * float64(matches) / float64(total)
}

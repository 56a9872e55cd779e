package utils

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Ellipsis follows every description preview.
const Ellipsis = "..."

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// StripMarkup reduces an HTML fragment such as "<b>코스피</b> &quot;급등&quot;"
// to its plain text. Unparseable input is returned with entities decoded.
func (s *StringHelper) StripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + fragment + "</body>"))
	if err != nil {
		return html.UnescapeString(fragment)
	}

	return s.NormalizeWhitespace(doc.Find("body").Text())
}

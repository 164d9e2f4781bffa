// Package htmltext turns stored HTML fragments into plain display text.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strip removes markup from s and collapses whitespace. Input that cannot be
// parsed is returned trimmed.
func Strip(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

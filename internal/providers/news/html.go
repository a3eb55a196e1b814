package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanHTML strips markup from feed text. Some feeds wrap titles and
// descriptions in HTML fragments.
func cleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

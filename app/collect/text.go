package collect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText returns the visible text of an HTML fragment with whitespace
// collapsed. Input that is not HTML passes through with whitespace collapsed.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}

	doc.Find("script, style, noscript").Remove()

	// Block boundaries would otherwise glue adjacent words together.
	doc.Find("p, br, li, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

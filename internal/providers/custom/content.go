package custom

import (
	"github.com/PuerkitoBio/goquery"
)

// ExtractContent returns the reader-ready inner markup of a chapter.
// The first matching selector among primary and fallbacks wins, unwanted
// nodes are removed in order and media URLs are made absolute.
func ExtractContent(doc *goquery.Document, sel *ContentSelectors, baseURL string) string {
	node := locateContent(doc, sel)
	if node == nil {
		return ""
	}

	for _, rs := range sel.RemoveSelectors {
		if blank(rs) {
			continue
		}
		node.Find(rs).Remove()
	}

	base := documentBase(doc, baseURL)
	node.Find("img, video, audio, source").Each(func(_ int, m *goquery.Selection) {
		for _, a := range mediaAttrs {
			if _, ok := m.Attr(a); !ok {
				continue
			}
			if abs := absAttr(m, a, base); abs != "" {
				m.SetAttr(a, abs)
			}
		}
	})

	html, err := node.Html()
	if err != nil {
		return ""
	}

	return html
}

func locateContent(doc *goquery.Document, sel *ContentSelectors) *goquery.Selection {
	if doc == nil || sel == nil || blank(sel.Primary) {
		return nil
	}

	if node := selectFirst(doc.Selection, sel.Primary); node != nil {
		return node
	}

	for _, fb := range sel.Fallbacks {
		if node := selectFirst(doc.Selection, fb); node != nil {
			return node
		}
	}

	return nil
}

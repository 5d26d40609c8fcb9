package custom

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/srcforge/internal/providers"
)

// ExtractList turns a listing document into summary items in document
// order. Nodes without a resolvable link or title are dropped.
func ExtractList(doc *goquery.Document, sel *MangaListSelectors, baseURL string) providers.MangasPage {
	if doc == nil || sel == nil || blank(sel.List) {
		return providers.MangasPage{Mangas: []providers.Manga{}}
	}

	base := documentBase(doc, baseURL)
	items := []providers.Manga{}

	doc.Find(sel.List).Each(func(_ int, node *goquery.Selection) {
		if m, ok := extractListItem(node, sel, base, baseURL); ok {
			items = append(items, m)
		}
	})

	hasNext := len(items) > 0
	if !blank(sel.NextPage) {
		hasNext = selectFirst(doc.Selection, sel.NextPage) != nil
	}

	return providers.MangasPage{Mangas: items, HasNextPage: hasNext}
}

func extractListItem(node *goquery.Selection, sel *MangaListSelectors, base *url.URL, baseURL string) (m providers.Manga, ok bool) {
	defer func() {
		if recover() != nil {
			m, ok = providers.Manga{}, false
		}
	}()

	link := findLink(node, sel.Link)
	href := absAttr(link, "href", base)
	if href == "" {
		return providers.Manga{}, false
	}

	title := firstOf(
		func() string { return selectText(node, sel.Title) },
		func() string { return attr(link, "title") },
		func() string { return normalizeSpace(link.Text()) },
	)
	if title == "" {
		return providers.Manga{}, false
	}

	return providers.Manga{
		URL:          relativize(href, baseURL),
		Title:        title,
		ThumbnailURL: selectAttr(node, sel.Cover, base, mediaAttrs...),
	}, true
}

// findLink tries the configured link selector, then a[href], then any a.
func findLink(node *goquery.Selection, selector string) *goquery.Selection {
	for _, s := range []string{selector, "a[href]", "a"} {
		if l := selectFirst(node, s); l != nil {
			return l
		}
	}

	return nil
}

package custom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/srcforge/internal/providers"
)

// ExtractDetails reads a detail page. Every field is optional; a missing
// or non-matching selector leaves the field empty.
func ExtractDetails(doc *goquery.Document, sel *DetailSelectors, baseURL string) providers.Manga {
	if doc == nil || sel == nil {
		return providers.Manga{}
	}

	root := doc.Selection
	base := documentBase(doc, baseURL)

	m := providers.Manga{
		Title:        selectText(root, sel.Title),
		Author:       selectText(root, sel.Author),
		Artist:       selectText(root, sel.Artist),
		Description:  selectText(root, sel.Description),
		Genre:        selectText(root, sel.Genre),
		ThumbnailURL: selectAttr(root, sel.Cover, base, mediaAttrs...),
		Status:       ParseStatus(selectText(root, sel.Status)),
	}

	if doc.Url != nil {
		m.URL = relativize(doc.Url.String(), baseURL)
	}

	return m
}

var statusKeywords = []struct {
	keyword string
	status  providers.Status
}{
	{"ongoing", providers.StatusOngoing},
	{"completed", providers.StatusCompleted},
	{"hiatus", providers.StatusOnHiatus},
	{"cancelled", providers.StatusCancelled},
}

// ParseStatus maps a free-form status string by case-insensitive
// substring, first keyword in priority order wins.
func ParseStatus(s string) providers.Status {
	s = strings.ToLower(s)
	for _, k := range statusKeywords {
		if strings.Contains(s, k.keyword) {
			return k.status
		}
	}

	return providers.StatusUnknown
}

package custom

import (
	"context"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/srcforge/internal/providers"
)

// ExtractChapters reads the chapter list for a detail document. When an
// AJAX template is configured and a novel id can be found, the list is
// parsed from the AJAX response instead. The reverse flag is applied
// here and nowhere else.
func (s *Source) ExtractChapters(ctx context.Context, doc *goquery.Document) ([]providers.Chapter, error) {
	target := doc

	if s.cfg.ChapterListAjaxTemplate != "" {
		if id := s.novelID(doc); id != "" {
			u := chapterListURL(s.cfg.ChapterListAjaxTemplate, s.cfg.BaseURL, id)
			s.log.Debugf("[%s] chapter list via ajax: %s\n", s.cfg.Name, u)

			ajaxDoc, err := s.fetch(ctx, Request{URL: u})
			if err != nil {
				return nil, err
			}
			target = ajaxDoc
		} else {
			s.log.Debugf("[%s] no novel id found, parsing the page itself\n", s.cfg.Name)
		}
	}

	chapters := ParseChapters(target, s.cfg.Selectors.Chapters, s.cfg.BaseURL, s.dates)
	if s.cfg.ReverseChapterOrder {
		slices.Reverse(chapters)
	}

	return chapters, nil
}

// chapterListURL fills the AJAX template verbatim. Unlike Expand it
// keeps a trailing slash.
func chapterListURL(template, baseURL, novelID string) string {
	return strings.NewReplacer("{baseUrl}", strings.TrimRight(baseURL, "/"), "{novelId}", novelID).Replace(template)
}

// novelID tries the id selector (attribute or text) and then the URL
// pattern against the page URL.
func (s *Source) novelID(doc *goquery.Document) string {
	return firstOf(
		func() string {
			el := selectFirst(doc.Selection, s.cfg.NovelIDSelector)
			if el == nil {
				return ""
			}
			if s.cfg.NovelIDAttribute != "" {
				return attr(el, s.cfg.NovelIDAttribute)
			}
			return el.Text()
		},
		func() string {
			if s.novelIDRe == nil || doc.Url == nil {
				return ""
			}
			m := s.novelIDRe.FindStringSubmatch(doc.Url.String())
			if len(m) < 2 {
				return ""
			}
			return m[1]
		},
	)
}

// ParseChapters extracts chapter stubs in document order. Nodes without
// a link or a name are dropped; unparseable dates become 0.
func ParseChapters(doc *goquery.Document, sel *ChapterSelectors, baseURL string, dates DateParser) []providers.Chapter {
	out := []providers.Chapter{}
	if doc == nil || sel == nil || blank(sel.List) {
		return out
	}

	base := documentBase(doc, baseURL)
	doc.Find(sel.List).Each(func(_ int, node *goquery.Selection) {
		if c, ok := parseChapter(node, sel, base, baseURL, dates); ok {
			out = append(out, c)
		}
	})

	return out
}

func parseChapter(node *goquery.Selection, sel *ChapterSelectors, base *url.URL, baseURL string, dates DateParser) (c providers.Chapter, ok bool) {
	defer func() {
		if recover() != nil {
			c, ok = providers.Chapter{}, false
		}
	}()

	link := findLink(node, sel.Link)
	href := absAttr(link, "href", base)
	if href == "" {
		return providers.Chapter{}, false
	}

	name := firstOf(
		func() string { return selectText(node, sel.Name) },
		func() string { return normalizeSpace(link.Text()) },
	)
	if name == "" {
		return providers.Chapter{}, false
	}

	return providers.Chapter{
		URL:        relativize(href, baseURL),
		Name:       name,
		DateUpload: timestamp(dates, selectText(node, sel.Date)),
		Number:     ChapterNumber(href, name),
	}, true
}

func compilePattern(p string) *regexp.Regexp {
	if p == "" {
		return nil
	}

	re, err := regexp.Compile(p)
	if err != nil {
		return nil
	}

	return re
}

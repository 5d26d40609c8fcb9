package custom

import (
	"net/url"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/srcforge/internal/providers"
)

var (
	reSizeSuffix    = regexp.MustCompile(`[-_]\d{2,5}x\d{2,5}`)
	reParseSize     = regexp.MustCompile(`[-_](\d{2,5})x(\d{2,5})`)
	reBackgroundURL = regexp.MustCompile(`url\((?:["']?)([^"')]+)(?:["']?)\)`)
)

var pageImageAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

func novelPages(chapter providers.Chapter, baseURL string) []providers.Page {
	return []providers.Page{{Index: 0, URL: absolutize(chapter.URL, baseURL)}}
}

// ImagePages lists the page images inside the content node. Size
// variants of the same image (name-300x450.jpg) collapse to the largest
// one, explicit data-index attributes win over document order.
func ImagePages(doc *goquery.Document, sel *ContentSelectors, baseURL string) []providers.Page {
	node := locateContent(doc, sel)
	if node == nil {
		return []providers.Page{}
	}

	c := newImageCollector(documentBase(doc, baseURL))
	c.scanImages(node)
	c.scanPictureSources(node)
	c.scanBackgrounds(node)

	urls := c.finalize()
	pages := make([]providers.Page, len(urls))
	for i, u := range urls {
		pages[i] = providers.Page{Index: i, ImageURL: u}
	}

	return pages
}

type pageImage struct {
	url   string
	index int // data-index, -1 if none
	order int
}

type imageCollector struct {
	base  *url.URL
	items []pageImage
	seen  map[string]bool
}

func newImageCollector(base *url.URL) *imageCollector {
	return &imageCollector{base: base, seen: map[string]bool{}}
}

func (c *imageCollector) add(raw string, idx int) {
	u := resolveURL(c.base, raw)
	if u == "" || strings.HasPrefix(strings.ToLower(u), "data:") || c.seen[u] {
		return
	}

	c.seen[u] = true
	c.items = append(c.items, pageImage{url: u, index: idx, order: len(c.items)})
}

func (c *imageCollector) addSrcset(srcset string, idx int) {
	for candidate := range strings.SplitSeq(srcset, ",") {
		if parts := strings.Fields(candidate); len(parts) > 0 {
			c.add(parts[0], idx)
		}
	}
}

func (c *imageCollector) scanImages(root *goquery.Selection) {
	root.Find("img").AddSelection(root.Filter("img")).Each(func(_ int, img *goquery.Selection) {
		idx := dataIndex(img)
		if ss := attr(img, "srcset"); ss != "" {
			c.addSrcset(ss, idx)
		}
		for _, a := range pageImageAttrs {
			if v := attr(img, a); v != "" {
				c.add(v, idx)
			}
		}
	})
}

func (c *imageCollector) scanPictureSources(root *goquery.Selection) {
	root.Find("picture source[srcset]").Each(func(_ int, src *goquery.Selection) {
		c.addSrcset(attr(src, "srcset"), dataIndex(src))
	})
}

func (c *imageCollector) scanBackgrounds(root *goquery.Selection) {
	root.Find("[style]").Each(func(_ int, el *goquery.Selection) {
		style := attr(el, "style")
		if !strings.Contains(strings.ToLower(style), "background-image") {
			return
		}
		for _, m := range reBackgroundURL.FindAllStringSubmatch(style, -1) {
			c.add(m[1], dataIndex(el))
		}
	})
}

// finalize collapses size variants and orders the result.
func (c *imageCollector) finalize() []string {
	type group struct {
		best  pageImage
		index int
		order int
	}

	var keys []string
	groups := map[string]*group{}
	for _, it := range c.items {
		key := sizeBase(it.url)
		g, ok := groups[key]
		if !ok {
			g = &group{best: it, index: it.index, order: it.order}
			groups[key] = g
			keys = append(keys, key)
			continue
		}

		if betterImage(it, g.best) {
			g.best = it
		}
		if it.index >= 0 && (g.index < 0 || it.index < g.index) {
			g.index = it.index
		}
	}

	chosen := make([]*group, 0, len(keys))
	for _, k := range keys {
		chosen = append(chosen, groups[k])
	}

	slices.SortStableFunc(chosen, func(a, b *group) int {
		switch {
		case a.index >= 0 && b.index >= 0 && a.index != b.index:
			return a.index - b.index
		case a.index >= 0 && b.index < 0:
			return -1
		case a.index < 0 && b.index >= 0:
			return 1
		}
		return a.order - b.order
	})

	out := make([]string, len(chosen))
	for i, g := range chosen {
		out[i] = g.best.url
	}

	return out
}

// betterImage prefers the unsuffixed original, then the larger variant.
func betterImage(a, b pageImage) bool {
	aSized, bSized := reSizeSuffix.MatchString(a.url), reSizeSuffix.MatchString(b.url)
	switch {
	case !aSized && bSized:
		return true
	case aSized && !bSized:
		return false
	case !aSized && !bSized:
		return false
	}

	aw, ah := imageSize(a.url)
	bw, bh := imageSize(b.url)

	return aw*ah > bw*bh
}

func sizeBase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	ext := path.Ext(u.Path)
	p := strings.TrimSuffix(u.Path, ext)
	p = strings.TrimRight(reSizeSuffix.ReplaceAllString(p, ""), "-_")

	return u.Host + p + ext
}

func imageSize(u string) (int, int) {
	m := reParseSize.FindStringSubmatch(u)
	if m == nil {
		return 0, 0
	}

	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])

	return w, h
}

func dataIndex(sel *goquery.Selection) int {
	v, ok := sel.Attr("data-index")
	if !ok {
		v, ok = sel.ParentsFiltered("[data-index]").First().Attr("data-index")
	}
	if !ok {
		return -1
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return -1
	}

	return n
}

package custom

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var mediaAttrs = []string{"src", "data-src", "data-lazy-src"}

// firstOf returns the first non-blank result, evaluating lazily.
func firstOf(tries ...func() string) string {
	for _, try := range tries {
		if v := strings.TrimSpace(try()); v != "" {
			return v
		}
	}

	return ""
}

// selectFirst never hands a blank selector to the selector engine. The
// root itself is a candidate, so a list item selected as the <a> works
// with a link selector of "a".
func selectFirst(root *goquery.Selection, selector string) *goquery.Selection {
	if root == nil || strings.TrimSpace(selector) == "" {
		return nil
	}

	if root.Is(selector) {
		return root.First()
	}

	s := root.Find(selector).First()
	if s.Length() == 0 {
		return nil
	}

	return s
}

func selectText(root *goquery.Selection, selector string) string {
	s := selectFirst(root, selector)
	if s == nil {
		return ""
	}

	return normalizeSpace(s.Text())
}

func attr(s *goquery.Selection, name string) string {
	if s == nil {
		return ""
	}

	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func absAttr(s *goquery.Selection, name string, base *url.URL) string {
	v := attr(s, name)
	if v == "" {
		return ""
	}

	return resolveURL(base, v)
}

// selectAttr tries each attribute on the first match, plain value first
// and resolved value second.
func selectAttr(root *goquery.Selection, selector string, base *url.URL, attrs ...string) string {
	s := selectFirst(root, selector)
	if s == nil {
		return ""
	}

	for _, a := range attrs {
		if v := firstOf(
			func() string { return attr(s, a) },
			func() string { return absAttr(s, a, base) },
		); v != "" {
			return v
		}
	}

	return ""
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() || base == nil {
		return u.String()
	}

	return base.ResolveReference(u).String()
}

// documentBase is the URL relative links in doc resolve against.
func documentBase(doc *goquery.Document, baseURL string) *url.URL {
	if doc != nil && doc.Url != nil {
		return doc.Url
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil
	}

	return u
}

// relativize strips the source base URL so stored URLs survive host
// migrations. URLs on other hosts, including hosts that merely start
// with the base host, are kept absolute.
func relativize(abs, baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	rest, ok := strings.CutPrefix(abs, base)
	if !ok || base == "" {
		return abs
	}
	if rest == "" || strings.ContainsAny(rest[:1], "/?#") {
		return rest
	}

	return abs
}

// absolutize is the inverse of relativize.
func absolutize(u, baseURL string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}

	return strings.TrimRight(baseURL, "/") + u
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

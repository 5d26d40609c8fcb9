package custom

import (
	"net/url"
	"strconv"
	"strings"
)

const pagePlaceholder = "{page}"

// glue that is dropped together with {page} on the first page
var pageGlue = []string{"?page=", "&page=", "/"}

// Expand fills a URL template. {baseUrl} and {novelId} are literal,
// {query} is percent-encoded. On page 1 every {page} written as
// /{page}, ?page={page} or &page={page} is removed along with its glue,
// so the first page maps to the site's root listing. Any other form
// (pg={page}, p={page}, list-{page}.html) is substituted literally, and
// one such form makes the whole template substitute. Trailing /, ? and
// & are trimmed from the result.
func Expand(template, baseURL string, page int, query, auxID string) string {
	u := strings.ReplaceAll(template, "{baseUrl}", baseURL)
	u = strings.ReplaceAll(u, "{query}", encodeQuery(query))
	u = strings.ReplaceAll(u, "{novelId}", auxID)

	if strings.Contains(u, pagePlaceholder) {
		if page == 1 && pageElidable(u) {
			u = elidePage(u)
		} else {
			u = strings.ReplaceAll(u, pagePlaceholder, strconv.Itoa(page))
		}
	}

	return strings.TrimRight(u, "/?&")
}

func pageElidable(u string) bool {
	rest := u
	for {
		i := strings.Index(rest, pagePlaceholder)
		if i < 0 {
			return true
		}
		if glueBefore(rest[:i]) == "" {
			return false
		}
		rest = rest[i+len(pagePlaceholder):]
	}
}

func elidePage(u string) string {
	var b strings.Builder
	rest := u
	for {
		i := strings.Index(rest, pagePlaceholder)
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}

		head := rest[:i]
		g := glueBefore(head)
		b.WriteString(strings.TrimSuffix(head, g))
		rest = rest[i+len(pagePlaceholder):]

		// ?page={page}&sort=new keeps a valid query start
		if g == "?page=" && strings.HasPrefix(rest, "&") {
			rest = "?" + rest[1:]
		}
	}
}

func glueBefore(s string) string {
	for _, g := range pageGlue {
		if strings.HasSuffix(s, g) {
			return g
		}
	}

	return ""
}

func encodeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}

package detect

import (
	"net/url"
	"strings"
)

var (
	searchParams = []string{"s", "q", "query", "keyword", "search", "k", "term"}
	searchPaths  = []string{"/search/", "/s/", "/find/"}
)

// DetectSearchURL turns the URL of a results page into a search
// template. The keyword found in the URL is returned so the caller can
// confirm it matches what was typed. Pages on another host never match.
func DetectSearchURL(pageURL, baseURL string) (template, keyword string, ok bool) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	if b, err := url.Parse(strings.TrimRight(baseURL, "/")); err == nil && b.Host != "" {
		if !strings.EqualFold(b.Host, u.Host) {
			return "", "", false
		}
	}

	if raw, kw, found := templateFromQuery(u.RawQuery); found {
		u.RawQuery = raw
		return withBase(u.String(), baseURL), kw, true
	}

	if path, kw, found := templateFromPath(u.EscapedPath()); found {
		return withBase(strings.Replace(u.String(), u.EscapedPath(), path, 1), baseURL), kw, true
	}

	return "", "", false
}

func templateFromQuery(rawQuery string) (string, string, bool) {
	pairs := strings.Split(rawQuery, "&")
	for _, name := range searchParams {
		for i, pair := range pairs {
			key, value, _ := strings.Cut(pair, "=")
			if key != name {
				continue
			}
			kw, err := url.QueryUnescape(value)
			if err != nil || strings.TrimSpace(kw) == "" {
				continue
			}

			pairs[i] = key + "={query}"
			return strings.Join(pairs, "&"), kw, true
		}
	}

	return "", "", false
}

func templateFromPath(path string) (string, string, bool) {
	for _, prefix := range searchPaths {
		i := strings.Index(path, prefix)
		if i < 0 {
			continue
		}

		rest := path[i+len(prefix):]
		seg, tail, _ := strings.Cut(rest, "/")
		kw, err := url.PathUnescape(seg)
		if err != nil || strings.TrimSpace(kw) == "" {
			continue
		}

		out := path[:i+len(prefix)] + "{query}"
		if len(rest) > len(seg) {
			out += "/" + tail
		}

		return out, kw, true
	}

	return "", "", false
}

// withBase swaps a leading base URL for the {baseUrl} placeholder.
func withBase(template, baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && strings.HasPrefix(template, base) {
		return "{baseUrl}" + template[len(base):]
	}

	return template
}

package custom

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reNameChapter = regexp.MustCompile(`(?i)(?:vol(?:ume)?[_\-\s.]*\d+[_\-\s.]*)?(?:chapter|chap|ch|episode|ep)[_\-\s.]*0*(\d+)(?:[.\-](\d+))?`)
	reHrefChapter = regexp.MustCompile(`(?i)(?:chapter|chap|ch|episode|ep)[_\-]?0*(\d+)(?:[_\-.](\d+))?(?:$|[/_\-.?#])`)
	reHrefVolume  = regexp.MustCompile(`(?i)vol(?:ume)?[_\-]?\d+[/_\-]ch(?:apter)?[_\-]?0*(\d+)(?:\.(\d+))?`)
	reNamePrefix  = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*[.:\-\s]`)
	reHrefTrail   = regexp.MustCompile(`/(\d+(?:\.\d+)?)/?$`)
)

// ChapterNumber guesses the chapter number from the chapter name first
// and the link second. It returns -1 when nothing looks like a number.
func ChapterNumber(href, name string) float64 {
	if n, ok := matchNumber(reNameChapter, name); ok {
		return n
	}
	if m := reNamePrefix.FindStringSubmatch(name); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			return n
		}
	}

	h := strings.ToLower(href)
	if n, ok := matchNumber(reHrefVolume, h); ok {
		return n
	}
	if n, ok := matchNumber(reHrefChapter, h); ok {
		return n
	}
	if m := reHrefTrail.FindStringSubmatch(h); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			return n
		}
	}

	return -1
}

// matchNumber reads "main" and optional "sub" groups as main.sub.
func matchNumber(re *regexp.Regexp, s string) (float64, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	num := m[1]
	if len(m) > 2 && m[2] != "" {
		num += "." + m[2]
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

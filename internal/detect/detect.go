// Package detect recognises common novel-site themes from a page's HTML
// and suggests starting selectors for a new source config.
package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Framework identifies a site theme.
type Framework string

const (
	Custom        Framework = "custom"
	Madara        Framework = "madara"
	LightNovelWP  Framework = "lightnovelwp"
	ReadNovelFull Framework = "readnovelfull"
	ReadWN        Framework = "readwn"
)

// Frameworks lists every known theme in detection priority order.
var Frameworks = []Framework{Madara, LightNovelWP, ReadNovelFull, ReadWN}

func (f Framework) DisplayName() string {
	switch f {
	case Madara:
		return "Madara"
	case LightNovelWP:
		return "LightNovel WP"
	case ReadNovelFull:
		return "ReadNovelFull"
	case ReadWN:
		return "ReadWN"
	default:
		return "Custom"
	}
}

// markers are DOM fingerprints; each one found adds a point.
var markers = map[Framework][]string{
	Madara: {
		"link[href*='/themes/madara']",
		"body.wp-manga-template",
		"li.wp-manga-chapter",
		"#manga-chapters-holder",
		"div.page-item-detail",
		"div.c-blog__heading",
	},
	LightNovelWP: {
		"link[href*='/themes/lightnovel']",
		"div.eplister",
		"div.bsx",
		"div.listupd",
		"div.epcontent",
	},
	ReadNovelFull: {
		"#list-chapter",
		"div.list-novel",
		"#rating[data-novel-id]",
		"div.col-novel-main",
		"#chr-content",
	},
	ReadWN: {
		"li.novel-item",
		"ul.chapter-list",
		"#chpagedlist",
		"div.novel-list",
		"div.chapter-content",
	},
}

// Detect classifies a page. The framework with the most matching markers
// wins; ties go to the earlier entry in Frameworks. Custom means nothing
// matched.
func Detect(html string) Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Custom
	}

	best, bestScore := Custom, 0
	for _, fw := range Frameworks {
		score := 0
		for _, sel := range markers[fw] {
			if doc.Find(sel).Length() > 0 {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = fw, score
		}
	}

	return best
}

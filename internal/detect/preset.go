package detect

import (
	"github.com/brogergvhs/srcforge/internal/providers/custom"
)

// Preset is a starting point for a config on a known theme. Users are
// expected to verify every selector with the self-test.
type Preset struct {
	Framework Framework

	PopularURLTemplate string
	LatestURLTemplate  string
	SearchURLTemplate  string
	UsesPostForSearch  bool

	ReverseChapterOrder     bool
	ChapterListAjaxTemplate string
	NovelIDSelector         string
	NovelIDAttribute        string

	DateFormats []string
	Selectors   custom.SelectorGroups
}

var presets = map[Framework]Preset{
	Madara: {
		PopularURLTemplate:      "{baseUrl}/novel/page/{page}/?m_orderby=views",
		LatestURLTemplate:       "{baseUrl}/novel/page/{page}/?m_orderby=latest",
		SearchURLTemplate:       "{baseUrl}/page/{page}/?s={query}&post_type=wp-manga",
		ReverseChapterOrder:     true,
		ChapterListAjaxTemplate: "{baseUrl}/wp-admin/admin-ajax.php?action=manga_get_chapters&manga={novelId}",
		NovelIDSelector:         "#manga-chapters-holder",
		NovelIDAttribute:        "data-id",
		DateFormats:             []string{"January 2, 2006", "02/01/2006"},
		Selectors: custom.SelectorGroups{
			Popular: &custom.MangaListSelectors{
				List:     "div.page-item-detail",
				Link:     "div.post-title a",
				Title:    "div.post-title a",
				Cover:    "img",
				NextPage: "a.nextpostslink, div.nav-previous a",
			},
			Details: &custom.DetailSelectors{
				Title:       "div.post-title h1",
				Author:      "div.author-content a",
				Description: "div.summary__content",
				Genre:       "div.genres-content a",
				Status:      "div.post-status div.summary-content",
				Cover:       "div.summary_image img",
			},
			Chapters: &custom.ChapterSelectors{
				List: "li.wp-manga-chapter",
				Link: "a",
				Date: "span.chapter-release-date",
			},
			Content: &custom.ContentSelectors{
				Primary:         "div.text-left",
				Fallbacks:       []string{"div.reading-content", "div.entry-content"},
				RemoveSelectors: []string{"script", "div.code-block", "div.ads"},
			},
		},
	},
	LightNovelWP: {
		PopularURLTemplate:  "{baseUrl}/series/?page={page}&order=popular",
		LatestURLTemplate:   "{baseUrl}/series/?page={page}&order=update",
		SearchURLTemplate:   "{baseUrl}/page/{page}/?s={query}",
		ReverseChapterOrder: true,
		DateFormats:         []string{"January 2, 2006"},
		Selectors: custom.SelectorGroups{
			Popular: &custom.MangaListSelectors{
				List:     "div.bsx",
				Link:     "a",
				Title:    "a",
				Cover:    "img",
				NextPage: "a.r, a.next",
			},
			Details: &custom.DetailSelectors{
				Title:       "h1.entry-title",
				Author:      "div.spe span a",
				Description: "div.entry-content",
				Genre:       "div.genxed a",
				Status:      "div.sertostat span",
				Cover:       "div.thumb img",
			},
			Chapters: &custom.ChapterSelectors{
				List: "div.eplister li",
				Link: "a",
				Name: "div.epl-title",
				Date: "div.epl-date",
			},
			Content: &custom.ContentSelectors{
				Primary:         "div.epcontent",
				Fallbacks:       []string{"div.entry-content"},
				RemoveSelectors: []string{"script", "div.ads"},
			},
		},
	},
	ReadNovelFull: {
		PopularURLTemplate:      "{baseUrl}/novel-list/most-popular-novel?page={page}",
		LatestURLTemplate:       "{baseUrl}/novel-list/latest-release-novel?page={page}",
		SearchURLTemplate:       "{baseUrl}/novel-list/search?keyword={query}&page={page}",
		ChapterListAjaxTemplate: "{baseUrl}/ajax/chapter-archive?novelId={novelId}",
		NovelIDSelector:         "#rating",
		NovelIDAttribute:        "data-novel-id",
		Selectors: custom.SelectorGroups{
			Popular: &custom.MangaListSelectors{
				List:     "div.list-novel div.row",
				Link:     "h3.novel-title a",
				Title:    "h3.novel-title a",
				Cover:    "img.cover",
				NextPage: "li.next a",
			},
			Details: &custom.DetailSelectors{
				Title:       "h3.title",
				Author:      "ul.info a[href*='author']",
				Description: "div.desc-text",
				Genre:       "ul.info a[href*='genre']",
				Status:      "ul.info a[href*='status']",
				Cover:       "div.book img",
			},
			Chapters: &custom.ChapterSelectors{
				List: "ul.list-chapter li",
				Link: "a",
			},
			Content: &custom.ContentSelectors{
				Primary:         "#chr-content",
				Fallbacks:       []string{"#chapter-content"},
				RemoveSelectors: []string{"script", "div.ads"},
			},
		},
	},
	ReadWN: {
		PopularURLTemplate: "{baseUrl}/list/all/all-onclick-{page}.html",
		LatestURLTemplate:  "{baseUrl}/list/all/all-lastdotime-{page}.html",
		SearchURLTemplate:  "{baseUrl}/e/search/index.php?show=title&tempid=1&tbname=news&keyboard={query}",
		UsesPostForSearch:  true,
		Selectors: custom.SelectorGroups{
			Popular: &custom.MangaListSelectors{
				List:  "li.novel-item",
				Link:  "a",
				Title: "h4.novel-title",
				Cover: "img",
			},
			Details: &custom.DetailSelectors{
				Title:       "h1.novel-title",
				Author:      "span[itemprop='author']",
				Description: "div.summary div.content",
				Genre:       "div.categories a",
				Status:      "div.header-stats span:last-child strong",
				Cover:       "figure.cover img",
			},
			Chapters: &custom.ChapterSelectors{
				List: "ul.chapter-list li",
				Link: "a",
				Name: "strong.chapter-title",
				Date: "time.chapter-update",
			},
			Content: &custom.ContentSelectors{
				Primary:         "div.chapter-content",
				RemoveSelectors: []string{"script"},
			},
		},
	},
}

// Suggest returns the preset for a framework. Custom gets generic
// templates and empty selector groups.
func Suggest(fw Framework) Preset {
	p, ok := presets[fw]
	if !ok {
		return Preset{
			Framework:          Custom,
			PopularURLTemplate: "{baseUrl}/page/{page}",
			SearchURLTemplate:  "{baseUrl}/?s={query}",
			Selectors: custom.SelectorGroups{
				Popular:  &custom.MangaListSelectors{},
				Details:  &custom.DetailSelectors{},
				Chapters: &custom.ChapterSelectors{},
				Content:  &custom.ContentSelectors{},
			},
		}
	}
	p.Framework = fw

	return p
}

var sourceTypes = map[Framework]custom.SourceType{
	Madara:        custom.SourceTypeMadara,
	LightNovelWP:  custom.SourceTypeLightNovelWP,
	ReadNovelFull: custom.SourceTypeReadNovelFull,
	ReadWN:        custom.SourceTypeReadWN,
}

// BlankConfig builds a novel config prefilled from the framework preset.
// Custom configs do not pass validation until their selectors are set.
func BlankConfig(name, baseURL string, fw Framework) custom.ScrapingConfig {
	p := Suggest(fw)

	st, ok := sourceTypes[fw]
	if !ok {
		st = custom.SourceTypeGeneric
	}

	cfg := custom.ScrapingConfig{
		Name:                    name,
		BaseURL:                 baseURL,
		Language:                "en",
		SourceType:              st,
		IsNovelContent:          true,
		ReverseChapterOrder:     p.ReverseChapterOrder,
		UsesPostForSearch:       p.UsesPostForSearch,
		PopularURLTemplate:      p.PopularURLTemplate,
		LatestURLTemplate:       p.LatestURLTemplate,
		SearchURLTemplate:       p.SearchURLTemplate,
		ChapterListAjaxTemplate: p.ChapterListAjaxTemplate,
		NovelIDSelector:         p.NovelIDSelector,
		NovelIDAttribute:        p.NovelIDAttribute,
		DateFormats:             p.DateFormats,
		Selectors:               p.Selectors,
	}

	// presets share their selector pointers
	return cfg.Clone()
}

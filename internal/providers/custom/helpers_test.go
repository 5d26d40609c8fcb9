package custom

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/stretchr/testify/require"
)

const testBase = "https://x.com"

func newDoc(t *testing.T, pageURL, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	if pageURL != "" {
		u, err := url.Parse(pageURL)
		require.NoError(t, err)
		doc.Url = u
	}

	return doc
}

var errNotServed = errors.New("not served")

// pageFetcher serves canned HTML by absolute URL and records requests.
type pageFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	fail     map[string]error
	requests []Request
}

func newPageFetcher(pages map[string]string) *pageFetcher {
	return &pageFetcher{pages: pages, fail: map[string]error{}}
}

func (f *pageFetcher) Fetch(_ context.Context, req Request) (*goquery.Document, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err, ok := f.fail[req.URL]; ok {
		return nil, err
	}

	html, ok := f.pages[req.URL]
	if !ok {
		return nil, errNotServed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	doc.Url, _ = url.Parse(req.URL)

	return doc, nil
}

func (f *pageFetcher) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.URL
	}

	return out
}

// stubSource is a hand-written delegate.
type stubSource struct {
	id      int64
	name    string
	popular providers.MangasPage
	content string
}

func (s *stubSource) ID() int64    { return s.id }
func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Lang() string { return "en" }
func (s *stubSource) GetFilters() providers.FilterList {
	return providers.FilterList{{Name: "genre", Values: []string{"action", "drama"}}}
}

func (s *stubSource) GetPopular(context.Context, int) (providers.MangasPage, error) {
	return s.popular, nil
}

func (s *stubSource) GetLatest(context.Context, int) (providers.MangasPage, error) {
	return s.popular, nil
}

func (s *stubSource) Search(context.Context, int, string, providers.FilterList) (providers.MangasPage, error) {
	return s.popular, nil
}

func (s *stubSource) GetDetails(_ context.Context, m providers.Manga) (providers.Manga, error) {
	m.Title = "delegated " + m.Title
	return m, nil
}

func (s *stubSource) GetChapterList(context.Context, providers.Manga) ([]providers.Chapter, error) {
	return []providers.Chapter{{URL: "/c/1", Name: "Chapter 1", Number: 1}}, nil
}

type textSource struct {
	stubSource
}

func (s *textSource) FetchContent(context.Context, providers.Chapter) (string, error) {
	return s.content, nil
}

type mapResolver map[int64]providers.Source

func (m mapResolver) Get(id int64) (providers.Source, bool) {
	s, ok := m[id]
	return s, ok
}

func int64Ptr(v int64) *int64 { return &v }

func fullConfig() ScrapingConfig {
	return ScrapingConfig{
		Name:               "Example Novels",
		BaseURL:            testBase,
		Language:           "en",
		IsNovelContent:     true,
		PopularURLTemplate: "{baseUrl}/popular/{page}",
		SearchURLTemplate:  "{baseUrl}/search?q={query}&page={page}",
		Selectors: SelectorGroups{
			Popular: &MangaListSelectors{
				List:  ".item",
				Link:  "a.title",
				Title: "a.title",
				Cover: "img",
			},
			Details: &DetailSelectors{
				Title:       "h1",
				Author:      ".author",
				Description: ".summary",
				Status:      ".status",
				Cover:       ".cover img",
			},
			Chapters: &ChapterSelectors{
				List: "ul.chapters li",
				Link: "a",
				Date: ".date",
			},
			Content: &ContentSelectors{
				Primary:   "#content",
				Fallbacks: []string{".text"},
			},
		},
	}
}

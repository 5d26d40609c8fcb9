package custom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const popularHTML = `<div class="item"><a class="title" href="/novel/one">One</a><img src="https://cdn.x.com/1.jpg"></div>
<div class="item"><a class="title" href="/novel/two">Two</a></div>`

const detailHTML = `<h1>One</h1><span class="author">Jane</span><div class="status">Ongoing</div>
<ul class="chapters"><li><a href="/novel/one/chapter-1">Chapter 1</a></li><li><a href="/novel/one/chapter-2">Chapter 2</a></li></ul>`

const contentHTML = `<div id="content"><p>Once upon a time</p></div>`

func sitePages() map[string]string {
	return map[string]string{
		"https://x.com/popular":             popularHTML,
		"https://x.com/novel/one":           detailHTML,
		"https://x.com/novel/one/chapter-1": contentHTML,
	}
}

// TestSource_local verifies the selector path for every operation.
func TestSource_local(t *testing.T) {
	ctx := context.Background()
	cfg := fullConfig()
	cfg.Headers = Headers{{"Referer", "https://x.com/"}}
	f := newPageFetcher(sitePages())
	src := New(cfg, f)

	popular, err := src.GetPopular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular.Mangas, 2)

	latest, err := src.GetLatest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, popular, latest)

	details, err := src.GetDetails(ctx, popular.Mangas[0])
	require.NoError(t, err)
	assert.Equal(t, "One", details.Title)
	assert.Equal(t, "Jane", details.Author)
	assert.Equal(t, providers.StatusOngoing, details.Status)
	assert.Equal(t, "/novel/one", details.URL)

	chapters, err := src.GetChapterList(ctx, popular.Mangas[0])
	require.NoError(t, err)
	require.Len(t, chapters, 2)

	text, err := src.FetchContent(ctx, chapters[0])
	require.NoError(t, err)
	assert.Equal(t, "<p>Once upon a time</p>", text)

	pages, err := src.GetPageList(ctx, chapters[0])
	require.NoError(t, err)
	assert.Equal(t, []providers.Page{{Index: 0, URL: "https://x.com/novel/one/chapter-1"}}, pages)

	assert.Empty(t, src.GetFilters())

	for _, r := range f.requests {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, cfg.Headers, r.Headers)
	}
}

// TestSource_fetchError verifies that a failed page fetch surfaces as
// ErrFetch.
func TestSource_fetchError(t *testing.T) {
	src := New(fullConfig(), newPageFetcher(nil))

	_, err := src.GetPopular(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, errNotServed)
	assert.Contains(t, err.Error(), "https://x.com/popular/2")
}

// TestSource_postSearch verifies that POST sites send the query string
// as a form body.
func TestSource_postSearch(t *testing.T) {
	cfg := fullConfig()
	cfg.UsesPostForSearch = true
	cfg.SearchURLTemplate = "{baseUrl}/search?s={query}&page={page}"
	cfg.Selectors.Search = &MangaListSelectors{List: ".result", Link: "a"}

	f := newPageFetcher(map[string]string{
		"https://x.com/search": `<div class="result"><a href="/novel/found">Found</a></div>`,
	})

	page, err := New(cfg, f).Search(context.Background(), 1, "dragon king", nil)
	require.NoError(t, err)
	require.Len(t, page.Mangas, 1)
	assert.Equal(t, "Found", page.Mangas[0].Title)

	require.Len(t, f.requests, 1)
	assert.Equal(t, http.MethodPost, f.requests[0].Method)
	assert.Equal(t, "dragon king", f.requests[0].Form.Get("s"))
}

// TestSource_getSearchUsesPopularSelectors verifies the search selector
// default.
func TestSource_getSearchUsesPopularSelectors(t *testing.T) {
	f := newPageFetcher(map[string]string{"https://x.com/search?q=one": popularHTML})

	page, err := New(fullConfig(), f).Search(context.Background(), 1, "one", nil)
	require.NoError(t, err)
	assert.Len(t, page.Mangas, 2)
}

// TestSource_delegationBypass verifies that a resolvable delegate
// replaces the selector path entirely.
func TestSource_delegationBypass(t *testing.T) {
	ctx := context.Background()
	want := providers.MangasPage{
		Mangas:      []providers.Manga{{URL: "/d/1", Title: "From delegate"}},
		HasNextPage: true,
	}
	delegate := &stubSource{id: 99, name: "Base", popular: want}

	cfg := fullConfig()
	cfg.BasedOnExternalSourceID = int64Ptr(99)
	cfg.Selectors.Popular = &MangaListSelectors{List: "!!garbage((", Title: ">>>"}

	f := newPageFetcher(sitePages())
	src := New(cfg, f, WithResolver(mapResolver{99: delegate}))

	got, err := src.GetPopular(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = src.Search(ctx, 1, "x", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	d, err := src.GetDetails(ctx, providers.Manga{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "delegated t", d.Title)

	assert.Equal(t, delegate.GetFilters(), src.GetFilters())

	text, err := src.FetchContent(ctx, providers.Chapter{URL: "/novel/one/chapter-1"})
	require.NoError(t, err)
	assert.Equal(t, "", text)

	assert.Empty(t, f.urls())
}

// TestSource_delegatedContent verifies content forwarding when the
// delegate can fetch text.
func TestSource_delegatedContent(t *testing.T) {
	delegate := &textSource{stubSource{id: 5, name: "Text", content: "<p>delegated</p>"}}

	cfg := fullConfig()
	cfg.BasedOnExternalSourceID = int64Ptr(5)

	text, err := New(cfg, nil, WithResolver(mapResolver{5: delegate})).
		FetchContent(context.Background(), providers.Chapter{URL: "/c/1"})
	require.NoError(t, err)
	assert.Equal(t, "<p>delegated</p>", text)
}

// TestSource_unusableDelegate verifies the silent fallback to selectors.
func TestSource_unusableDelegate(t *testing.T) {
	chained := New(ScrapingConfig{
		Name:                    "Chained",
		BaseURL:                 "https://y.com",
		PopularURLTemplate:      "{baseUrl}",
		BasedOnExternalSourceID: int64Ptr(1),
	}, nil)

	tests := []struct {
		name     string
		resolver providers.Resolver
		mutate   func(*ScrapingConfig)
	}{
		{"no resolver", nil, func(c *ScrapingConfig) { c.BasedOnExternalSourceID = int64Ptr(99) }},
		{"unknown id", mapResolver{}, func(c *ScrapingConfig) { c.BasedOnExternalSourceID = int64Ptr(99) }},
		{"self reference", mapResolver{}, func(c *ScrapingConfig) {
			c.ID = 77
			c.BasedOnExternalSourceID = int64Ptr(77)
		}},
		{"delegate delegates", mapResolver{chained.ID(): chained}, func(c *ScrapingConfig) {
			c.BasedOnExternalSourceID = int64Ptr(chained.ID())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fullConfig()
			tt.mutate(&cfg)

			src := New(cfg, newPageFetcher(sitePages()), WithResolver(tt.resolver))
			if tt.name == "self reference" {
				src = New(cfg, newPageFetcher(sitePages()), WithResolver(mapResolver{77: src}))
			}

			page, err := src.GetPopular(context.Background(), 1)
			require.NoError(t, err)
			assert.Len(t, page.Mangas, 2)
		})
	}
}

// TestSource_snapshot verifies that editing the caller's config does not
// leak into a running source.
func TestSource_snapshot(t *testing.T) {
	cfg := fullConfig()
	src := New(cfg, newPageFetcher(sitePages()))

	cfg.Selectors.Popular.List = ".nothing"
	cfg.Name = "Renamed"

	page, err := src.GetPopular(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, page.Mangas, 2)
	assert.Equal(t, "Example Novels", src.Name())
}

type failingSource struct {
	stubSource
	err error
}

func (s *failingSource) GetPopular(context.Context, int) (providers.MangasPage, error) {
	return providers.MangasPage{}, s.err
}

func (s *failingSource) GetChapterList(context.Context, providers.Manga) ([]providers.Chapter, error) {
	return nil, s.err
}

// TestSource_delegateErrors verifies that delegate failures surface as
// fetch errors without hiding the cause.
func TestSource_delegateErrors(t *testing.T) {
	cause := errors.New("upstream timeout")
	delegate := &failingSource{stubSource: stubSource{id: 9, name: "Flaky"}, err: cause}

	cfg := fullConfig()
	cfg.BasedOnExternalSourceID = int64Ptr(9)
	src := New(cfg, nil, WithResolver(mapResolver{9: delegate}))

	_, err := src.GetPopular(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Flaky")

	_, err = src.GetChapterList(context.Background(), providers.Manga{URL: "/novel/one"})
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, cause)

	delegate.err = fmt.Errorf("%w: already marked", ErrFetch)
	_, err = src.GetPopular(context.Background(), 1)
	assert.Equal(t, delegate.err, err)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brogergvhs/srcforge/internal/fetch"
	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/brogergvhs/srcforge/internal/store"
	"github.com/brogergvhs/srcforge/internal/ui"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sitePages = map[string]string{
	"/popular": `<div class="item"><a class="title" href="/novel/a">Novel A</a></div>
		<div class="item"><a class="title" href="/novel/b">Novel B</a></div>`,
	"/popular/2": `<div class="item"><a class="title" href="/novel/c">Novel C</a></div>
		<a class="next" href="/popular/3">Next</a>`,
	"/search": `<div class="item"><a class="title" href="/novel/b">Novel B</a></div>`,
	"/novel/a": `<h1>Novel A</h1><div class="author">Ann</div>
		<ul class="chapters"><li><a href="/novel/a/1">Chapter 1</a></li><li><a href="/novel/a/2">Chapter 2</a></li></ul>`,
	"/novel/a/1": `<div id="content"><p>It was a dark night.</p><script>x()</script></div>`,
}

type testEnv struct {
	router *gin.Engine
	store  *store.Store
	reg    *providers.Registry
	site   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := sitePages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(site.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "sources.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f, err := fetch.New(fetch.Options{})
	require.NoError(t, err)

	log := ui.NewLogger(false)
	log.SetOutput(io.Discard)

	reg := providers.NewRegistry()
	build := func(cfg custom.ScrapingConfig) providers.Source {
		return custom.New(cfg, f, custom.WithResolver(reg))
	}

	return &testEnv{
		router: NewRouter(NewHandler(reg, st, build), log),
		store:  st,
		reg:    reg,
		site:   site,
	}
}

func (e *testEnv) config(name string) custom.ScrapingConfig {
	return custom.ScrapingConfig{
		Name:               name,
		BaseURL:            e.site.URL,
		Language:           "en",
		IsNovelContent:     true,
		PopularURLTemplate: "{baseUrl}/popular/{page}",
		SearchURLTemplate:  "{baseUrl}/search?q={query}",
		Selectors: custom.SelectorGroups{
			Popular:  &custom.MangaListSelectors{List: ".item", Link: "a.title", Title: "a.title"},
			Details:  &custom.DetailSelectors{Title: "h1", Author: ".author"},
			Chapters: &custom.ChapterSelectors{List: "ul.chapters li", Link: "a"},
			Content:  &custom.ContentSelectors{Primary: "#content", RemoveSelectors: []string{"script"}},
		},
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

func (e *testEnv) create(t *testing.T, cfg custom.ScrapingConfig) int64 {
	t.Helper()

	data, err := custom.Export(cfg)
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/sources", data)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created custom.ScrapingConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	return created.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

// TestSources_lifecycle verifies create, list, export, update and delete
// through the API and that the registry follows the store.
func TestSources_lifecycle(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, env.config("Example"))

	_, ok := env.reg.Get(id)
	assert.True(t, ok)

	rec := env.do(t, http.MethodGet, "/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Total int          `json:"total"`
		Items []sourceInfo `json:"items"`
	}](t, rec)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Example", list.Items[0].Name)
	assert.Equal(t, env.site.URL, list.Items[0].BaseURL)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/sources/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported, err := custom.Import(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Example", exported.Name)

	exported.Name = "Example Renamed"
	data, err := custom.Export(exported)
	require.NoError(t, err)
	rec = env.do(t, http.MethodPut, fmt.Sprintf("/sources/%d", id), data)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	src, ok := env.reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Example Renamed", src.Name())

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/sources/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok = env.reg.Get(id)
	assert.False(t, ok)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/sources/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSources_errors(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.config("Example")
	env.create(t, cfg)

	data, err := custom.Export(cfg)
	require.NoError(t, err)

	pinned := cfg
	pinned.ID = cfg.SourceID()
	withID, err := custom.Export(pinned)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
		status int
	}{
		{"duplicate", http.MethodPost, "/sources", data, http.StatusConflict},
		{"invalid config", http.MethodPost, "/sources", []byte(`{"name":"x"}`), http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/sources", []byte(`{`), http.StatusBadRequest},
		{"bad id", http.MethodGet, "/sources/abc", nil, http.StatusBadRequest},
		{"unknown source", http.MethodGet, "/sources/42/popular", nil, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/sources/42", nil, http.StatusNotFound},
		{"update mismatch", http.MethodPut, "/sources/42", withID, http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/sources/42", data, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

// TestSources_browse runs the catalog operations against the test site.
func TestSources_browse(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, env.config("Example"))
	base := fmt.Sprintf("/sources/%d", id)

	rec := env.do(t, http.MethodGet, base+"/popular?page=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	popular := decode[providers.MangasPage](t, rec)
	require.Len(t, popular.Mangas, 2)
	assert.Equal(t, "Novel A", popular.Mangas[0].Title)
	assert.Equal(t, "/novel/a", popular.Mangas[0].URL)

	rec = env.do(t, http.MethodGet, base+"/popular?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decode[providers.MangasPage](t, rec)
	require.Len(t, second.Mangas, 1)
	assert.Equal(t, "Novel C", second.Mangas[0].Title)

	rec = env.do(t, http.MethodGet, base+"/search?q=novel+b", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[providers.MangasPage](t, rec)
	require.Len(t, found.Mangas, 1)
	assert.Equal(t, "Novel B", found.Mangas[0].Title)

	rec = env.do(t, http.MethodGet, base+"/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/details?url=/novel/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"author":"Ann"`)

	rec = env.do(t, http.MethodGet, base+"/chapters?url=/novel/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chapters := decode[[]providers.Chapter](t, rec)
	require.Len(t, chapters, 2)
	assert.Equal(t, "/novel/a/1", chapters[0].URL)
	assert.Equal(t, float64(1), chapters[0].Number)

	rec = env.do(t, http.MethodGet, base+"/content?url=/novel/a/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	content := decode[map[string]string](t, rec)
	assert.Contains(t, content["content"], "dark night")
	assert.NotContains(t, content["content"], "script")

	rec = env.do(t, http.MethodGet, base+"/pages?url=/novel/a/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pages := decode[[]providers.Page](t, rec)
	require.Len(t, pages, 1)
	assert.Equal(t, env.site.URL+"/novel/a/1", pages[0].URL)

	rec = env.do(t, http.MethodGet, base+"/details", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/content?url=/missing", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// TestSources_selfTest verifies the report for a working source.
func TestSources_selfTest(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, env.config("Example"))

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/sources/%d/test", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[custom.TestReport](t, rec)
	assert.True(t, report.OverallSuccess, rec.Body.String())
	assert.Equal(t, "Example", report.SourceName)
	require.Len(t, report.Steps, 4)
	assert.Equal(t, custom.StepContent, report.Steps[3].Name)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"status":"ok"`))
}

func TestServe_stopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	log := ui.NewLogger(false)
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", env.router, log) }()

	cancel()
	assert.NoError(t, <-done)
}

package custom

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/srcforge/internal/providers"
)

// Request is one outbound fetch. Method defaults to GET; a non-nil Form
// is sent as a urlencoded POST body.
type Request struct {
	Method     string
	URL        string
	Headers    Headers
	Form       url.Values
	Cloudflare bool
}

// Fetcher loads and parses a page. Implementations set Document.Url to
// the final URL so relative links resolve correctly.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*goquery.Document, error)
}

type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

// Source runs a ScrapingConfig against live pages. It holds its own
// snapshot of the config; replacing a config means building a new Source.
type Source struct {
	cfg       ScrapingConfig
	fetcher   Fetcher
	resolver  providers.Resolver
	dates     DateParser
	log       Logger
	novelIDRe *regexp.Regexp
}

type Option func(*Source)

// WithResolver enables delegation through basedOnExternalSourceId.
func WithResolver(r providers.Resolver) Option {
	return func(s *Source) { s.resolver = r }
}

func WithLogger(l Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

func WithDateParser(p DateParser) Option {
	return func(s *Source) {
		if p != nil {
			s.dates = p
		}
	}
}

func New(cfg ScrapingConfig, f Fetcher, opts ...Option) *Source {
	cfg = cfg.Clone()

	s := &Source{
		cfg:       cfg,
		fetcher:   f,
		dates:     NewDateParser(cfg.DateFormats...),
		log:       nopLogger{},
		novelIDRe: compilePattern(cfg.NovelIDURLPattern),
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Source) ID() int64    { return s.cfg.SourceID() }
func (s *Source) Name() string { return s.cfg.Name }
func (s *Source) Lang() string { return s.cfg.Language }

// Config returns a copy of the snapshot this source reads from.
func (s *Source) Config() ScrapingConfig { return s.cfg.Clone() }

// BasedOn reports the configured delegate id, if any.
func (s *Source) BasedOn() (int64, bool) {
	if s.cfg.BasedOnExternalSourceID == nil {
		return 0, false
	}

	return *s.cfg.BasedOnExternalSourceID, true
}

func (s *Source) GetPopular(ctx context.Context, page int) (providers.MangasPage, error) {
	return s.strategy().popular(ctx, page)
}

func (s *Source) GetLatest(ctx context.Context, page int) (providers.MangasPage, error) {
	return s.strategy().latest(ctx, page)
}

func (s *Source) Search(ctx context.Context, page int, query string, filters providers.FilterList) (providers.MangasPage, error) {
	return s.strategy().search(ctx, page, query, filters)
}

func (s *Source) GetDetails(ctx context.Context, manga providers.Manga) (providers.Manga, error) {
	return s.strategy().details(ctx, manga)
}

func (s *Source) GetChapterList(ctx context.Context, manga providers.Manga) ([]providers.Chapter, error) {
	return s.strategy().chapters(ctx, manga)
}

func (s *Source) GetFilters() providers.FilterList {
	return s.strategy().filters()
}

// FetchContent returns the chapter's reader markup, or "" when the
// delegate cannot provide text.
func (s *Source) FetchContent(ctx context.Context, chapter providers.Chapter) (string, error) {
	return s.strategy().content(ctx, chapter)
}

// GetPageList lists the pages of a chapter. Novel chapters are a single
// page; image chapters list every image in the content node.
func (s *Source) GetPageList(ctx context.Context, chapter providers.Chapter) ([]providers.Page, error) {
	return s.strategy().pages(ctx, chapter)
}

// IsNovel reports whether chapters are text rather than image pages.
func (s *Source) IsNovel() bool { return s.cfg.IsNovelContent }

// URL turns a stored (possibly relative) URL into an absolute one.
func (s *Source) URL(u string) string { return absolutize(u, s.cfg.BaseURL) }

// Headers returns a copy of the headers sent with every request of the
// source, image downloads included.
func (s *Source) Headers() Headers { return slices.Clone(s.cfg.Headers) }

func (s *Source) fetch(ctx context.Context, req Request) (*goquery.Document, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: %s: no fetcher configured", ErrFetch, req.URL)
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Headers = s.cfg.Headers
	req.Cloudflare = s.cfg.UseCloudflareBypass

	s.log.Debugf("[%s] %s %s\n", s.cfg.Name, req.Method, req.URL)

	doc, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrFetch, req.Method, req.URL, err)
	}

	return doc, nil
}

// searchRequest builds the search fetch. POST sites get the expanded
// query string as a form body.
func (s *Source) searchRequest(page int, query string) Request {
	target := Expand(s.cfg.SearchURLTemplate, s.cfg.BaseURL, page, query, "")
	if !s.cfg.UsesPostForSearch {
		return Request{URL: target}
	}

	u, err := url.Parse(target)
	if err != nil {
		return Request{Method: http.MethodPost, URL: target, Form: url.Values{}}
	}

	form := u.Query()
	u.RawQuery = ""

	return Request{Method: http.MethodPost, URL: u.String(), Form: form}
}

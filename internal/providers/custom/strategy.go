package custom

import (
	"context"
	"errors"
	"fmt"

	"github.com/brogergvhs/srcforge/internal/providers"
)

type strategy interface {
	popular(ctx context.Context, page int) (providers.MangasPage, error)
	latest(ctx context.Context, page int) (providers.MangasPage, error)
	search(ctx context.Context, page int, query string, filters providers.FilterList) (providers.MangasPage, error)
	details(ctx context.Context, manga providers.Manga) (providers.Manga, error)
	chapters(ctx context.Context, manga providers.Manga) ([]providers.Chapter, error)
	filters() providers.FilterList
	content(ctx context.Context, chapter providers.Chapter) (string, error)
	pages(ctx context.Context, chapter providers.Chapter) ([]providers.Page, error)
}

type pageLister interface {
	GetPageList(ctx context.Context, chapter providers.Chapter) ([]providers.Page, error)
}

type delegator interface {
	BasedOn() (int64, bool)
}

// strategy picks the variant for one call. Delegates are resolved on
// every call so a delegate registered later is picked up.
func (s *Source) strategy() strategy {
	if d, ok := s.delegate(); ok {
		return delegatingStrategy{src: s, d: d}
	}

	return localStrategy{s}
}

// delegate resolves basedOnExternalSourceId. Any failure means "no
// delegate"; it is logged and never returned as an error.
func (s *Source) delegate() (d providers.Source, ok bool) {
	id, set := s.BasedOn()
	if !set {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Debugf("[%s] delegate %d lookup panicked: %v\n", s.cfg.Name, id, r)
			d, ok = nil, false
		}
	}()

	switch {
	case s.resolver == nil:
		s.log.Debugf("[%s] no resolver for delegate %d, using selectors\n", s.cfg.Name, id)
		return nil, false
	case id == s.ID():
		s.log.Debugf("[%s] source delegates to itself, using selectors\n", s.cfg.Name)
		return nil, false
	}

	d, found := s.resolver.Get(id)
	if !found || d == nil {
		s.log.Debugf("[%s] delegate %d not found, using selectors\n", s.cfg.Name, id)
		return nil, false
	}
	if dd, isCustom := d.(delegator); isCustom {
		if _, chained := dd.BasedOn(); chained {
			s.log.Debugf("[%s] delegate %d delegates itself, using selectors\n", s.cfg.Name, id)
			return nil, false
		}
	}

	return d, true
}

type localStrategy struct {
	s *Source
}

func (l localStrategy) popular(ctx context.Context, page int) (providers.MangasPage, error) {
	cfg := &l.s.cfg
	return l.list(ctx, Request{URL: Expand(cfg.PopularURLTemplate, cfg.BaseURL, page, "", "")}, cfg.Selectors.Popular)
}

func (l localStrategy) latest(ctx context.Context, page int) (providers.MangasPage, error) {
	cfg := &l.s.cfg
	return l.list(ctx, Request{URL: Expand(cfg.latestTemplate(), cfg.BaseURL, page, "", "")}, cfg.Selectors.Popular)
}

func (l localStrategy) search(ctx context.Context, page int, query string, _ providers.FilterList) (providers.MangasPage, error) {
	return l.list(ctx, l.s.searchRequest(page, query), l.s.cfg.searchSelectors())
}

func (l localStrategy) list(ctx context.Context, req Request, sel *MangaListSelectors) (providers.MangasPage, error) {
	doc, err := l.s.fetch(ctx, req)
	if err != nil {
		return providers.MangasPage{}, err
	}

	return ExtractList(doc, sel, l.s.cfg.BaseURL), nil
}

func (l localStrategy) details(ctx context.Context, manga providers.Manga) (providers.Manga, error) {
	doc, err := l.s.fetch(ctx, Request{URL: l.s.URL(manga.URL)})
	if err != nil {
		return providers.Manga{}, err
	}

	m := ExtractDetails(doc, l.s.cfg.Selectors.Details, l.s.cfg.BaseURL)
	m.URL = manga.URL

	return m, nil
}

func (l localStrategy) chapters(ctx context.Context, manga providers.Manga) ([]providers.Chapter, error) {
	doc, err := l.s.fetch(ctx, Request{URL: l.s.URL(manga.URL)})
	if err != nil {
		return nil, err
	}

	return l.s.ExtractChapters(ctx, doc)
}

func (l localStrategy) filters() providers.FilterList {
	return providers.FilterList{}
}

func (l localStrategy) content(ctx context.Context, chapter providers.Chapter) (string, error) {
	doc, err := l.s.fetch(ctx, Request{URL: l.s.URL(chapter.URL)})
	if err != nil {
		return "", err
	}

	return ExtractContent(doc, l.s.cfg.Selectors.Content, l.s.cfg.BaseURL), nil
}

func (l localStrategy) pages(ctx context.Context, chapter providers.Chapter) ([]providers.Page, error) {
	if l.s.cfg.IsNovelContent {
		return novelPages(chapter, l.s.cfg.BaseURL), nil
	}

	doc, err := l.s.fetch(ctx, Request{URL: l.s.URL(chapter.URL)})
	if err != nil {
		return nil, err
	}

	return ImagePages(doc, l.s.cfg.Selectors.Content, l.s.cfg.BaseURL), nil
}

// delegatingStrategy forwards every call and marks its errors with
// ErrFetch. Local selectors are never consulted.
type delegatingStrategy struct {
	src *Source
	d   providers.Source
}

func (g delegatingStrategy) popular(ctx context.Context, page int) (providers.MangasPage, error) {
	res, err := g.d.GetPopular(ctx, page)
	return res, g.wrap(err)
}

func (g delegatingStrategy) latest(ctx context.Context, page int) (providers.MangasPage, error) {
	res, err := g.d.GetLatest(ctx, page)
	return res, g.wrap(err)
}

func (g delegatingStrategy) search(ctx context.Context, page int, query string, filters providers.FilterList) (providers.MangasPage, error) {
	res, err := g.d.Search(ctx, page, query, filters)
	return res, g.wrap(err)
}

func (g delegatingStrategy) details(ctx context.Context, manga providers.Manga) (providers.Manga, error) {
	res, err := g.d.GetDetails(ctx, manga)
	return res, g.wrap(err)
}

func (g delegatingStrategy) chapters(ctx context.Context, manga providers.Manga) ([]providers.Chapter, error) {
	res, err := g.d.GetChapterList(ctx, manga)
	return res, g.wrap(err)
}

func (g delegatingStrategy) filters() providers.FilterList {
	return g.d.GetFilters()
}

func (g delegatingStrategy) content(ctx context.Context, chapter providers.Chapter) (string, error) {
	cs, ok := g.d.(providers.ContentSource)
	if !ok {
		g.src.log.Debugf("[%s] delegate %q cannot fetch text\n", g.src.cfg.Name, g.d.Name())
		return "", nil
	}

	text, err := cs.FetchContent(ctx, chapter)
	return text, g.wrap(err)
}

func (g delegatingStrategy) pages(ctx context.Context, chapter providers.Chapter) ([]providers.Page, error) {
	if pl, ok := g.d.(pageLister); ok {
		pages, err := pl.GetPageList(ctx, chapter)
		return pages, g.wrap(err)
	}

	return novelPages(chapter, g.src.cfg.BaseURL), nil
}

// wrap marks delegate failures as fetch errors, the same way local
// fetches are marked.
func (g delegatingStrategy) wrap(err error) error {
	if err == nil || errors.Is(err, ErrFetch) {
		return err
	}

	return fmt.Errorf("%w: delegate %q: %w", ErrFetch, g.d.Name(), err)
}

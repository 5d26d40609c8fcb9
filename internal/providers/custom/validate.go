package custom

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrInvalidConfig = errors.New("invalid source config")
	ErrFetch         = errors.New("fetch failed")
)

// FieldError names the config field that failed validation.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Msg
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate checks required-field presence for the config's delegation
// mode. It runs once at the write boundary; extractors never rely on it.
func (c *ScrapingConfig) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)})
	}

	if blank(c.Name) {
		fail("name", "is required")
	}
	if blank(c.BaseURL) {
		fail("baseUrl", "is required")
	} else if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		fail("baseUrl", "must be an absolute http(s) URL")
	}
	if blank(c.PopularURLTemplate) {
		fail("popularUrlTemplate", "is required")
	}

	switch c.SourceType {
	case "", SourceTypeGeneric, SourceTypeMadara, SourceTypeLightNovelWP, SourceTypeReadNovelFull, SourceTypeReadWN:
	default:
		fail("sourceType", "unknown type %q", c.SourceType)
	}

	if c.NovelIDURLPattern != "" {
		re, err := regexp.Compile(c.NovelIDURLPattern)
		if err != nil {
			fail("novelIdUrlPattern", "does not compile: %v", err)
		} else if re.NumSubexp() < 1 {
			fail("novelIdUrlPattern", "needs one capture group")
		}
	}

	if c.ChapterListAjaxTemplate != "" {
		if !strings.Contains(c.ChapterListAjaxTemplate, "{novelId}") {
			fail("chapterListAjaxTemplate", "must contain {novelId}")
		}
		if blank(c.NovelIDSelector) && blank(c.NovelIDURLPattern) {
			fail("chapterListAjaxTemplate", "needs novelIdSelector or novelIdUrlPattern")
		}
	}

	for _, h := range c.Headers {
		if blank(h.Name) {
			fail("headers", "header name cannot be empty")
		}
	}

	if c.Delegated() {
		return errors.Join(errs...)
	}

	if blank(c.SearchURLTemplate) {
		fail("searchUrlTemplate", "is required")
	}

	g := c.Selectors
	if g.Popular == nil {
		fail("selectors.popular", "is required")
	} else if blank(g.Popular.List) {
		fail("selectors.popular.list", "is required")
	}
	if g.Search != nil && blank(g.Search.List) {
		fail("selectors.search.list", "is required")
	}
	if g.Details == nil {
		fail("selectors.details", "is required")
	} else if blank(g.Details.Title) {
		fail("selectors.details.title", "is required")
	}
	if g.Chapters == nil {
		fail("selectors.chapters", "is required")
	} else if blank(g.Chapters.List) {
		fail("selectors.chapters.list", "is required")
	}
	if g.Content == nil {
		fail("selectors.content", "is required")
	} else {
		if blank(g.Content.Primary) {
			fail("selectors.content.primary", "is required")
		}
		for i, s := range g.Content.Fallbacks {
			if blank(s) {
				fail(fmt.Sprintf("selectors.content.fallbacks[%d]", i), "cannot be empty")
			}
		}
		for i, s := range g.Content.RemoveSelectors {
			if blank(s) {
				fail(fmt.Sprintf("selectors.content.removeSelectors[%d]", i), "cannot be empty")
			}
		}
	}

	return errors.Join(errs...)
}

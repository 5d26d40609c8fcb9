package custom

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"slices"
)

type SourceType string

const (
	SourceTypeGeneric       SourceType = "generic"
	SourceTypeMadara        SourceType = "madara"
	SourceTypeLightNovelWP  SourceType = "lightnovelwp"
	SourceTypeReadNovelFull SourceType = "readnovelfull"
	SourceTypeReadWN        SourceType = "readwn"
)

// ScrapingConfig describes how to scrape one site. A loaded config is
// treated as immutable: edits produce a new value that replaces the old
// one wholesale.
type ScrapingConfig struct {
	Name     string `json:"name"`
	BaseURL  string `json:"baseUrl"`
	Language string `json:"language"`
	ID       int64  `json:"id,omitempty"`

	SourceType SourceType `json:"sourceType,omitempty"`

	UseCloudflareBypass     bool   `json:"useCloudflareBypass"`
	ReverseChapterOrder     bool   `json:"reverseChapterOrder"`
	UsesPostForSearch       bool   `json:"usesPostForSearch"`
	IsNovelContent          bool   `json:"isNovelContent"`
	BasedOnExternalSourceID *int64 `json:"basedOnExternalSourceId,omitempty"`

	PopularURLTemplate string `json:"popularUrlTemplate"`
	LatestURLTemplate  string `json:"latestUrlTemplate,omitempty"`
	SearchURLTemplate  string `json:"searchUrlTemplate,omitempty"`

	Headers Headers `json:"headers,omitempty"`

	ChapterListAjaxTemplate string `json:"chapterListAjaxTemplate,omitempty"`
	NovelIDSelector         string `json:"novelIdSelector,omitempty"`
	NovelIDAttribute        string `json:"novelIdAttribute,omitempty"`
	NovelIDURLPattern       string `json:"novelIdUrlPattern,omitempty"`

	DateFormats []string `json:"dateFormats,omitempty"`

	Selectors SelectorGroups `json:"selectors"`
}

type SelectorGroups struct {
	Popular  *MangaListSelectors `json:"popular,omitempty"`
	Search   *MangaListSelectors `json:"search,omitempty"`
	Details  *DetailSelectors    `json:"details,omitempty"`
	Chapters *ChapterSelectors   `json:"chapters,omitempty"`
	Content  *ContentSelectors   `json:"content,omitempty"`
}

type MangaListSelectors struct {
	List     string `json:"list"`
	Link     string `json:"link,omitempty"`
	Title    string `json:"title,omitempty"`
	Cover    string `json:"cover,omitempty"`
	NextPage string `json:"nextPage,omitempty"`
}

type DetailSelectors struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Status      string `json:"status,omitempty"`
	Cover       string `json:"cover,omitempty"`
}

type ChapterSelectors struct {
	List string `json:"list"`
	Link string `json:"link,omitempty"`
	Name string `json:"name,omitempty"`
	Date string `json:"date,omitempty"`
}

type ContentSelectors struct {
	Primary         string   `json:"primary"`
	Fallbacks       []string `json:"fallbacks,omitempty"`
	RemoveSelectors []string `json:"removeSelectors,omitempty"`
}

// SourceID returns the configured id, or one derived from name and base
// URL when none is set. The derived id is stable for the same pair.
func (c *ScrapingConfig) SourceID() int64 {
	if c.ID != 0 {
		return c.ID
	}

	return GenerateID(c.Name, c.BaseURL)
}

// GenerateID hashes name+baseURL into the non-negative int64 range.
func GenerateID(name, baseURL string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name + baseURL))

	return int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF)
}

// Delegated reports whether the config forwards to another source.
func (c *ScrapingConfig) Delegated() bool {
	return c.BasedOnExternalSourceID != nil
}

func (c *ScrapingConfig) latestTemplate() string {
	if c.LatestURLTemplate != "" {
		return c.LatestURLTemplate
	}

	return c.PopularURLTemplate
}

func (c *ScrapingConfig) searchSelectors() *MangaListSelectors {
	if c.Selectors.Search != nil {
		return c.Selectors.Search
	}

	return c.Selectors.Popular
}

// Clone returns a deep copy, used as the immutable snapshot a Source
// reads from. Empty lists come back nil, the form they have after an
// import.
func (c ScrapingConfig) Clone() ScrapingConfig {
	out := c
	if c.BasedOnExternalSourceID != nil {
		id := *c.BasedOnExternalSourceID
		out.BasedOnExternalSourceID = &id
	}
	out.Headers = cloneList(c.Headers)
	out.DateFormats = cloneList(c.DateFormats)

	g := c.Selectors
	if g.Popular != nil {
		v := *g.Popular
		out.Selectors.Popular = &v
	}
	if g.Search != nil {
		v := *g.Search
		out.Selectors.Search = &v
	}
	if g.Details != nil {
		v := *g.Details
		out.Selectors.Details = &v
	}
	if g.Chapters != nil {
		v := *g.Chapters
		out.Selectors.Chapters = &v
	}
	if g.Content != nil {
		v := *g.Content
		v.Fallbacks = cloneList(g.Content.Fallbacks)
		v.RemoveSelectors = cloneList(g.Content.RemoveSelectors)
		out.Selectors.Content = &v
	}

	return out
}

func cloneList[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}

	return slices.Clone(s)
}

// UnmarshalJSON applies import defaults before decoding. Unknown fields
// are ignored.
func (c *ScrapingConfig) UnmarshalJSON(data []byte) error {
	type plain ScrapingConfig
	v := plain{
		Language:       "en",
		IsNovelContent: true,
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*c = ScrapingConfig(v)
	return nil
}

// Export serializes a config to its shareable JSON form.
func Export(c ScrapingConfig) ([]byte, error) {
	data, err := json.MarshalIndent(c.Clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", c.Name, err)
	}

	return data, nil
}

// Import parses and validates a config. Required fields that are null
// or missing are rejected.
func Import(data []byte) (ScrapingConfig, error) {
	var c ScrapingConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return ScrapingConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := c.Validate(); err != nil {
		return ScrapingConfig{}, err
	}

	return c, nil
}

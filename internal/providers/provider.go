package providers

import "context"

type Status int

const (
	StatusUnknown Status = iota
	StatusOngoing
	StatusCompleted
	StatusLicensed
	StatusPublishingFinished
	StatusCancelled
	StatusOnHiatus
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusCompleted:
		return "completed"
	case StatusLicensed:
		return "licensed"
	case StatusPublishingFinished:
		return "publishing finished"
	case StatusCancelled:
		return "cancelled"
	case StatusOnHiatus:
		return "on hiatus"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText. Anything else
// decodes as StatusUnknown.
func (s *Status) UnmarshalText(text []byte) error {
	*s = StatusUnknown
	for st := StatusOngoing; st <= StatusOnHiatus; st++ {
		if st.String() == string(text) {
			*s = st
			break
		}
	}

	return nil
}

// Manga is a catalog entry. URL is relative to the source base URL
// whenever the entry lives on the source's own host.
type Manga struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Author       string `json:"author,omitempty"`
	Artist       string `json:"artist,omitempty"`
	Description  string `json:"description,omitempty"`
	Genre        string `json:"genre,omitempty"`
	Status       Status `json:"status"`
}

type MangasPage struct {
	Mangas      []Manga `json:"mangas"`
	HasNextPage bool    `json:"hasNextPage"`
}

// Chapter is a chapter stub. DateUpload is a unix timestamp in
// milliseconds, 0 when unknown. Number is -1 when it cannot be derived.
type Chapter struct {
	URL        string  `json:"url"`
	Name       string  `json:"name"`
	DateUpload int64   `json:"dateUpload"`
	Number     float64 `json:"number"`
}

type Page struct {
	Index    int    `json:"index"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Filter struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
	State  string   `json:"state,omitempty"`
}

type FilterList []Filter

// Source is the catalog capability set every provider exposes. A custom
// source may forward all of these to another Source it is based on.
type Source interface {
	ID() int64
	Name() string
	Lang() string

	GetPopular(ctx context.Context, page int) (MangasPage, error)
	GetLatest(ctx context.Context, page int) (MangasPage, error)
	Search(ctx context.Context, page int, query string, filters FilterList) (MangasPage, error)
	GetDetails(ctx context.Context, manga Manga) (Manga, error)
	GetChapterList(ctx context.Context, manga Manga) ([]Chapter, error)
	GetFilters() FilterList
}

// ContentSource is implemented by sources that can return reader-ready
// chapter text.
type ContentSource interface {
	Source
	FetchContent(ctx context.Context, chapter Chapter) (string, error)
}

// Resolver looks up sources by id.
type Resolver interface {
	Get(id int64) (Source, bool)
}

package custom

import (
	"testing"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/stretchr/testify/assert"
)

// TestParseStatus verifies keyword priority: ongoing, completed, hiatus,
// cancelled.
func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want providers.Status
	}{
		{"Ongoing, formerly on hiatus", providers.StatusOngoing},
		{"ONGOING", providers.StatusOngoing},
		{"Completed", providers.StatusCompleted},
		{"completed (was ongoing)", providers.StatusOngoing},
		{"On Hiatus", providers.StatusOnHiatus},
		{"cancelled", providers.StatusCancelled},
		{"Dropped", providers.StatusUnknown},
		{"", providers.StatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStatus(tt.in), tt.in)
	}
}

// TestExtractDetails verifies independent optional fields and cover
// resolution.
func TestExtractDetails(t *testing.T) {
	doc := newDoc(t, "https://x.com/novel/one", `<html><body>
<h1> The  Title </h1>
<span class="author">Jane Doe</span>
<div class="summary"><p>Line one.</p><p>Line two.</p></div>
<div class="status">Status: Completed</div>
<div class="cover"><img data-lazy-src="/covers/one.jpg"></div>
</body></html>`)

	m := ExtractDetails(doc, &DetailSelectors{
		Title:       "h1",
		Author:      ".author",
		Artist:      ".artist",
		Description: ".summary",
		Genre:       "",
		Status:      ".status",
		Cover:       ".cover img",
	}, testBase)

	assert.Equal(t, "The Title", m.Title)
	assert.Equal(t, "Jane Doe", m.Author)
	assert.Empty(t, m.Artist)
	assert.Empty(t, m.Genre)
	assert.Equal(t, "Line one.Line two.", m.Description)
	assert.Equal(t, providers.StatusCompleted, m.Status)
	assert.Equal(t, "/covers/one.jpg", m.ThumbnailURL)
	assert.Equal(t, "/novel/one", m.URL)
}

// TestExtractDetails_nilSelectors verifies that a delegated config with
// no detail selectors yields an empty record.
func TestExtractDetails_nilSelectors(t *testing.T) {
	doc := newDoc(t, testBase, `<h1>x</h1>`)
	assert.Equal(t, providers.Manga{}, ExtractDetails(doc, nil, testBase))
}

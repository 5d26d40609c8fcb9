package custom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExpand verifies placeholder substitution and page-1 elision.
func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		page     int
		query    string
		auxID    string
		want     string
	}{
		{"path page elided on page 1", "{baseUrl}/list/{page}", 1, "", "", "https://x.com/list"},
		{"path page substituted", "{baseUrl}/list/{page}", 3, "", "", "https://x.com/list/3"},
		{"trailing query page elided", "{baseUrl}?s={query}&page={page}", 1, "foo bar", "", "https://x.com?s=foo%20bar"},
		{"trailing query page substituted", "{baseUrl}?s={query}&page={page}", 2, "foo bar", "", "https://x.com?s=foo%20bar&page=2"},
		{"leading page param keeps query", "{baseUrl}/list?page={page}&sort=new", 1, "", "", "https://x.com/list?sort=new"},
		{"pg form substituted", "{baseUrl}/list?pg={page}", 1, "", "", "https://x.com/list?pg=1"},
		{"unknown form substituted", "{baseUrl}/list?p={page}", 1, "", "", "https://x.com/list?p=1"},
		{"mixed forms substitute everywhere", "{baseUrl}/a/{page}?pg={page}", 1, "", "", "https://x.com/a/1?pg=1"},
		{"no page placeholder", "{baseUrl}/popular/", 4, "", "", "https://x.com/popular"},
		{"novel id is literal", "{baseUrl}/ajax/chapters/{novelId}", 1, "", "abc-123", "https://x.com/ajax/chapters/abc-123"},
		{"query is utf-8 encoded", "{baseUrl}/search/{query}", 1, "café & co", "", "https://x.com/search/caf%C3%A9%20%26%20co"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.template, testBase, tt.page, tt.query, tt.auxID))
		})
	}
}

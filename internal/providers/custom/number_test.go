package custom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChapterNumber(t *testing.T) {
	tests := []struct {
		href, name string
		want       float64
	}{
		{"/n/x/chapter-12", "Chapter 12: The Storm", 12},
		{"/n/x/c", "Ch. 7.5 - Interlude", 7.5},
		{"/n/x/c", "Vol. 2 Chapter 14", 14},
		{"/n/x/c", "105. Return", 105},
		{"/n/x/chapter-0010", "Side story", 10},
		{"/n/x/vol-1/ch-3", "Side story", 3},
		{"/n/x/chapter_4-5/", "Side story", 4.5},
		{"/read/x/77", "Side story", 77},
		{"/n/x/extra", "Prologue", -1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, ChapterNumber(tt.href, tt.name), 0.0001, tt.name+" "+tt.href)
	}
}

func TestLayoutDateParser(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	p := NewDateParser("02 Jan 2006")
	p.Now = func() time.Time { return now }

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"05 Feb 2023", time.Date(2023, 2, 5, 0, 0, 0, 0, time.UTC), true},
		{"March 3, 2022", time.Date(2022, 3, 3, 0, 0, 0, 0, time.UTC), true},
		{"not a date at all", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := p.Parse(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}

	assert.Zero(t, timestamp(p, "garbage"))
	assert.Zero(t, timestamp(nil, "2024-01-05"))
}

// TestLayoutDateParser_relative verifies the phrases handed to
// go-dateparser, relative to the parser's clock.
func TestLayoutDateParser_relative(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	p := NewDateParser()
	p.Now = func() time.Time { return now }

	days := []struct {
		in   string
		want time.Time
	}{
		{"  yesterday ", now.AddDate(0, 0, -1)},
		{"3 days ago", now.AddDate(0, 0, -3)},
		{"2 weeks ago", now.AddDate(0, 0, -14)},
		{"hace 3 días", now.AddDate(0, 0, -3)},
	}

	for _, tt := range days {
		got, ok := p.Parse(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want.Format("2006-01-02"), got.UTC().Format("2006-01-02"), tt.in)
	}

	got, ok := p.Parse("an hour ago")
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(-time.Hour), got, time.Minute)
}

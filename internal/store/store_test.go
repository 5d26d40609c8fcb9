package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "data", "sources.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func testConfig(name string) custom.ScrapingConfig {
	return custom.ScrapingConfig{
		Name:               name,
		BaseURL:            "https://x.com",
		Language:           "en",
		IsNovelContent:     true,
		PopularURLTemplate: "{baseUrl}/popular/{page}",
		SearchURLTemplate:  "{baseUrl}/search?q={query}",
		Selectors: custom.SelectorGroups{
			Popular:  &custom.MangaListSelectors{List: ".item"},
			Details:  &custom.DetailSelectors{Title: "h1"},
			Chapters: &custom.ChapterSelectors{List: "li"},
			Content:  &custom.ContentSelectors{Primary: "#content"},
		},
	}
}

// TestStore_crud verifies create, get, update, list and delete.
func TestStore_crud(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	created, err := s.Create(ctx, testConfig("Beta"))
	require.NoError(t, err)
	assert.Equal(t, custom.GenerateID("Beta", "https://x.com"), created.ID)

	_, err = s.Create(ctx, testConfig("Alpha"))
	require.NoError(t, err)

	rec, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, rec.Config)
	assert.Equal(t, int64(1_700_000_000_000), rec.CreatedAt.UnixMilli())

	renamed := created
	renamed.Name = "Beta Renamed"
	s.now = func() time.Time { return time.UnixMilli(1_700_000_500_000) }
	require.NoError(t, s.Update(ctx, renamed))

	rec, err = s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beta Renamed", rec.Config.Name)
	assert.Equal(t, created.ID, rec.Config.ID)
	assert.True(t, rec.UpdatedAt.After(rec.CreatedAt))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Config.Name)
	assert.Equal(t, "Beta Renamed", list[1].Config.Name)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestStore_errors verifies the sentinel errors and write validation.
func TestStore_errors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Create(ctx, testConfig("Dup"))
	require.NoError(t, err)

	_, err = s.Create(ctx, testConfig("Dup"))
	assert.ErrorIs(t, err, ErrExists)

	missing := testConfig("Missing")
	assert.ErrorIs(t, s.Update(ctx, missing), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 12345), ErrNotFound)

	bad := testConfig("Bad")
	bad.Selectors.Details = nil
	_, err = s.Create(ctx, bad)
	assert.ErrorIs(t, err, custom.ErrInvalidConfig)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// TestStore_exportImport verifies that an exported config imports into a
// fresh store unchanged.
func TestStore_exportImport(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t)
	dst := openTestStore(t)

	cfg := testConfig("Shared")
	cfg.Headers = custom.Headers{{Name: "Referer", Value: "https://x.com/"}}
	created, err := src.Create(ctx, cfg)
	require.NoError(t, err)

	data, err := src.Export(ctx, created.ID)
	require.NoError(t, err)

	imported, err := dst.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, created, imported)

	_, err = dst.Import(ctx, []byte(`{"name": "broken"}`))
	assert.ErrorIs(t, err, custom.ErrInvalidConfig)

	_, err = src.Export(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadInto(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"One", "Two"} {
		_, err := s.Create(ctx, testConfig(name))
		require.NoError(t, err)
	}

	reg := providers.NewRegistry()
	n, err := s.LoadInto(ctx, reg, func(cfg custom.ScrapingConfig) providers.Source {
		return custom.New(cfg, nil)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	src, ok := reg.Get(custom.GenerateID("Two", "https://x.com"))
	require.True(t, ok)
	assert.Equal(t, "Two", src.Name())
}

package chapters

import (
	"path/filepath"
	"testing"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/stretchr/testify/assert"
)

func TestChapter_names(t *testing.T) {
	tests := []struct {
		name   string
		ch     Chapter
		folder string
		output string
	}{
		{
			name:   "plain number",
			ch:     Chapter{Chapter: providers.Chapter{Name: "Chapter 12", Number: 12}, Index: 3},
			folder: "chapter_012_tmp",
			output: "chapter_012.zip",
		},
		{
			name:   "titled",
			ch:     Chapter{Chapter: providers.Chapter{Name: "Chapter 12: The Fall (Part 1)", Number: 12}},
			folder: "chapter_012_the_fall_part_1_tmp",
			output: "chapter_012_the_fall_part_1.zip",
		},
		{
			name:   "fractional",
			ch:     Chapter{Chapter: providers.Chapter{Name: "Ch. 28.5", Number: 28.5}},
			folder: "chapter_028_5_tmp",
			output: "chapter_028_5.zip",
		},
		{
			name:   "unknown number",
			ch:     Chapter{Chapter: providers.Chapter{Name: "Prologue", Number: -1}, Index: 1},
			folder: "chapter_001_prologue_tmp",
			output: "chapter_001_prologue.zip",
		},
		{
			name:   "large number",
			ch:     Chapter{Chapter: providers.Chapter{Name: "Episode 1204 — Finale", Number: 1204}},
			folder: "chapter_1204_finale_tmp",
			output: "chapter_1204_finale.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.folder, tt.ch.FolderName())
			assert.Equal(t, tt.output, tt.ch.OutputName(true))
		})
	}
}

func TestChapter_OutputPath(t *testing.T) {
	ch := Chapter{Chapter: providers.Chapter{Name: "Chapter 3", Number: 3}}

	assert.Equal(t, filepath.Join("out", "chapter_003.cbz"), ch.OutputPath("out", false))
	assert.Equal(t, filepath.Join("out", "chapter_003.zip"), ch.OutputPath("out", true))
}

func TestWrap(t *testing.T) {
	all := []providers.Chapter{
		{URL: "/c/1", Number: -1},
		{URL: "/c/2", Number: -1},
		{URL: "/c/3", Number: -1},
	}

	got := Wrap(all, providers.SelectList(all, "3,1"))

	assert.Equal(t, 3, got[0].Index)
	assert.Equal(t, "003", got[0].Label())
	assert.Equal(t, 1, got[1].Index)

	orphan := Wrap(all, []providers.Chapter{{URL: "/elsewhere", Number: -1}})
	assert.Equal(t, 1, orphan[0].Index)
}

// Package chapters names chapter downloads on disk.
package chapters

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/util"
)

// Chapter is a selected chapter with its 1-based position in the full
// source list, used when no number could be derived.
type Chapter struct {
	providers.Chapter
	Index int
}

// Wrap pairs each selected chapter with its position in all.
func Wrap(all, selected []providers.Chapter) []Chapter {
	pos := make(map[string]int, len(all))
	for i, c := range all {
		if _, seen := pos[c.URL]; !seen {
			pos[c.URL] = i + 1
		}
	}

	out := make([]Chapter, len(selected))
	for i, c := range selected {
		out[i] = Chapter{Chapter: c, Index: pos[c.URL]}
		if out[i].Index == 0 {
			out[i].Index = i + 1
		}
	}

	return out
}

var (
	reUnderscore = regexp.MustCompile(`_+`)
	reNumbered   = regexp.MustCompile(`^(chapter|ch|episode|ep)_?\d+(_\d+)?(_|$)`)
)

func sanitize(s string) string {
	s = strings.ToLower(s)

	repl := strings.NewReplacer(
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		":", "_",
		" ", "_",
		"(", "",
		")", "",
	)
	s = repl.Replace(s)

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = reUnderscore.ReplaceAllString(string(clean), "_")

	return strings.Trim(s, "_")
}

// Label is the zero-padded chapter number ("012", "012_5"), or the list
// position when the number is unknown.
func (c Chapter) Label() string {
	n := c.Number
	if n < 0 {
		return fmt.Sprintf("%03d", c.Index)
	}

	whole, frac, _ := strings.Cut(strconv.FormatFloat(n, 'f', -1, 64), ".")
	if len(whole) < 3 {
		whole = strings.Repeat("0", 3-len(whole)) + whole
	}

	lbl := whole
	if frac != "" {
		lbl += "_" + frac
	}

	return lbl
}

func (c Chapter) baseName() string {
	lbl := "chapter_" + c.Label()

	title := sanitize(c.Name)
	title = reNumbered.ReplaceAllString(title, "")
	title = strings.Trim(title, "_")

	if title != "" {
		return lbl + "_" + title
	}
	return lbl
}

func (c Chapter) FolderName() string {
	return c.baseName() + util.TmpSuffix
}

// OutputName is the archive name: .zip for novel text, .cbz for images.
func (c Chapter) OutputName(novel bool) string {
	if novel {
		return c.baseName() + ".zip"
	}
	return c.baseName() + ".cbz"
}

func (c Chapter) OutputPath(out string, novel bool) string {
	return filepath.Join(out, c.OutputName(novel))
}

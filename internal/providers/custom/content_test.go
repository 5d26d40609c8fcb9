package custom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtractContent_fallbackChain verifies primary then fallbacks in
// order, and "" when nothing matches.
func TestExtractContent_fallbackChain(t *testing.T) {
	sel := &ContentSelectors{
		Primary:   ".missing",
		Fallbacks: []string{".also-missing", ".real-content"},
	}

	doc := newDoc(t, "https://x.com/c/1", `<div class="real-content"><p>Hello</p></div>`)
	assert.Equal(t, "<p>Hello</p>", ExtractContent(doc, sel, testBase))

	none := newDoc(t, "https://x.com/c/1", `<div class="other"><p>Hello</p></div>`)
	assert.Equal(t, "", ExtractContent(none, sel, testBase))
}

// TestExtractContent_blankPrimary verifies that a blank primary selector
// short-circuits before any fallback.
func TestExtractContent_blankPrimary(t *testing.T) {
	doc := newDoc(t, testBase, `<div class="text">x</div>`)

	assert.Equal(t, "", ExtractContent(doc, &ContentSelectors{Primary: " ", Fallbacks: []string{".text"}}, testBase))
	assert.Equal(t, "", ExtractContent(doc, nil, testBase))
}

// TestExtractContent_removeAndRewrite verifies ordered removal and media
// URL rewriting.
func TestExtractContent_removeAndRewrite(t *testing.T) {
	doc := newDoc(t, "https://x.com/novel/one/chapter-1", `<div id="content">
<div class="ads"><p class="keep">sponsored</p></div>
<p>Text</p>
<script>track()</script>
<img src="/img/1.png">
<img data-src="pics/2.png">
<video><source src="//cdn.x.com/v.mp4"></video>
</div>`)

	got := ExtractContent(doc, &ContentSelectors{
		Primary:         "#content",
		RemoveSelectors: []string{".ads", "script", ".keep"},
	}, testBase)

	assert.NotContains(t, got, "sponsored")
	assert.NotContains(t, got, "track()")
	assert.Contains(t, got, "<p>Text</p>")
	assert.Contains(t, got, `src="https://x.com/img/1.png"`)
	assert.Contains(t, got, `data-src="https://x.com/novel/one/pics/2.png"`)
	assert.Contains(t, got, `src="https://cdn.x.com/v.mp4"`)
	assert.False(t, strings.HasPrefix(got, "<div id=\"content\""))
}

package custom

import (
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
)

// DateParser turns a scraped chapter date into a timestamp. ok is false
// when the text is not understood.
type DateParser interface {
	Parse(text string) (t time.Time, ok bool)
}

var defaultLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
	"2006/01/02",
	"02.01.2006",
}

// LayoutDateParser tries the ISO date first, then extra layouts, then
// the common fallbacks. Anything else goes to go-dateparser, which
// covers relative phrases ("3 days ago", "yesterday") and other
// languages.
type LayoutDateParser struct {
	Layouts []string
	Now     func() time.Time
}

func NewDateParser(extra ...string) *LayoutDateParser {
	layouts := make([]string, 0, len(extra)+len(defaultLayouts))
	layouts = append(layouts, defaultLayouts[0])
	layouts = append(layouts, extra...)
	layouts = append(layouts, defaultLayouts[1:]...)

	return &LayoutDateParser{Layouts: layouts, Now: time.Now}
}

func (p *LayoutDateParser) Parse(text string) (time.Time, bool) {
	text = normalizeSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range p.Layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}

	return p.parseNatural(text)
}

func (p *LayoutDateParser) parseNatural(text string) (time.Time, bool) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	dt, err := dateparser.Parse(&dateparser.Configuration{CurrentTime: now()}, text)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}

	return dt.Time, true
}

// timestamp returns unix milliseconds, 0 when the date is unknown.
func timestamp(p DateParser, text string) int64 {
	if p == nil {
		return 0
	}

	t, ok := p.Parse(text)
	if !ok {
		return 0
	}

	return t.UnixMilli()
}

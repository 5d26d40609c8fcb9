package custom

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/google/uuid"
)

const (
	StepPopular  = "popular"
	StepDetails  = "details"
	StepChapters = "chapters"
	StepContent  = "content"
)

const previewRunes = 200

type TestStep struct {
	Name    string            `json:"name"`
	Success bool              `json:"success"`
	Skipped bool              `json:"skipped,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// TestReport is the outcome of one self-test run. OverallSuccess is the
// AND of every step that was not skipped.
type TestReport struct {
	RunID          uuid.UUID     `json:"runId"`
	SourceName     string        `json:"sourceName"`
	OverallSuccess bool          `json:"overallSuccess"`
	Steps          []TestStep    `json:"steps"`
	StartedAt      time.Time     `json:"startedAt"`
	Duration       time.Duration `json:"duration"`
}

// Failed returns the steps that ran and did not succeed.
func (r TestReport) Failed() []TestStep {
	var out []TestStep
	for _, s := range r.Steps {
		if !s.Skipped && !s.Success {
			out = append(out, s)
		}
	}

	return out
}

type TestOption func(*testRun)

// WithStepHook is called with every step as soon as it completes.
func WithStepHook(fn func(TestStep)) TestOption {
	return func(r *testRun) { r.hook = fn }
}

type testRun struct {
	report TestReport
	hook   func(TestStep)
}

func (r *testRun) record(step TestStep) {
	r.report.Steps = append(r.report.Steps, step)
	if !step.Skipped && !step.Success {
		r.report.OverallSuccess = false
	}
	if r.hook != nil {
		r.hook(step)
	}
}

func (r *testRun) skip(name, reason string) {
	r.record(TestStep{Name: name, Skipped: true, Message: "skipped: " + reason})
}

// RunTest walks popular, details, chapters and content in order. A step
// whose input is missing is skipped rather than failed; a failing step
// does not stop later steps that still have their input.
func RunTest(ctx context.Context, src *Source, opts ...TestOption) TestReport {
	r := &testRun{report: TestReport{
		RunID:          uuid.New(),
		SourceName:     src.Name(),
		OverallSuccess: true,
		Steps:          make([]TestStep, 0, 4),
		StartedAt:      time.Now(),
	}}
	for _, o := range opts {
		o(r)
	}

	first, ok := r.popular(ctx, src)
	if !ok {
		r.skip(StepDetails, "no popular items to open")
		r.skip(StepChapters, "no popular items to open")
		r.skip(StepContent, "no chapters to read")
		return r.finish()
	}

	r.details(ctx, src, first)

	chapter, ok := r.chapters(ctx, src, first)
	if !ok {
		r.skip(StepContent, "no chapters to read")
		return r.finish()
	}

	r.content(ctx, src, chapter)

	return r.finish()
}

func (r *testRun) finish() TestReport {
	r.report.Duration = time.Since(r.report.StartedAt)
	return r.report
}

func (r *testRun) popular(ctx context.Context, src *Source) (providers.Manga, bool) {
	page, err := src.GetPopular(ctx, 1)
	if err != nil {
		r.record(TestStep{Name: StepPopular, Message: err.Error()})
		return providers.Manga{}, false
	}

	n := len(page.Mangas)
	step := TestStep{
		Name:    StepPopular,
		Success: n > 0,
		Data: map[string]string{
			"count":       strconv.Itoa(n),
			"hasNextPage": strconv.FormatBool(page.HasNextPage),
		},
	}
	if n == 0 {
		step.Message = "no items found, check the list selector"
		r.record(step)
		return providers.Manga{}, false
	}

	step.Message = fmt.Sprintf("found %d items", n)
	step.Data["first"] = page.Mangas[0].Title
	step.Data["url"] = page.Mangas[0].URL
	r.record(step)

	return page.Mangas[0], true
}

func (r *testRun) details(ctx context.Context, src *Source, m providers.Manga) {
	d, err := src.GetDetails(ctx, m)
	if err != nil {
		r.record(TestStep{Name: StepDetails, Message: err.Error()})
		return
	}

	step := TestStep{
		Name:    StepDetails,
		Success: !blank(d.Title),
		Data: map[string]string{
			"title":  d.Title,
			"author": d.Author,
			"status": d.Status.String(),
			"cover":  d.ThumbnailURL,
		},
	}
	if step.Success {
		step.Message = "title: " + d.Title
	} else {
		step.Message = "no title found, check the details title selector"
	}

	r.record(step)
}

func (r *testRun) chapters(ctx context.Context, src *Source, m providers.Manga) (providers.Chapter, bool) {
	list, err := src.GetChapterList(ctx, m)
	if err != nil {
		r.record(TestStep{Name: StepChapters, Message: err.Error()})
		return providers.Chapter{}, false
	}

	n := len(list)
	step := TestStep{
		Name:    StepChapters,
		Success: n > 0,
		Data:    map[string]string{"count": strconv.Itoa(n)},
	}
	if n == 0 {
		step.Message = "no chapters found, check the chapter list selector"
		r.record(step)
		return providers.Chapter{}, false
	}

	step.Message = fmt.Sprintf("found %d chapters", n)
	step.Data["first"] = list[0].Name
	step.Data["url"] = list[0].URL
	r.record(step)

	return list[0], true
}

func (r *testRun) content(ctx context.Context, src *Source, c providers.Chapter) {
	html, err := src.FetchContent(ctx, c)
	if err != nil {
		r.record(TestStep{Name: StepContent, Message: err.Error()})
		return
	}

	n := utf8.RuneCountInString(html)
	step := TestStep{
		Name:    StepContent,
		Success: strings.TrimSpace(html) != "",
		Data: map[string]string{
			"length":  strconv.Itoa(n),
			"preview": preview(html, previewRunes),
		},
	}
	if step.Success {
		step.Message = fmt.Sprintf("%d characters", n)
	} else {
		step.Message = "no content found, check the content selectors"
	}

	r.record(step)
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

// Package downloader saves chapters of a custom source to archives:
// novel chapters as an HTML page in a .zip, image chapters as a .cbz.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"html"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/srcforge/internal/chapters"
	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/brogergvhs/srcforge/internal/ui"
	"github.com/brogergvhs/srcforge/internal/util"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyChapter = errors.New("chapter has no content")

// Source is what the downloader needs from a custom source.
type Source interface {
	Name() string
	IsNovel() bool
	URL(u string) string
	Headers() custom.Headers
	FetchContent(ctx context.Context, chapter providers.Chapter) (string, error)
	GetPageList(ctx context.Context, chapter providers.Chapter) ([]providers.Page, error)
}

type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Limiter throttles image requests; the fetcher's shared limiter fits.
type Limiter interface {
	Wait(ctx context.Context) error
}

type Options struct {
	OutputDir      string
	ChapterWorkers int
	ImageWorkers   int
	SkipBroken     bool
	KeepFolders    bool
	Attempts       int
	Limiter        Limiter
}

type Downloader struct {
	client *http.Client
	log    Logger
	opts   Options
}

func New(c *http.Client, log Logger, opts Options) *Downloader {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}

	return &Downloader{client: c, log: log, opts: opts}
}

// Result describes one finished chapter.
type Result struct {
	Archive string
	Pages   int
	Bytes   int64
	Skipped bool
}

// DownloadChapters downloads chapters in parallel. With SkipBroken a
// failed chapter is logged and counted; otherwise the first failure
// cancels the rest.
func (d *Downloader) DownloadChapters(ctx context.Context, src Source, list []chapters.Chapter, pm *ui.ProgressManager, stats *ui.Stats) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, d.opts.ChapterWorkers))

	for _, ch := range list {
		g.Go(func() error {
			unit := "pages"
			if src.IsNovel() {
				unit = "files"
			}
			ph := pm.Register("Ch."+ch.Label(), unit, true)

			res, err := d.DownloadChapter(ctx, src, ch, ph)
			if err != nil {
				stats.Failed.Add(1)
				ph.Note("failed")
				if d.opts.SkipBroken && ctx.Err() == nil {
					d.log.Errorf("%s: %v", ch.Name, err)
					return nil
				}
				return fmt.Errorf("%s: %w", ch.Name, err)
			}

			if res.Skipped {
				ph.Note("exists")
				return nil
			}

			stats.TotalChapters.Add(1)
			stats.TotalPages.Add(int64(res.Pages))
			stats.TotalBytes.Add(res.Bytes)
			return nil
		})
	}

	return g.Wait()
}

// DownloadChapter writes one chapter archive. An existing archive is
// left alone and reported as skipped.
func (d *Downloader) DownloadChapter(ctx context.Context, src Source, ch chapters.Chapter, ph *ui.ProgressHandle) (Result, error) {
	defer ph.MarkDone()

	novel := src.IsNovel()
	out := ch.OutputPath(d.opts.OutputDir, novel)
	if _, err := os.Stat(out); err == nil {
		d.log.Debugf("skip %s: %s exists\n", ch.Name, out)
		return Result{Archive: out, Skipped: true}, nil
	}

	folder := filepath.Join(d.opts.OutputDir, ch.FolderName())

	var (
		files []string
		bytes int64
		err   error
	)
	if novel {
		files, bytes, err = d.saveText(ctx, src, ch, folder, ph)
	} else {
		files, bytes, err = d.saveImages(ctx, src, ch, folder, ph)
	}
	if err != nil {
		_ = os.RemoveAll(folder)
		return Result{}, err
	}

	if err := util.CreateArchive(files, out); err != nil {
		_ = os.RemoveAll(folder)
		return Result{}, err
	}

	if !d.opts.KeepFolders {
		_ = os.RemoveAll(folder)
	}

	return Result{Archive: out, Pages: len(files), Bytes: bytes}, nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<h1>%s</h1>
%s
</body>
</html>
`

func (d *Downloader) saveText(ctx context.Context, src Source, ch chapters.Chapter, folder string, ph *ui.ProgressHandle) ([]string, int64, error) {
	ph.SetTotal(1)

	body, err := src.FetchContent(ctx, ch.Chapter)
	if err != nil {
		return nil, 0, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, 0, ErrEmptyChapter
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, 0, err
	}

	title := html.EscapeString(ch.Name)
	page := fmt.Sprintf(pageTemplate, title, title, body)

	file := filepath.Join(folder, "chapter.html")
	if err := os.WriteFile(file, []byte(page), 0o644); err != nil {
		return nil, 0, err
	}

	ph.Update(1, 1, int64(len(page)))

	return []string{file}, int64(len(page)), nil
}

func (d *Downloader) saveImages(ctx context.Context, src Source, ch chapters.Chapter, folder string, ph *ui.ProgressHandle) ([]string, int64, error) {
	pages, err := src.GetPageList(ctx, ch.Chapter)
	if err != nil {
		return nil, 0, err
	}

	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		u := p.ImageURL
		if u == "" {
			u = p.URL
		}
		urls = append(urls, src.URL(u))
	}
	if len(urls) == 0 {
		return nil, 0, ErrEmptyChapter
	}

	files, bytes, err := d.DownloadImagesConcurrently(ctx, urls, folder, src.URL(ch.URL), src.Headers(), d.opts.ImageWorkers, ph)
	if err != nil {
		return nil, bytes, err
	}
	if len(files) == 0 {
		return nil, bytes, ErrEmptyChapter
	}

	return files, bytes, nil
}

type chapterState struct {
	mu         sync.Mutex
	doneImages int
	total      int
	doneBytes  int64
}

func (cs *chapterState) report(ph *ui.ProgressHandle, finished int, delta int64) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.doneImages += finished
	cs.doneBytes += delta
	ph.Update(cs.doneImages, cs.total, cs.doneBytes)
}

// DownloadImagesConcurrently fetches urls into folder as page_001.ext,
// page_002.ext and so on. headers are the source's own request headers
// and override the defaults, Referer included. Files are returned in no
// particular order.
func (d *Downloader) DownloadImagesConcurrently(
	ctx context.Context,
	urls []string,
	folder string,
	referer string,
	headers custom.Headers,
	maxParallel int,
	ph *ui.ProgressHandle,
) ([]string, int64, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, 0, err
	}

	total := len(urls)
	cs := &chapterState{total: total}
	ph.Update(0, total, 0)

	var mu sync.Mutex
	var errs []error
	files := make([]string, 0, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(maxParallel, total)))

	for i, u := range urls {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			out := filepath.Join(folder, fmt.Sprintf("page_%03d%s", i+1, imageExt(u)))

			var last int64
			progress := func(done int64) {
				if delta := done - last; delta > 0 {
					last = done
					cs.report(ph, 0, delta)
				}
			}

			err := d.downloadWithRetry(gctx, u, out, referer, headers, progress)
			cs.report(ph, 1, 0)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("image %d: %w", i+1, err))
				return nil
			}
			files = append(files, out)
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return files, cs.doneBytes, err
	}
	if len(errs) > 0 && !d.opts.SkipBroken {
		return files, cs.doneBytes, fmt.Errorf("failed %d/%d images (use --skip-broken to continue): %w", len(errs), total, errors.Join(errs...))
	}

	return files, cs.doneBytes, nil
}

func imageExt(u string) string {
	p := u
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif":
		return ext
	default:
		return ".jpg"
	}
}

func (d *Downloader) downloadWithRetry(
	ctx context.Context,
	url string,
	output string,
	referer string,
	headers custom.Headers,
	progress func(done int64),
) error {
	var err error
	for attempt := 1; attempt <= d.opts.Attempts; attempt++ {
		err = d.download(ctx, url, output, referer, headers, progress)
		if err == nil || attempt == d.opts.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}

	return err
}

func (d *Downloader) download(
	ctx context.Context,
	u, output, referer string,
	headers custom.Headers,
	progress func(done int64),
) (err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	headers.Apply(req.Header)

	if d.opts.Limiter != nil {
		if err := d.opts.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	written, err := copyWithProgress(f, resp.Body, progress)
	if err != nil {
		return err
	}

	if progress != nil && resp.ContentLength > 0 && written < resp.ContentLength {
		progress(resp.ContentLength)
	}

	return nil
}

// Package fetch loads pages for custom sources and parses them with
// goquery.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/brogergvhs/srcforge/internal/util"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const maxBodySize = 10 << 20

type Options struct {
	UserAgent  string
	Cookie     string
	CookieFile string
	Timeout    time.Duration

	// Retries is the number of extra attempts; 0 never retries.
	Retries int

	// RateLimit is requests per second across all sources, 0 for none.
	RateLimit float64

	Transport http.RoundTripper
	Logger    interface {
		Debugf(string, ...any)
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// HTTPFetcher implements custom.Fetcher over net/http. Sources flagged
// for Cloudflare share a second client built on first use.
type HTTPFetcher struct {
	opts    Options
	plain   *http.Client
	limiter *rate.Limiter

	cfOnce sync.Once
	cf     *http.Client
	cfErr  error
}

func New(opts Options) (*HTTPFetcher, error) {
	opts.UserAgent = util.PickUserAgent(opts.UserAgent)
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	plain, err := util.NewHTTPClient(clientOptions(opts, false))
	if err != nil {
		return nil, err
	}

	f := &HTTPFetcher{opts: opts, plain: plain}
	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return f, nil
}

func clientOptions(opts Options, cloudflare bool) util.HTTPClientOptions {
	return util.HTTPClientOptions{
		Timeout:     opts.Timeout,
		UserAgent:   opts.UserAgent,
		Cookie:      opts.Cookie,
		CookieFile:  opts.CookieFile,
		Transport:   opts.Transport,
		Cloudflare:  cloudflare,
		DebugLogger: opts.Logger,
	}
}

// Client returns the HTTP client used for a source, for callers that
// download binary assets.
func (f *HTTPFetcher) Client(cloudflare bool) (*http.Client, error) {
	if !cloudflare {
		return f.plain, nil
	}

	f.cfOnce.Do(func() {
		f.cf, f.cfErr = util.NewHTTPClient(clientOptions(f.opts, true))
	})

	return f.cf, f.cfErr
}

// Wait blocks until the shared rate limit admits another request.
func (f *HTTPFetcher) Wait(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}

	return f.limiter.Wait(ctx)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, req custom.Request) (*goquery.Document, error) {
	client, err := f.Client(req.Cloudflare)
	if err != nil {
		return nil, err
	}

	httpReq, err := newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := f.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	if f.opts.Retries > 0 {
		resp, err = util.DoWithRetry(client, httpReq, f.opts.Retries+1, time.Second)
	} else {
		resp, err = client.Do(httpReq)
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: req.URL, Code: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.URL, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.URL, err)
	}
	doc.Url = resp.Request.URL

	return doc, nil
}

func newRequest(ctx context.Context, req custom.Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if req.Form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Headers.Apply(httpReq.Header)

	return httpReq, nil
}

// Package collyfetcher implements scraper.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/listing-scraper/internal/scraper"
)

// DefaultUserAgent mimics a desktop Chrome browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/60.0.3112.90 Safari/537.36"

const defaultTimeout = 30 * time.Second

// DefaultHeaders returns the browser-like header set sent with every request.
// Accept-Encoding is left to the transport, which advertises gzip and
// decompresses the response itself.
func DefaultHeaders() http.Header {
	return http.Header{
		"Accept":          {"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"},
		"Accept-Language": {"en-GB,en-US;q=0.8,en;q=0.6"},
		"Connection":      {"keep-alive"},
	}
}

// Config controls collector behavior.
type Config struct {
	UserAgent    string
	Headers      http.Header
	Timeout      time.Duration
	MaxBodyBytes int
}

// Fetcher implements scraper.Fetcher using the Colly collector. All fetches
// share one transport so connections are reused across workers.
type Fetcher struct {
	cfg           Config
	headers       http.Header
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// fetchState collects what the hooks observed for one visit.
type fetchState struct {
	page   scraper.Page
	status int
	err    error
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	headers := DefaultHeaders()
	for key, values := range cfg.Headers {
		headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit(), colly.UserAgent(cfg.UserAgent))
	if cfg.MaxBodyBytes > 0 {
		c.MaxBodySize = cfg.MaxBodyBytes
	}
	// Clones share the backend client, so transport and timeout are set once here.
	transport := newHTTPTransport()
	c.WithTransport(transport)
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		headers:       headers,
		transport:     transport,
		baseCollector: c,
	}
}

// Headers returns a copy of the request headers sent with every fetch.
func (f *Fetcher) Headers() http.Header {
	return f.headers.Clone()
}

// Fetch executes a single HTTP GET. A non-200 status yields a FetchFailure;
// network-level errors yield a TransportFailure.
func (f *Fetcher) Fetch(ctx context.Context, url string) (scraper.Page, error) {
	state := &fetchState{}
	start := time.Now()
	collector := f.buildCollector(ctx, start, state)

	if err := f.runCollector(ctx, collector, url, state); err != nil {
		return scraper.Page{}, err
	}
	if state.page.StatusCode != http.StatusOK {
		return scraper.Page{}, &scraper.Error{Kind: scraper.KindFetch, URL: url, Status: state.page.StatusCode}
	}
	return state.page, nil
}

func (f *Fetcher) buildCollector(ctx context.Context, start time.Time, state *fetchState) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.Context = ctx

	f.configureCollectorHooks(collector, start, state)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, start time.Time, state *fetchState) {
	hooks.OnRequest(func(r *colly.Request) {
		f.copyHeaders(r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		state.page = scraper.Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			state.status = r.StatusCode
		}
		state.err = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, state *fetchState) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return &scraper.Error{Kind: scraper.KindTransport, URL: url, Err: fmt.Errorf("colly fetch canceled: %w", ctx.Err())}
	case err := <-done:
		return classify(url, err, state)
	}
}

// classify maps the outcome of a visit onto the failure taxonomy.
func classify(url string, visitErr error, state *fetchState) error {
	// colly reports a bad status as its status text; the code itself is what callers need.
	if state.status != 0 {
		return &scraper.Error{Kind: scraper.KindFetch, URL: url, Status: state.status}
	}
	err := state.err
	if err == nil {
		err = visitErr
	}
	if err != nil {
		return &scraper.Error{Kind: scraper.KindTransport, URL: url, Err: fmt.Errorf("colly visit failed: %w", err)}
	}
	return nil
}

func (f *Fetcher) copyHeaders(r *colly.Request) {
	for key, values := range f.headers {
		r.Headers.Del(key)
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
	}
}

// Close releases idle keep-alive connections held by the shared transport.
func (f *Fetcher) Close() {
	if t, ok := f.transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

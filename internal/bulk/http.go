package bulk

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/KingPinFPV/basarometer-sub000/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	RatePerSec float64
	Retry      resilience.RetryConfig
}

// HTTPFetcher implements Fetcher over net/http with per-host rate limiting
// and retries on transient failures. Portal files ending in .gz are
// decompressed transparently.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiter returns the rate limiter for a host, creating it on first use.
func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.opts.RatePerSec), 1)
		f.limiters[host] = l
	}
	return l
}

// Download fetches the URL, honoring the per-host rate limit.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "bulk: parse url %s", rawURL)
	}

	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "bulk: rate limit wait")
	}

	return resilience.DoVal(ctx, f.opts.Retry, "bulk download", func(ctx context.Context) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "bulk: build request")
		}
		if f.opts.UserAgent != "" {
			req.Header.Set("User-Agent", f.opts.UserAgent)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "bulk: get %s", rawURL)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			err := eris.Errorf("bulk: get %s: status %d", rawURL, resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		if strings.HasSuffix(u.Path, ".gz") || resp.Header.Get("Content-Type") == "application/gzip" {
			gz, err := gzip.NewReader(resp.Body)
			if err != nil {
				resp.Body.Close()
				return nil, eris.Wrap(err, "bulk: gzip reader")
			}
			return &gzipBody{gz: gz, body: resp.Body}, nil
		}

		return resp.Body, nil
	})
}

// gzipBody closes both the gzip reader and the underlying response body.
type gzipBody struct {
	gz   *gzip.Reader
	body io.ReadCloser
}

func (g *gzipBody) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipBody) Close() error {
	gzErr := g.gz.Close()
	bodyErr := g.body.Close()
	if gzErr != nil {
		return gzErr
	}
	return bodyErr
}

// Package verify is the client for the browser-verifier service, the
// headless-browser sidecar that searches live retail sites and returns
// scraped product candidates.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/KingPinFPV/basarometer-sub000/internal/config"
	"github.com/KingPinFPV/basarometer-sub000/internal/hebrew"
	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/resilience"
)

// Client defines the browser-verifier operations.
type Client interface {
	// AvailableSites lists the sites the verifier can currently navigate.
	AvailableSites() []string
	// SearchSite scrapes candidate records for a query from one site.
	SearchSite(ctx context.Context, site, query string) ([]model.CandidateRecord, error)
}

// searchResponse is the verifier service payload. Prices arrive as the raw
// scraped text, shekel signs and all.
type searchResponse struct {
	Site     string          `json:"site"`
	Products []searchProduct `json:"products"`
}

type searchProduct struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
}

// SearchCache is a persistent cross-run cache for search results. The
// store's search_cache table satisfies it.
type SearchCache interface {
	GetCachedSearch(ctx context.Context, site, query string) ([]model.CandidateRecord, error)
	SetCachedSearch(ctx context.Context, site, query string, candidates []model.CandidateRecord, ttl time.Duration) error
}

// Option configures the verifier client.
type Option func(*httpClient)

// WithPersistentCache layers a cross-run cache under the in-memory one.
func WithPersistentCache(cache SearchCache) Option {
	return func(c *httpClient) {
		c.persistent = cache
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	baseURL string
	sites   []string
	http    *http.Client
	retry   resilience.RetryConfig

	cache      *gocache.Cache
	cacheTTL   time.Duration
	persistent SearchCache

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	ratePS   float64
}

// NewClient creates a verifier client from configuration. Search results
// are cached per site+query for the configured TTL so repeated queries
// within a run cost one scrape.
func NewClient(cfg config.VerifyConfig, opts ...Option) Client {
	ttl := time.Duration(cfg.CacheTTLMins) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	ratePS := cfg.RatePerSec
	if ratePS <= 0 {
		ratePS = 0.5
	}

	c := &httpClient{
		baseURL: cfg.ServiceURL,
		sites:   cfg.Sites,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry:    resilience.DefaultRetryConfig(),
		cache:    gocache.New(ttl, 2*ttl),
		cacheTTL: ttl,
		limiters: make(map[string]*rate.Limiter),
		ratePS:   ratePS,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) AvailableSites() []string {
	out := make([]string, len(c.sites))
	copy(out, c.sites)
	return out
}

// limiter returns the per-site rate limiter, creating it on first use.
// Scrapes are throttled per site so one run cannot hammer a retailer.
func (c *httpClient) limiter(site string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[site]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.ratePS), 1)
		c.limiters[site] = l
	}
	return l
}

func (c *httpClient) SearchSite(ctx context.Context, site, query string) ([]model.CandidateRecord, error) {
	cacheKey := site + "|" + query
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]model.CandidateRecord), nil
	}

	if c.persistent != nil {
		cached, err := c.persistent.GetCachedSearch(ctx, site, query)
		if err != nil {
			zap.L().Warn("verify: persistent cache read failed",
				zap.String("site", site),
				zap.Error(err),
			)
		} else if cached != nil {
			c.cache.Set(cacheKey, cached, gocache.DefaultExpiration)
			return cached, nil
		}
	}

	if err := c.limiter(site).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "verify: rate limit wait")
	}

	reqURL := fmt.Sprintf("%s/api/search?site=%s&q=%s",
		c.baseURL, url.QueryEscape(site), url.QueryEscape(query))

	body, err := resilience.DoVal(ctx, c.retry, "verifier search", func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "verify: create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "verify: search %s", site)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "verify: read response body")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("verify: search %s: status %d: %s", site, resp.StatusCode, string(data))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "verify: unmarshal search response")
	}

	candidates := make([]model.CandidateRecord, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if p.Name == "" {
			continue
		}
		price, _ := hebrew.ExtractPrice(p.Price)
		candidates = append(candidates, model.CandidateRecord{
			Name:     p.Name,
			Price:    price,
			Brand:    p.Brand,
			Category: p.Category,
			Site:     site,
		})
	}

	c.cache.Set(cacheKey, candidates, gocache.DefaultExpiration)

	if c.persistent != nil {
		if err := c.persistent.SetCachedSearch(ctx, site, query, candidates, c.cacheTTL); err != nil {
			zap.L().Warn("verify: persistent cache write failed",
				zap.String("site", site),
				zap.Error(err),
			)
		}
	}

	return candidates, nil
}

package pantry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"MetricRecipes/internal/model"
)

// HTTPSource fetches series from a REST endpoint. Responses are cached per
// ingredient for the configured TTL and requests are rate limited.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	cache   *cache.Cache
	limiter *rate.Limiter
}

// NewHTTPSource creates a new source with optional proxy support. A
// ratePerSec of zero disables rate limiting.
func NewHTTPSource(baseURL, apiKey, proxyURL string, ttl time.Duration, ratePerSec float64) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &HTTPSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		cache:   cache.New(ttl, 2*ttl),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (h *HTTPSource) Name() string { return "http" }

// seriesPayload is the expected JSON shape from the series endpoint.
type seriesPayload struct {
	Name   string              `json:"name"`
	Values map[string]*float64 `json:"values"`
}

func (h *HTTPSource) FetchSeries(ctx context.Context, name string) (model.Series, error) {
	if cached, ok := h.cache.Get(name); ok {
		return cached.(model.Series), nil
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/series?name=%s", h.BaseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch series: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload seriesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode series: %w", err)
	}
	series := model.Series(payload.Values)
	if series == nil {
		series = model.Series{}
	}
	h.cache.Set(name, series, cache.DefaultExpiration)
	return series, nil
}

// Invalidate drops every cached series.
func (h *HTTPSource) Invalidate() {
	h.cache.Flush()
}

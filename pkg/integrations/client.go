package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/helloworldx64/craftpacker/pkg/cache"
	"github.com/helloworldx64/craftpacker/pkg/observability"
	"github.com/helloworldx64/craftpacker/pkg/ratelimit"
)

// Client provides shared HTTP functionality for catalog API clients.
// It handles rate limiting, caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	limiter *ratelimit.Limiter
	backoff cache.Backoff
	headers map[string]string
}

// Options configures a [Client]. Zero values select the defaults noted on
// each field.
type Options struct {
	// HTTP is the underlying client. Defaults to [NewHTTPClient].
	HTTP *http.Client
	// Cache stores decoded responses. Defaults to a [cache.NullCache].
	Cache cache.Cache
	// TTL is the lifetime of cached responses. Zero means no expiry.
	TTL time.Duration
	// Limiter gates every outbound request. Nil disables rate limiting.
	Limiter *ratelimit.Limiter
	// Backoff is the retry schedule for transient failures.
	// Defaults to [cache.DefaultBackoff].
	Backoff cache.Backoff
	// Headers are applied to all requests made through this client.
	Headers map[string]string
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:    opts.HTTP,
		cache:   opts.Cache,
		ttl:     opts.TTL,
		limiter: opts.Limiter,
		backoff: opts.Backoff,
		headers: opts.Headers,
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.backoff.Attempts <= 0 {
		c.backoff = cache.DefaultBackoff
	}
	return c
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Transient fetch failures are retried according to the client's backoff.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	keyType := keyType(key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, keyType)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
	}

	if err := c.backoff.Retry(ctx, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, keyType, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It waits on the client's rate limiter first. Retries are the caller's
// concern (see [Client.Cached]).
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// keyType is the namespace part of a cache key built by [cache.Key].
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "http"
}

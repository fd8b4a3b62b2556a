package integrations

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/helloworldx64/craftpacker/pkg/cache"
)

const (
	// metadataTimeout bounds one catalog metadata request end to end.
	metadataTimeout = 10 * time.Second

	// transferHeaderTimeout bounds the wait for response headers on file
	// transfers. The body itself has no deadline.
	transferHeaderTimeout = 30 * time.Second
)

var (
	// ErrNotFound is returned when a project or version doesn't exist in the catalog.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

// NewHTTPClient creates an HTTP client with a standard timeout for catalog requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: metadataTimeout}
}

// NewTransferClient creates an HTTP client for file downloads: no overall
// deadline, but a bounded wait for the server to start responding.
func NewTransferClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ResponseHeaderTimeout: transferHeaderTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConnsPerHost:   8,
		},
	}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// PathEscape percent-encodes a single path segment.
func PathEscape(s string) string { return url.PathEscape(s) }

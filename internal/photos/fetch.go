// Package photos downloads remote profile images for the address book.
package photos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rhystmorgan/phonebook/internal/metrics"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultTTL     = 10 * time.Minute
	MaxBytes       = 4 << 20
)

// Fetcher downloads profile photos, serving repeats from its cache.
type Fetcher struct {
	client  *http.Client
	cache   *Cache
	metrics *metrics.Metrics
}

type Option func(*Fetcher)

func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.client = hc
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

func NewFetcher(cache *Cache, opts ...Option) *Fetcher {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	f := &Fetcher{
		client: &http.Client{Timeout: DefaultTimeout},
		cache:  cache,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the image at url. A blank url yields no photo and no error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil
	}
	if data, ok := f.cache.Get(url); ok {
		return data, nil
	}

	start := time.Now()
	data, err := f.download(ctx, url)
	f.metrics.ObserveRequest("photo", err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	f.cache.Set(url, data)
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("photo larger than %d bytes", MaxBytes)
	}
	return data, nil
}

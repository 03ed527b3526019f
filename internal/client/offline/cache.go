// Package offline is a cache-first asset fetcher mirroring the web client's
// service worker: a bounded in-memory cache primed with the app shell.
package offline

import (
	"container/list"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

const (
	// maxEntries bounds the cache; the oldest entry is evicted beyond it.
	maxEntries = 100
	// sizeCeiling is advisory only. Usage reports against it, nothing is
	// evicted for crossing it.
	sizeCeiling = 20 * 1024 * 1024
)

// Asset is one cached response body.
type Asset struct {
	URL         string
	ContentType string
	Body        []byte
}

// Usage is an advisory snapshot of cache occupancy.
type Usage struct {
	Entries      int
	Bytes        int64
	CeilingBytes int64
	OverCeiling  bool
}

// Cache fetches assets cache-first. Only 200 responses are cached; misses and
// errors pass straight through to the caller.
type Cache struct {
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[string]*list.Element // URL -> element holding *Asset
	order   *list.List               // front = oldest
	bytes   int64
}

func NewCache(httpClient *http.Client, logger *slog.Logger) *Cache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Cache{
		httpClient: httpClient,
		logger:     logger,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Prime fetches and caches each URL up front. Individual failures are logged
// and skipped so one bad asset does not block the rest of the shell.
func (c *Cache) Prime(ctx context.Context, urls []string) {
	for _, u := range urls {
		if _, err := c.Fetch(ctx, u); err != nil {
			c.logger.Warn("failed to prime asset", "url", u, "error", err)
		}
	}
}

// Fetch returns the cached asset for url, fetching and caching it on a miss.
func (c *Cache) Fetch(ctx context.Context, url string) (Asset, error) {
	c.mu.Lock()
	if el, ok := c.entries[url]; ok {
		asset := el.Value.(*Asset)
		c.mu.Unlock()
		return *asset, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to fetch asset: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to read asset: %w", err)
	}

	asset := Asset{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}

	// Non-200 responses are served but never cached, so a transient error
	// page cannot shadow the real asset forever.
	if resp.StatusCode != http.StatusOK {
		return asset, nil
	}

	c.store(&asset)
	return asset, nil
}

func (c *Cache) store(asset *Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[asset.URL]; ok {
		old := el.Value.(*Asset)
		c.bytes += int64(len(asset.Body)) - int64(len(old.Body))
		el.Value = asset
		return
	}

	c.entries[asset.URL] = c.order.PushBack(asset)
	c.bytes += int64(len(asset.Body))

	for len(c.entries) > maxEntries {
		oldest := c.order.Front()
		evicted := oldest.Value.(*Asset)
		c.order.Remove(oldest)
		delete(c.entries, evicted.URL)
		c.bytes -= int64(len(evicted.Body))
		c.logger.Debug("evicted asset", "url", evicted.URL)
	}

	if c.bytes > sizeCeiling {
		c.logger.Warn("asset cache over advisory ceiling",
			"bytes", c.bytes, "ceiling", int64(sizeCeiling))
	}
}

// Usage reports current occupancy against the advisory ceiling.
func (c *Cache) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Usage{
		Entries:      len(c.entries),
		Bytes:        c.bytes,
		CeilingBytes: sizeCeiling,
		OverCeiling:  c.bytes > sizeCeiling,
	}
}

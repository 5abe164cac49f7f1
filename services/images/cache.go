package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/sourcegraph/conc/pool"

	"cinematch/utils"
)

const (
	// cacheDuration guards the whole persistent tier with one expiry mark;
	// every network success pushes it out again.
	cacheDuration = 7 * 24 * time.Hour

	cacheFileName  = "image_cache.json"
	expiryFileName = "image_cache_expiry"
)

// fallbackImages are deterministic stand-ins used whenever the search
// service fails. The same title always maps to the same stock image.
var fallbackImages = []string{
	"https://images.pexels.com/photos/7991579/pexels-photo-7991579.jpeg?auto=compress&cs=tinysrgb&w=400&h=600&dpr=1",
	"https://images.pexels.com/photos/7991319/pexels-photo-7991319.jpeg?auto=compress&cs=tinysrgb&w=400&h=600&dpr=1",
	"https://images.pexels.com/photos/796206/pexels-photo-796206.jpeg?auto=compress&cs=tinysrgb&w=400&h=600&dpr=1",
	"https://images.pexels.com/photos/7991622/pexels-photo-7991622.jpeg?auto=compress&cs=tinysrgb&w=400&h=600&dpr=1",
	"https://images.pexels.com/photos/33129/popcorn-movie-party-entertainment.jpg?auto=compress&cs=tinysrgb&w=400&h=600&dpr=1",
}

// Cache resolves movie titles to poster URLs through a two-tier cache: an
// in-memory map with session lifetime and a persistent JSON blob governed by
// a single global expiry timestamp. Resolution never fails; upstream errors
// degrade to a deterministic stock image.
type Cache struct {
	mu         sync.Mutex
	memory     map[string]string
	persistent map[string]string

	dir        string
	searchURL  string
	httpc      *http.Client
	now        func() time.Time
}

// Stats describes cache occupancy for diagnostics.
type Stats struct {
	MemorySize     int        `json:"memorySize"`
	PersistentSize int        `json:"persistentSize"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Data struct {
		ImageURL string `json:"image_url"`
	} `json:"data"`
}

// NewCache loads the persistent tier from dir, discarding it wholesale when
// the global expiry has passed. searchURL is the image search service base
// URL (the client posts to <searchURL>/search).
func NewCache(dir, searchURL string, httpc *http.Client) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image cache dir: %w", err)
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}

	c := &Cache{
		memory:     make(map[string]string),
		persistent: make(map[string]string),
		dir:        dir,
		searchURL:  strings.TrimRight(searchURL, "/"),
		httpc:      httpc,
		now:        time.Now,
	}
	c.loadPersistent()
	return c, nil
}

// Resolve returns a poster URL for the title. Lookup order: memory tier,
// persistent tier (hit promoted to memory), then the search service. Any
// upstream failure yields the title's stock fallback, which is cached in
// both tiers like a real result.
func (c *Cache) Resolve(ctx context.Context, title string) string {
	key := cacheKey(title)

	c.mu.Lock()
	if url, ok := c.memory[key]; ok {
		c.mu.Unlock()
		return url
	}
	if url, ok := c.persistent[key]; ok {
		c.memory[key] = url
		c.mu.Unlock()
		return url
	}
	c.mu.Unlock()

	url, err := c.fetch(ctx, title)
	if err != nil {
		log.Printf("[images] fetch %q failed, using fallback: %v", title, err)
		url = FallbackFor(title)
		c.store(key, url, false)
		return url
	}

	c.store(key, url, true)
	return url
}

// Preload resolves every title concurrently and waits for all of them.
// Individual failures are already absorbed by Resolve, so Preload never
// reports an error.
func (c *Cache) Preload(ctx context.Context, titles []string) {
	p := pool.New().WithMaxGoroutines(8)
	for _, title := range titles {
		p.Go(func() {
			c.Resolve(ctx, title)
		})
	}
	p.Wait()
}

// InvalidateAll clears both tiers and removes the persisted blob and expiry
// marker immediately.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory = make(map[string]string)
	c.persistent = make(map[string]string)
	for _, name := range []string{cacheFileName, expiryFileName} {
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[images] remove %s failed: %v", name, err)
		}
	}
}

// CacheStats reports tier sizes and the persistent-tier expiry.
func (c *Cache) CacheStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		MemorySize:     len(c.memory),
		PersistentSize: len(c.persistent),
	}
	if ts, ok := c.readExpiry(); ok {
		stats.ExpiresAt = &ts
	}
	return stats
}

// FallbackFor deterministically selects a stock image for a title, so a
// failing title is stable across sessions. The hash runs over UTF-16 code
// units and the absolute value is taken in 64-bit, where negating the
// minimum int32 stays positive.
func FallbackFor(title string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(title)) {
		h = (h << 5) - h + int32(u)
	}
	idx := int64(h)
	if idx < 0 {
		idx = -idx
	}
	return fallbackImages[idx%int64(len(fallbackImages))]
}

func cacheKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func (c *Cache) fetch(ctx context.Context, title string) (string, error) {
	body, err := json.Marshal(searchRequest{Query: title})
	if err != nil {
		return "", fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if parsed.Data.ImageURL == "" {
		return "", errors.New("no image URL in response")
	}

	// Some stock providers hand back URLs with raw spaces
	encoded, err := utils.EncodeURLWithSpaces(parsed.Data.ImageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL: %w", err)
	}
	return encoded, nil
}

// store writes a resolved URL into both tiers. Only live results reset the
// global expiry; fallbacks piggyback on whatever window is active so a
// transient failure clears out with the rest of the tier.
func (c *Cache) store(key, url string, live bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory[key] = url
	c.persistent[key] = url
	if err := c.savePersistentLocked(live); err != nil {
		log.Printf("[images] persist cache failed: %v", err)
	}
}

func (c *Cache) loadPersistent() {
	expiry, ok := c.readExpiry()
	if !ok {
		return
	}
	if c.now().After(expiry) {
		// Whole-tier expiry: one stale mark wipes everything.
		_ = os.Remove(filepath.Join(c.dir, cacheFileName))
		_ = os.Remove(filepath.Join(c.dir, expiryFileName))
		return
	}

	data, err := os.ReadFile(filepath.Join(c.dir, cacheFileName))
	if err != nil {
		return
	}
	var blob map[string]string
	if err := json.Unmarshal(data, &blob); err != nil {
		log.Printf("[images] corrupt cache blob, starting empty: %v", err)
		return
	}
	c.persistent = blob
}

func (c *Cache) savePersistentLocked(resetExpiry bool) error {
	tmp := filepath.Join(c.dir, cacheFileName+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(c.persistent); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, filepath.Join(c.dir, cacheFileName)); err != nil {
		return err
	}

	if _, ok := c.readExpiry(); !ok || resetExpiry {
		expiry := c.now().Add(cacheDuration).UnixMilli()
		return os.WriteFile(filepath.Join(c.dir, expiryFileName), []byte(strconv.FormatInt(expiry, 10)), 0o644)
	}
	return nil
}

func (c *Cache) readExpiry() (time.Time, bool) {
	data, err := os.ReadFile(filepath.Join(c.dir, expiryFileName))
	if err != nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

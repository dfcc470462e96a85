package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"clipfinder/internal/models"
)

// ResultCache is a persistent store of resolved queries. Entries are keyed by
// the normalized query text and expire a fixed duration after they were
// written, regardless of how often they are read. Entries are returned
// verbatim until expiry.
type ResultCache struct {
	filePath string
	entries  map[string]cachedResult
	mu       sync.RWMutex
	ttl      time.Duration
}

type cachedResult struct {
	Query    string                  `json:"query"`
	Result   models.ResolutionResult `json:"result"`
	StoredAt time.Time               `json:"stored_at"`
}

// NewResultCache creates a cache backed by a JSON file under dataDir.
func NewResultCache(dataDir string, ttl time.Duration) (*ResultCache, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cache := &ResultCache{
		filePath: filepath.Join(dataDir, "resolved_queries.json"),
		entries:  make(map[string]cachedResult),
		ttl:      ttl,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load result cache: %w", err)
	}

	cache.sweepLocked()

	return cache, nil
}

// NormalizeQuery is the canonical cache-key form of a raw query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached result for a query if present and unexpired.
func (rc *ResultCache) Get(query string) (models.ResolutionResult, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	entry, ok := rc.entries[NormalizeQuery(query)]
	if !ok {
		return models.ResolutionResult{}, false
	}
	if time.Since(entry.StoredAt) >= rc.ttl {
		return models.ResolutionResult{}, false
	}
	return entry.Result, true
}

// Put stores a result under the normalized query. Concurrent writers for the
// same key race to last-write-wins, which is fine: identical queries produce
// idempotent entries within the TTL window.
func (rc *ResultCache) Put(query string, result models.ResolutionResult) error {
	key := NormalizeQuery(query)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.entries[key] = cachedResult{
		Query:    key,
		Result:   result,
		StoredAt: time.Now(),
	}
	return rc.save()
}

// Sweep drops expired entries and persists the survivors, returning how many
// entries were removed.
func (rc *ResultCache) Sweep() (int, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	removed := rc.sweepLocked()
	if removed == 0 {
		return 0, nil
	}
	return removed, rc.save()
}

// Len returns the number of entries currently held, expired or not.
func (rc *ResultCache) Len() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.entries)
}

func (rc *ResultCache) sweepLocked() int {
	cutoff := time.Now().Add(-rc.ttl)
	removed := 0

	for key, entry := range rc.entries {
		if entry.StoredAt.Before(cutoff) {
			delete(rc.entries, key)
			removed++
		}
	}
	return removed
}

func (rc *ResultCache) load() error {
	file, err := os.Open(rc.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run, start empty.
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var entries []cachedResult
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache data: %w", err)
	}

	for _, entry := range entries {
		rc.entries[entry.Query] = entry
	}
	return nil
}

func (rc *ResultCache) save() error {
	entries := make([]cachedResult, 0, len(rc.entries))
	for _, entry := range rc.entries {
		entries = append(entries, entry)
	}

	file, err := os.Create(rc.filePath)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

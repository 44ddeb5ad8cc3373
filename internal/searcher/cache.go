package searcher

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// fingerprint computes a deterministic cache key from the query and
// every option value. The query is case-folded only: every strategy is
// case-insensitive, but punctuation and interior whitespace change what
// the exact and prefix strategies see, so they must stay in the key.
func fingerprint(query string, opts Options) [32]byte {
	var data strings.Builder
	data.WriteString(strings.ToLower(query))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", opts.Limit))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%t|%t|%t|%t", opts.IncludeInactive, opts.IncludeChildren, opts.BillableOnly, opts.PrescribableOnly))
	data.WriteString("|")
	data.WriteString(opts.Category)
	data.WriteString("|")
	data.WriteString(string(opts.Vocabulary))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%.4f", opts.MinConfidence))

	return sha256.Sum256([]byte(data.String()))
}

// checkCache looks up a cached result and counts the hit or miss.
// A copy is returned so callers can't mutate the cached entry.
func (s *Searcher) checkCache(key [32]byte) (*types.SearchResult, bool) {
	s.cacheMu.RLock()
	cached, found := s.cache.Get(key)
	s.cacheMu.RUnlock()

	if !found {
		atomic.AddUint64(&s.misses, 1)
		return nil, false
	}

	atomic.AddUint64(&s.hits, 1)
	return copyResult(cached), true
}

// storeCache inserts a result copy. Results are deterministic functions
// of (query, options, store snapshot), so overwriting a concurrent
// write for the same key is harmless.
func (s *Searcher) storeCache(key [32]byte, result *types.SearchResult) {
	s.cacheMu.Lock()
	s.cache.Add(key, copyResult(result))
	s.cacheMu.Unlock()
}

// ClearCache empties the result cache. Safe to call concurrently with
// in-flight reads: readers observe either the old or the cleared state.
func (s *Searcher) ClearCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// copyResult clones a result's match list. Concept pointers are shared
// intentionally: concepts are immutable after load.
func copyResult(src *types.SearchResult) *types.SearchResult {
	dst := *src
	dst.Matches = make([]types.ConceptMatch, len(src.Matches))
	copy(dst.Matches, src.Matches)
	dst.Strategies = make([]string, len(src.Strategies))
	copy(dst.Strategies, src.Strategies)
	return &dst
}

// Statistics reports engine counters for the statistics surface
type Statistics struct {
	TotalConcepts  int      `json:"total_concepts"`
	ActiveConcepts int      `json:"active_concepts"`
	CacheHits      uint64   `json:"cache_hits"`
	CacheMisses    uint64   `json:"cache_misses"`
	CacheEntries   int      `json:"cache_entries"`
	Strategies     []string `json:"strategies"`
}

// Stats returns a snapshot of the engine counters
func (s *Searcher) Stats() Statistics {
	s.cacheMu.RLock()
	entries := s.cache.Len()
	s.cacheMu.RUnlock()

	return Statistics{
		TotalConcepts:  s.store.Len(),
		ActiveConcepts: s.store.ActiveCount(),
		CacheHits:      atomic.LoadUint64(&s.hits),
		CacheMisses:    atomic.LoadUint64(&s.misses),
		CacheEntries:   entries,
		Strategies:     s.StrategyNames(),
	}
}

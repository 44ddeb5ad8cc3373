package searcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/clinterm/clinterm-mcp/internal/hierarchy"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/internal/strategy"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

const (
	// DefaultLimit is the result count when the caller doesn't specify one
	DefaultLimit = 20
	// MaxLimit caps the result count
	MaxLimit = 100
	// DefaultWorkers is the batch fan-out width when unconfigured
	DefaultWorkers = 4
	// DefaultCacheSize bounds the LRU result cache when unconfigured
	DefaultCacheSize = 1000

	// childConfidenceDecay scales a parent's confidence for each child
	// appended through hierarchy expansion
	childConfidenceDecay = 0.9
)

// Options narrows and shapes a search
type Options struct {
	Limit            int
	IncludeInactive  bool
	IncludeChildren  bool // hierarchy expansion of surviving results
	Category         string
	Vocabulary       types.Vocabulary // empty means all vocabularies
	MinConfidence    float64
	BillableOnly     bool
	PrescribableOnly bool
	NoCache          bool
}

// Searcher coordinates the strategy pipeline, ranking, and the result
// cache. The store and indexes it reads are immutable; the cache is the
// only mutable state touched on the query path.
type Searcher struct {
	store    *store.Store
	hier     *hierarchy.Index
	pipeline []strategy.Strategy
	workers  int
	log      zerolog.Logger

	cache   *lru.Cache[[32]byte, *types.SearchResult]
	cacheMu sync.RWMutex
	hits    uint64
	misses  uint64
}

// New creates a searcher over the loaded indexes. cacheSize bounds the
// result cache; zero or negative selects the default.
func New(s *store.Store, h *hierarchy.Index, pipeline []strategy.Strategy, workers, cacheSize int, log zerolog.Logger) *Searcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[[32]byte, *types.SearchResult](cacheSize)
	if err != nil {
		// Only possible with a non-positive size
		panic(fmt.Sprintf("failed to create result cache: %v", err))
	}

	return &Searcher{
		store:    s,
		hier:     h,
		pipeline: pipeline,
		workers:  workers,
		log:      log,
		cache:    cache,
	}
}

// Search runs the full pipeline for one query. Empty or whitespace-only
// queries fail with ErrInvalidQuery.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) (*types.SearchResult, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.ErrInvalidQuery
	}

	normalizeOptions(&opts)

	var key [32]byte
	if !opts.NoCache {
		key = fingerprint(query, opts)
		if cached, ok := s.checkCache(key); ok {
			cached.Duration = time.Since(start)
			return cached, nil
		}
	}

	result := s.execute(ctx, query, opts)
	result.Duration = time.Since(start)

	if !opts.NoCache {
		s.storeCache(key, result)
	}

	return result, nil
}

// execute runs the strategies in priority order and ranks the output
func (s *Searcher) execute(ctx context.Context, query string, opts Options) *types.SearchResult {
	best := make(map[int32]strategy.Candidate)
	total := 0
	var contributed []string

	for _, strat := range s.pipeline {
		// Performance short-circuit: later strategies only run while the
		// candidate pool is below the requested limit.
		if len(best) >= opts.Limit {
			break
		}
		if ctx.Err() != nil {
			break
		}

		candidates := strat.Match(query, opts.Limit)
		if len(candidates) == 0 {
			continue
		}

		total += len(candidates)
		contributed = append(contributed, strat.Name())

		// Dedup by concept, keeping the highest-confidence candidate
		for _, c := range candidates {
			if prev, ok := best[c.Index]; !ok || c.Confidence > prev.Confidence {
				best[c.Index] = c
			}
		}
	}

	filtered := make([]strategy.Candidate, 0, len(best))
	for _, c := range best {
		if s.passes(c, opts) {
			filtered = append(filtered, c)
		}
	}

	if opts.IncludeChildren {
		filtered = s.expandChildren(filtered, opts)
	}

	sortCandidates(s.store, filtered)

	if len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	matches := make([]types.ConceptMatch, 0, len(filtered))
	for _, c := range filtered {
		matches = append(matches, types.ConceptMatch{
			Concept:    s.store.At(c.Index),
			Kind:       c.Kind,
			Confidence: c.Confidence,
		})
	}

	return &types.SearchResult{
		Query:           query,
		Matches:         matches,
		TotalCandidates: total,
		Strategies:      contributed,
	}
}

// expandChildren appends each surviving result's direct children with
// decayed confidence, skipping concepts already present or filtered out
func (s *Searcher) expandChildren(candidates []strategy.Candidate, opts Options) []strategy.Candidate {
	present := make(map[int32]struct{}, len(candidates))
	for _, c := range candidates {
		present[c.Index] = struct{}{}
	}

	expanded := candidates
	for _, c := range candidates {
		for _, child := range s.hier.Children(c.Index) {
			if _, dup := present[child]; dup {
				continue
			}
			cc := strategy.Candidate{
				Index:      child,
				Kind:       types.MatchHierarchy,
				Confidence: c.Confidence * childConfidenceDecay,
			}
			if !s.passes(cc, opts) {
				continue
			}
			present[child] = struct{}{}
			expanded = append(expanded, cc)
		}
	}

	return expanded
}

// passes applies the post-dedup filters to one candidate
func (s *Searcher) passes(c strategy.Candidate, opts Options) bool {
	concept := s.store.At(c.Index)

	if c.Confidence < opts.MinConfidence {
		return false
	}
	if !opts.IncludeInactive && !concept.Active {
		return false
	}
	if opts.Vocabulary != "" && concept.Vocabulary != opts.Vocabulary {
		return false
	}
	if opts.Category != "" && !strings.EqualFold(concept.Category, opts.Category) {
		return false
	}
	if opts.BillableOnly && !concept.Attributes.Billable {
		return false
	}
	if opts.PrescribableOnly && !concept.Attributes.Prescribable {
		return false
	}

	return true
}

// sortCandidates orders by confidence descending with lexicographic
// code order breaking ties, for determinism
func sortCandidates(s *store.Store, candidates []strategy.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return s.At(candidates[i].Index).Code < s.At(candidates[j].Index).Code
	})
}

// normalizeOptions fills defaults and clamps the limit
func normalizeOptions(opts *Options) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
}

// StrategyNames returns the names of the strategies in the pipeline, in
// priority order
func (s *Searcher) StrategyNames() []string {
	names := make([]string, 0, len(s.pipeline))
	for _, strat := range s.pipeline {
		names = append(names, strat.Name())
	}
	return names
}

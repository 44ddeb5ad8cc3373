// Package searcher coordinates the terminology search pipeline: strategy
// execution in priority order, cross-strategy deduplication, filtering,
// hierarchy expansion, ranking, and the query result cache.
//
// # Ranking
//
// Candidates from all strategies are merged by concept, keeping the
// highest-confidence match kind per concept. Filters (active-only,
// category, vocabulary, billable/prescribable eligibility) apply after
// dedup. The final list sorts by confidence descending with ties broken
// by code order, then truncates to the requested limit.
//
// # Caching
//
// Results are cached in a bounded LRU keyed by a SHA-256 fingerprint of
// the normalized query plus every option value. There is no TTL: the
// concept store never mutates during the process lifetime, so entries
// are invalidated only by ClearCache.
//
// # Batch search
//
// BatchSearch fans independent queries out over an errgroup-bounded
// worker pool. Each query's failure lands in its own map slot; batches
// always yield exactly one entry per distinct input query.
package searcher

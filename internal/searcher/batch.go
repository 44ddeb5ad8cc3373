package searcher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// BatchItem holds the outcome for one query of a batch: either a result
// or that query's error, never both
type BatchItem struct {
	Result *types.SearchResult
	Err    error
}

// BatchSearch fans N independent queries out over a bounded worker pool
// and gathers one entry per distinct input query. Per-query failures are
// captured in their slot; a single bad query never aborts the batch.
func (s *Searcher) BatchSearch(ctx context.Context, queries []string, opts Options) map[string]BatchItem {
	results := make(map[string]BatchItem, len(queries))

	// Pre-claim a slot per distinct query so the invariant holds even
	// when the context is cancelled mid-batch.
	distinct := make([]string, 0, len(queries))
	for _, q := range queries {
		if _, seen := results[q]; !seen {
			results[q] = BatchItem{}
			distinct = append(distinct, q)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	type outcome struct {
		query string
		item  BatchItem
	}
	outcomes := make(chan outcome, len(distinct))

	for _, q := range distinct {
		g.Go(func() error {
			res, err := s.Search(gctx, q, opts)
			select {
			case outcomes <- outcome{query: q, item: BatchItem{Result: res, Err: err}}:
			case <-gctx.Done():
			}
			// Errors are per-slot; never propagate through the group
			return nil
		})
	}

	_ = g.Wait()
	close(outcomes)

	for o := range outcomes {
		results[o.query] = o.item
	}

	// Slots whose worker never reported were cancelled
	for q, item := range results {
		if item.Result == nil && item.Err == nil {
			results[q] = BatchItem{Err: context.Cause(ctx)}
		}
	}

	return results
}

package rxnorm

import (
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// InteractionTable is a precomputed drug-drug interaction lookup keyed
// by unordered medication code pair. Built once at load, read-only after.
type InteractionTable struct {
	pairs map[[2]string]types.Interaction
}

// NewInteractionTable indexes interactions by normalized pair
func NewInteractionTable(interactions []types.Interaction) *InteractionTable {
	t := &InteractionTable{pairs: make(map[[2]string]types.Interaction, len(interactions))}
	for _, ix := range interactions {
		t.pairs[pairKey(ix.CodeA, ix.CodeB)] = ix
	}
	return t
}

// Check returns every known interaction among the given medications.
// Each unordered pair is checked exactly once; unknown codes simply
// produce no interactions.
func (t *InteractionTable) Check(codes []string) []types.Interaction {
	distinct := codes[:0:0]
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}

	var out []types.Interaction
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			if ix, ok := t.pairs[pairKey(distinct[i], distinct[j])]; ok {
				out = append(out, ix)
			}
		}
	}
	return out
}

// Len returns the number of known interaction pairs
func (t *InteractionTable) Len() int {
	return len(t.pairs)
}

// pairKey orders the two codes lexicographically so lookups are
// direction-independent
func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

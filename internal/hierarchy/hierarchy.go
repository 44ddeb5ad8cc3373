package hierarchy

import (
	"fmt"

	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// DefaultGraphDepth caps traversals over multi-parent (DAG) vocabularies.
// Tree vocabularies default to unbounded traversal.
const DefaultGraphDepth = 10

// Index holds parent and child adjacency over the concept arena.
// Edges are arena index lists, not pointers, so traversal allocates
// nothing beyond the visited set. Built once at load; read-only after.
type Index struct {
	store    *store.Store
	parents  [][]int32
	children [][]int32
}

// Build constructs the adjacency lists and validates structural
// invariants: parent references must resolve, and no cycles may exist.
// Tree-shaped vocabularies additionally reject multiple parents (already
// enforced by concept validation at load).
func Build(s *store.Store) (*Index, error) {
	n := s.Len()
	idx := &Index{
		store:    s,
		parents:  make([][]int32, n),
		children: make([][]int32, n),
	}

	for i := int32(0); i < int32(n); i++ {
		c := s.At(i)
		for _, pcode := range c.Parents {
			pi := s.IndexOf(pcode)
			if pi < 0 {
				return nil, fmt.Errorf("concept %q: unknown parent %q", c.Code, pcode)
			}
			idx.parents[i] = append(idx.parents[i], pi)
			idx.children[pi] = append(idx.children[pi], i)
		}
	}

	if err := idx.checkAcyclic(); err != nil {
		return nil, err
	}

	return idx, nil
}

// checkAcyclic runs a three-color DFS over the parent edges
func (idx *Index) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]byte, len(idx.parents))

	var visit func(i int32) error
	visit = func(i int32) error {
		color[i] = gray
		for _, p := range idx.parents[i] {
			switch color[p] {
			case gray:
				return fmt.Errorf("hierarchy cycle through %q", idx.store.At(p).Code)
			case white:
				if err := visit(p); err != nil {
					return err
				}
			}
		}
		color[i] = black
		return nil
	}

	for i := int32(0); i < int32(len(idx.parents)); i++ {
		if color[i] == white {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// Parents returns the direct parents of an arena index
func (idx *Index) Parents(i int32) []int32 {
	return idx.parents[i]
}

// Children returns the direct children of an arena index
func (idx *Index) Children(i int32) []int32 {
	return idx.children[i]
}

// ParentConcepts resolves the direct parents of a code
func (idx *Index) ParentConcepts(code string) ([]*types.Concept, error) {
	i := idx.store.IndexOf(code)
	if i < 0 {
		return nil, types.ErrNotFound
	}
	return idx.resolve(idx.parents[i]), nil
}

// ChildConcepts resolves the direct children of a code
func (idx *Index) ChildConcepts(code string) ([]*types.Concept, error) {
	i := idx.store.IndexOf(code)
	if i < 0 {
		return nil, types.ErrNotFound
	}
	return idx.resolve(idx.children[i]), nil
}

// Ancestors walks parent edges breadth-first and returns one slice per
// level: index 0 holds direct parents, index 1 grandparents, and so on.
// maxDepth 0 means unbounded for tree vocabularies; DAG vocabularies are
// capped at DefaultGraphDepth when unbounded is requested.
func (idx *Index) Ancestors(i int32, maxDepth int) [][]int32 {
	maxDepth = idx.effectiveDepth(i, maxDepth)

	var levels [][]int32
	visited := map[int32]struct{}{i: {}}
	frontier := idx.parents[i]

	for depth := 0; len(frontier) > 0 && (maxDepth == 0 || depth < maxDepth); depth++ {
		var level, next []int32
		for _, p := range frontier {
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}
			level = append(level, p)
			next = append(next, idx.parents[p]...)
		}
		if len(level) == 0 {
			break
		}
		levels = append(levels, level)
		frontier = next
	}

	return levels
}

// Descendants walks child edges breadth-first and returns a flat set of
// arena indices, excluding the start concept. Cycle-safe via visited set.
func (idx *Index) Descendants(i int32, maxDepth int) []int32 {
	maxDepth = idx.effectiveDepth(i, maxDepth)

	var out []int32
	visited := map[int32]struct{}{i: {}}
	frontier := idx.children[i]

	for depth := 0; len(frontier) > 0 && (maxDepth == 0 || depth < maxDepth); depth++ {
		var next []int32
		for _, c := range frontier {
			if _, seen := visited[c]; seen {
				continue
			}
			visited[c] = struct{}{}
			out = append(out, c)
			next = append(next, idx.children[c]...)
		}
		frontier = next
	}

	return out
}

// CommonAncestors returns the intersection of each concept's ancestor
// set, flattened
func (idx *Index) CommonAncestors(indices []int32) []int32 {
	if len(indices) == 0 {
		return nil
	}

	common := idx.ancestorSet(indices[0])
	for _, i := range indices[1:] {
		set := idx.ancestorSet(i)
		for a := range common {
			if _, ok := set[a]; !ok {
				delete(common, a)
			}
		}
		if len(common) == 0 {
			return nil
		}
	}

	out := make([]int32, 0, len(common))
	for a := range common {
		out = append(out, a)
	}
	return out
}

// IsAncestor reports whether a is a (transitive) ancestor of d
func (idx *Index) IsAncestor(a, d int32) bool {
	_, ok := idx.ancestorSet(d)[a]
	return ok
}

func (idx *Index) ancestorSet(i int32) map[int32]struct{} {
	set := make(map[int32]struct{})
	for _, level := range idx.Ancestors(i, 0) {
		for _, a := range level {
			set[a] = struct{}{}
		}
	}
	return set
}

// effectiveDepth applies the DAG safety cap when no bound was requested
func (idx *Index) effectiveDepth(i int32, maxDepth int) int {
	if maxDepth == 0 && idx.store.At(i).Vocabulary.MultiParent() {
		return DefaultGraphDepth
	}
	return maxDepth
}

// resolve maps arena indices to concept pointers
func (idx *Index) resolve(indices []int32) []*types.Concept {
	out := make([]*types.Concept, 0, len(indices))
	for _, i := range indices {
		out = append(out, idx.store.At(i))
	}
	return out
}

// Resolve exposes index-to-concept resolution for callers that traverse
// raw adjacency
func (idx *Index) Resolve(indices []int32) []*types.Concept {
	return idx.resolve(indices)
}

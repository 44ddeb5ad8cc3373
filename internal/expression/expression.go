package expression

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/clinterm/clinterm-mcp/internal/hierarchy"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// codePattern accepts a single identifier token after the operator
var codePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.]*$`)

// Interpreter evaluates the hierarchical constraint mini-language
// against the hierarchy index.
//
// Supported forms, prefix-operator on one identifier:
//
//	<X   descendants of X, excluding X
//	<<X  X plus its descendants
//	>X   ancestors of X, flattened, excluding X
//	>>X  X plus its flattened ancestors
//	X    the concept itself, empty when unknown
//
// Anything else fails with ErrUnsupportedExpression. This is
// intentionally the subset needed for hierarchical set retrieval, not a
// general constraint-language implementation.
type Interpreter struct {
	store *store.Store
	hier  *hierarchy.Index
}

// New creates an expression interpreter
func New(s *store.Store, h *hierarchy.Index) *Interpreter {
	return &Interpreter{store: s, hier: h}
}

// Execute evaluates an expression and returns the matching concepts in
// code order, with no duplicates
func (in *Interpreter) Execute(expr string) ([]*types.Concept, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, fmt.Errorf("empty expression: %w", types.ErrUnsupportedExpression)
	}

	op, code := splitOperator(trimmed)
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("%q: %w", expr, types.ErrUnsupportedExpression)
	}

	focus := in.store.IndexOf(strings.ToUpper(code))
	if focus < 0 {
		// Unknown focus concept evaluates to the empty set for every form
		return nil, nil
	}

	var indices []int32
	switch op {
	case "":
		indices = []int32{focus}
	case "<":
		indices = in.hier.Descendants(focus, 0)
	case "<<":
		indices = append([]int32{focus}, in.hier.Descendants(focus, 0)...)
	case ">":
		indices = flatten(in.hier.Ancestors(focus, 0))
	case ">>":
		indices = append([]int32{focus}, flatten(in.hier.Ancestors(focus, 0))...)
	}

	return in.sorted(indices), nil
}

// splitOperator peels the longest matching prefix operator
func splitOperator(expr string) (op, rest string) {
	switch {
	case strings.HasPrefix(expr, "<<"):
		return "<<", expr[2:]
	case strings.HasPrefix(expr, "<"):
		return "<", expr[1:]
	case strings.HasPrefix(expr, ">>"):
		return ">>", expr[2:]
	case strings.HasPrefix(expr, ">"):
		return ">", expr[1:]
	default:
		return "", expr
	}
}

func flatten(levels [][]int32) []int32 {
	var out []int32
	for _, level := range levels {
		out = append(out, level...)
	}
	return out
}

// sorted deduplicates and orders the result set by code
func (in *Interpreter) sorted(indices []int32) []*types.Concept {
	seen := make(map[int32]struct{}, len(indices))
	out := make([]*types.Concept, 0, len(indices))
	for _, i := range indices {
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, in.store.At(i))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Code < out[b].Code })
	return out
}

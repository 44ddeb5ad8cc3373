package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinterm/clinterm-mcp/internal/hierarchy"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// setupTestInterpreter builds a three-level SNOMED-shaped chain:
// 404684003 <- 64572001 <- 50043002 <- 82272006
func setupTestInterpreter(t *testing.T) *Interpreter {
	b := store.NewBuilder(4)
	add := func(code string, parents ...string) {
		require.NoError(t, b.Add(types.Concept{
			Code: code, Vocabulary: types.VocabSNOMED,
			Display: "Display " + code, Active: true, Parents: parents,
		}))
	}
	add("404684003")
	add("64572001", "404684003")
	add("50043002", "64572001")
	add("82272006", "50043002")

	s := b.Build()
	hier, err := hierarchy.Build(s)
	require.NoError(t, err)
	return New(s, hier)
}

func resultCodes(concepts []*types.Concept) []string {
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, c.Code)
	}
	return out
}

func TestExecuteBareCode(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute("64572001")
	require.NoError(t, err)
	assert.Equal(t, []string{"64572001"}, resultCodes(concepts))
}

func TestExecuteDescendants(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute("< 64572001")
	require.NoError(t, err)
	assert.Equal(t, []string{"50043002", "82272006"}, resultCodes(concepts))
}

func TestExecuteDescendantsInclusive(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute("<< 64572001")
	require.NoError(t, err)
	assert.Equal(t, []string{"50043002", "64572001", "82272006"}, resultCodes(concepts))
}

func TestExecuteAncestors(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute("> 50043002")
	require.NoError(t, err)
	assert.Equal(t, []string{"404684003", "64572001"}, resultCodes(concepts))
}

func TestExecuteAncestorsInclusive(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute(">> 50043002")
	require.NoError(t, err)
	assert.Equal(t, []string{"404684003", "50043002", "64572001"}, resultCodes(concepts))
}

func TestExecuteUnknownFocusIsEmpty(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute("<< 99999999")
	require.NoError(t, err)
	assert.Empty(t, concepts)
}

func TestExecuteNoOperatorWhitespace(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute("  <<64572001  ")
	require.NoError(t, err)
	assert.Len(t, concepts, 3)
}

func TestExecuteUnsupportedSyntax(t *testing.T) {
	in := setupTestInterpreter(t)

	for _, expr := range []string{
		"",
		"   ",
		"<< 64572001 AND << 50043002",
		"64572001 : 405815000=122456005",
		"~64572001",
		"<",
	} {
		_, err := in.Execute(expr)
		assert.ErrorIs(t, err, types.ErrUnsupportedExpression, expr)
	}
}

func TestExecuteLeafHasNoDescendants(t *testing.T) {
	in := setupTestInterpreter(t)

	concepts, err := in.Execute("< 82272006")
	require.NoError(t, err)
	assert.Empty(t, concepts)
}

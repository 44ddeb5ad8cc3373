package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/clinterm/clinterm-mcp/internal/expression"
	"github.com/clinterm/clinterm-mcp/internal/hierarchy"
	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/internal/searcher"
	"github.com/clinterm/clinterm-mcp/internal/storage"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/internal/strategy"
	"github.com/clinterm/clinterm-mcp/internal/vocab/icd10"
	"github.com/clinterm/clinterm-mcp/internal/vocab/rxnorm"
	"github.com/clinterm/clinterm-mcp/internal/vocab/snomed"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Config controls engine construction
type Config struct {
	DBPath    string
	Workers   int
	CacheSize int
	Strategy  strategy.Config
}

// ConfigFromEnv reads engine configuration from the environment
func ConfigFromEnv() Config {
	cfg := Config{
		DBPath:   os.Getenv("CLINTERM_DB_PATH"),
		Strategy: strategy.ConfigFromEnv(),
	}
	if w, err := strconv.Atoi(os.Getenv("CLINTERM_WORKERS")); err == nil && w > 0 {
		cfg.Workers = w
	}
	if n, err := strconv.Atoi(os.Getenv("CLINTERM_CACHE_SIZE")); err == nil && n > 0 {
		cfg.CacheSize = n
	}
	return cfg
}

// Engine is the terminology resolution engine: the concept store and
// its indexes, the search pipeline, the expression interpreter, and the
// vocabulary extensions, wired together over one loaded dataset.
//
// All index structures are built once here and treated as immutable;
// every method is safe for concurrent use.
type Engine struct {
	storage      storage.Storage
	store        *store.Store
	hier         *hierarchy.Index
	searcher     *searcher.Searcher
	interpreter  *expression.Interpreter
	compat       *icd10.Checker
	interactions *rxnorm.InteractionTable
	log          zerolog.Logger
}

// New builds an engine from the persisted dataset at cfg.DBPath,
// bootstrapping the built-in seed set when the database is empty
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Engine, error) {
	st, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset storage: %w", err)
	}

	eng, err := load(ctx, st, cfg, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return eng, nil
}

// load builds every index from storage. Separated from New so a reload
// after dataset import reuses the same path.
func load(ctx context.Context, st storage.Storage, cfg Config, log zerolog.Logger) (*Engine, error) {
	seeded, err := st.Bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap dataset: %w", err)
	}
	if seeded {
		log.Info().Msg("no dataset found, bootstrapped built-in seed set")
	}

	concepts, err := st.LoadConcepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}

	abbrevs, err := st.LoadAbbreviations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load abbreviations: %w", err)
	}

	interactions, err := st.LoadInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load interactions: %w", err)
	}

	builder := store.NewBuilder(len(concepts))
	for i := range concepts {
		if err := builder.Add(concepts[i]); err != nil {
			return nil, fmt.Errorf("failed to build concept store: %w", err)
		}
	}
	conceptStore := builder.Build()

	hier, err := hierarchy.Build(conceptStore)
	if err != nil {
		return nil, fmt.Errorf("failed to build hierarchy index: %w", err)
	}

	lex := lexical.Build(conceptStore, abbrevs)
	pipeline := strategy.BuildPipeline(conceptStore, lex, cfg.Strategy, log)

	eng := &Engine{
		storage:      st,
		store:        conceptStore,
		hier:         hier,
		searcher:     searcher.New(conceptStore, hier, pipeline, cfg.Workers, cfg.CacheSize, log),
		interpreter:  expression.New(conceptStore, hier),
		compat:       icd10.NewChecker(conceptStore, hier),
		interactions: rxnorm.NewInteractionTable(interactions),
		log:          log,
	}

	log.Info().
		Int("concepts", conceptStore.Len()).
		Int("active", conceptStore.ActiveCount()).
		Int("interactions", eng.interactions.Len()).
		Strs("strategies", eng.searcher.StrategyNames()).
		Msg("terminology engine loaded")

	return eng, nil
}

// Close releases the dataset storage
func (e *Engine) Close() error {
	return e.storage.Close()
}

// Search resolves a free-text query to ranked concept matches
func (e *Engine) Search(ctx context.Context, query string, opts searcher.Options) (*types.SearchResult, error) {
	return e.searcher.Search(ctx, query, opts)
}

// BatchSearch resolves independent queries concurrently, one result or
// error per distinct query
func (e *Engine) BatchSearch(ctx context.Context, queries []string, opts searcher.Options) map[string]searcher.BatchItem {
	return e.searcher.BatchSearch(ctx, queries, opts)
}

// GetConcept returns the concept for a code
func (e *Engine) GetConcept(code string) (*types.Concept, error) {
	c, ok := e.store.Get(code)
	if !ok {
		return nil, fmt.Errorf("code %q: %w", code, types.ErrNotFound)
	}
	return c, nil
}

// GetParents returns the direct parents of a code
func (e *Engine) GetParents(code string) ([]*types.Concept, error) {
	return e.hier.ParentConcepts(code)
}

// GetChildren returns the direct children of a code
func (e *Engine) GetChildren(code string) ([]*types.Concept, error) {
	return e.hier.ChildConcepts(code)
}

// GetAncestors returns ancestors level by level: direct parents first
func (e *Engine) GetAncestors(code string, maxDepth int) ([][]*types.Concept, error) {
	i := e.store.IndexOf(code)
	if i < 0 {
		return nil, fmt.Errorf("code %q: %w", code, types.ErrNotFound)
	}

	levels := e.hier.Ancestors(i, maxDepth)
	out := make([][]*types.Concept, 0, len(levels))
	for _, level := range levels {
		out = append(out, e.hier.Resolve(level))
	}
	return out, nil
}

// GetDescendants returns the flat descendant set of a code
func (e *Engine) GetDescendants(code string, maxDepth int) ([]*types.Concept, error) {
	i := e.store.IndexOf(code)
	if i < 0 {
		return nil, fmt.Errorf("code %q: %w", code, types.ErrNotFound)
	}
	return e.hier.Resolve(e.hier.Descendants(i, maxDepth)), nil
}

// GetCommonAncestors returns the concepts reachable as ancestors from
// every given code, in code order
func (e *Engine) GetCommonAncestors(codes []string) ([]*types.Concept, error) {
	indices := make([]int32, 0, len(codes))
	for _, code := range codes {
		i := e.store.IndexOf(code)
		if i < 0 {
			return nil, fmt.Errorf("code %q: %w", code, types.ErrNotFound)
		}
		indices = append(indices, i)
	}

	common := e.hier.Resolve(e.hier.CommonAncestors(indices))
	sort.Slice(common, func(a, b int) bool { return common[a].Code < common[b].Code })
	return common, nil
}

// CheckCompatibility reports whether two disease codes may be coded
// together, with a reason when they may not
func (e *Engine) CheckCompatibility(a, b string) (bool, string, error) {
	return e.compat.Compatible(a, b)
}

// CompatibilityNotes returns informational coding notes for a code
// pair, for exclusions that do not forbid coding together
func (e *Engine) CompatibilityNotes(a, b string) []string {
	return e.compat.Notes(a, b)
}

// CheckInteractions returns all pairwise drug interactions among the
// given medication codes
func (e *Engine) CheckInteractions(codes []string) []types.Interaction {
	return e.interactions.Check(codes)
}

// ParseInstruction extracts structure from a prescription instruction
func (e *Engine) ParseInstruction(text string) types.ParsedInstruction {
	return rxnorm.ParseInstruction(text)
}

// ExecuteExpression evaluates a hierarchical constraint expression
func (e *Engine) ExecuteExpression(expr string) ([]*types.Concept, error) {
	return e.interpreter.Execute(expr)
}

// PreferredLabel returns a concept's display text for an
// Accept-Language value, honoring translated SNOMED terms
func (e *Engine) PreferredLabel(code, acceptLanguage string) (string, error) {
	c, err := e.GetConcept(code)
	if err != nil {
		return "", err
	}
	return snomed.Label(c, acceptLanguage), nil
}

// ImportDataset persists one vocabulary document. The in-memory indexes
// are not rebuilt; restart the engine to pick up imported data.
func (e *Engine) ImportDataset(ctx context.Context, ds *storage.Dataset) error {
	return e.storage.ImportDataset(ctx, ds)
}

// ClearCache empties the search result cache
func (e *Engine) ClearCache() {
	e.searcher.ClearCache()
}

// Stats returns engine counters
func (e *Engine) Stats() searcher.Statistics {
	return e.searcher.Stats()
}

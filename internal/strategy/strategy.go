package strategy

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/clinterm/clinterm-mcp/internal/lexical"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Candidate is a provisional match produced by a single strategy
type Candidate struct {
	Index      int32 // arena index
	Kind       types.MatchKind
	Confidence float64
}

// Strategy produces candidate matches for a query. Implementations are
// stateless after construction and safe for concurrent use.
type Strategy interface {
	// Name returns the strategy name for result metadata
	Name() string

	// Match returns candidates for the query. limit is advisory; a
	// strategy may return more and the ranker will truncate.
	Match(query string, limit int) []Candidate
}

// Config controls which optional strategies the pipeline carries
type Config struct {
	DisableFuzzy    bool
	DisableSemantic bool
}

// ConfigFromEnv reads strategy toggles from the environment.
// CLINTERM_DISABLE_FUZZY and CLINTERM_DISABLE_SEMANTIC disable the
// optional strategies when set to any non-empty value.
func ConfigFromEnv() Config {
	return Config{
		DisableFuzzy:    os.Getenv("CLINTERM_DISABLE_FUZZY") != "",
		DisableSemantic: os.Getenv("CLINTERM_DISABLE_SEMANTIC") != "",
	}
}

// BuildPipeline constructs the ordered strategy list. Optional
// strategies that are disabled or fail to initialize are omitted from
// the pipeline rather than branched on at query time; the omission is
// logged once here and never surfaced per-query.
func BuildPipeline(s *store.Store, lex *lexical.Index, cfg Config, log zerolog.Logger) []Strategy {
	pipeline := []Strategy{
		NewExact(s, lex),
		NewPrefix(s),
		NewSynonym(lex),
	}

	if cfg.DisableFuzzy {
		log.Info().Str("strategy", "fuzzy").Msg("optional strategy disabled, continuing without it")
	} else {
		pipeline = append(pipeline, NewFuzzy(lex))
	}

	if cfg.DisableSemantic {
		log.Info().Str("strategy", "semantic").Msg("optional strategy disabled, continuing without it")
	} else {
		pipeline = append(pipeline, NewSemantic(s))
	}

	return pipeline
}

package strategy

import (
	"regexp"
	"strings"

	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// identifier-shaped: a code fragment like "J0", "E11." or "7321", not a
// free-text phrase
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.]*$`)

// Prefix matches identifier-shaped queries against all concept codes
// sharing the prefix. Exact-length hits score 0.95, longer codes 0.85.
type Prefix struct {
	store *store.Store
}

// NewPrefix creates the code-prefix strategy
func NewPrefix(s *store.Store) *Prefix {
	return &Prefix{store: s}
}

func (p *Prefix) Name() string { return "prefix" }

func (p *Prefix) Match(query string, limit int) []Candidate {
	q := strings.ToUpper(strings.TrimSpace(query))
	if !identifierShaped(q) {
		return nil
	}

	var out []Candidate
	for _, code := range p.store.CodesWithPrefix(q) {
		conf := 0.85
		if len(code) == len(q) {
			conf = 0.95
		}
		out = append(out, Candidate{
			Index:      p.store.IndexOf(code),
			Kind:       types.MatchPrefix,
			Confidence: conf,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// identifierShaped requires the code alphabet plus at least one digit,
// so single words like "FLU" still go through the label strategies
func identifierShaped(q string) bool {
	if !identifierPattern.MatchString(q) {
		return false
	}
	return strings.ContainsAny(q, "0123456789")
}

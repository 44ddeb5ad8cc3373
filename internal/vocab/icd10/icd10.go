package icd10

import (
	"fmt"

	"github.com/clinterm/clinterm-mcp/internal/hierarchy"
	"github.com/clinterm/clinterm-mcp/internal/store"
	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Checker answers whether two disease codes may be coded together.
//
// A pair is incompatible when either code names the other in its
// excludes1 list (mutual exclusion), or when one code is a hierarchical
// ancestor of the other (parent/child pairs are not coded together).
// Excludes2 entries are informational notes only and never block
// compatibility.
type Checker struct {
	store *store.Store
	hier  *hierarchy.Index
}

// NewChecker creates a compatibility checker over the loaded hierarchy
func NewChecker(s *store.Store, h *hierarchy.Index) *Checker {
	return &Checker{store: s, hier: h}
}

// Compatible reports whether codes a and b may appear together. When
// incompatible, reason explains why. Unknown codes fail with ErrNotFound.
func (c *Checker) Compatible(a, b string) (bool, string, error) {
	ai := c.store.IndexOf(a)
	if ai < 0 {
		return false, "", fmt.Errorf("code %q: %w", a, types.ErrNotFound)
	}
	bi := c.store.IndexOf(b)
	if bi < 0 {
		return false, "", fmt.Errorf("code %q: %w", b, types.ErrNotFound)
	}

	ca, cb := c.store.At(ai), c.store.At(bi)

	if containsCode(ca.Attributes.Excludes1, b) {
		return false, fmt.Sprintf("%s is mutually exclusive with %s", a, b), nil
	}
	if containsCode(cb.Attributes.Excludes1, a) {
		return false, fmt.Sprintf("%s is mutually exclusive with %s", b, a), nil
	}

	if c.hier.IsAncestor(ai, bi) {
		return false, fmt.Sprintf("%s is a parent of %s", a, b), nil
	}
	if c.hier.IsAncestor(bi, ai) {
		return false, fmt.Sprintf("%s is a parent of %s", b, a), nil
	}

	return true, "", nil
}

// Notes returns excludes2 annotations between two codes: combinations
// that are allowed but worth flagging to the coder
func (c *Checker) Notes(a, b string) []string {
	var notes []string
	if ca, ok := c.store.Get(a); ok && containsCode(ca.Attributes.Excludes2, b) {
		notes = append(notes, fmt.Sprintf("%s notes %s as excludes2 (not included here)", a, b))
	}
	if cb, ok := c.store.Get(b); ok && containsCode(cb.Attributes.Excludes2, a) {
		notes = append(notes, fmt.Sprintf("%s notes %s as excludes2 (not included here)", b, a))
	}
	return notes
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// Billable reports whether a diagnosis code is billable. Only leaf-level
// codes carry the billable flag in the dataset.
func Billable(c *types.Concept) bool {
	return c.Vocabulary == types.VocabICD10 && c.Attributes.Billable
}

// chapters maps the leading letter of an ICD-10 code to its chapter
// description
var chapters = map[byte]string{
	'A': "Certain infectious and parasitic diseases",
	'B': "Certain infectious and parasitic diseases",
	'C': "Neoplasms",
	'D': "Diseases of the blood and blood-forming organs",
	'E': "Endocrine, nutritional and metabolic diseases",
	'F': "Mental, behavioral and neurodevelopmental disorders",
	'G': "Diseases of the nervous system",
	'H': "Diseases of the eye, ear and adnexa",
	'I': "Diseases of the circulatory system",
	'J': "Diseases of the respiratory system",
	'K': "Diseases of the digestive system",
	'L': "Diseases of the skin and subcutaneous tissue",
	'M': "Diseases of the musculoskeletal system and connective tissue",
	'N': "Diseases of the genitourinary system",
	'O': "Pregnancy, childbirth and the puerperium",
	'P': "Certain conditions originating in the perinatal period",
	'Q': "Congenital malformations and chromosomal abnormalities",
	'R': "Symptoms, signs and abnormal clinical findings",
	'S': "Injury, poisoning and other consequences of external causes",
	'T': "Injury, poisoning and other consequences of external causes",
	'V': "External causes of morbidity",
	'W': "External causes of morbidity",
	'X': "External causes of morbidity",
	'Y': "External causes of morbidity",
	'Z': "Factors influencing health status and contact with health services",
}

// Chapter returns the chapter description for a code, or "" when the
// code doesn't map to a known chapter
func Chapter(code string) string {
	if code == "" {
		return ""
	}
	return chapters[code[0]]
}

package store

import (
	"fmt"
	"sort"

	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Store is an immutable, in-memory table of concepts. Concepts live in a
// dense arena addressed by int32 index; a code map resolves identifiers
// to arena slots. The store is built once at startup and safe for
// concurrent reads without locking.
type Store struct {
	concepts []types.Concept
	byCode   map[string]int32
	codes    []string // sorted, for deterministic iteration and prefix scans
	active   int
}

// Builder accumulates concepts before the store is frozen
type Builder struct {
	concepts []types.Concept
	byCode   map[string]int32
}

// NewBuilder creates a builder with an optional capacity hint
func NewBuilder(capacity int) *Builder {
	return &Builder{
		concepts: make([]types.Concept, 0, capacity),
		byCode:   make(map[string]int32, capacity),
	}
}

// Add appends a concept to the arena. Duplicate codes and invalid
// concepts are rejected.
func (b *Builder) Add(c types.Concept) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("concept %q: %w", c.Code, err)
	}

	if _, exists := b.byCode[c.Code]; exists {
		return fmt.Errorf("duplicate concept code %q", c.Code)
	}

	b.byCode[c.Code] = int32(len(b.concepts))
	b.concepts = append(b.concepts, c)
	return nil
}

// Build freezes the builder into an immutable store
func (b *Builder) Build() *Store {
	codes := make([]string, 0, len(b.concepts))
	active := 0
	for i := range b.concepts {
		codes = append(codes, b.concepts[i].Code)
		if b.concepts[i].Active {
			active++
		}
	}
	sort.Strings(codes)

	return &Store{
		concepts: b.concepts,
		byCode:   b.byCode,
		codes:    codes,
		active:   active,
	}
}

// Get returns the concept for a code, or false if absent
func (s *Store) Get(code string) (*types.Concept, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return nil, false
	}
	return &s.concepts[i], true
}

// IndexOf returns the arena index for a code, or -1 if absent
func (s *Store) IndexOf(code string) int32 {
	i, ok := s.byCode[code]
	if !ok {
		return -1
	}
	return i
}

// At returns the concept at an arena index. The index must be valid.
func (s *Store) At(i int32) *types.Concept {
	return &s.concepts[i]
}

// Len returns the total number of concepts
func (s *Store) Len() int {
	return len(s.concepts)
}

// ActiveCount returns the number of active concepts
func (s *Store) ActiveCount() int {
	return s.active
}

// Codes returns all concept codes in lexicographic order. The returned
// slice is shared and must not be modified.
func (s *Store) Codes() []string {
	return s.codes
}

// CodesWithPrefix returns all codes starting with prefix, in
// lexicographic order
func (s *Store) CodesWithPrefix(prefix string) []string {
	lo := sort.SearchStrings(s.codes, prefix)
	var out []string
	for i := lo; i < len(s.codes); i++ {
		if len(s.codes[i]) < len(prefix) || s.codes[i][:len(prefix)] != prefix {
			break
		}
		out = append(out, s.codes[i])
	}
	return out
}

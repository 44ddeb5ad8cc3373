package snomed

import (
	"errors"
	"strings"
)

// Refinement is a single attribute=value pair refining a focus concept
type Refinement struct {
	Attribute string
	Value     string
}

// Expression is a post-coordinated clinical expression: one or more
// focus concepts plus attribute refinements. This is construction and
// serialization only; refinement legality is not validated against the
// concept model.
type Expression struct {
	focus       []string
	refinements []Refinement
}

// NewExpression creates an expression with at least one focus concept
func NewExpression(focus ...string) (*Expression, error) {
	if len(focus) == 0 {
		return nil, errors.New("expression requires at least one focus concept")
	}
	for _, f := range focus {
		if f == "" {
			return nil, errors.New("focus concept cannot be empty")
		}
	}
	return &Expression{focus: focus}, nil
}

// AddFocus appends another focus concept
func (e *Expression) AddFocus(code string) *Expression {
	if code != "" {
		e.focus = append(e.focus, code)
	}
	return e
}

// Refine appends an attribute=value refinement
func (e *Expression) Refine(attribute, value string) *Expression {
	if attribute != "" && value != "" {
		e.refinements = append(e.refinements, Refinement{Attribute: attribute, Value: value})
	}
	return e
}

// Focus returns the focus concept codes
func (e *Expression) Focus() []string {
	return e.focus
}

// Refinements returns the refinement pairs in insertion order
func (e *Expression) Refinements() []Refinement {
	return e.refinements
}

// String serializes the expression: focus concepts joined with "+",
// then ":" and comma-separated attribute=value refinements.
//
//	"83152002"
//	"83152002+63162001"
//	"83152002:405815000=122456005,260686004=129304002"
func (e *Expression) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(e.focus, "+"))

	if len(e.refinements) > 0 {
		b.WriteByte(':')
		for i, r := range e.refinements {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(r.Attribute)
			b.WriteByte('=')
			b.WriteString(r.Value)
		}
	}

	return b.String()
}

package snomed

import (
	"sort"

	"golang.org/x/text/language"

	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// Label returns the concept's preferred term for an Accept-Language
// header value, falling back to the canonical display text when no
// translated label matches.
func Label(c *types.Concept, acceptLanguage string) string {
	labels := c.Attributes.LabelsByLanguage
	if len(labels) == 0 || acceptLanguage == "" {
		return c.Display
	}

	// Deterministic supported-tag order regardless of map iteration
	tags := make([]string, 0, len(labels))
	for tag := range labels {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	supported := make([]language.Tag, 0, len(tags))
	supportedKeys := make([]string, 0, len(tags))
	for _, tag := range tags {
		parsed, err := language.Parse(tag)
		if err != nil {
			continue
		}
		supported = append(supported, parsed)
		supportedKeys = append(supportedKeys, tag)
	}
	if len(supported) == 0 {
		return c.Display
	}

	wanted, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(wanted) == 0 {
		return c.Display
	}

	matcher := language.NewMatcher(supported)
	_, index, conf := matcher.Match(wanted...)
	if conf == language.No {
		return c.Display
	}

	return labels[supportedKeys[index]]
}

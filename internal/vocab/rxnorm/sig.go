package rxnorm

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/clinterm/clinterm-mcp/pkg/types"
)

// routes maps administration route abbreviations to their expansions
var routes = map[string]string{
	"po":  "oral",
	"iv":  "intravenous",
	"im":  "intramuscular",
	"sc":  "subcutaneous",
	"sq":  "subcutaneous",
	"sl":  "sublingual",
	"pr":  "rectal",
	"top": "topical",
	"inh": "inhaled",
	"ng":  "nasogastric",
}

// frequencies maps dosing frequency abbreviations to their expansions
var frequencies = map[string]string{
	"qd":  "once daily",
	"od":  "once daily",
	"bid": "twice daily",
	"tid": "three times daily",
	"qid": "four times daily",
	"qhs": "at bedtime",
	"qam": "every morning",
	"q4h": "every 4 hours",
	"q6h": "every 6 hours",
	"q8h": "every 8 hours",
	"q12h": "every 12 hours",
	"qod": "every other day",
}

// doseUnits are the unit tokens recognized after a dose value
var doseUnits = map[string]struct{}{
	"mg": {}, "g": {}, "mcg": {}, "kg": {}, "ml": {}, "l": {},
	"units": {}, "iu": {}, "tab": {}, "tabs": {}, "puff": {}, "puffs": {},
}

// durationUnits maps duration words to their length in days
var durationUnits = map[string]int{
	"day": 1, "days": 1,
	"week": 7, "weeks": 7,
	"month": 30, "months": 30,
}

// ParseInstruction extracts structure from a free-text prescription
// instruction. The drug name is the leading token run before the first
// numeric token; dose is the first number+unit pair; route, frequency,
// and duration come from fixed abbreviation tables. Partial parses never
// fail: unrecognized leading tokens stay in the drug name and everything
// else keeps its zero value.
func ParseInstruction(text string) types.ParsedInstruction {
	parsed := types.ParsedInstruction{Raw: text}

	tokens := strings.Fields(text)
	var drug []string
	drugDone := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		low := strings.ToLower(strings.Trim(tok, ",.;"))

		// Dose: "400mg" or "400 mg"
		if !drugDone && startsWithDigit(low) {
			drugDone = true
			value, unit, consumed := parseDose(low, nextToken(tokens, i))
			if value > 0 && parsed.DoseValue == 0 {
				parsed.DoseValue = value
				parsed.DoseUnit = unit
				i += consumed
				continue
			}
		}

		if route, ok := routes[low]; ok {
			drugDone = true
			if parsed.Route == "" {
				parsed.Route = route
			}
			continue
		}

		if freq, ok := frequencies[low]; ok {
			drugDone = true
			if parsed.Frequency == "" {
				parsed.Frequency = freq
			}
			continue
		}

		if low == "prn" {
			drugDone = true
			parsed.AsNeeded = true
			continue
		}

		// Duration: "for 7 days"
		if low == "for" && i+2 < len(tokens) {
			n, err := strconv.Atoi(strings.Trim(tokens[i+1], ",.;"))
			unitDays, ok := durationUnits[strings.ToLower(strings.Trim(tokens[i+2], ",.;"))]
			if err == nil && ok {
				drugDone = true
				parsed.DurationDays = n * unitDays
				i += 2
				continue
			}
		}

		if !drugDone {
			drug = append(drug, tok)
		}
	}

	parsed.Drug = strings.Join(drug, " ")
	return parsed
}

// parseDose handles "400mg" in one token or "400" followed by a unit
// token. consumed reports how many extra tokens were used.
func parseDose(tok, next string) (value float64, unit string, consumed int) {
	split := len(tok)
	for i, r := range tok {
		if !unicode.IsDigit(r) && r != '.' {
			split = i
			break
		}
	}

	value, err := strconv.ParseFloat(tok[:split], 64)
	if err != nil {
		return 0, "", 0
	}

	if split < len(tok) {
		suffix := tok[split:]
		if _, ok := doseUnits[suffix]; ok {
			return value, suffix, 0
		}
		return 0, "", 0
	}

	if _, ok := doseUnits[next]; ok {
		return value, next, 1
	}
	return 0, "", 0
}

func nextToken(tokens []string, i int) string {
	if i+1 < len(tokens) {
		return strings.ToLower(strings.Trim(tokens[i+1], ",.;"))
	}
	return ""
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

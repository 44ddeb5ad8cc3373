package types

// InteractionSeverity grades a drug-drug interaction
type InteractionSeverity string

const (
	SeverityHigh     InteractionSeverity = "high"
	SeverityModerate InteractionSeverity = "moderate"
	SeverityLow      InteractionSeverity = "low"
)

// Interaction describes a known interaction between two medications.
// CodeA and CodeB are stored in lexicographic order so each unordered
// pair appears exactly once.
type Interaction struct {
	CodeA       string
	CodeB       string
	Severity    InteractionSeverity
	Description string
}

// ParsedInstruction is the structured form of a free-text prescription
// instruction (sig). Partial parses are legal: unrecognized fields keep
// their zero values and the raw text is always preserved.
type ParsedInstruction struct {
	Drug         string
	DoseValue    float64
	DoseUnit     string
	Route        string
	Frequency    string
	AsNeeded     bool
	DurationDays int
	Raw          string
}

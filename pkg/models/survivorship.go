package models

// SurvivorshipRule names a strategy for picking a winning value among
// conflicting values for one column
type SurvivorshipRule string

const (
	// RuleUnanimous is reported when all non-null values agreed; it is never
	// configured directly
	RuleUnanimous SurvivorshipRule = "unanimous"
	// RuleMostComplete picks the longest string representation
	RuleMostComplete SurvivorshipRule = "most_complete"
	// RuleRichness picks the longest value with completeness-scaled confidence
	RuleRichness SurvivorshipRule = "richness"
	// RuleMostRecent picks the value from the row with the newest timestamp
	RuleMostRecent SurvivorshipRule = "most_recent"
	// RuleFreshness is an alias for most_recent
	RuleFreshness SurvivorshipRule = "freshness"
	// RuleSourcePriority picks the value from the best-ranked source
	RuleSourcePriority SurvivorshipRule = "source_priority"
	// RuleMostFrequent picks the plurality value
	RuleMostFrequent SurvivorshipRule = "most_frequent"
	// RuleMin picks the numeric (or lexical) minimum
	RuleMin SurvivorshipRule = "min"
	// RuleMax picks the numeric (or lexical) maximum
	RuleMax SurvivorshipRule = "max"
	// RuleFirst picks the first value in row order
	RuleFirst SurvivorshipRule = "first"
	// RuleLast picks the last value in row order
	RuleLast SurvivorshipRule = "last"
	// RuleQualityScore scores each value on completeness and format validity
	RuleQualityScore SurvivorshipRule = "quality_score"
	// RuleValidation picks the first value matching the field's format
	RuleValidation SurvivorshipRule = "validation"
	// RuleFormatValid is an alias for validation
	RuleFormatValid SurvivorshipRule = "format_valid"
)

// ParseRule resolves a configured rule name. Unrecognized names resolve to
// RuleQualityScore with ok=false so the engine can log the fallback instead
// of failing the run.
func ParseRule(name string) (rule SurvivorshipRule, ok bool) {
	switch SurvivorshipRule(name) {
	case RuleMostComplete, RuleRichness, RuleMostRecent, RuleFreshness,
		RuleSourcePriority, RuleMostFrequent, RuleMin, RuleMax,
		RuleFirst, RuleLast, RuleQualityScore, RuleValidation, RuleFormatValid:
		return SurvivorshipRule(name), true
	default:
		return RuleQualityScore, false
	}
}

// QualityBonusRule adds a score bonus to values whose row satisfies a
// condition, used by the quality_score strategy
type QualityBonusRule struct {
	Column   string  `json:"column"`
	Operator string  `json:"operator"` // criteria operator, e.g. "" (equals), "$gte", "$exists"
	Value    any     `json:"value"`
	Bonus    float64 `json:"bonus"`
}

// SurvivorshipConfig configures conflict resolution for one run
type SurvivorshipConfig struct {
	// ColumnRules assigns a rule per column; unlisted columns use DefaultRule
	ColumnRules map[string]string `json:"column_rules,omitempty"`
	// DefaultRule applies when a column has no explicit rule; empty means quality_score
	DefaultRule string `json:"default_rule,omitempty"`
	// SourcePriorities ranks source names for source_priority (lower = better)
	SourcePriorities map[string]int `json:"source_priorities,omitempty"`
	// TimestampColumn names the column holding row recency for most_recent
	TimestampColumn string `json:"timestamp_column,omitempty"`
	// SourceColumn names the column holding the row's source for source_priority
	SourceColumn string `json:"source_column,omitempty"`
	// FormatOverrides replaces the built-in format regex for a field type
	FormatOverrides map[FieldType]string `json:"format_overrides,omitempty"`
	// QualityRules are caller-supplied bonuses for the quality_score strategy
	QualityRules []QualityBonusRule `json:"quality_rules,omitempty"`
	// MaxDisplayValues caps competing values kept on a ResolvedField (default 5)
	MaxDisplayValues int `json:"max_display_values,omitempty"`
}

// ResolvedField is the outcome of resolving one conflicted column within one
// cluster. It is produced only for columns that had two or more distinct
// non-null values.
type ResolvedField struct {
	ClusterID string `json:"cluster_id"`
	Column    string `json:"column"`
	// Values holds the distinct competing values (capped for display)
	Values     []string         `json:"values"`
	Winner     FieldValue       `json:"winner"`
	Rule       SurvivorshipRule `json:"rule"`
	RuleName   string           `json:"rule_name,omitempty"` // configured name when it differs from Rule
	Confidence float64          `json:"confidence"`
	Rationale  string           `json:"rationale"`
}

// Package survivorship resolves field-level conflicts within a cluster into
// a single winning value with a confidence score
package survivorship

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/dahlia/pkg/criteria"
	"github.com/Ramsey-B/dahlia/pkg/models"
)

const defaultMaxDisplayValues = 5

// timestampLayouts are tried in order when most_recent parses the
// configured timestamp column; unparseable values fall back to lexical
// comparison
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Engine applies survivorship rules to conflicting column values
type Engine struct {
	logger   ectologger.Logger
	cfg      models.SurvivorshipConfig
	fieldCfg models.FieldTypeConfig
	formats  map[models.FieldType]*regexp.Regexp
}

// NewEngine creates a survivorship engine. Malformed format overrides are
// configuration errors and reject the run before any resolution happens.
func NewEngine(logger ectologger.Logger, cfg models.SurvivorshipConfig, fieldCfg models.FieldTypeConfig) (*Engine, error) {
	formats, err := compileFormats(cfg.FormatOverrides)
	if err != nil {
		return nil, err
	}
	return &Engine{
		logger:   logger,
		cfg:      cfg,
		fieldCfg: fieldCfg,
		formats:  formats,
	}, nil
}

// candidate is one non-null value for the column along with its source row,
// kept for context rules (timestamp, source, quality bonuses)
type candidate struct {
	value  models.FieldValue
	str    string
	record models.Record
}

// ResolveColumn resolves one column across the member records of one
// cluster. Unanimous columns short-circuit to confidence 1.0; columns with
// no non-null values yield a null winner with confidence 0.3. Anything else
// dispatches on the configured rule, falling back to quality_score for
// unrecognized rule names.
func (e *Engine) ResolveColumn(clusterID, column string, records []models.Record) models.ResolvedField {
	candidates := collectCandidates(column, records)

	resolved := models.ResolvedField{
		ClusterID: clusterID,
		Column:    column,
		Values:    distinctValues(candidates, e.maxDisplayValues()),
	}

	// Absence is not an error, but it is clearly not confident
	if len(candidates) == 0 {
		resolved.Winner = models.Null()
		resolved.Rule = e.ruleFor(column)
		resolved.Confidence = 0.3
		resolved.Rationale = "no non-null values in cluster"
		return resolved
	}

	if unanimous(candidates) {
		resolved.Winner = candidates[0].value
		resolved.Rule = models.RuleUnanimous
		resolved.Confidence = 1.0
		resolved.Rationale = fmt.Sprintf("all %d values agree", len(candidates))
		return resolved
	}

	rule, name := e.resolveRuleName(column)
	winner, confidence, rationale := e.dispatch(rule, column, candidates)

	resolved.Winner = winner
	resolved.Rule = rule
	if string(rule) != name {
		resolved.RuleName = name
	}
	resolved.Confidence = confidence
	resolved.Rationale = rationale
	return resolved
}

// ruleFor returns the effective rule for a column without fallback logging
func (e *Engine) ruleFor(column string) models.SurvivorshipRule {
	rule, _ := e.resolveRuleName(column)
	return rule
}

// resolveRuleName resolves the configured rule name for a column, logging a
// warning when an unrecognized name falls back to quality_score
func (e *Engine) resolveRuleName(column string) (models.SurvivorshipRule, string) {
	name := e.cfg.DefaultRule
	if configured, ok := e.cfg.ColumnRules[column]; ok && configured != "" {
		name = configured
	}
	if name == "" {
		return models.RuleQualityScore, string(models.RuleQualityScore)
	}

	rule, ok := models.ParseRule(name)
	if !ok {
		e.logger.WithFields(map[string]any{
			"column": column,
			"rule":   name,
		}).Warn("Unrecognized survivorship rule, falling back to quality_score")
	}
	return rule, name
}

func (e *Engine) dispatch(rule models.SurvivorshipRule, column string, candidates []candidate) (models.FieldValue, float64, string) {
	switch rule {
	case models.RuleMostComplete:
		return e.mostComplete(candidates)
	case models.RuleRichness:
		return e.richness(candidates)
	case models.RuleMostRecent, models.RuleFreshness:
		return e.mostRecent(candidates)
	case models.RuleSourcePriority:
		return e.sourcePriority(candidates)
	case models.RuleMostFrequent:
		return e.mostFrequent(candidates)
	case models.RuleMin:
		return e.minMax(candidates, false)
	case models.RuleMax:
		return e.minMax(candidates, true)
	case models.RuleFirst:
		return candidates[0].value, 0.7, "first value in row order"
	case models.RuleLast:
		return candidates[len(candidates)-1].value, 0.65, "last value in row order"
	case models.RuleValidation, models.RuleFormatValid:
		return e.validation(column, candidates)
	default:
		return e.qualityScore(column, candidates)
	}
}

// mostComplete picks the longest string representation
func (e *Engine) mostComplete(candidates []candidate) (models.FieldValue, float64, string) {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.str) > len(best.str) {
			best = c
		}
	}
	return best.value, 0.8, fmt.Sprintf("longest of %d values (%d chars)", len(candidates), len(best.str))
}

// richness is the completeness-scaled flavor of most_complete
func (e *Engine) richness(candidates []candidate) (models.FieldValue, float64, string) {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.str) > len(best.str) {
			best = c
		}
	}
	confidence := 0.5 + float64(len(best.str))/100
	if confidence > 0.9 {
		confidence = 0.9
	}
	return best.value, confidence, fmt.Sprintf("richest of %d values (%d chars)", len(candidates), len(best.str))
}

// mostRecent picks the value whose row has the newest timestamp. Without a
// configured timestamp column, or when no row carries one, it falls back to
// the last value - a documented default, surfaced as a warning.
func (e *Engine) mostRecent(candidates []candidate) (models.FieldValue, float64, string) {
	if e.cfg.TimestampColumn == "" {
		e.logger.WithFields(map[string]any{"rule": "most_recent"}).Warn("No timestamp column configured, falling back to last value")
		last := candidates[len(candidates)-1]
		return last.value, 0.65, "no timestamp column configured; used last value"
	}

	best := -1
	var bestTime time.Time
	bestRaw := ""
	usingTime := false

	for i, c := range candidates {
		raw := c.record.Value(e.cfg.TimestampColumn).String()
		if raw == "" {
			continue
		}
		if ts, ok := parseTimestamp(raw); ok {
			if best == -1 || !usingTime || ts.After(bestTime) {
				best, bestTime, bestRaw, usingTime = i, ts, raw, true
			}
			continue
		}
		// Lexical fallback only while no parseable timestamp has been seen
		if !usingTime && (best == -1 || raw > bestRaw) {
			best, bestRaw = i, raw
		}
	}

	if best == -1 {
		e.logger.WithFields(map[string]any{
			"rule":             "most_recent",
			"timestamp_column": e.cfg.TimestampColumn,
		}).Warn("No usable timestamps in cluster, falling back to last value")
		last := candidates[len(candidates)-1]
		return last.value, 0.6, "no usable timestamps; used last value"
	}

	return candidates[best].value, 0.85, fmt.Sprintf("newest %s (%s)", e.cfg.TimestampColumn, bestRaw)
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// sourcePriority picks the value whose source ranks best in the configured
// priority map (lower number = better)
func (e *Engine) sourcePriority(candidates []candidate) (models.FieldValue, float64, string) {
	if e.cfg.SourceColumn == "" || len(e.cfg.SourcePriorities) == 0 {
		e.logger.WithFields(map[string]any{"rule": "source_priority"}).Warn("No source column or priorities configured, falling back to first value")
		return candidates[0].value, 0.65, "no source priorities configured; used first value"
	}

	best := -1
	bestPriority := 0
	bestSource := ""
	for i, c := range candidates {
		source := c.record.Value(e.cfg.SourceColumn).String()
		priority, ok := e.cfg.SourcePriorities[source]
		if !ok {
			continue
		}
		if best == -1 || priority < bestPriority {
			best, bestPriority, bestSource = i, priority, source
		}
	}

	if best == -1 {
		e.logger.WithFields(map[string]any{
			"rule":          "source_priority",
			"source_column": e.cfg.SourceColumn,
		}).Warn("No cluster source found in priority map, falling back to first value")
		return candidates[0].value, 0.6, "no source found in priority map; used first value"
	}

	return candidates[best].value, 0.9, fmt.Sprintf("best-ranked source %q (priority %d)", bestSource, bestPriority)
}

// mostFrequent runs a plurality vote by string equality. Confidence scales
// with the winner's frequency ratio, capped at 0.95.
func (e *Engine) mostFrequent(candidates []candidate) (models.FieldValue, float64, string) {
	counts := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c.str]++
	}

	best := candidates[0]
	bestCount := counts[best.str]
	for _, c := range candidates[1:] {
		if counts[c.str] > bestCount {
			best = c
			bestCount = counts[c.str]
		}
	}

	ratio := float64(bestCount) / float64(len(candidates))
	confidence := 0.5 + ratio*0.5
	if confidence > 0.95 {
		confidence = 0.95
	}
	return best.value, confidence, fmt.Sprintf("%q appeared %d of %d times", best.str, bestCount, len(candidates))
}

// minMax picks the numeric extreme when every value is numeric, the lexical
// extreme when every value is text, and falls back to the first value for
// mixed kinds
func (e *Engine) minMax(candidates []candidate, wantMax bool) (models.FieldValue, float64, string) {
	label := "min"
	if wantMax {
		label = "max"
	}

	allNumeric := true
	for _, c := range candidates {
		if _, ok := c.value.AsNumber(); !ok {
			allNumeric = false
			break
		}
	}

	if allNumeric {
		best := candidates[0]
		bestNum, _ := best.value.AsNumber()
		for _, c := range candidates[1:] {
			num, _ := c.value.AsNumber()
			if (wantMax && num > bestNum) || (!wantMax && num < bestNum) {
				best, bestNum = c, num
			}
		}
		return best.value, 0.9, fmt.Sprintf("numeric %s of %d values", label, len(candidates))
	}

	allText := true
	for _, c := range candidates {
		if c.value.Kind != models.KindText {
			allText = false
			break
		}
	}

	if allText {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if (wantMax && c.str > best.str) || (!wantMax && c.str < best.str) {
				best = c
			}
		}
		return best.value, 0.9, fmt.Sprintf("lexical %s of %d values", label, len(candidates))
	}

	return candidates[0].value, 0.6, fmt.Sprintf("values not comparable for %s; used first value", label)
}

// validation picks the first value matching the field's canonical format,
// deferring to quality_score when nothing matches
func (e *Engine) validation(column string, candidates []candidate) (models.FieldValue, float64, string) {
	re := e.formats[e.fieldCfg.Type(column)]
	if re != nil {
		for _, c := range candidates {
			if re.MatchString(c.str) {
				return c.value, 0.85, fmt.Sprintf("first value matching %s format", e.fieldCfg.Type(column))
			}
		}
	}
	winner, confidence, rationale := e.qualityScore(column, candidates)
	return winner, confidence, "no value matched format; " + rationale
}

// qualityScore scores every value on a completeness/format heuristic and
// picks the highest. The winning value's own score becomes the confidence.
func (e *Engine) qualityScore(column string, candidates []candidate) (models.FieldValue, float64, string) {
	re := e.formats[e.fieldCfg.Type(column)]

	best := 0
	bestScore := -1.0
	for i, c := range candidates {
		score := e.scoreValue(column, c, re)
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	return candidates[best].value, bestScore, fmt.Sprintf("highest quality score (%.2f) of %d values", bestScore, len(candidates))
}

// scoreValue computes the quality heuristic for one value: 0.5 base, a
// length bonus up to 0.2, a format bonus/penalty of +-0.25, plus any
// caller-supplied bonus rules, clamped to [0,1]
func (e *Engine) scoreValue(column string, c candidate, re *regexp.Regexp) float64 {
	score := 0.5

	lengthBonus := float64(len(c.str)) / 100
	if lengthBonus > 0.2 {
		lengthBonus = 0.2
	}
	score += lengthBonus

	if re != nil {
		if re.MatchString(c.str) {
			score += 0.25
		} else {
			score -= 0.25
		}
	}

	for _, rule := range e.cfg.QualityRules {
		cond := criteria.Condition{Field: rule.Column, Operator: rule.Operator, Value: rule.Value}
		if criteria.Matches(c.record, cond) {
			score += rule.Bonus
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (e *Engine) maxDisplayValues() int {
	if e.cfg.MaxDisplayValues > 0 {
		return e.cfg.MaxDisplayValues
	}
	return defaultMaxDisplayValues
}

// collectCandidates gathers the non-null values for a column in row order
func collectCandidates(column string, records []models.Record) []candidate {
	candidates := make([]candidate, 0, len(records))
	for _, record := range records {
		value := record.Value(column)
		if value.IsNull() {
			continue
		}
		str := value.String()
		if str == "" {
			continue
		}
		candidates = append(candidates, candidate{value: value, str: str, record: record})
	}
	return candidates
}

// unanimous reports whether every candidate stringifies identically
func unanimous(candidates []candidate) bool {
	for _, c := range candidates[1:] {
		if c.str != candidates[0].str {
			return false
		}
	}
	return true
}

// distinctValues returns the deduplicated competing values in row order,
// capped for display
func distinctValues(candidates []candidate, limit int) []string {
	seen := make(map[string]bool, len(candidates))
	values := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.str] {
			continue
		}
		seen[c.str] = true
		values = append(values, c.str)
		if len(values) >= limit {
			break
		}
	}
	return values
}

// DistinctNonNull counts the distinct non-null values for a column across
// records; the assembler uses it to decide whether a column is conflicted
func DistinctNonNull(column string, records []models.Record) int {
	seen := make(map[string]bool)
	for _, record := range records {
		value := record.Value(column)
		if value.IsNull() {
			continue
		}
		if s := value.String(); s != "" {
			seen[s] = true
		}
	}
	return len(seen)
}

// sortedColumns returns the union of columns across records in input order,
// with columns absent from the first record appended alphabetically
func sortedColumns(records []models.Record) []string {
	seen := make(map[string]bool)
	ordered := make([]string, 0)
	for _, record := range records {
		for _, col := range record.Columns {
			if !seen[col] {
				seen[col] = true
				ordered = append(ordered, col)
			}
		}
	}
	// Values present without column metadata still need resolving
	extras := make([]string, 0)
	for _, record := range records {
		for col := range record.Values {
			if !seen[col] {
				seen[col] = true
				extras = append(extras, col)
			}
		}
	}
	sort.Strings(extras)
	return append(ordered, extras...)
}

// Columns exposes the stable column union for a cluster's records
func Columns(records []models.Record) []string {
	return sortedColumns(records)
}

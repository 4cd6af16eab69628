package models

import "strings"

// FieldType is the semantic type of a column, used to pick the comparison
// algorithm and the canonical format for validation
type FieldType string

const (
	FieldTypeName    FieldType = "name"    // person/org names - phonetic-aware comparison
	FieldTypeEmail   FieldType = "email"   // edit-distance comparison
	FieldTypePhone   FieldType = "phone"   // digits-only, edit-distance comparison
	FieldTypeAddress FieldType = "address" // token-sort comparison
	FieldTypeDate    FieldType = "date"    // exact match only
	FieldTypeZip     FieldType = "zip"     // exact match only
	FieldTypeText    FieldType = "text"    // generic fallback
)

// FieldConfig describes one configured column
type FieldConfig struct {
	Type   FieldType `json:"type"`
	Weight float64   `json:"weight"` // relative comparison weight, normalized across the config
}

// FieldTypeConfig maps column names to their semantic type and comparison
// weight. Weights are expected to sum to 1; NormalizeWeights enforces that.
type FieldTypeConfig struct {
	Fields map[string]FieldConfig `json:"fields"`
}

// InferFieldType maps a column name to a semantic type via name heuristics
func InferFieldType(column string) FieldType {
	col := strings.ToLower(strings.TrimSpace(column))

	switch {
	case strings.Contains(col, "email") || strings.Contains(col, "mail"):
		return FieldTypeEmail
	case strings.Contains(col, "phone") || strings.Contains(col, "mobile") || strings.Contains(col, "tel") || strings.Contains(col, "fax"):
		return FieldTypePhone
	case strings.Contains(col, "zip") || strings.Contains(col, "pin") || strings.Contains(col, "postal"):
		return FieldTypeZip
	case strings.Contains(col, "dob") || strings.Contains(col, "date") || strings.Contains(col, "time") || strings.HasSuffix(col, "_at"):
		return FieldTypeDate
	case strings.Contains(col, "address") || strings.Contains(col, "addr") || strings.Contains(col, "street") || strings.Contains(col, "city"):
		return FieldTypeAddress
	case strings.Contains(col, "name"):
		return FieldTypeName
	default:
		return FieldTypeText
	}
}

// DeriveFieldTypeConfig builds a config from column names alone: heuristic
// semantic types with evenly distributed weights
func DeriveFieldTypeConfig(columns []string) FieldTypeConfig {
	fields := make(map[string]FieldConfig, len(columns))
	weight := 0.0
	if len(columns) > 0 {
		weight = 1.0 / float64(len(columns))
	}
	for _, col := range columns {
		fields[col] = FieldConfig{Type: InferFieldType(col), Weight: weight}
	}
	return FieldTypeConfig{Fields: fields}
}

// NormalizeWeights returns a copy with weights scaled to sum to 1.
// If every weight is zero or absent, weights are distributed evenly.
func (c FieldTypeConfig) NormalizeWeights() FieldTypeConfig {
	if len(c.Fields) == 0 {
		return c
	}

	var total float64
	for _, fc := range c.Fields {
		if fc.Weight > 0 {
			total += fc.Weight
		}
	}

	normalized := make(map[string]FieldConfig, len(c.Fields))
	if total == 0 {
		even := 1.0 / float64(len(c.Fields))
		for col, fc := range c.Fields {
			fc.Weight = even
			normalized[col] = fc
		}
	} else {
		for col, fc := range c.Fields {
			if fc.Weight < 0 {
				fc.Weight = 0
			}
			fc.Weight = fc.Weight / total
			normalized[col] = fc
		}
	}

	return FieldTypeConfig{Fields: normalized}
}

// Type returns the semantic type for a column, FieldTypeText if unconfigured
func (c FieldTypeConfig) Type(column string) FieldType {
	if fc, ok := c.Fields[column]; ok && fc.Type != "" {
		return fc.Type
	}
	return FieldTypeText
}

// Weight returns the configured weight for a column, 0 if unconfigured
func (c FieldTypeConfig) Weight(column string) float64 {
	if fc, ok := c.Fields[column]; ok {
		return fc.Weight
	}
	return 0
}

// Columns returns the configured column names
func (c FieldTypeConfig) Columns() []string {
	cols := make([]string, 0, len(c.Fields))
	for col := range c.Fields {
		cols = append(cols, col)
	}
	return cols
}

package matching

import (
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/normalizers"
)

// RecordScore is the weighted record-level similarity of two records
type RecordScore struct {
	// Overall is the weighted mean of per-field scores, in [0,100].
	// 0 when no configured column was comparable in both records.
	Overall float64
	// FieldScores holds the unweighted per-field similarity for every
	// compared column
	FieldScores map[string]float64
}

// RecordSimilarity combines per-field similarity into one weighted record
// score. For each configured column, both values are normalized for the
// column's semantic type, scored, and weighted; the overall score is the
// weighted sum divided by the total weight of the compared columns.
func (s *Scorer) RecordSimilarity(a, b models.Record, cfg models.FieldTypeConfig) RecordScore {
	fieldScores := make(map[string]float64, len(cfg.Fields))

	var weightedSum float64
	var weightTotal float64

	for column, fc := range cfg.Fields {
		fieldType := cfg.Type(column)

		na := normalizers.ForFieldType(a.Value(column), fieldType)
		nb := normalizers.ForFieldType(b.Value(column), fieldType)

		score := s.FieldSimilarity(na, nb, fieldType)
		fieldScores[column] = score

		weight := fc.Weight
		if weight <= 0 {
			continue
		}
		weightedSum += score * weight
		weightTotal += weight
	}

	overall := 0.0
	if weightTotal > 0 {
		overall = weightedSum / weightTotal
	}

	return RecordScore{Overall: overall, FieldScores: fieldScores}
}

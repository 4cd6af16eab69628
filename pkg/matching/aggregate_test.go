package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

func record(index int, values map[string]any) models.Record {
	columns := make([]string, 0, len(values))
	for col := range values {
		columns = append(columns, col)
	}
	return models.NewRecordFromAny(index, columns, values)
}

func TestRecordSimilarity(t *testing.T) {
	scorer := NewScorer()

	cfg := models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
		"name":  {Type: models.FieldTypeName, Weight: 0.5},
		"email": {Type: models.FieldTypeEmail, Weight: 0.5},
	}}

	t.Run("identical records score 100", func(t *testing.T) {
		a := record(0, map[string]any{"name": "John Smith", "email": "j@x.com"})
		b := record(1, map[string]any{"name": "john smith", "email": "J@X.COM "})

		score := scorer.RecordSimilarity(a, b, cfg)
		assert.InDelta(t, 100.0, score.Overall, 0.001)
	})

	t.Run("weights shift the overall score", func(t *testing.T) {
		a := record(0, map[string]any{"name": "smith", "email": "a@x.com"})
		b := record(1, map[string]any{"name": "smith", "email": "zz@y.org"})

		nameHeavy := models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
			"name":  {Type: models.FieldTypeName, Weight: 0.9},
			"email": {Type: models.FieldTypeEmail, Weight: 0.1},
		}}
		emailHeavy := models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
			"name":  {Type: models.FieldTypeName, Weight: 0.1},
			"email": {Type: models.FieldTypeEmail, Weight: 0.9},
		}}

		assert.Greater(t,
			scorer.RecordSimilarity(a, b, nameHeavy).Overall,
			scorer.RecordSimilarity(a, b, emailHeavy).Overall)
	})

	t.Run("zero-weight columns are scored but not aggregated", func(t *testing.T) {
		zeroWeight := models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
			"name": {Type: models.FieldTypeName, Weight: 1.0},
			"note": {Type: models.FieldTypeText, Weight: 0},
		}}
		a := record(0, map[string]any{"name": "smith", "note": "alpha"})
		b := record(1, map[string]any{"name": "smith", "note": "omega"})

		score := scorer.RecordSimilarity(a, b, zeroWeight)
		assert.InDelta(t, 100.0, score.Overall, 0.001)
		assert.Contains(t, score.FieldScores, "note")
	})

	t.Run("missing columns score zero", func(t *testing.T) {
		a := record(0, map[string]any{"name": "smith"})
		b := record(1, map[string]any{"email": "a@x.com"})

		score := scorer.RecordSimilarity(a, b, cfg)
		assert.Equal(t, 0.0, score.Overall)
	})

	t.Run("symmetry holds at the record level", func(t *testing.T) {
		a := record(0, map[string]any{"name": "jon smith", "email": "a@x.com"})
		b := record(1, map[string]any{"name": "john smyth", "email": "ax@x.com"})

		assert.Equal(t,
			scorer.RecordSimilarity(a, b, cfg).Overall,
			scorer.RecordSimilarity(b, a, cfg).Overall)
	})
}

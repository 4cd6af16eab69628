package resolution

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/dahlia/pkg/clustering"
	"github.com/Ramsey-B/dahlia/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func makeRecords(columns []string, rows []map[string]any) []models.Record {
	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		records = append(records, models.NewRecordFromAny(i, columns, row))
	}
	return records
}

func TestResolve_ExactEndToEnd(t *testing.T) {
	processor := NewProcessor(testLogger(), Config{
		Clustering: clustering.Config{Mode: clustering.ModeExact, MatchKeys: []string{"id"}},
	})

	records := makeRecords([]string{"id", "email"}, []map[string]any{
		{"id": 1, "email": "a@x.com"},
		{"id": 1, "email": "A@X.com "},
		{"id": 2, "email": "b@y.org"},
	})

	result, err := processor.Resolve(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, result.Clusters, 2)
	assert.Len(t, result.GoldenRecords, 2)

	// Raw values differ by case, so the email conflict reaches rule dispatch
	require.Len(t, result.ResolvedFields, 1)
	field := result.ResolvedFields[0]
	assert.Equal(t, "email", field.Column)
	assert.ElementsMatch(t, []string{"a@x.com", "A@X.com "}, field.Values)

	assert.Equal(t, 3, result.Report.InputRows)
	assert.Equal(t, 2, result.Report.GoldenRecords)
	assert.InDelta(t, 1.5, result.Report.CompressionRatio, 0.001)

	for _, golden := range result.GoldenRecords {
		assert.GreaterOrEqual(t, golden.TrustScore, 0.0)
		assert.LessOrEqual(t, golden.TrustScore, 1.0)
	}
}

func TestResolve_FuzzyEndToEnd(t *testing.T) {
	processor := NewProcessor(testLogger(), Config{
		Clustering: clustering.Config{Mode: clustering.ModeFuzzy, Threshold: 80},
		FieldTypes: models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
			"last_name": {Type: models.FieldTypeName, Weight: 1.0},
		}},
		Survivorship: models.SurvivorshipConfig{DefaultRule: "most_complete"},
		Workers:      4,
	})

	records := makeRecords([]string{"last_name"}, []map[string]any{
		{"last_name": "Smith"},
		{"last_name": "Smyth"},
		{"last_name": "Washington"},
	})

	result, err := processor.Resolve(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, result.Clusters, 2)
	assert.Equal(t, []int{0, 1}, result.Clusters[0].Members)

	require.Len(t, result.ResolvedFields, 1)
	assert.Equal(t, "Smith", result.ResolvedFields[0].Winner.String())
}

func TestResolve_EmptyInput(t *testing.T) {
	processor := NewProcessor(testLogger(), Config{
		Clustering: clustering.Config{Mode: clustering.ModeExact, MatchKeys: []string{"id"}},
	})

	result, err := processor.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Clusters)
	assert.Empty(t, result.GoldenRecords)
	assert.Empty(t, result.ResolvedFields)
	assert.Equal(t, models.QualityStatusNoData, result.Report.Status)
	assert.Equal(t, 1.0, result.Report.CompressionRatio)
}

func TestResolve_ConfigRejection(t *testing.T) {
	records := makeRecords([]string{"id"}, []map[string]any{{"id": 1}})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown mode", Config{
			Clustering: clustering.Config{Mode: "approximate"},
		}},
		{"exact without match keys", Config{
			Clustering: clustering.Config{Mode: clustering.ModeExact},
		}},
		{"threshold out of range", Config{
			Clustering: clustering.Config{Mode: clustering.ModeFuzzy, Threshold: 150},
		}},
		{"malformed format override", Config{
			Clustering: clustering.Config{Mode: clustering.ModeExact, MatchKeys: []string{"id"}},
			Survivorship: models.SurvivorshipConfig{
				FormatOverrides: map[models.FieldType]string{models.FieldTypeEmail: "(["},
			},
		}},
		{"negative field weight", Config{
			Clustering: clustering.Config{Mode: clustering.ModeExact, MatchKeys: []string{"id"}},
			FieldTypes: models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
				"id": {Type: models.FieldTypeText, Weight: -1},
			}},
		}},
		{"unknown field type", Config{
			Clustering: clustering.Config{Mode: clustering.ModeExact, MatchKeys: []string{"id"}},
			FieldTypes: models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
				"id": {Type: "ssn", Weight: 1},
			}},
		}},
		{"inverted quality thresholds", Config{
			Clustering: clustering.Config{Mode: clustering.ModeExact, MatchKeys: []string{"id"}},
			Thresholds: models.ScoreThresholds{Excellent: 50, Good: 80, MinResolvedConfidence: 0.7},
		}},
		{"blocking keys cover all scored columns", Config{
			Clustering: clustering.Config{Mode: clustering.ModeFuzzy, Threshold: 80, BlockingKeys: []string{"id"}},
			FieldTypes: models.FieldTypeConfig{Fields: map[string]models.FieldConfig{
				"id": {Type: models.FieldTypeText, Weight: 1},
			}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := NewProcessor(testLogger(), tt.cfg)
			result, err := processor.Resolve(context.Background(), records)
			assert.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestResolve_DerivesFieldConfig(t *testing.T) {
	processor := NewProcessor(testLogger(), Config{
		Clustering: clustering.Config{Mode: clustering.ModeFuzzy, Threshold: 80},
	})

	// No FieldTypes supplied: types and weights come from column names
	records := makeRecords([]string{"full_name", "email"}, []map[string]any{
		{"full_name": "Jo Smith", "email": "jo@x.com"},
		{"full_name": "Jo Smith", "email": "jo@x.com"},
	})

	result, err := processor.Resolve(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, result.Clusters, 1)
	assert.Len(t, result.GoldenRecords, 1)
	assert.Equal(t, 1.0, result.GoldenRecords[0].TrustScore)
}

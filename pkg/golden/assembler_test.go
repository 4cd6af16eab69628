package golden

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/survivorship"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func makeRecords(rows []map[string]any) []models.Record {
	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		columns := make([]string, 0, len(row))
		for col := range row {
			columns = append(columns, col)
		}
		records = append(records, models.NewRecordFromAny(i, columns, row))
	}
	return records
}

func newAssembler(t *testing.T, cfg models.SurvivorshipConfig, workers int) *Assembler {
	t.Helper()
	engine, err := survivorship.NewEngine(testLogger(), cfg, models.FieldTypeConfig{})
	require.NoError(t, err)
	return NewAssembler(testLogger(), engine, workers)
}

func TestAssemble_Singleton(t *testing.T) {
	assembler := newAssembler(t, models.SurvivorshipConfig{}, 1)
	records := makeRecords([]map[string]any{
		{"name": "Jo", "email": "jo@x.com"},
	})
	clusters := []models.Cluster{{ID: "c1", Members: []int{0}}}

	goldens, resolved := assembler.Assemble(context.Background(), clusters, records)
	require.Len(t, goldens, 1)
	assert.Empty(t, resolved)

	golden := goldens[0]
	assert.Equal(t, "c1", golden.ClusterID)
	assert.Equal(t, 1.0, golden.TrustScore)
	assert.Equal(t, 1, golden.SourceRowCount)
	assert.Equal(t, "Jo", golden.Fields["name"].String())
	assert.Equal(t, "jo@x.com", golden.Fields["email"].String())
}

func TestAssemble_MultiMember(t *testing.T) {
	assembler := newAssembler(t, models.SurvivorshipConfig{DefaultRule: "most_frequent"}, 1)
	records := makeRecords([]map[string]any{
		{"name": "Jo", "state": "NY", "note": nil},
		{"name": "Jo", "state": "NY", "note": nil},
		{"name": "Jo", "state": "CA", "note": nil},
	})
	clusters := []models.Cluster{{ID: "c1", Members: []int{0, 1, 2}}}

	goldens, resolved := assembler.Assemble(context.Background(), clusters, records)
	require.Len(t, goldens, 1)
	golden := goldens[0]

	t.Run("agreeing column is copied", func(t *testing.T) {
		assert.Equal(t, "Jo", golden.Fields["name"].String())
	})

	t.Run("conflicted column produces an audit entry", func(t *testing.T) {
		require.Len(t, resolved, 1)
		assert.Equal(t, "state", resolved[0].Column)
		assert.Equal(t, "c1", resolved[0].ClusterID)
		assert.Equal(t, "NY", resolved[0].Winner.String())
		assert.ElementsMatch(t, []string{"NY", "CA"}, resolved[0].Values)
		assert.Equal(t, "NY", golden.Fields["state"].String())
	})

	t.Run("all-null column survives as null", func(t *testing.T) {
		assert.True(t, golden.Fields["note"].IsNull())
	})

	t.Run("trust is the mean column confidence", func(t *testing.T) {
		// name 1.0, note 0.3, state 0.5 + (2/3)*0.5
		expected := (1.0 + 0.3 + (0.5 + (2.0/3.0)*0.5)) / 3
		assert.InDelta(t, expected, golden.TrustScore, 0.001)
		assert.GreaterOrEqual(t, golden.TrustScore, 0.0)
		assert.LessOrEqual(t, golden.TrustScore, 1.0)
	})
}

func TestAssemble_PartialOverlap(t *testing.T) {
	// A value present in only one member is still not a conflict
	assembler := newAssembler(t, models.SurvivorshipConfig{}, 1)
	records := []models.Record{
		models.NewRecordFromAny(0, []string{"name", "phone"}, map[string]any{"name": "Jo", "phone": "555"}),
		models.NewRecordFromAny(1, []string{"name"}, map[string]any{"name": "Jo"}),
	}
	clusters := []models.Cluster{{ID: "c1", Members: []int{0, 1}}}

	goldens, resolved := assembler.Assemble(context.Background(), clusters, records)
	require.Len(t, goldens, 1)
	assert.Empty(t, resolved)
	assert.Equal(t, "555", goldens[0].Fields["phone"].String())
	assert.Equal(t, 1.0, goldens[0].TrustScore)
}

func TestAssemble_DeterministicOrder(t *testing.T) {
	assembler := newAssembler(t, models.SurvivorshipConfig{}, 8)

	rows := make([]map[string]any, 0, 40)
	clusters := make([]models.Cluster, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows,
			map[string]any{"v": "a"},
			map[string]any{"v": "bb"},
		)
		clusters = append(clusters, models.Cluster{
			ID:      string(rune('a' + i)),
			Members: []int{2 * i, 2*i + 1},
		})
	}
	records := makeRecords(rows)

	goldens, resolved := assembler.Assemble(context.Background(), clusters, records)
	require.Len(t, goldens, 20)
	assert.Len(t, resolved, 20)
	for i, golden := range goldens {
		assert.Equal(t, clusters[i].ID, golden.ClusterID, "position %d", i)
	}
}

func TestAssemble_Empty(t *testing.T) {
	assembler := newAssembler(t, models.SurvivorshipConfig{}, 0)
	goldens, resolved := assembler.Assemble(context.Background(), nil, nil)
	assert.Empty(t, goldens)
	assert.Empty(t, resolved)
}

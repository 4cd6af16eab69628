// Package golden assembles one authoritative record per cluster by merging
// member rows column by column
package golden

import (
	"context"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/survivorship"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
)

// Confidence contributions for columns that never reach rule dispatch
const (
	agreementConfidence = 1.0
	absentConfidence    = 0.3
)

const defaultWorkerCount = 4

// Assembler builds golden records from clusters, delegating conflicted
// columns to the survivorship engine
type Assembler struct {
	logger  ectologger.Logger
	engine  *survivorship.Engine
	workers int
}

// NewAssembler creates a golden record assembler. workers bounds the number
// of clusters resolved concurrently; values below 1 use the default.
func NewAssembler(logger ectologger.Logger, engine *survivorship.Engine, workers int) *Assembler {
	if workers < 1 {
		workers = defaultWorkerCount
	}
	return &Assembler{
		logger:  logger,
		engine:  engine,
		workers: workers,
	}
}

// Assemble produces one golden record per cluster, in cluster order, along
// with an audit trail of every conflicted column that needed a rule. The
// trust score of each golden record is the mean confidence across all of its
// columns: agreeing columns contribute 1.0, empty columns 0.3, and
// conflicted columns the confidence their rule reported.
//
// Clusters are independent once formed, so resolution fans out across a
// bounded worker pool. Results land in per-cluster slots, keeping output
// order deterministic regardless of scheduling.
func (a *Assembler) Assemble(ctx context.Context, clusters []models.Cluster, records []models.Record) ([]models.GoldenRecord, []models.ResolvedField) {
	ctx, span := tracing.StartSpan(ctx, "golden.Assembler.Assemble")
	defer span.End()

	byIndex := make(map[int]models.Record, len(records))
	for _, record := range records {
		byIndex[record.Index] = record
	}

	goldens := make([]models.GoldenRecord, len(clusters))
	fieldsByCluster := make([][]models.ResolvedField, len(clusters))

	var wg sync.WaitGroup
	sem := make(chan struct{}, a.workers)
	for i := range clusters {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			goldens[i], fieldsByCluster[i] = a.assembleCluster(clusters[i], byIndex)
		}(i)
	}
	wg.Wait()

	resolved := make([]models.ResolvedField, 0)
	for _, fields := range fieldsByCluster {
		resolved = append(resolved, fields...)
	}

	a.logger.WithContext(ctx).WithFields(map[string]any{
		"cluster_count":  len(clusters),
		"conflict_count": len(resolved),
	}).Info("Golden record assembly complete")

	return goldens, resolved
}

func (a *Assembler) assembleCluster(cluster models.Cluster, byIndex map[int]models.Record) (models.GoldenRecord, []models.ResolvedField) {
	members := make([]models.Record, 0, len(cluster.Members))
	for _, idx := range cluster.Members {
		if record, ok := byIndex[idx]; ok {
			members = append(members, record)
		}
	}

	golden := models.GoldenRecord{
		ClusterID:      cluster.ID,
		Fields:         make(map[string]models.FieldValue),
		SourceRowCount: len(cluster.Members),
		SourceRows:     cluster.Members,
	}

	// A singleton has nothing to resolve; its row is authoritative
	if len(members) == 1 {
		rep := members[0]
		for _, column := range survivorship.Columns(members) {
			golden.Fields[column] = rep.Value(column)
		}
		golden.TrustScore = 1.0
		return golden, nil
	}

	var resolved []models.ResolvedField
	confidenceSum := 0.0
	columns := survivorship.Columns(members)

	for _, column := range columns {
		switch survivorship.DistinctNonNull(column, members) {
		case 0:
			golden.Fields[column] = models.Null()
			confidenceSum += absentConfidence
		case 1:
			golden.Fields[column] = firstNonNull(column, members)
			confidenceSum += agreementConfidence
		default:
			field := a.engine.ResolveColumn(cluster.ID, column, members)
			golden.Fields[column] = field.Winner
			confidenceSum += field.Confidence
			resolved = append(resolved, field)
		}
	}

	if len(columns) > 0 {
		golden.TrustScore = confidenceSum / float64(len(columns))
	}
	return golden, resolved
}

// firstNonNull returns the first non-null, non-empty value for a column in
// row order
func firstNonNull(column string, records []models.Record) models.FieldValue {
	for _, record := range records {
		value := record.Value(column)
		if value.IsNull() || value.String() == "" {
			continue
		}
		return value
	}
	return models.Null()
}

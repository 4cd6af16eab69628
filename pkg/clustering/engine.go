// Package clustering partitions records into entity clusters, either by
// exact composite-key equality or by greedy nearest-representative fuzzy
// assignment
package clustering

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/dahlia/pkg/fingerprint"
	"github.com/Ramsey-B/dahlia/pkg/matching"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
)

// Mode selects the clustering algorithm
type Mode string

const (
	// ModeExact groups records by equality of their match-key tuples
	ModeExact Mode = "exact"
	// ModeFuzzy assigns records to the nearest cluster representative above
	// a similarity threshold
	ModeFuzzy Mode = "fuzzy"
)

// Config contains configuration for the clustering engine
type Config struct {
	Mode Mode `json:"mode" validate:"required,oneof=exact fuzzy"`
	// MatchKeys are the composite-key columns for exact mode
	MatchKeys []string `json:"match_keys,omitempty"`
	// BlockingKeys prune fuzzy candidates: a cluster is only scored when its
	// representative's blocking-key values equal the new record's
	BlockingKeys []string `json:"blocking_keys,omitempty"`
	// Threshold is the minimum record similarity for joining a cluster in
	// fuzzy mode, in [0,100]
	Threshold float64 `json:"threshold" validate:"gte=0,lte=100"`
}

// Validate checks the configuration against the field config before any
// clustering begins. Configuration errors are structured rejections; a run
// never produces partial output.
func (c Config) Validate(fieldCfg models.FieldTypeConfig) error {
	switch c.Mode {
	case ModeExact:
		if len(c.MatchKeys) == 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "exact mode requires at least one match key column")
		}
	case ModeFuzzy:
		if c.Threshold < 0 || c.Threshold > 100 {
			return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("fuzzy threshold must be in [0,100], got %v", c.Threshold))
		}
		// Blocking keys that cover every weighted column reduce fuzzy
		// matching to exact matching, so that configuration is rejected.
		if len(c.BlockingKeys) > 0 && blocksAllWeightedColumns(c.BlockingKeys, fieldCfg) {
			return httperror.NewHTTPError(http.StatusBadRequest, "blocking keys cover every fuzzy-scored column; use exact mode instead")
		}
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown clustering mode %q", c.Mode))
	}
	return nil
}

func blocksAllWeightedColumns(blockingKeys []string, fieldCfg models.FieldTypeConfig) bool {
	blocked := make(map[string]bool, len(blockingKeys))
	for _, k := range blockingKeys {
		blocked[k] = true
	}
	weighted := 0
	for col, fc := range fieldCfg.Fields {
		if fc.Weight <= 0 {
			continue
		}
		weighted++
		if !blocked[col] {
			return false
		}
	}
	return weighted > 0
}

// Engine partitions a record set into clusters
type Engine struct {
	logger ectologger.Logger
	scorer *matching.Scorer
	cfg    Config
}

// NewEngine creates a new clustering engine
func NewEngine(logger ectologger.Logger, cfg Config) *Engine {
	return &Engine{
		logger: logger,
		scorer: matching.NewScorer(),
		cfg:    cfg,
	}
}

// Cluster partitions records into clusters. The result is a partition of
// the input: every row index appears in exactly one cluster, members in
// discovery order.
func (e *Engine) Cluster(ctx context.Context, records []models.Record, fieldCfg models.FieldTypeConfig) ([]models.Cluster, error) {
	ctx, span := tracing.StartSpan(ctx, "clustering.Engine.Cluster")
	defer span.End()

	if err := e.cfg.Validate(fieldCfg); err != nil {
		return nil, err
	}

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"mode":         string(e.cfg.Mode),
		"record_count": len(records),
	})

	if len(records) == 0 {
		log.Debug("No records to cluster")
		return []models.Cluster{}, nil
	}

	var clusters []models.Cluster
	if e.cfg.Mode == ModeExact {
		clusters = e.clusterExact(records)
	} else {
		clusters = e.clusterFuzzy(records, fieldCfg.NormalizeWeights())
	}

	log.WithFields(map[string]any{"cluster_count": len(clusters)}).Info("Clustering complete")
	return clusters, nil
}

// clusterExact groups records by the fingerprint of their match-key tuple.
// Missing key columns contribute an empty string placeholder. O(n) with a
// hash map; cluster order follows first appearance.
func (e *Engine) clusterExact(records []models.Record) []models.Cluster {
	clusters := make([]models.Cluster, 0)
	byKey := make(map[string]int) // fingerprint -> cluster position

	for _, record := range records {
		key := fingerprint.MatchKey(record, e.cfg.MatchKeys)
		if pos, ok := byKey[key]; ok {
			clusters[pos].Members = append(clusters[pos].Members, record.Index)
			continue
		}
		byKey[key] = len(clusters)
		clusters = append(clusters, models.Cluster{
			ID:      uuid.NewString(),
			Members: []int{record.Index},
		})
	}

	return clusters
}

// clusterFuzzy folds the ordered record sequence into an accumulator that
// owns the growing cluster list. Each record is compared against every
// existing cluster's representative; among clusters at or above the
// threshold the strictly best score wins, ties resolving to the first
// qualifying cluster. Records that qualify nowhere start a new singleton.
//
// Complexity is O(n*k) where k is the number of clusters formed so far,
// O(n^2) worst case with no blocking keys. Later records must see all
// previously formed clusters, so the fold is inherently sequential.
func (e *Engine) clusterFuzzy(records []models.Record, fieldCfg models.FieldTypeConfig) []models.Cluster {
	acc := newAccumulator(e.scorer, e.cfg, fieldCfg)
	for _, record := range records {
		acc.add(record)
	}
	return acc.clusters
}

// accumulator is the single owner of the growing cluster list during a
// fuzzy clustering pass
type accumulator struct {
	scorer   *matching.Scorer
	cfg      Config
	fieldCfg models.FieldTypeConfig

	clusters []models.Cluster
	reps     []models.Record // representative (first member) per cluster
	blocks   []string        // blocking-key fingerprint per cluster
}

func newAccumulator(scorer *matching.Scorer, cfg Config, fieldCfg models.FieldTypeConfig) *accumulator {
	return &accumulator{
		scorer:   scorer,
		cfg:      cfg,
		fieldCfg: fieldCfg,
		clusters: make([]models.Cluster, 0),
	}
}

func (a *accumulator) add(record models.Record) {
	var block string
	if len(a.cfg.BlockingKeys) > 0 {
		block = fingerprint.BlockingKey(record, a.cfg.BlockingKeys)
	}

	best := -1
	bestScore := matching.RecordScore{}

	for i := range a.clusters {
		if block != "" && a.blocks[i] != block {
			continue
		}

		score := a.scorer.RecordSimilarity(record, a.reps[i], a.fieldCfg)
		if score.Overall < a.cfg.Threshold {
			continue
		}
		// Strictly greater keeps the first qualifying cluster on ties
		if best == -1 || score.Overall > bestScore.Overall {
			best = i
			bestScore = score
		}
	}

	if best >= 0 {
		a.clusters[best].Members = append(a.clusters[best].Members, record.Index)
		a.clusters[best].MatchDetails = append(a.clusters[best].MatchDetails, models.MatchDetail{
			RowIndex:    record.Index,
			Score:       bestScore.Overall,
			FieldScores: bestScore.FieldScores,
		})
		return
	}

	a.clusters = append(a.clusters, models.Cluster{
		ID:      uuid.NewString(),
		Members: []int{record.Index},
	})
	a.reps = append(a.reps, record)
	a.blocks = append(a.blocks, block)
}

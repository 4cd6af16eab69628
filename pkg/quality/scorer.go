// Package quality scores the outcome of a consolidation run
package quality

import (
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

// Component weights for the overall dataset score
const (
	trustWeight       = 0.4
	compressionWeight = 0.3
	resolutionWeight  = 0.3
)

// Scorer computes dataset-level quality reports
type Scorer struct {
	logger     ectologger.Logger
	thresholds models.ScoreThresholds
}

// NewScorer creates a quality scorer with the given status cutoffs
func NewScorer(logger ectologger.Logger, thresholds models.ScoreThresholds) *Scorer {
	return &Scorer{
		logger:     logger,
		thresholds: thresholds,
	}
}

// Report summarizes a run. The overall score blends average trust,
// deduplication compression, and the share of conflicts resolved with
// acceptable confidence. Empty input reports a 1.0 compression ratio and the
// no_data status rather than dividing by zero.
func (s *Scorer) Report(inputRows int, goldens []models.GoldenRecord, resolved []models.ResolvedField) models.DatasetQualityReport {
	if inputRows == 0 || len(goldens) == 0 {
		return models.DatasetQualityReport{
			Status:           models.QualityStatusNoData,
			CompressionRatio: 1.0,
		}
	}

	trustSum := 0.0
	for _, g := range goldens {
		trustSum += g.TrustScore
	}
	avgTrust := trustSum / float64(len(goldens))

	compression := float64(inputRows) / float64(len(goldens))

	resolvedCount := 0
	for _, field := range resolved {
		if field.Confidence >= s.thresholds.MinResolvedConfidence {
			resolvedCount++
		}
	}

	trustComponent := avgTrust * 100

	compressionComponent := compression * 20
	if compressionComponent > 100 {
		compressionComponent = 100
	}

	resolutionComponent := 100.0
	if len(resolved) > 0 {
		resolutionComponent = float64(resolvedCount) / float64(len(resolved)) * 100
	}

	overall := trustWeight*trustComponent + compressionWeight*compressionComponent + resolutionWeight*resolutionComponent

	report := models.DatasetQualityReport{
		OverallScore:      overall,
		Status:            s.status(overall),
		CompressionRatio:  compression,
		ConflictsDetected: len(resolved),
		ConflictsResolved: resolvedCount,
		AverageTrustScore: avgTrust,
		InputRows:         inputRows,
		GoldenRecords:     len(goldens),
	}

	s.logger.WithFields(map[string]any{
		"overall_score":     report.OverallScore,
		"status":            report.Status,
		"compression_ratio": report.CompressionRatio,
	}).Debug("Dataset quality computed")

	return report
}

func (s *Scorer) status(overall float64) string {
	switch {
	case overall >= s.thresholds.Excellent:
		return models.QualityStatusExcellent
	case overall >= s.thresholds.Good:
		return models.QualityStatusGood
	default:
		return models.QualityStatusNeedsImprovement
	}
}

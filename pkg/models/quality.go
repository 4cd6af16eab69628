package models

// Quality status bands
const (
	QualityStatusExcellent        = "excellent"
	QualityStatusGood             = "good"
	QualityStatusNeedsImprovement = "needs_improvement"
	QualityStatusNoData           = "no_data"
)

// ScoreThresholds holds the caller-configurable quality cutoffs
type ScoreThresholds struct {
	// Excellent is the minimum overall score for the "excellent" band
	Excellent float64 `json:"excellent" validate:"gte=0,lte=100"`
	// Good is the minimum overall score for the "good" band
	Good float64 `json:"good" validate:"gte=0,lte=100"`
	// MinResolvedConfidence is the confidence at or above which a resolved
	// field counts as resolved rather than needing review
	MinResolvedConfidence float64 `json:"min_resolved_confidence" validate:"gte=0,lte=1"`
}

// DefaultScoreThresholds returns the standard cutoffs
func DefaultScoreThresholds() ScoreThresholds {
	return ScoreThresholds{
		Excellent:             90,
		Good:                  75,
		MinResolvedConfidence: 0.7,
	}
}

// DatasetQualityReport summarizes one consolidation run
type DatasetQualityReport struct {
	OverallScore float64 `json:"overall_score"`
	Status       string  `json:"status"`
	// CompressionRatio is input rows / golden records (1.0 by convention for
	// empty input)
	CompressionRatio  float64 `json:"compression_ratio"`
	ConflictsDetected int     `json:"conflicts_detected"`
	ConflictsResolved int     `json:"conflicts_resolved"`
	AverageTrustScore float64 `json:"average_trust_score"`
	InputRows         int     `json:"input_rows"`
	GoldenRecords     int     `json:"golden_records"`
}

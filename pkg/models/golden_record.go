package models

// GoldenRecord is the single authoritative record produced for one cluster
type GoldenRecord struct {
	ClusterID string `json:"cluster_id"`
	// Fields holds the merged value for every input column
	Fields map[string]FieldValue `json:"fields"`
	// TrustScore is the mean per-column resolution confidence, in [0,1].
	// Singleton clusters always score 1.0.
	TrustScore     float64 `json:"trust_score"`
	SourceRowCount int     `json:"source_row_count"`
	SourceRows     []int   `json:"source_rows"`
}

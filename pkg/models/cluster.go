package models

// MatchDetail records how a non-representative member joined a cluster
type MatchDetail struct {
	RowIndex    int                `json:"row_index"`
	Score       float64            `json:"score"`
	FieldScores map[string]float64 `json:"field_scores,omitempty"`
}

// Cluster is a group of records believed to represent the same real-world
// entity. Members are row indices in discovery order; the first member is
// the cluster representative used as the fuzzy comparison anchor.
// Clusters partition the input: every row index belongs to exactly one.
type Cluster struct {
	ID           string        `json:"id"`
	Members      []int         `json:"members"`
	MatchDetails []MatchDetail `json:"match_details,omitempty"`
}

// Representative returns the row index of the cluster representative
func (c Cluster) Representative() int {
	return c.Members[0]
}

// Size returns the number of member records
func (c Cluster) Size() int {
	return len(c.Members)
}

// IsSingleton reports whether the cluster has a single member
func (c Cluster) IsSingleton() bool {
	return len(c.Members) == 1
}

// Package fingerprint builds deterministic grouping keys for exact matching
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

// keySeparator is unlikely to occur inside a field value, so distinct key
// tuples cannot collide after joining
const keySeparator = "\x1f"

// MatchKey returns a deterministic fingerprint of a record's values for the
// given key columns. Two records share a fingerprint iff their stringified
// key tuples are identical; a missing column contributes an empty string.
func MatchKey(record models.Record, keys []string) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = record.Value(key).String()
	}
	return hash(strings.Join(parts, keySeparator))
}

// BlockingKey returns the fingerprint of a record's blocking-key values.
// Candidates with different blocking keys are pruned before fuzzy scoring.
func BlockingKey(record models.Record, keys []string) string {
	return MatchKey(record, keys)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

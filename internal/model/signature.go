// internal/model/signature.go
package model

import (
	"fmt"
	"time"
)

// Signature is a cheap change-detection token over a record subset:
// total count, per-status counts, newest id and newest modification time.
// Equality is a heuristic, not an exhaustive diff.
type Signature struct {
	Total       int            `json:"total"`
	Counts      map[Status]int `json:"counts"`
	MaxID       int            `json:"max_id"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Token renders the signature as an opaque comparison string.
func (s *Signature) Token() string {
	return fmt.Sprintf("%d:%d:%d:%d:%d:%d:%d:%d",
		s.Total,
		s.Counts[StatusEnquiry],
		s.Counts[StatusHold],
		s.Counts[StatusPending],
		s.Counts[StatusActive],
		s.Counts[StatusCompleted],
		s.MaxID,
		s.LastUpdated.UnixNano(),
	)
}

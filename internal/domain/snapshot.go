package domain

import "time"

// Snapshot is a rendered view stamped with the request generation that
// produced it. Transition is the marker visibility change the renderer must
// apply, set by the owner of the marker state. Snapshots are never mutated
// after they are published.
type Snapshot struct {
	Generation uint64     `json:"generation"`
	ComputedAt time.Time  `json:"computed_at"`
	View       View       `json:"view"`
	Transition Transition `json:"transition"`
}

// NewSnapshot renders data for sel and stamps the result.
func NewSnapshot(generation uint64, sel Selection, policy ViewPolicy, data Dataset) Snapshot {
	return Snapshot{
		Generation: generation,
		ComputedAt: clock.Now().UTC(),
		View:       Render(sel, policy, data),
	}
}

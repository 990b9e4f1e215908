package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection is wrapped by every Validate failure.
var ErrInvalidSelection = errors.New("invalid selection")

// Selection is the user's current choice of measure(s) and view. It is a
// value: the With* methods return modified copies.
type Selection struct {
	MeasureID   string      `json:"measure_id"`
	Kind        MeasureKind `json:"kind"`
	CompanionID string      `json:"companion_id,omitempty"`
	Mode        ViewMode    `json:"mode"`
	Zoom        int         `json:"zoom"`
}

// Validate checks that the selection names a measure and known kinds.
func (s Selection) Validate() error {
	if s.MeasureID == "" {
		return fmt.Errorf("%w: measure is required", ErrInvalidSelection)
	}
	if s.Kind != KindHealth && s.Kind != KindSDOH {
		return fmt.Errorf("%w: kind must be health or sdoh", ErrInvalidSelection)
	}
	if s.Mode != ViewCounty && s.Mode != ViewState {
		return fmt.Errorf("%w: mode must be county or state", ErrInvalidSelection)
	}
	return nil
}

// Overlay reports whether a companion measure is selected.
func (s Selection) Overlay() bool { return s.CompanionID != "" }

// CompanionKind is the kind of the overlay measure: the opposite of Kind.
func (s Selection) CompanionKind() MeasureKind {
	if s.Kind == KindSDOH {
		return KindHealth
	}
	return KindSDOH
}

// PrimaryQuery is the fetch for the selected measure's raw county records.
func (s Selection) PrimaryQuery() Query {
	return Query{MeasureID: s.MeasureID, Kind: s.Kind, Granularity: GranularityCounty}
}

// CompanionQuery is the fetch for the overlay measure. ok is false when no
// overlay is selected.
func (s Selection) CompanionQuery() (Query, bool) {
	if !s.Overlay() {
		return Query{}, false
	}
	return Query{MeasureID: s.CompanionID, Kind: s.CompanionKind(), Granularity: GranularityCounty}, true
}

// SameData reports whether two selections need the same record sets, so a
// zoom or mode change can be recomputed without refetching.
func (s Selection) SameData(o Selection) bool {
	return s.MeasureID == o.MeasureID && s.Kind == o.Kind && s.CompanionID == o.CompanionID
}

func (s Selection) WithMeasure(id string, kind MeasureKind) Selection {
	s.MeasureID = id
	s.Kind = kind
	return s
}

func (s Selection) WithCompanion(id string) Selection {
	s.CompanionID = id
	return s
}

func (s Selection) WithMode(m ViewMode) Selection {
	s.Mode = m
	return s
}

func (s Selection) WithZoom(z int) Selection {
	s.Zoom = z
	return s
}

package domain

import "fmt"

// ViewMode selects county-level markers or state aggregates.
type ViewMode string

const (
	ViewCounty ViewMode = "county"
	ViewState  ViewMode = "state"
)

// ParseViewMode accepts "county" or "state"; empty defaults to county.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewCounty:
		return ViewCounty, nil
	case ViewState:
		return ViewState, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

// Granularity is the record granularity the mode renders.
func (m ViewMode) Granularity() Granularity {
	if m == ViewState {
		return GranularityState
	}
	return GranularityCounty
}

// MarkerVisibility is whether markers are materialized.
type MarkerVisibility string

const (
	MarkersHidden  MarkerVisibility = "hidden"
	MarkersVisible MarkerVisibility = "visible"
)

// DefaultZoomThreshold is the county-mode zoom level at which markers appear.
const DefaultZoomThreshold = 6

// ViewPolicy decides marker visibility from view mode and zoom level.
type ViewPolicy struct {
	ZoomThreshold int
}

// ShouldShowMarkers reports whether markers should be rendered. State mode is
// always visible; county mode is visible from ZoomThreshold upwards.
func (p ViewPolicy) ShouldShowMarkers(mode ViewMode, zoom int) bool {
	if mode == ViewState {
		return true
	}
	return zoom >= p.ZoomThreshold
}

// Visibility is ShouldShowMarkers expressed as a state.
func (p ViewPolicy) Visibility(mode ViewMode, zoom int) MarkerVisibility {
	if p.ShouldShowMarkers(mode, zoom) {
		return MarkersVisible
	}
	return MarkersHidden
}

// Transition describes a visibility change. Dispose is set when markers that
// were visible must be removed by the renderer.
type Transition struct {
	From    MarkerVisibility `json:"from"`
	To      MarkerVisibility `json:"to"`
	Dispose bool             `json:"dispose"`
}

// Changed reports whether the visibility moved.
func (t Transition) Changed() bool { return t.From != t.To }

// MarkerGate tracks marker visibility across zoom and view-mode events.
// It starts hidden. The zero value uses a zero threshold; use NewMarkerGate.
type MarkerGate struct {
	policy  ViewPolicy
	current MarkerVisibility
}

// NewMarkerGate creates a gate in the hidden state.
func NewMarkerGate(policy ViewPolicy) *MarkerGate {
	return &MarkerGate{policy: policy, current: MarkersHidden}
}

// Current returns the gate's visibility.
func (g *MarkerGate) Current() MarkerVisibility {
	if g.current == "" {
		return MarkersHidden
	}
	return g.current
}

// Update applies a zoom or view-mode change and returns the transition.
func (g *MarkerGate) Update(mode ViewMode, zoom int) Transition {
	t := g.Preview(mode, zoom)
	g.current = t.To
	return t
}

// Preview returns the transition Update would report without applying it.
func (g *MarkerGate) Preview(mode ViewMode, zoom int) Transition {
	from := g.Current()
	to := g.policy.Visibility(mode, zoom)
	return Transition{
		From:    from,
		To:      to,
		Dispose: from == MarkersVisible && to == MarkersHidden,
	}
}

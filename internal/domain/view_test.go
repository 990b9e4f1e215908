package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewPolicy_ShouldShowMarkers(t *testing.T) {
	p := ViewPolicy{ZoomThreshold: DefaultZoomThreshold}

	tests := []struct {
		name     string
		mode     ViewMode
		zoom     int
		expected bool
	}{
		{"state mode at low zoom", ViewState, 3, true},
		{"state mode at high zoom", ViewState, 12, true},
		{"county below threshold", ViewCounty, 5, false},
		{"county at threshold", ViewCounty, 6, true},
		{"county above threshold", ViewCounty, 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ShouldShowMarkers(tt.mode, tt.zoom))
		})
	}
}

func TestParseViewMode(t *testing.T) {
	m, err := ParseViewMode("")
	require.NoError(t, err)
	assert.Equal(t, ViewCounty, m)

	m, err = ParseViewMode("state")
	require.NoError(t, err)
	assert.Equal(t, ViewState, m)
	assert.Equal(t, GranularityState, m.Granularity())

	_, err = ParseViewMode("zipcode")
	require.Error(t, err)
}

func TestMarkerGate(t *testing.T) {
	g := NewMarkerGate(ViewPolicy{ZoomThreshold: 6})
	assert.Equal(t, MarkersHidden, g.Current())

	tr := g.Update(ViewCounty, 4)
	assert.False(t, tr.Changed())
	assert.False(t, tr.Dispose)

	tr = g.Update(ViewCounty, 7)
	assert.True(t, tr.Changed())
	assert.Equal(t, MarkersVisible, tr.To)
	assert.False(t, tr.Dispose)

	tr = g.Update(ViewCounty, 5)
	assert.Equal(t, Transition{From: MarkersVisible, To: MarkersHidden, Dispose: true}, tr)

	tr = g.Update(ViewState, 2)
	assert.Equal(t, MarkersVisible, tr.To)
	assert.False(t, tr.Dispose)
}

func TestMarkerGate_ZeroValueStartsHidden(t *testing.T) {
	var g MarkerGate
	assert.Equal(t, MarkersHidden, g.Current())
}

func TestMarkerGate_PreviewDoesNotApply(t *testing.T) {
	g := NewMarkerGate(ViewPolicy{ZoomThreshold: 6})
	g.Update(ViewCounty, 8)

	tr := g.Preview(ViewCounty, 3)
	assert.True(t, tr.Dispose)
	assert.Equal(t, MarkersVisible, g.Current())
}

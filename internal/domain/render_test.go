package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asthmaRecords() []MeasureRecord {
	return []MeasureRecord{
		county("Travis", "Texas", Float64(10), Int64(1_300_000)),
		county("Harris", "Texas", Float64(20), Int64(4_700_000)),
		county("Kings", "New York", Float64(30), Int64(2_600_000)),
		county("Loving", "Texas", nil, Int64(64)),
	}
}

func povertyRecords() []MeasureRecord {
	return []MeasureRecord{
		county("Travis", "Texas", Float64(11), nil),
		county("Harris", "Texas", Float64(16), nil),
	}
}

var testPolicy = ViewPolicy{ZoomThreshold: DefaultZoomThreshold}

func TestRender_CountyHiddenBelowThreshold(t *testing.T) {
	sel := Selection{MeasureID: "CASTHMA", Kind: KindHealth, Mode: ViewCounty, Zoom: 4}
	v := Render(sel, testPolicy, Dataset{Primary: asthmaRecords()})

	assert.Equal(t, MarkersHidden, v.Visibility)
	assert.Nil(t, v.Markers)
	assert.True(t, v.Quartiles.Defined(), "statistics are computed while hidden")
	assert.Equal(t, 4, v.Summary.Locations)
	assert.Len(t, v.Legend, 5)
}

func TestRender_CountyVisible(t *testing.T) {
	sel := Selection{MeasureID: "CASTHMA", Kind: KindHealth, Mode: ViewCounty, Zoom: 8}
	v := Render(sel, testPolicy, Dataset{Primary: asthmaRecords()})

	require.Equal(t, MarkersVisible, v.Visibility)
	require.Len(t, v.Markers, 4)
	assert.Equal(t, Quartiles{Q1: 10, Q2: 20, Q3: 30, Min: 10, Max: 30, N: 3}, v.Quartiles)

	got := make([]Classification, len(v.Markers))
	for i, m := range v.Markers {
		got[i] = m.Classification
		assert.Empty(t, m.CompanionStatus)
		assert.Nil(t, m.BlendedColor)
	}
	assert.Equal(t, []Classification{MediumLow, MediumHigh, High, Unknown}, got)
	assert.Equal(t, UnknownColor, v.Markers[3].Color)
	assert.Equal(t, MarkerRadius(Int64(64)), v.Markers[3].Radius)
	assert.NotEqual(t, v.Markers[0].Color, v.Markers[2].Color)
}

func TestRender_CountyOverlay(t *testing.T) {
	sel := Selection{
		MeasureID:   "CASTHMA",
		Kind:        KindHealth,
		CompanionID: "ACS_PCT_POV_BELOW_100",
		Mode:        ViewCounty,
		Zoom:        8,
	}
	v := Render(sel, testPolicy, Dataset{Primary: asthmaRecords(), Companion: povertyRecords()})

	require.Len(t, v.Markers, 4)
	require.NotNil(t, v.CompanionQuartiles)
	assert.Equal(t, 2, v.CompanionQuartiles.N)

	travis := v.Markers[0]
	require.NotNil(t, travis.Companion)
	require.NotNil(t, travis.CompanionColor)
	assert.Equal(t, Blend(travis.Color, *travis.CompanionColor), *travis.BlendedColor)

	kings := v.Markers[2]
	assert.Nil(t, kings.Companion)
	assert.Nil(t, kings.BlendedColor)
	assert.Equal(t, NoCompanionStatus, kings.CompanionStatus)
}

func TestRender_StateMode(t *testing.T) {
	sel := Selection{MeasureID: "CASTHMA", Kind: KindHealth, Mode: ViewState, Zoom: 2}
	v := Render(sel, testPolicy, Dataset{Primary: asthmaRecords()})

	assert.Equal(t, MarkersVisible, v.Visibility)
	assert.Nil(t, v.Markers)
	require.Len(t, v.States, 2)
	assert.Equal(t, "New York", v.States[0].Aggregate.State)
	assert.Equal(t, "Texas", v.States[1].Aggregate.State)
	assert.Equal(t, 2, v.Quartiles.N)
	assert.Equal(t, High, v.States[0].Classification)
	assert.InDelta(t, 107.0/6.0, v.States[1].Aggregate.Value, 1e-9)
	assert.Equal(t, MediumLow, v.States[1].Classification)
	assert.Equal(t, MarkerRadius(Int64(2_600_000)), v.States[0].Radius)
}

func TestRender_StateOverlay(t *testing.T) {
	sel := Selection{
		MeasureID:   "CASTHMA",
		Kind:        KindHealth,
		CompanionID: "ACS_PCT_POV_BELOW_100",
		Mode:        ViewState,
	}
	v := Render(sel, testPolicy, Dataset{Primary: asthmaRecords(), Companion: povertyRecords()})

	require.Len(t, v.States, 2)
	require.NotNil(t, v.CompanionQuartiles)
	assert.Equal(t, NoCompanionStatus, v.States[0].CompanionStatus)
	require.NotNil(t, v.States[1].BlendedColor)
	assert.Equal(t, Blend(v.States[1].Color, *v.States[1].CompanionColor), *v.States[1].BlendedColor)
}

func TestRender_OverlayWithoutCompanionData(t *testing.T) {
	sel := Selection{MeasureID: "CASTHMA", Kind: KindHealth, CompanionID: "X", Mode: ViewCounty, Zoom: 8}
	v := Render(sel, testPolicy, Dataset{Primary: asthmaRecords()})

	assert.Nil(t, v.CompanionQuartiles)
	assert.Empty(t, v.Markers[0].CompanionStatus)
}

func TestSummarize(t *testing.T) {
	s := Summarize(asthmaRecords())

	assert.Equal(t, 4, s.Locations)
	assert.Equal(t, 3, s.ValueCount)
	require.NotNil(t, s.Mean)
	assert.InDelta(t, 20.0, *s.Mean, 1e-12)
	assert.Equal(t, int64(8_600_064), s.TotalPopulation)
	assert.Equal(t, map[Classification]int{High: 1, MediumHigh: 1, MediumLow: 1, Low: 0, Unknown: 1}, s.Buckets)

	empty := Summarize(nil)
	assert.Nil(t, empty.Mean)
	assert.Len(t, empty.Buckets, 5)
}

func TestSelection(t *testing.T) {
	sel := Selection{MeasureID: "CASTHMA", Kind: KindHealth, Mode: ViewCounty}
	require.NoError(t, sel.Validate())
	assert.False(t, sel.Overlay())

	_, ok := sel.CompanionQuery()
	assert.False(t, ok)

	overlay := sel.WithCompanion("ACS_PCT_UNINSURED")
	q, ok := overlay.CompanionQuery()
	require.True(t, ok)
	assert.Equal(t, Query{MeasureID: "ACS_PCT_UNINSURED", Kind: KindSDOH, Granularity: GranularityCounty}, q)
	assert.Equal(t, KindHealth, sel.WithMeasure("ACS_PCT_UNINSURED", KindSDOH).CompanionKind())

	assert.True(t, sel.SameData(sel.WithZoom(9).WithMode(ViewState)))
	assert.False(t, sel.SameData(overlay))

	assert.ErrorIs(t, Selection{Kind: KindHealth, Mode: ViewCounty}.Validate(), ErrInvalidSelection)
	assert.Error(t, sel.WithMeasure("CASTHMA", "other").Validate())
	assert.Error(t, sel.WithMode("zip").Validate())
}

func TestGradientFor(t *testing.T) {
	assert.Equal(t, HigherIsWorse, PolarityFor("CASTHMA"))
	assert.Equal(t, GradientGoodToBad, GradientFor("CASTHMA"))
	assert.Equal(t, ColorLow, GradientFor("CHECKUP").Start, "higher-is-better measures start red")
	assert.Equal(t, GradientNeutral, GradientFor("SOMETHING_ELSE"))
}

func TestNewSnapshot(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	sel := Selection{MeasureID: "CASTHMA", Kind: KindHealth, Mode: ViewState}
	snap := NewSnapshot(7, sel, testPolicy, Dataset{Primary: asthmaRecords()})

	assert.Equal(t, uint64(7), snap.Generation)
	assert.Equal(t, fake.Now(), snap.ComputedAt)
	assert.Len(t, snap.View.States, 2)
}

func TestRender_LegendMatchesMarkerColors(t *testing.T) {
	records := []MeasureRecord{
		county("Travis", "Texas", Float64(10), Int64(1_300_000)),
		county("Harris", "Texas", Float64(11), Int64(4_700_000)),
		county("Dallas", "Texas", Float64(12), Int64(2_600_000)),
		county("Bexar", "Texas", Float64(13), Int64(2_000_000)),
		county("Kings", "New York", Float64(100), Int64(2_600_000)),
	}
	sel := Selection{MeasureID: "CASTHMA", Kind: KindHealth, Mode: ViewCounty, Zoom: 8}
	v := Render(sel, testPolicy, Dataset{Primary: records})
	require.Len(t, v.Markers, 5)

	legend := make(map[Classification]RGB, len(v.Legend))
	for _, e := range v.Legend {
		legend[e.Classification] = e.Color
	}

	high := v.Markers[4]
	require.Equal(t, High, high.Classification)
	assert.Equal(t, legend[High], high.Color)
	assert.Equal(t, ColorLow, high.Color)

	low := v.Markers[0]
	require.Equal(t, Low, low.Classification)
	assert.Equal(t, legend[Low], low.Color)

	assert.Equal(t, Legend(), v.Palette)
}

package domain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func county(name, state string, value *float64, pop *int64) MeasureRecord {
	return MeasureRecord{LocationName: name, State: state, Value: value, Population: pop}
}

func TestAggregateByState_WeightedMean(t *testing.T) {
	records := []MeasureRecord{
		county("Travis", "Texas", Float64(10), Int64(100)),
		county("Harris", "Texas", Float64(20), Int64(300)),
	}

	aggs := AggregateByState(records, nil)
	require.Len(t, aggs, 1)
	assert.Equal(t, "Texas", aggs[0].State)
	assert.InDelta(t, 17.5, aggs[0].Value, 1e-12)
	assert.Equal(t, 10.0, aggs[0].Min)
	assert.Equal(t, 20.0, aggs[0].Max)
	assert.Equal(t, int64(400), aggs[0].TotalPopulation)
	assert.Equal(t, 2, aggs[0].LocationCount)
	assert.Nil(t, aggs[0].Companion)
}

func TestAggregateByState_ZeroPopulationFallsBackToMean(t *testing.T) {
	records := []MeasureRecord{
		county("Travis", "Texas", Float64(10), Int64(0)),
		county("Harris", "Texas", Float64(20), Int64(0)),
	}

	aggs := AggregateByState(records, nil)
	require.Len(t, aggs, 1)
	assert.InDelta(t, 15.0, aggs[0].Value, 1e-12)
	assert.Equal(t, int64(0), aggs[0].TotalPopulation)
}

func TestAggregateByState_UnweightedMembersExcludedFromWeightedMean(t *testing.T) {
	records := []MeasureRecord{
		county("Travis", "Texas", Float64(10), Int64(100)),
		county("Loving", "Texas", Float64(40), nil),
	}

	aggs := AggregateByState(records, nil)
	require.Len(t, aggs, 1)
	assert.InDelta(t, 10.0, aggs[0].Value, 1e-12)
	assert.Equal(t, 40.0, aggs[0].Max, "min and max cover every finite value")
	assert.Equal(t, 2, aggs[0].ValueCount)
}

func TestAggregateByState_DropsStatesWithoutValues(t *testing.T) {
	records := []MeasureRecord{
		county("Travis", "Texas", Float64(10), Int64(100)),
		county("Kings", "New York", nil, Int64(500)),
		county("Queens", "New York", Float64(math.NaN()), Int64(500)),
	}

	aggs := AggregateByState(records, nil)
	require.Len(t, aggs, 1)
	assert.Equal(t, "Texas", aggs[0].State)
}

func TestAggregateByState_OrderedByState(t *testing.T) {
	records := []MeasureRecord{
		county("Travis", "Texas", Float64(1), nil),
		county("Kings", "New York", Float64(2), nil),
		county("Mobile", "Alabama", Float64(3), nil),
	}

	aggs := AggregateByState(records, nil)
	require.Len(t, aggs, 3)
	assert.Equal(t, []string{"Alabama", "New York", "Texas"},
		[]string{aggs[0].State, aggs[1].State, aggs[2].State})
}

func TestAggregateByState_Centroid(t *testing.T) {
	a := county("Travis", "Texas", Float64(1), nil)
	a.Lat, a.Lng = Float64(30), Float64(-97)
	b := county("Harris", "Texas", Float64(2), nil)
	b.Lat, b.Lng = Float64(32), Float64(-99)
	c := county("Loving", "Texas", Float64(3), nil)

	aggs := AggregateByState([]MeasureRecord{a, b, c}, nil)
	require.Len(t, aggs, 1)
	require.NotNil(t, aggs[0].Centroid)
	assert.Equal(t, orb.Point{-98, 31}, *aggs[0].Centroid)

	aggs = AggregateByState([]MeasureRecord{c}, nil)
	require.Len(t, aggs, 1)
	assert.Nil(t, aggs[0].Centroid)
}

func TestAggregateByState_PassThroughFields(t *testing.T) {
	a := county("Travis", "Texas", Float64(10), nil)
	a.Unit, a.ValueType = "%", "Crude prevalence"
	a.LowConfidence, a.HighConfidence = Float64(8), Float64(12)
	b := county("Harris", "Texas", Float64(20), nil)
	b.Unit = "per 100k"
	b.LowConfidence, b.HighConfidence = Float64(18), Float64(24)

	aggs := AggregateByState([]MeasureRecord{a, b}, nil)
	require.Len(t, aggs, 1)
	assert.Equal(t, "%", aggs[0].Unit, "first member's unit is kept")
	assert.Equal(t, "Crude prevalence", aggs[0].ValueType)
	require.NotNil(t, aggs[0].LowConfidence)
	assert.InDelta(t, 13.0, *aggs[0].LowConfidence, 1e-12)
	assert.InDelta(t, 18.0, *aggs[0].HighConfidence, 1e-12)
	assert.Equal(t, ValueSummary{Mean: 15, Min: 10, Max: 20, Count: 2}, aggs[0].Summary())
}

func TestAggregateByState_Overlay(t *testing.T) {
	primary := []MeasureRecord{
		county("Travis", "Texas", Float64(10), Int64(100)),
		county("Harris", "Texas", Float64(20), Int64(300)),
		county("Kings", "New York", Float64(30), Int64(50)),
	}
	companions := []MeasureRecord{
		county("Travis", "Texas", Float64(1), Int64(100)),
		county("Harris", "Texas", Float64(5), Int64(100)),
		county("Kings", "New York", nil, Int64(50)),
	}

	aggs := AggregateByState(primary, companions)
	require.Len(t, aggs, 2)

	ny, tx := aggs[0], aggs[1]
	assert.Nil(t, ny.Companion, "matched companion without a value yields no summary")
	require.NotNil(t, tx.Companion)
	assert.InDelta(t, 3.0, tx.Companion.Mean, 1e-12)
	assert.Equal(t, 1.0, tx.Companion.Min)
	assert.Equal(t, 5.0, tx.Companion.Max)
	assert.Equal(t, 2, tx.Companion.Count)
}

func TestAggregateByState_EmptyCompanionSetStillOverlay(t *testing.T) {
	primary := []MeasureRecord{county("Travis", "Texas", Float64(10), nil)}

	aggs := AggregateByState(primary, []MeasureRecord{})
	require.Len(t, aggs, 1)
	assert.Nil(t, aggs[0].Companion)
}

func TestAggregateByState_Empty(t *testing.T) {
	assert.Empty(t, AggregateByState(nil, nil))
}

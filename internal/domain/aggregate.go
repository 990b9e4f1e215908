package domain

import (
	"slices"

	"github.com/paulmach/orb"
)

// ValueSummary is the rollup of one measure's values within a state.
type ValueSummary struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// StateAggregate is one state's rollup of a record set. Companion is set only
// in overlay mode, and only when at least one member had a companion value.
type StateAggregate struct {
	State           string        `json:"state"`
	Value           float64       `json:"value"`
	Min             float64       `json:"min"`
	Max             float64       `json:"max"`
	ValueCount      int           `json:"value_count"`
	LocationCount   int           `json:"location_count"`
	TotalPopulation int64         `json:"total_population"`
	Centroid        *orb.Point    `json:"centroid,omitempty"` // [lng, lat]
	Unit            string        `json:"unit,omitempty"`
	ValueType       string        `json:"value_type,omitempty"`
	LowConfidence   *float64      `json:"low_confidence,omitempty"`
	HighConfidence  *float64      `json:"high_confidence,omitempty"`
	Companion       *ValueSummary `json:"companion,omitempty"`
}

// Summary returns the primary measure's rollup in ValueSummary form.
func (a StateAggregate) Summary() ValueSummary {
	return ValueSummary{Mean: a.Value, Min: a.Min, Max: a.Max, Count: a.ValueCount}
}

// weighted is a value with its population, if any.
type weighted struct {
	value      float64
	population int64
}

// AggregateByState groups records by state and rolls each group up.
// Pass a nil companions slice for single-measure mode. Groups with no finite
// values are dropped. Results are ordered by state name.
func AggregateByState(records, companions []MeasureRecord) []StateAggregate {
	var idx *CompanionIndex
	if companions != nil {
		idx = NewCompanionIndex(companions)
	}

	groups := make(map[string][]MeasureRecord)
	var order []string
	for i := range records {
		s := records[i].State
		if _, ok := groups[s]; !ok {
			order = append(order, s)
		}
		groups[s] = append(groups[s], records[i])
	}
	slices.Sort(order)

	out := make([]StateAggregate, 0, len(order))
	for _, state := range order {
		agg, ok := aggregateGroup(state, groups[state], idx)
		if !ok {
			continue
		}
		out = append(out, agg)
	}
	return out
}

func aggregateGroup(state string, members []MeasureRecord, idx *CompanionIndex) (StateAggregate, bool) {
	primary := make([]weighted, 0, len(members))
	var companion []weighted
	var totalPop int64
	var lowSum, highSum float64
	var lowN, highN int

	for i := range members {
		m := &members[i]
		if m.Population != nil && *m.Population > 0 {
			totalPop += *m.Population
		}
		if m.LowConfidence != nil && isFinite(*m.LowConfidence) {
			lowSum += *m.LowConfidence
			lowN++
		}
		if m.HighConfidence != nil && isFinite(*m.HighConfidence) {
			highSum += *m.HighConfidence
			highN++
		}
		if v, ok := m.FiniteValue(); ok {
			pop, _ := m.PositivePopulation()
			primary = append(primary, weighted{value: v, population: pop})
		}
		if idx == nil {
			continue
		}
		if c := idx.Lookup(*m); c != nil {
			if v, ok := c.FiniteValue(); ok {
				pop, _ := c.PositivePopulation()
				companion = append(companion, weighted{value: v, population: pop})
			}
		}
	}

	summary, ok := summarize(primary)
	if !ok {
		return StateAggregate{}, false
	}

	agg := StateAggregate{
		State:           state,
		Value:           summary.Mean,
		Min:             summary.Min,
		Max:             summary.Max,
		ValueCount:      summary.Count,
		LocationCount:   len(members),
		TotalPopulation: totalPop,
		Centroid:        centroid(members),
		Unit:            members[0].Unit,
		ValueType:       members[0].ValueType,
	}
	if lowN > 0 {
		agg.LowConfidence = Float64(lowSum / float64(lowN))
	}
	if highN > 0 {
		agg.HighConfidence = Float64(highSum / float64(highN))
	}
	if c, ok := summarize(companion); ok {
		agg.Companion = &c
	}
	return agg, true
}

// summarize computes the population-weighted mean when any value carries a
// positive population, otherwise the simple mean, plus min and max over all
// values. ok is false for an empty input.
func summarize(values []weighted) (ValueSummary, bool) {
	if len(values) == 0 {
		return ValueSummary{}, false
	}
	s := ValueSummary{Min: values[0].value, Max: values[0].value, Count: len(values)}

	var sum, weightedSum float64
	var totalWeight int64
	for _, w := range values {
		sum += w.value
		s.Min = min(s.Min, w.value)
		s.Max = max(s.Max, w.value)
		if w.population > 0 {
			weightedSum += w.value * float64(w.population)
			totalWeight += w.population
		}
	}

	if totalWeight > 0 {
		s.Mean = weightedSum / float64(totalWeight)
	} else {
		s.Mean = sum / float64(len(values))
	}
	return s, true
}

// centroid is the unweighted mean position of members with valid coordinates.
func centroid(members []MeasureRecord) *orb.Point {
	var sumLng, sumLat float64
	var n int
	for i := range members {
		p, ok := members[i].Point()
		if !ok {
			continue
		}
		sumLng += p.Lon()
		sumLat += p.Lat()
		n++
	}
	if n == 0 {
		return nil
	}
	return &orb.Point{sumLng / float64(n), sumLat / float64(n)}
}

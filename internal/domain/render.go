package domain

// NoCompanionStatus is shown when an overlay has no matching location.
const NoCompanionStatus = "no matching data available"

// Dataset is an immutable pair of record sets the view is computed from.
// Companion is nil outside overlay mode.
type Dataset struct {
	Primary   []MeasureRecord
	Companion []MeasureRecord
}

// Marker is a classified county location ready to draw.
type Marker struct {
	Record          MeasureRecord  `json:"record"`
	Classification  Classification `json:"classification"`
	Color           RGB            `json:"color"`
	Radius          float64        `json:"radius"`
	Companion       *MeasureRecord `json:"companion,omitempty"`
	CompanionColor  *RGB           `json:"companion_color,omitempty"`
	BlendedColor    *RGB           `json:"blended_color,omitempty"`
	CompanionStatus string         `json:"companion_status,omitempty"`
}

// StateMarker is a classified state aggregate ready to draw.
type StateMarker struct {
	Aggregate       StateAggregate `json:"aggregate"`
	Classification  Classification `json:"classification"`
	Color           RGB            `json:"color"`
	Radius          float64        `json:"radius"`
	CompanionColor  *RGB           `json:"companion_color,omitempty"`
	BlendedColor    *RGB           `json:"blended_color,omitempty"`
	CompanionStatus string         `json:"companion_status,omitempty"`
}

// View is the full rendering result for one selection.
type View struct {
	Selection          Selection        `json:"selection"`
	Visibility         MarkerVisibility `json:"visibility"`
	Markers            []Marker         `json:"markers,omitempty"`
	States             []StateMarker    `json:"states,omitempty"`
	Quartiles          Quartiles        `json:"quartiles"`
	CompanionQuartiles *Quartiles       `json:"companion_quartiles,omitempty"`
	Summary            Summary          `json:"summary"`
	// Legend follows the measure's gradient; Palette is the fixed bucket key
	// for the distribution panel.
	Legend  []LegendEntry `json:"legend"`
	Palette []LegendEntry `json:"palette"`
}

// Render classifies and colors data for sel. When the policy hides markers
// the view carries statistics only; nothing is materialized.
func Render(sel Selection, policy ViewPolicy, data Dataset) View {
	v := View{
		Selection:  sel,
		Visibility: policy.Visibility(sel.Mode, sel.Zoom),
		Summary:    Summarize(data.Primary),
		Legend:     LegendFor(GradientFor(sel.MeasureID)),
		Palette:    Legend(),
	}
	overlay := sel.Overlay() && data.Companion != nil

	if sel.Mode == ViewState {
		var companions []MeasureRecord
		if overlay {
			companions = data.Companion
		}
		v.States, v.Quartiles, v.CompanionQuartiles = renderStates(sel, AggregateByState(data.Primary, companions), overlay)
		return v
	}

	v.Quartiles = v.Summary.Quartiles
	if overlay {
		cq := QuartilesOf(data.Companion)
		v.CompanionQuartiles = &cq
	}
	if v.Visibility == MarkersHidden {
		return v
	}
	v.Markers = renderMarkers(sel, data, v.Quartiles, v.CompanionQuartiles)
	return v
}

func renderMarkers(sel Selection, data Dataset, q Quartiles, cq *Quartiles) []Marker {
	gradient := GradientFor(sel.MeasureID)
	companionGradient := GradientFor(sel.CompanionID)

	var companions []MeasureRecord
	if cq != nil {
		companions = data.Companion
	}

	pairs := PairRecords(data.Primary, companions)
	markers := make([]Marker, 0, len(pairs))
	for _, p := range pairs {
		r := p.Primary
		m := Marker{
			Record:         r,
			Classification: ClassifyRecord(r, q),
			Color:          ColorForRecord(r, q, gradient),
			Radius:         MarkerRadius(r.Population),
		}
		if cq != nil {
			m.Companion = p.Companion
			if m.Companion == nil {
				m.CompanionStatus = NoCompanionStatus
			} else {
				cc := ColorForRecord(*m.Companion, *cq, companionGradient)
				blended := Blend(m.Color, cc)
				m.CompanionColor = &cc
				m.BlendedColor = &blended
			}
		}
		markers = append(markers, m)
	}
	return markers
}

func renderStates(sel Selection, aggs []StateAggregate, overlay bool) ([]StateMarker, Quartiles, *Quartiles) {
	values := make([]float64, len(aggs))
	var companionValues []float64
	for i := range aggs {
		values[i] = aggs[i].Value
		if aggs[i].Companion != nil {
			companionValues = append(companionValues, aggs[i].Companion.Mean)
		}
	}
	q := ComputeQuartiles(values)

	var cq *Quartiles
	if overlay {
		computed := ComputeQuartiles(companionValues)
		cq = &computed
	}

	gradient := GradientFor(sel.MeasureID)
	companionGradient := GradientFor(sel.CompanionID)

	states := make([]StateMarker, 0, len(aggs))
	for _, a := range aggs {
		pop := a.TotalPopulation
		sm := StateMarker{
			Aggregate:      a,
			Classification: Classify(a.Value, q),
			Color:          ColorFor(a.Value, q, gradient),
			Radius:         MarkerRadius(&pop),
		}
		if overlay {
			if a.Companion == nil {
				sm.CompanionStatus = NoCompanionStatus
			} else {
				cc := ColorFor(a.Companion.Mean, *cq, companionGradient)
				blended := Blend(sm.Color, cc)
				sm.CompanionColor = &cc
				sm.BlendedColor = &blended
			}
		}
		states = append(states, sm)
	}
	return states, q, cq
}

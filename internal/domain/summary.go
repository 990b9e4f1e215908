package domain

// Summary describes a record set's distribution for the stats panel.
type Summary struct {
	Locations       int                    `json:"locations"`
	ValueCount      int                    `json:"value_count"`
	Mean            *float64               `json:"mean,omitempty"`
	TotalPopulation int64                  `json:"total_population"`
	Quartiles       Quartiles              `json:"quartiles"`
	Buckets         map[Classification]int `json:"buckets"`
}

// Summarize computes the location count, simple mean, population total,
// quartiles and per-bucket counts of records. Mean is nil for an empty sample.
func Summarize(records []MeasureRecord) Summary {
	q := QuartilesOf(records)
	s := Summary{
		Locations: len(records),
		Quartiles: q,
		Buckets: map[Classification]int{
			High: 0, MediumHigh: 0, MediumLow: 0, Low: 0, Unknown: 0,
		},
	}

	var sum float64
	for i := range records {
		r := &records[i]
		if r.Population != nil && *r.Population > 0 {
			s.TotalPopulation += *r.Population
		}
		if v, ok := r.FiniteValue(); ok {
			sum += v
			s.ValueCount++
		}
		s.Buckets[ClassifyRecord(*r, q)]++
	}
	if s.ValueCount > 0 {
		s.Mean = Float64(sum / float64(s.ValueCount))
	}
	return s
}

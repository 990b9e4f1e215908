package domain

import "fmt"

// Classification is the quartile bucket a value falls in. The numeric order
// of the known buckets matches the order of the values they hold.
type Classification int

const (
	Unknown Classification = iota
	Low
	MediumLow
	MediumHigh
	High
)

var classificationNames = map[Classification]string{
	Unknown:    "unknown",
	Low:        "low",
	MediumLow:  "medium_low",
	MediumHigh: "medium_high",
	High:       "high",
}

func (c Classification) String() string {
	if s, ok := classificationNames[c]; ok {
		return s
	}
	return fmt.Sprintf("classification(%d)", int(c))
}

// Label is the human-readable legend label.
func (c Classification) Label() string {
	switch c {
	case Low:
		return "Low"
	case MediumLow:
		return "Medium-Low"
	case MediumHigh:
		return "Medium-High"
	case High:
		return "High"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the classification as its snake_case name.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(text []byte) error {
	for k, name := range classificationNames {
		if name == string(text) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown classification %q", text)
}

// Classify maps a value to its quartile bucket:
//   - High: v >= Q3
//   - MediumHigh: Q2 <= v < Q3
//   - MediumLow: Q1 <= v < Q2
//   - Low: v < Q1
//
// Unknown is returned for non-finite values or undefined quartiles.
func Classify(value float64, q Quartiles) Classification {
	if !isFinite(value) || !q.Defined() {
		return Unknown
	}
	switch {
	case value >= q.Q3:
		return High
	case value >= q.Q2:
		return MediumHigh
	case value >= q.Q1:
		return MediumLow
	default:
		return Low
	}
}

// ClassifyRecord classifies a record's value; absent values are Unknown.
func ClassifyRecord(r MeasureRecord, q Quartiles) Classification {
	v, ok := r.FiniteValue()
	if !ok {
		return Unknown
	}
	return Classify(v, q)
}

// Normalize maps a value to [0,1] for color interpolation. The value is first
// clamped into the outlier bounds so extreme values cannot compress the
// gradient. Bounds that overflow fall back to the sample's Min and Max.
// A flat distribution (Lower == Upper) normalizes to 0.
// ok is false for non-finite values or undefined quartiles.
func Normalize(value float64, q Quartiles) (float64, bool) {
	if !isFinite(value) || !q.Defined() {
		return 0, false
	}
	b := q.Bounds()
	lo, hi := b.Lower, b.Upper
	if !isFinite(lo) {
		lo = q.Min
	}
	if !isFinite(hi) {
		hi = q.Max
	}
	if hi <= lo {
		return 0, true
	}
	clamped := min(max(value, lo), hi)
	// Halving keeps the differences finite near the float64 limits.
	t := (clamped/2 - lo/2) / (hi/2 - lo/2)
	return min(max(t, 0), 1), true
}

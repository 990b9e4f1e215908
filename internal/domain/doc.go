// Package domain is the classification and aggregation engine behind the
// health equity map. Everything here is a pure function over in-memory
// record sets; I/O lives in the adapters.
//
// # Data Sources
//
// Health measures come from the CDC PLACES county release (GIS-friendly
// format). Each row carries a location, its state, a "Geolocation" WKT point,
// the model-based estimate ("Data_Value"), its unit and type, 95% confidence
// limits and the county's total population. SDOH measures come from the AHRQ
// Social Determinants of Health county database, one column per variable.
//
// # Conventions
//
// Geolocation:
//
//	"POINT (<lng> <lat>)", longitude first. Parsed by [ParseGeolocation].
//	Points outside the rough US box (lat 24..72, lng -180..-65) are dropped
//	during preprocessing.
//
// Missing values:
//
//	Optional record fields are pointers. A nil or non-finite Value is never
//	part of any statistic; it classifies as [Unknown] and colors as
//	[UnknownColor].
//
// Quartiles:
//
//	Nearest rank on the sorted sample, indices floor(n*p) for p = .25/.5/.75,
//	no interpolation. See [ComputeQuartiles].
//
// Color scale:
//
//	Values are clamped to the Tukey fences Q1-1.5*IQR .. Q3+1.5*IQR before
//	normalizing, so one extreme county cannot wash out the gradient. Which end
//	of the gradient is red depends on the measure's polarity, a fixed table
//	keyed by measure ID ([PolarityFor]).
//
// State aggregation:
//
//	Population-weighted mean when any member has a positive population,
//	otherwise a simple mean. Centroids are unweighted. See [AggregateByState].
//
// Overlay:
//
//	Health and SDOH records pair on (location name, state). A missing pair is
//	a nil companion, never an error. See [FindCompanion].
package domain

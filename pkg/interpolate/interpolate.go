// Package interpolate implements the pluggable secondary-stream alignment
// strategies of §4.2 (C3): direct carry-forward, linear, and quadratic.
//
// Each strategy is generic over a measurement.Numeric payload so it can be
// instantiated once per stream type (accelerometer, gravity, gyroscope,
// magnetometer) instead of being hand-duplicated per stream, the way
// pkg/resampler's calculateAverageDataPoint/calculateTriangleArea combine
// schema.Float scalars regardless of which metric they came from.
package interpolate

import "github.com/irurueta-labs/sensorsync/pkg/measurement"

// Interpolator aligns a secondary stream's buffered history onto a target
// timestamp. Interpolate returns false when it cannot produce a value (e.g.
// insufficient history); the syncer core's fallback in that case is to carry
// `current` forward with its timestamp replaced by targetTs (§4.2).
type Interpolator[P measurement.Numeric[P]] interface {
	// Interpolate produces an aligned value at targetTs from the
	// interpolator's own retained history plus the newly selected current
	// sample. previous may be the zero Value with hasPrevious=false when no
	// carry slot exists yet (§3's has_previous[S]).
	Interpolate(previous measurement.Value[P], hasPrevious bool, current measurement.Value[P], targetTs int64) (measurement.Value[P], bool)
}

package interpolate

import "github.com/irurueta-labs/sensorsync/pkg/measurement"

// Linear blends the carried previous sample and the newly selected current
// sample component-wise, weighted by how close targetTs sits between their
// timestamps. Accuracy and sensor type are taken from current (§4.2).
type Linear[P measurement.Numeric[P]] struct{}

// NewLinear constructs a linear interpolator.
func NewLinear[P measurement.Numeric[P]]() *Linear[P] {
	return &Linear[P]{}
}

func (l *Linear[P]) Interpolate(previous measurement.Value[P], hasPrevious bool, current measurement.Value[P], targetTs int64) (measurement.Value[P], bool) {
	if !hasPrevious {
		return measurement.Value[P]{}, false
	}
	return linearBlend(previous, current, targetTs)
}

// linearBlend requires current.Timestamp > previous.Timestamp (§4.2); it is
// shared with Quadratic's degrade-to-linear path.
func linearBlend[P measurement.Numeric[P]](previous, current measurement.Value[P], targetTs int64) (measurement.Value[P], bool) {
	span := current.Timestamp - previous.Timestamp
	if span <= 0 {
		return measurement.Value[P]{}, false
	}
	lambda := float64(targetTs-previous.Timestamp) / float64(span)
	blended := previous.Payload.Scale(1 - lambda).Add(current.Payload.Scale(lambda))
	return measurement.Value[P]{
		Payload:    blended,
		Timestamp:  targetTs,
		Accuracy:   current.Accuracy,
		SensorType: current.SensorType,
	}, true
}

package interpolate

import "github.com/irurueta-labs/sensorsync/pkg/measurement"

// Direct copies the current sample verbatim and stamps it with the target
// timestamp. It never fails: the simplest strategy, and the one every other
// strategy degrades to when it lacks enough history (§4.2).
type Direct[P measurement.Numeric[P]] struct{}

// NewDirect constructs a direct carry-forward interpolator.
func NewDirect[P measurement.Numeric[P]]() *Direct[P] {
	return &Direct[P]{}
}

func (d *Direct[P]) Interpolate(_ measurement.Value[P], _ bool, current measurement.Value[P], targetTs int64) (measurement.Value[P], bool) {
	return current.WithTimestamp(targetTs), true
}

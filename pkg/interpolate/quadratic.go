package interpolate

import "github.com/irurueta-labs/sensorsync/pkg/measurement"

// Quadratic fits a Lagrange quadratic through the last three selected
// secondary samples and evaluates it at the target timestamp.
//
// The syncer core only carries a single-slot carry (previous[S], §3), so
// Quadratic keeps the one extra historical sample it needs internally, the
// "small history window" strategies are allowed to hold per §4.2. It
// degrades to Linear for the second sample and Direct for the first,
// matching Direct/Linear's own bootstrap behavior exactly.
//
// Quadratic is not safe for concurrent use and must not be shared across
// syncer instances: construct one per stream, same as any other
// Interpolator.
type Quadratic[P measurement.Numeric[P]] struct {
	older    measurement.Value[P]
	hasOlder bool
}

// NewQuadratic constructs a quadratic interpolator with empty history.
func NewQuadratic[P measurement.Numeric[P]]() *Quadratic[P] {
	return &Quadratic[P]{}
}

func (q *Quadratic[P]) Interpolate(previous measurement.Value[P], hasPrevious bool, current measurement.Value[P], targetTs int64) (measurement.Value[P], bool) {
	defer func() {
		q.older, q.hasOlder = previous, hasPrevious
	}()

	if !hasPrevious {
		return current.WithTimestamp(targetTs), true
	}
	if !q.hasOlder {
		return linearBlend(previous, current, targetTs)
	}
	if out, ok := quadraticFit(q.older, previous, current, targetTs); ok {
		return out, true
	}
	// Degenerate timestamps (e.g. a duplicate); fall back one rung.
	return linearBlend(previous, current, targetTs)
}

func quadraticFit[P measurement.Numeric[P]](a, b, c measurement.Value[P], targetTs int64) (measurement.Value[P], bool) {
	t0, t1, t2 := float64(a.Timestamp), float64(b.Timestamp), float64(c.Timestamp)
	if t0 == t1 || t1 == t2 || t0 == t2 {
		return measurement.Value[P]{}, false
	}
	t := float64(targetTs)

	l0 := (t - t1) * (t - t2) / ((t0 - t1) * (t0 - t2))
	l1 := (t - t0) * (t - t2) / ((t1 - t0) * (t1 - t2))
	l2 := (t - t0) * (t - t1) / ((t2 - t0) * (t2 - t1))

	out := a.Payload.Scale(l0).Add(b.Payload.Scale(l1)).Add(c.Payload.Scale(l2))
	return measurement.Value[P]{
		Payload:    out,
		Timestamp:  targetTs,
		Accuracy:   c.Accuracy,
		SensorType: c.SensorType,
	}, true
}

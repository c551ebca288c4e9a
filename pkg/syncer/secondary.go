package syncer

import (
	"github.com/irurueta-labs/sensorsync/pkg/adapter"
	"github.com/irurueta-labs/sensorsync/pkg/interpolate"
	"github.com/irurueta-labs/sensorsync/pkg/measurement"
	"github.com/irurueta-labs/sensorsync/pkg/ringbuffer"
)

// secondarySlot is the type-erased view of a secondaryStream[P] that engine
// holds in a single slice. A syncer with more than one secondary stream (the
// three-stream gravity/gyroscope variant) necessarily mixes several distinct
// payload types in one engine instance; Go generics can't express a slice of
// "secondaryStream[P] for varying P" directly, so each concrete P gets type
// erased behind this interface instead, the same way sort.Interface erases a
// slice's element type. The primary stream never needs this: engine itself
// is generic in the primary payload type, so primary measurements stay
// strongly typed end to end.
type secondarySlot interface {
	id() string
	start(startTimestamp int64) bool
	stop()
	drainAndPush(mostRecentTimestamp int64) (overflowCount int)
	peekMatch(primaryTimestamp int64) bool
	commit(primaryTimestamp int64) any
	cleanupStale(threshold int64)
	reset()
	usage() (length, capacity int)
	collectorUsage() float64
}

// secondaryStream implements secondarySlot for one concrete payload type. It
// owns the stream's core ring buffer, its interpolation strategy and the
// previous[S]/has_previous[S] carry the interpolator is fed on every match.
type secondaryStream[P measurement.Numeric[P]] struct {
	streamID     string
	adapter      adapter.SecondaryAdapter[P]
	ring         *ringbuffer.Ring[measurement.Value[P]]
	interpolator interpolate.Interpolator[P]

	previous    measurement.Value[P]
	hasPrevious bool

	staleListener func(streamID string, evicted []measurement.Value[P])
}

func newSecondaryStream[P measurement.Numeric[P]](
	streamID string,
	a adapter.SecondaryAdapter[P],
	capacity int,
	interp interpolate.Interpolator[P],
	staleListener func(string, []measurement.Value[P]),
) (*secondaryStream[P], error) {
	ring, err := ringbuffer.New[measurement.Value[P]](capacity)
	if err != nil {
		return nil, ErrInvalidArgument
	}
	return &secondaryStream[P]{
		streamID:      streamID,
		adapter:       a,
		ring:          ring,
		interpolator:  interp,
		staleListener: staleListener,
	}, nil
}

func (s *secondaryStream[P]) id() string { return s.streamID }

func (s *secondaryStream[P]) start(startTimestamp int64) bool {
	return s.adapter.Start(startTimestamp)
}

func (s *secondaryStream[P]) stop() {
	s.adapter.Stop()
}

func (s *secondaryStream[P]) drainAndPush(mostRecentTimestamp int64) int {
	drained := s.adapter.DrainBefore(mostRecentTimestamp)
	overflow := 0
	for _, v := range drained {
		if s.ring.Push(v) == ringbuffer.PushFull {
			overflow++
		}
	}
	return overflow
}

func (s *secondaryStream[P]) peekMatch(primaryTimestamp int64) bool {
	_, ok := s.ring.FindLastMatching(func(v measurement.Value[P]) bool {
		return v.Timestamp <= primaryTimestamp
	})
	return ok
}

// commit selects the qualifying sample (the same one peekMatch already
// confirmed exists), interpolates it to targetTimestamp, updates the
// previous[S]/has_previous[S] carry unconditionally (the carry advances
// whenever a match was made, regardless of whether the interpolator itself
// succeeded), and drops everything up to and including the matched sample
// from the ring.
func (s *secondaryStream[P]) commit(targetTimestamp int64) any {
	matched, ok := s.ring.FindLastMatching(func(v measurement.Value[P]) bool {
		return v.Timestamp <= targetTimestamp
	})
	if !ok {
		// peekMatch guarantees this doesn't happen in normal use.
		return nil
	}

	out, aligned := s.interpolator.Interpolate(s.previous, s.hasPrevious, matched, targetTimestamp)
	if !aligned {
		out = matched.WithTimestamp(targetTimestamp)
	}

	s.previous, s.hasPrevious = matched, true

	s.ring.DrainWhile(func(v measurement.Value[P]) bool {
		return v.Timestamp <= matched.Timestamp
	})

	return out
}

func (s *secondaryStream[P]) cleanupStale(threshold int64) {
	evicted := s.ring.DrainWhile(func(v measurement.Value[P]) bool {
		return v.Timestamp < threshold
	})
	if len(evicted) > 0 && s.staleListener != nil {
		s.staleListener(s.streamID, evicted)
	}
}

func (s *secondaryStream[P]) reset() {
	s.ring.Clear()
	var zero measurement.Value[P]
	s.previous, s.hasPrevious = zero, false
}

func (s *secondaryStream[P]) usage() (int, int) {
	return s.ring.Len(), s.ring.Capacity()
}

func (s *secondaryStream[P]) collectorUsage() float64 {
	return s.adapter.CollectorUsage()
}

package syncer

import (
	"time"

	"github.com/google/uuid"

	"github.com/irurueta-labs/sensorsync/pkg/adapter"
	"github.com/irurueta-labs/sensorsync/pkg/measurement"
	"github.com/irurueta-labs/sensorsync/pkg/ringbuffer"
	"github.com/irurueta-labs/sensorsync/pkg/synclog"
)

// engine is the shared core state machine (§4.4) behind every concrete
// syncer variant. It is generic in the primary stream's payload type only;
// secondary streams, which can differ in payload type from each other and
// from the primary, are held behind the secondarySlot erasure.
//
// engine takes no internal locks. Like a real sensor-fusion pipeline driven
// off a single event loop, it assumes its exported methods are invoked
// serially by one external executor and never reentered from within a
// callback it is itself in the middle of firing, the same single-threaded,
// cooperative contract adapter callbacks are documented to uphold.
type engine[PP measurement.Numeric[PP]] struct {
	instanceID uuid.UUID

	primaryID      string
	primaryAdapter adapter.PrimaryAdapter[PP]
	primaryRing    *ringbuffer.Ring[measurement.Value[PP]]
	primaryCap     int

	secondaries []secondarySlot

	onMatch                 func(primary measurement.Value[PP], secondaries []any)
	bufferFilledListener    BufferFilledListener
	accuracyChangedListener AccuracyChangedListener
	staleDetectedListener   func(streamID string, evicted []measurement.Value[PP])

	stopWhenFilledBuffer  bool
	staleDetectionEnabled bool
	staleOffsetNanos      int64

	running                bool
	startTimestamp         int64
	mostRecentTimestamp    *int64
	oldestTimestamp        *int64
	numberOfProcessed      uint64
	lastNotifiedTimestamp  int64
}

func newEngine[PP measurement.Numeric[PP]](
	primaryID string,
	primaryAdapter adapter.PrimaryAdapter[PP],
	primaryCapacity int,
	opts Options,
) (*engine[PP], error) {
	if primaryCapacity < 1 {
		return nil, ErrInvalidArgument
	}
	ring, err := ringbuffer.New[measurement.Value[PP]](primaryCapacity)
	if err != nil {
		return nil, ErrInvalidArgument
	}
	return &engine[PP]{
		instanceID:            uuid.New(),
		primaryID:             primaryID,
		primaryAdapter:        primaryAdapter,
		primaryRing:           ring,
		primaryCap:            primaryCapacity,
		stopWhenFilledBuffer:  opts.StopWhenFilledBuffer,
		staleDetectionEnabled: opts.StaleDetectionEnabled,
		staleOffsetNanos:      opts.StaleOffsetNanos,
	}, nil
}

func (e *engine[PP]) addSecondary(s secondarySlot) {
	e.secondaries = append(e.secondaries, s)
}

// start implements §4.4.1. A non-nil error is only ever ErrInvalidState; an
// adapter start failure is reported as (false, nil), per §7. A failed
// secondary start does not stop the adapters already started before it:
// they keep running while the engine stays not running, until the caller
// calls stop.
func (e *engine[PP]) start(startTimestamp *int64) (bool, error) {
	if e.running {
		return false, ErrInvalidState
	}

	e.resetState()

	ts := time.Now().UnixNano()
	if startTimestamp != nil {
		ts = *startTimestamp
	}
	e.startTimestamp = ts

	if !e.primaryAdapter.Start(ts) {
		synclog.Errorf("syncer %s: primary adapter %q failed to start", e.instanceID, e.primaryID)
		return false, nil
	}
	for _, s := range e.secondaries {
		if !s.start(ts) {
			synclog.Errorf("syncer %s: secondary adapter %q failed to start", e.instanceID, s.id())
			return false, nil
		}
	}

	e.running = true
	return true, nil
}

// stop implements §4.4.2. Idempotent: stopping an already-stopped engine is
// a no-op beyond re-resetting state, since adapters are expected to treat
// their own Stop as idempotent too.
func (e *engine[PP]) stop() {
	e.primaryAdapter.Stop()
	for _, s := range e.secondaries {
		s.stop()
	}
	e.running = false
	e.resetState()
}

// resetState implements §4.4.7: every buffer empty, every carry cleared,
// every counter zero.
func (e *engine[PP]) resetState() {
	e.primaryRing.Clear()
	e.mostRecentTimestamp = nil
	e.oldestTimestamp = nil
	e.numberOfProcessed = 0
	e.lastNotifiedTimestamp = 0
	for _, s := range e.secondaries {
		s.reset()
	}
}

func (e *engine[PP]) isRunning() bool { return e.running }

// startTimestampValue returns the timestamp the current run was started at.
// stop does not clear it, so after a stop it still reports the last run's
// start timestamp.
func (e *engine[PP]) startTimestampValue() int64 { return e.startTimestamp }

// mostRecentTimestampValue returns the timestamp of the last primary
// measurement observed, or nil if none has arrived since the last start.
func (e *engine[PP]) mostRecentTimestampValue() *int64 { return e.mostRecentTimestamp }

// oldestTimestampValue returns the timestamp of the last emitted synced
// tuple, or nil if none has been emitted since the last start.
func (e *engine[PP]) oldestTimestampValue() *int64 { return e.oldestTimestamp }

// bufferFilledProtocol implements the shared §4.4.8 reaction to any stream's
// ring filling up: notify the listener, and if configured to do so, stop the
// whole syncer. Returns whether it stopped, so callers mid-batch know to
// abort rather than keep touching now-reset state.
func (e *engine[PP]) bufferFilledProtocol(streamID string) bool {
	if e.bufferFilledListener != nil {
		e.bufferFilledListener(streamID)
	}
	if e.stopWhenFilledBuffer {
		e.stop()
		return true
	}
	return false
}

// onPrimaryArrived implements §4.4.3: drain the primary adapter up to
// position, push each measurement into the primary ring, and run the
// matching batch.
func (e *engine[PP]) onPrimaryArrived(position int) {
	if !e.running {
		return
	}
	drained := e.primaryAdapter.DrainUpToPosition(position)
	for _, m := range drained {
		ts := m.Timestamp
		if e.mostRecentTimestamp != nil && ts <= *e.mostRecentTimestamp {
			synclog.Warnf("syncer %s: primary sample at %d is not newer than the previous one at %d; buffering it in arrival order",
				e.instanceID, ts, *e.mostRecentTimestamp)
		}
		e.mostRecentTimestamp = &ts
		if e.primaryRing.Push(m) == ringbuffer.PushFull {
			if e.bufferFilledProtocol(e.primaryID) {
				return
			}
		}
	}
	e.processPrimaryBatch()
}

// onSecondaryArrived implements §4.4.4: a secondary never drives matching by
// itself, it only tops up its own ring against the most recently observed
// primary timestamp.
func (e *engine[PP]) onSecondaryArrived(s secondarySlot) {
	if !e.running || e.mostRecentTimestamp == nil {
		return
	}
	overflow := s.drainAndPush(*e.mostRecentTimestamp)
	for i := 0; i < overflow; i++ {
		if e.bufferFilledProtocol(s.id()) {
			return
		}
	}
}

// processPrimaryBatch implements §4.4.5: walk the primary ring front to
// back, and for every primary sample that every secondary can currently
// match, interpolate, emit, and evict it. The first primary that can't yet
// be matched against all secondaries stops the whole batch. Later samples
// are left in the ring for a future call; they can't possibly be easier to
// match than the one currently blocking.
func (e *engine[PP]) processPrimaryBatch() {
	for {
		p, ok := e.primaryRing.PeekFront()
		if !ok {
			return
		}

		if p.Timestamp <= e.lastNotifiedTimestamp {
			synclog.Warnf("syncer %s: discarding non-increasing primary sample at %d (last notified %d)",
				e.instanceID, p.Timestamp, e.lastNotifiedTimestamp)
			e.primaryRing.PopFront()
			continue
		}

		allMatched := true
		for _, s := range e.secondaries {
			if !s.peekMatch(p.Timestamp) {
				allMatched = false
				break
			}
		}
		if !allMatched {
			// A blocked front primary can sit here indefinitely if its
			// missing secondary never arrives. Run staleness against the
			// newest timestamp actually observed (not p's own, which never
			// ages relative to itself) so the blocked entry, and any
			// secondary garbage behind it, still gets reclaimed even
			// though nothing is emitting.
			if e.mostRecentTimestamp != nil {
				e.cleanupStale(*e.mostRecentTimestamp)
			}
			return
		}

		results := make([]any, len(e.secondaries))
		for i, s := range e.secondaries {
			results[i] = s.commit(p.Timestamp)
		}

		e.primaryRing.PopFront()
		e.numberOfProcessed++
		ts := p.Timestamp
		e.oldestTimestamp = &ts
		e.lastNotifiedTimestamp = p.Timestamp

		if e.onMatch != nil {
			e.onMatch(p, results)
		}

		if !e.running {
			// onMatch's listener called back into stop/reset.
			return
		}

		e.cleanupStale(p.Timestamp)
		if !e.running {
			return
		}
	}
}

// cleanupStale implements §4.4.6: evict anything older than
// anchor - stale_offset_nanos from every stream, primary included.
func (e *engine[PP]) cleanupStale(anchorTimestamp int64) {
	if !e.staleDetectionEnabled {
		return
	}
	threshold := anchorTimestamp - e.staleOffsetNanos

	evicted := e.primaryRing.DrainWhile(func(v measurement.Value[PP]) bool {
		return v.Timestamp < threshold
	})
	if len(evicted) > 0 && e.staleDetectedListener != nil {
		e.staleDetectedListener(e.primaryID, evicted)
	}

	for _, s := range e.secondaries {
		s.cleanupStale(threshold)
	}
}

func (e *engine[PP]) onAccuracyChanged(streamID string, acc measurement.Accuracy) {
	if e.accuracyChangedListener != nil {
		e.accuracyChangedListener(streamID, acc)
	}
}

// snapshots returns a Snapshot per stream, primary first, for C7
// introspection and metrics collection.
func (e *engine[PP]) snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(e.secondaries)+1)
	out = append(out, Snapshot{
		StreamID:       e.primaryID,
		Length:         e.primaryRing.Len(),
		Capacity:       e.primaryRing.Capacity(),
		CollectorUsage: e.primaryAdapter.CollectorUsage(),
	})
	for _, s := range e.secondaries {
		l, c := s.usage()
		out = append(out, Snapshot{StreamID: s.id(), Length: l, Capacity: c, CollectorUsage: s.collectorUsage()})
	}
	return out
}

func (e *engine[PP]) processedCount() uint64 { return e.numberOfProcessed }

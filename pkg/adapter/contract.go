// Package adapter defines the contract the syncer core imposes on external
// "buffered collectors" (§4.3, C4) and ships two concrete implementations
// used by tests and the cmd/syncsim demo: a synthetic generator
// (SimulatedAdapter) and a NATS-subject-backed one (NATSAdapter).
//
// Platform sensor adapters themselves are explicitly out of scope (§1); the
// syncer core only ever talks to these interfaces.
package adapter

import "github.com/irurueta-labs/sensorsync/pkg/measurement"

// MeasurementCallback notifies that new measurements are available. position
// is the stream's cursor into its own production sequence; the core uses it
// for the primary and ignores it for secondaries (§4.3).
type MeasurementCallback func(position int)

// BufferFullCallback notifies that the adapter's own buffer overflowed
// before the core could drain it.
type BufferFullCallback func()

// AccuracyChangedCallback notifies of a change in the underlying sensor's
// reported accuracy.
type AccuracyChangedCallback func(measurement.Accuracy)

// Adapter is the lifecycle and callback-registration surface every stream
// adapter exposes, independent of whether it plays the primary or a
// secondary role.
type Adapter[P measurement.Numeric[P]] interface {
	// Start begins production, seeded at startTimestamp. Returns false on
	// failure (§4.4.1); the core does not retry.
	Start(startTimestamp int64) bool
	// Stop ceases production. Idempotent.
	Stop()

	// SetMeasurementArrivedCallback registers the single callback the core
	// attaches at construction (§4.3: "exactly one instance ... per
	// adapter").
	SetMeasurementArrivedCallback(cb MeasurementCallback)
	SetBufferFullCallback(cb BufferFullCallback)
	SetAccuracyChangedCallback(cb AccuracyChangedCallback)

	// CollectorUsage reports how full the adapter's own backlog is, as a
	// fraction in [0, 1], independent of and upstream from the core's own
	// ring occupancy (§6 collector_usage).
	CollectorUsage() float64
}

// PrimaryAdapter is the contract for the one stream whose timestamps define
// alignment points.
type PrimaryAdapter[P measurement.Numeric[P]] interface {
	Adapter[P]
	// DrainUpToPosition returns all newly buffered measurements up to and
	// including position, FIFO-ordered, transferring ownership (§4.3).
	DrainUpToPosition(position int) []measurement.Value[P]
}

// SecondaryAdapter is the contract for a stream aligned to the primary by
// interpolation.
type SecondaryAdapter[P measurement.Numeric[P]] interface {
	Adapter[P]
	// DrainBefore returns all buffered measurements with Timestamp <= ts,
	// FIFO-ordered, transferring ownership (§4.3).
	DrainBefore(ts int64) []measurement.Value[P]
}

package syncer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/irurueta-labs/sensorsync/pkg/adapter"
	"github.com/irurueta-labs/sensorsync/pkg/interpolate"
	"github.com/irurueta-labs/sensorsync/pkg/measurement"
)

// AccelerometerGravityAndGyroscopeSyncedListener receives one aligned
// accelerometer/gravity/gyroscope triple each time the primary stream finds
// a qualifying sample on both secondaries.
type AccelerometerGravityAndGyroscopeSyncedListener func(measurement.AccelerometerGravityAndGyroscopeSyncedMeasurement)

// GravityStaleListener receives the gravity samples evicted by a staleness
// sweep.
type GravityStaleListener func(streamID string, evicted []measurement.Value[measurement.GravityMeasurement])

// GyroscopeStaleListener receives the gyroscope samples evicted by a
// staleness sweep.
type GyroscopeStaleListener func(streamID string, evicted []measurement.Value[measurement.GyroscopeMeasurement])

// AccelerometerGravityAndGyroscopeSyncer drives the accelerometer as primary
// stream against two secondaries, gravity and gyroscope, producing a synced
// triple every time the primary advances past a point both secondaries have
// already reached.
type AccelerometerGravityAndGyroscopeSyncer struct {
	engine    *engine[measurement.AccelerometerMeasurement]
	gravity   *secondaryStream[measurement.GravityMeasurement]
	gyroscope *secondaryStream[measurement.GyroscopeMeasurement]
	collector *metricsCollector

	synced       AccelerometerGravityAndGyroscopeSyncedListener
	staleAccel   AccelerometerStaleListener
	staleGravity GravityStaleListener
	staleGyro    GyroscopeStaleListener
}

// NewAccelerometerGravityAndGyroscopeSyncer builds a three-stream syncer.
// Every capacity argument must be >= 1.
func NewAccelerometerGravityAndGyroscopeSyncer(
	primary adapter.PrimaryAdapter[measurement.AccelerometerMeasurement],
	primaryCapacity int,
	gravityAdapter adapter.SecondaryAdapter[measurement.GravityMeasurement],
	gravityCapacity int,
	gravityInterpolator interpolate.Interpolator[measurement.GravityMeasurement],
	gyroscopeAdapter adapter.SecondaryAdapter[measurement.GyroscopeMeasurement],
	gyroscopeCapacity int,
	gyroscopeInterpolator interpolate.Interpolator[measurement.GyroscopeMeasurement],
	opts Options,
) (*AccelerometerGravityAndGyroscopeSyncer, error) {
	eng, err := newEngine[measurement.AccelerometerMeasurement](streamAccelerometer, primary, primaryCapacity, opts)
	if err != nil {
		return nil, err
	}

	s := &AccelerometerGravityAndGyroscopeSyncer{engine: eng}

	gravity, err := newSecondaryStream[measurement.GravityMeasurement](
		streamGravity, gravityAdapter, gravityCapacity, gravityInterpolator,
		func(streamID string, evicted []measurement.Value[measurement.GravityMeasurement]) {
			if s.staleGravity != nil {
				s.staleGravity(streamID, evicted)
			}
		},
	)
	if err != nil {
		return nil, err
	}
	s.gravity = gravity
	eng.addSecondary(gravity)

	gyroscope, err := newSecondaryStream[measurement.GyroscopeMeasurement](
		streamGyroscope, gyroscopeAdapter, gyroscopeCapacity, gyroscopeInterpolator,
		func(streamID string, evicted []measurement.Value[measurement.GyroscopeMeasurement]) {
			if s.staleGyro != nil {
				s.staleGyro(streamID, evicted)
			}
		},
	)
	if err != nil {
		return nil, err
	}
	s.gyroscope = gyroscope
	eng.addSecondary(gyroscope)

	eng.staleDetectedListener = func(streamID string, evicted []measurement.Value[measurement.AccelerometerMeasurement]) {
		if s.staleAccel != nil {
			s.staleAccel(streamID, evicted)
		}
	}

	eng.onMatch = func(p measurement.Value[measurement.AccelerometerMeasurement], secondaries []any) {
		if s.synced == nil {
			return
		}
		g, _ := secondaries[0].(measurement.Value[measurement.GravityMeasurement])
		w, _ := secondaries[1].(measurement.Value[measurement.GyroscopeMeasurement])
		s.synced(measurement.AccelerometerGravityAndGyroscopeSyncedMeasurement{
			Timestamp:     p.Timestamp,
			Accelerometer: p,
			Gravity:       g,
			Gyroscope:     w,
		})
	}

	primary.SetMeasurementArrivedCallback(func(position int) { eng.onPrimaryArrived(position) })
	primary.SetBufferFullCallback(func() { eng.bufferFilledProtocol(streamAccelerometer) })
	primary.SetAccuracyChangedCallback(func(acc measurement.Accuracy) { eng.onAccuracyChanged(streamAccelerometer, acc) })

	gravityAdapter.SetMeasurementArrivedCallback(func(int) { eng.onSecondaryArrived(gravity) })
	gravityAdapter.SetBufferFullCallback(func() { eng.bufferFilledProtocol(streamGravity) })
	gravityAdapter.SetAccuracyChangedCallback(func(acc measurement.Accuracy) { eng.onAccuracyChanged(streamGravity, acc) })

	gyroscopeAdapter.SetMeasurementArrivedCallback(func(int) { eng.onSecondaryArrived(gyroscope) })
	gyroscopeAdapter.SetBufferFullCallback(func() { eng.bufferFilledProtocol(streamGyroscope) })
	gyroscopeAdapter.SetAccuracyChangedCallback(func(acc measurement.Accuracy) { eng.onAccuracyChanged(streamGyroscope, acc) })

	s.collector = newMetricsCollector(eng.snapshots, eng.isRunning, eng.processedCount, "sensorsync_accel_gravity_gyro")

	return s, nil
}

// Start implements §4.4.1. startTimestamp nil uses the current wall-clock
// time.
func (s *AccelerometerGravityAndGyroscopeSyncer) Start(startTimestamp *int64) (bool, error) {
	return s.engine.start(startTimestamp)
}

// Stop implements §4.4.2.
func (s *AccelerometerGravityAndGyroscopeSyncer) Stop() {
	s.engine.stop()
}

// IsRunning reports whether the syncer is currently accepting measurements.
func (s *AccelerometerGravityAndGyroscopeSyncer) IsRunning() bool {
	return s.engine.isRunning()
}

// StartTimestamp returns the timestamp the current run was started at.
func (s *AccelerometerGravityAndGyroscopeSyncer) StartTimestamp() int64 {
	return s.engine.startTimestampValue()
}

// MostRecentTimestamp returns the timestamp of the last primary measurement
// observed, or nil if none has arrived since the last start.
func (s *AccelerometerGravityAndGyroscopeSyncer) MostRecentTimestamp() *int64 {
	return s.engine.mostRecentTimestampValue()
}

// OldestTimestamp returns the timestamp of the last emitted synced
// measurement, or nil if none has been emitted since the last start.
func (s *AccelerometerGravityAndGyroscopeSyncer) OldestTimestamp() *int64 {
	return s.engine.oldestTimestampValue()
}

// SetSyncedListener registers the callback invoked for each aligned triple.
func (s *AccelerometerGravityAndGyroscopeSyncer) SetSyncedListener(l AccelerometerGravityAndGyroscopeSyncedListener) {
	s.synced = l
}

// SetBufferFilledListener registers the callback invoked whenever a stream's
// ring buffer fills up.
func (s *AccelerometerGravityAndGyroscopeSyncer) SetBufferFilledListener(l BufferFilledListener) {
	s.engine.bufferFilledListener = l
}

// SetAccuracyChangedListener registers the callback invoked when any stream
// reports a sensor accuracy change.
func (s *AccelerometerGravityAndGyroscopeSyncer) SetAccuracyChangedListener(l AccuracyChangedListener) {
	s.engine.accuracyChangedListener = l
}

// SetAccelerometerStaleListener registers the callback invoked whenever a
// staleness sweep evicts accelerometer samples.
func (s *AccelerometerGravityAndGyroscopeSyncer) SetAccelerometerStaleListener(l AccelerometerStaleListener) {
	s.staleAccel = l
}

// SetGravityStaleListener registers the callback invoked whenever a
// staleness sweep evicts gravity samples.
func (s *AccelerometerGravityAndGyroscopeSyncer) SetGravityStaleListener(l GravityStaleListener) {
	s.staleGravity = l
}

// SetGyroscopeStaleListener registers the callback invoked whenever a
// staleness sweep evicts gyroscope samples.
func (s *AccelerometerGravityAndGyroscopeSyncer) SetGyroscopeStaleListener(l GyroscopeStaleListener) {
	s.staleGyro = l
}

// Snapshots returns the current per-stream occupancy, primary first.
func (s *AccelerometerGravityAndGyroscopeSyncer) Snapshots() []Snapshot {
	return s.engine.snapshots()
}

// ProcessedCount returns the number of synced measurements emitted since the
// last Start.
func (s *AccelerometerGravityAndGyroscopeSyncer) ProcessedCount() uint64 {
	return s.engine.processedCount()
}

// Collector returns a prometheus.Collector exposing this syncer's
// introspection surface.
func (s *AccelerometerGravityAndGyroscopeSyncer) Collector() prometheus.Collector {
	return s.collector
}

package syncer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/irurueta-labs/sensorsync/pkg/adapter"
	"github.com/irurueta-labs/sensorsync/pkg/interpolate"
	"github.com/irurueta-labs/sensorsync/pkg/measurement"
)

const (
	streamAccelerometer = "accelerometer"
	streamMagnetometer  = "magnetometer"
	streamGravity       = "gravity"
	streamGyroscope     = "gyroscope"
)

// AccelerometerAndMagnetometerSyncedListener receives one aligned
// accelerometer/magnetometer pair each time the primary accelerometer
// stream finds a qualifying magnetometer sample.
type AccelerometerAndMagnetometerSyncedListener func(measurement.AccelerometerAndMagnetometerSyncedMeasurement)

// AccelerometerStaleListener receives the accelerometer samples evicted by
// a staleness sweep.
type AccelerometerStaleListener func(streamID string, evicted []measurement.Value[measurement.AccelerometerMeasurement])

// MagnetometerStaleListener receives the magnetometer samples evicted by a
// staleness sweep.
type MagnetometerStaleListener func(streamID string, evicted []measurement.Value[measurement.MagnetometerMeasurement])

// AccelerometerAndMagnetometerSyncer drives the accelerometer as primary
// stream against the magnetometer as secondary, producing a synced
// measurement every time the primary advances past a point the secondary
// has already reached.
type AccelerometerAndMagnetometerSyncer struct {
	engine    *engine[measurement.AccelerometerMeasurement]
	secondary *secondaryStream[measurement.MagnetometerMeasurement]
	collector *metricsCollector

	synced      AccelerometerAndMagnetometerSyncedListener
	staleAccel  AccelerometerStaleListener
	staleMag    MagnetometerStaleListener
}

// NewAccelerometerAndMagnetometerSyncer builds a two-stream syncer.
// primaryCapacity and secondaryCapacity must each be >= 1.
func NewAccelerometerAndMagnetometerSyncer(
	primary adapter.PrimaryAdapter[measurement.AccelerometerMeasurement],
	primaryCapacity int,
	secondary adapter.SecondaryAdapter[measurement.MagnetometerMeasurement],
	secondaryCapacity int,
	secondaryInterpolator interpolate.Interpolator[measurement.MagnetometerMeasurement],
	opts Options,
) (*AccelerometerAndMagnetometerSyncer, error) {
	eng, err := newEngine[measurement.AccelerometerMeasurement](streamAccelerometer, primary, primaryCapacity, opts)
	if err != nil {
		return nil, err
	}

	s := &AccelerometerAndMagnetometerSyncer{engine: eng}

	sec, err := newSecondaryStream[measurement.MagnetometerMeasurement](
		streamMagnetometer, secondary, secondaryCapacity, secondaryInterpolator,
		func(streamID string, evicted []measurement.Value[measurement.MagnetometerMeasurement]) {
			if s.staleMag != nil {
				s.staleMag(streamID, evicted)
			}
		},
	)
	if err != nil {
		return nil, err
	}
	s.secondary = sec
	eng.addSecondary(sec)

	eng.staleDetectedListener = func(streamID string, evicted []measurement.Value[measurement.AccelerometerMeasurement]) {
		if s.staleAccel != nil {
			s.staleAccel(streamID, evicted)
		}
	}

	eng.onMatch = func(p measurement.Value[measurement.AccelerometerMeasurement], secondaries []any) {
		if s.synced == nil {
			return
		}
		mag, _ := secondaries[0].(measurement.Value[measurement.MagnetometerMeasurement])
		s.synced(measurement.AccelerometerAndMagnetometerSyncedMeasurement{
			Timestamp:     p.Timestamp,
			Accelerometer: p,
			Magnetometer:  mag,
		})
	}

	primary.SetMeasurementArrivedCallback(func(position int) { eng.onPrimaryArrived(position) })
	primary.SetBufferFullCallback(func() { eng.bufferFilledProtocol(streamAccelerometer) })
	primary.SetAccuracyChangedCallback(func(acc measurement.Accuracy) { eng.onAccuracyChanged(streamAccelerometer, acc) })

	secondary.SetMeasurementArrivedCallback(func(int) { eng.onSecondaryArrived(sec) })
	secondary.SetBufferFullCallback(func() { eng.bufferFilledProtocol(streamMagnetometer) })
	secondary.SetAccuracyChangedCallback(func(acc measurement.Accuracy) { eng.onAccuracyChanged(streamMagnetometer, acc) })

	s.collector = newMetricsCollector(eng.snapshots, eng.isRunning, eng.processedCount, "sensorsync_accel_mag")

	return s, nil
}

// Start implements §4.4.1. startTimestamp nil uses the current wall-clock
// time.
func (s *AccelerometerAndMagnetometerSyncer) Start(startTimestamp *int64) (bool, error) {
	return s.engine.start(startTimestamp)
}

// Stop implements §4.4.2.
func (s *AccelerometerAndMagnetometerSyncer) Stop() {
	s.engine.stop()
}

// IsRunning reports whether the syncer is currently accepting measurements.
func (s *AccelerometerAndMagnetometerSyncer) IsRunning() bool {
	return s.engine.isRunning()
}

// StartTimestamp returns the timestamp the current run was started at.
func (s *AccelerometerAndMagnetometerSyncer) StartTimestamp() int64 {
	return s.engine.startTimestampValue()
}

// MostRecentTimestamp returns the timestamp of the last primary measurement
// observed, or nil if none has arrived since the last start.
func (s *AccelerometerAndMagnetometerSyncer) MostRecentTimestamp() *int64 {
	return s.engine.mostRecentTimestampValue()
}

// OldestTimestamp returns the timestamp of the last emitted synced
// measurement, or nil if none has been emitted since the last start.
func (s *AccelerometerAndMagnetometerSyncer) OldestTimestamp() *int64 {
	return s.engine.oldestTimestampValue()
}

// SetSyncedListener registers the callback invoked for each aligned pair.
func (s *AccelerometerAndMagnetometerSyncer) SetSyncedListener(l AccelerometerAndMagnetometerSyncedListener) {
	s.synced = l
}

// SetBufferFilledListener registers the callback invoked whenever a stream's
// ring buffer or adapter backlog fills up.
func (s *AccelerometerAndMagnetometerSyncer) SetBufferFilledListener(l BufferFilledListener) {
	s.engine.bufferFilledListener = l
}

// SetAccuracyChangedListener registers the callback invoked when either
// stream reports a sensor accuracy change.
func (s *AccelerometerAndMagnetometerSyncer) SetAccuracyChangedListener(l AccuracyChangedListener) {
	s.engine.accuracyChangedListener = l
}

// SetAccelerometerStaleListener registers the callback invoked whenever a
// staleness sweep evicts accelerometer samples.
func (s *AccelerometerAndMagnetometerSyncer) SetAccelerometerStaleListener(l AccelerometerStaleListener) {
	s.staleAccel = l
}

// SetMagnetometerStaleListener registers the callback invoked whenever a
// staleness sweep evicts magnetometer samples.
func (s *AccelerometerAndMagnetometerSyncer) SetMagnetometerStaleListener(l MagnetometerStaleListener) {
	s.staleMag = l
}

// Snapshots returns the current per-stream occupancy, primary first.
func (s *AccelerometerAndMagnetometerSyncer) Snapshots() []Snapshot {
	return s.engine.snapshots()
}

// ProcessedCount returns the number of synced measurements emitted since the
// last Start.
func (s *AccelerometerAndMagnetometerSyncer) ProcessedCount() uint64 {
	return s.engine.processedCount()
}

// Collector returns a prometheus.Collector exposing this syncer's
// introspection surface.
func (s *AccelerometerAndMagnetometerSyncer) Collector() prometheus.Collector {
	return s.collector
}

package syncer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/irurueta-labs/sensorsync/pkg/adapter"
	"github.com/irurueta-labs/sensorsync/pkg/interpolate"
	"github.com/irurueta-labs/sensorsync/pkg/measurement"
)

func accel(x float64) measurement.AccelerometerMeasurement {
	return measurement.AccelerometerMeasurement{X: x}
}

func mag(x float64) measurement.MagnetometerMeasurement {
	return measurement.MagnetometerMeasurement{X: x}
}

func newTestAccelMagSyncer(t *testing.T, opts Options) (
	*AccelerometerAndMagnetometerSyncer,
	*adapter.SimulatedAdapter[measurement.AccelerometerMeasurement],
	*adapter.SimulatedAdapter[measurement.MagnetometerMeasurement],
) {
	t.Helper()
	primary := adapter.NewSimulated[measurement.AccelerometerMeasurement](measurement.SensorType("accelerometer"))
	secondary := adapter.NewSimulated[measurement.MagnetometerMeasurement](measurement.SensorType("magnetometer"))

	s, err := NewAccelerometerAndMagnetometerSyncer(
		primary, 8,
		secondary, 8,
		interpolate.NewDirect[measurement.MagnetometerMeasurement](),
		opts,
	)
	require.NoError(t, err)
	return s, primary, secondary
}

func TestAccelMagSimpleAlignment(t *testing.T) {
	s, primary, secondary := newTestAccelMagSyncer(t, DefaultOptions())
	var got []measurement.AccelerometerAndMagnetometerSyncedMeasurement
	s.SetSyncedListener(func(m measurement.AccelerometerAndMagnetometerSyncedMeasurement) {
		got = append(got, m)
	})

	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	// Bootstrap: a secondary sample can only ever be drained once some
	// primary has arrived (it anchors most_recent_timestamp); a secondary
	// arrival before the very first primary stays in the adapter's backlog
	// until a later secondary arrival drains it.
	primary.Emit(measurement.New(accel(1), 100, measurement.AccuracyHigh, "accelerometer"))
	secondary.Emit(measurement.New(mag(1), 99, measurement.AccuracyHigh, "magnetometer"))
	require.Empty(t, got, "matching is only (re-)attempted on a primary arrival")

	primary.Emit(measurement.New(accel(2), 150, measurement.AccuracyHigh, "accelerometer"))

	require.Len(t, got, 1)
	require.Equal(t, int64(100), got[0].Timestamp)
	require.Equal(t, int64(100), got[0].Magnetometer.Timestamp, "the aligned secondary always carries the primary's timestamp")
	require.Equal(t, 1.0, got[0].Magnetometer.Payload.X, "the selected sample is M@99, identified by payload")
	require.NotNil(t, s.OldestTimestamp())
	require.Equal(t, int64(100), *s.OldestTimestamp(), "oldest_timestamp tracks the last emitted tuple")
	require.NotNil(t, s.MostRecentTimestamp())
	require.Equal(t, int64(150), *s.MostRecentTimestamp())

	secondary.Emit(measurement.New(mag(2), 150, measurement.AccuracyHigh, "magnetometer"))
	primary.Emit(measurement.New(accel(3), 200, measurement.AccuracyHigh, "accelerometer"))
	require.Len(t, got, 2)
	require.Equal(t, int64(150), *s.OldestTimestamp(), "oldest_timestamp must advance on every emission, not just the first")
}

func TestAccelMagSecondaryArrivesAfterPrimary(t *testing.T) {
	s, primary, secondary := newTestAccelMagSyncer(t, DefaultOptions())
	var got []measurement.AccelerometerAndMagnetometerSyncedMeasurement
	s.SetSyncedListener(func(m measurement.AccelerometerAndMagnetometerSyncedMeasurement) {
		got = append(got, m)
	})

	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	primary.Emit(measurement.New(accel(1), 100, measurement.AccuracyHigh, "accelerometer"))
	require.Empty(t, got, "primary must wait for a qualifying secondary sample")

	secondary.Emit(measurement.New(mag(1), 99, measurement.AccuracyHigh, "magnetometer"))
	require.Empty(t, got, "a secondary arrival alone never drives matching")

	primary.Emit(measurement.New(accel(2), 101, measurement.AccuracyHigh, "accelerometer"))
	require.Len(t, got, 1, "accel@100 consumes M@99; accel@101 stays blocked until a newer magnetometer sample arrives")
}

func TestAccelMagOutOfOrderPrimaryDiscarded(t *testing.T) {
	s, primary, secondary := newTestAccelMagSyncer(t, DefaultOptions())
	var got []measurement.AccelerometerAndMagnetometerSyncedMeasurement
	s.SetSyncedListener(func(m measurement.AccelerometerAndMagnetometerSyncedMeasurement) {
		got = append(got, m)
	})

	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	primary.Emit(measurement.New(accel(1), 100, measurement.AccuracyHigh, "accelerometer"))
	secondary.Emit(measurement.New(mag(1), 50, measurement.AccuracyHigh, "magnetometer"))
	primary.Emit(measurement.New(accel(2), 110, measurement.AccuracyHigh, "accelerometer"))
	require.Len(t, got, 1, "accel@100 matches M@50")

	secondary.Emit(measurement.New(mag(2), 110, measurement.AccuracyHigh, "magnetometer"))
	secondary.Emit(measurement.New(mag(3), 120, measurement.AccuracyHigh, "magnetometer"))
	// accel@90 lands behind the still-blocked accel@110/M@110 pair in the
	// same push; once that pair matches, accel@90 surfaces as the new front
	// and must be discarded by the freshness gate rather than matched
	// against M@120.
	primary.Emit(measurement.New(accel(3), 90, measurement.AccuracyHigh, "accelerometer"))

	require.Len(t, got, 2, "accel@110 matches M@110; accel@90 is discarded, not a third match")
	for _, tuple := range got {
		require.NotEqual(t, int64(90), tuple.Timestamp)
	}
}

func TestAccelMagStaleEvictionAfterMatch(t *testing.T) {
	opts := DefaultOptions()
	opts.StaleDetectionEnabled = true
	opts.StaleOffsetNanos = 1000
	s, primary, secondary := newTestAccelMagSyncer(t, opts)

	var staleMag []measurement.Value[measurement.MagnetometerMeasurement]
	s.SetMagnetometerStaleListener(func(_ string, evicted []measurement.Value[measurement.MagnetometerMeasurement]) {
		staleMag = append(staleMag, evicted...)
	})
	var got []measurement.AccelerometerAndMagnetometerSyncedMeasurement
	s.SetSyncedListener(func(m measurement.AccelerometerAndMagnetometerSyncedMeasurement) {
		got = append(got, m)
	})

	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	primary.Emit(measurement.New(accel(1), 1100, measurement.AccuracyHigh, "accelerometer"))
	require.Empty(t, got, "nothing buffered on the secondary yet")

	secondary.Emit(measurement.New(mag(1), 50, measurement.AccuracyHigh, "magnetometer"))
	require.Empty(t, got, "a secondary arrival alone never drives matching")

	primary.Emit(measurement.New(accel(2), 1200, measurement.AccuracyHigh, "accelerometer"))
	require.Len(t, got, 1, "M@50 qualifies (<=1100) and is used to match the blocked accel@1100")
	require.Equal(t, int64(1100), got[0].Timestamp)
	require.Equal(t, int64(1100), got[0].Magnetometer.Timestamp, "the aligned secondary always carries the primary's timestamp")
	require.Empty(t, staleMag, "the matched sample was consumed by the match itself, not evicted as stale")
}

func TestAccelMagStaleEvictionWithoutMatch(t *testing.T) {
	opts := DefaultOptions()
	opts.StaleDetectionEnabled = true
	opts.StaleOffsetNanos = 1000
	s, primary, _ := newTestAccelMagSyncer(t, opts)

	var staleAccel []measurement.Value[measurement.AccelerometerMeasurement]
	s.SetAccelerometerStaleListener(func(_ string, evicted []measurement.Value[measurement.AccelerometerMeasurement]) {
		staleAccel = append(staleAccel, evicted...)
	})
	var got []measurement.AccelerometerAndMagnetometerSyncedMeasurement
	s.SetSyncedListener(func(m measurement.AccelerometerAndMagnetometerSyncedMeasurement) {
		got = append(got, m)
	})

	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	// No magnetometer data ever arrives: matching blocks on accel@100
	// forever. Once a later accelerometer sample pushes the most-recent
	// timestamp far enough ahead, accel@100 ages out and is reclaimed
	// without ever producing a synced tuple.
	primary.Emit(measurement.New(accel(1), 100, measurement.AccuracyHigh, "accelerometer"))
	require.Empty(t, got)
	require.Empty(t, staleAccel)

	primary.Emit(measurement.New(accel(2), 1200, measurement.AccuracyHigh, "accelerometer"))
	require.Empty(t, got, "still nothing to match against")
	require.Len(t, staleAccel, 1, "accel@100 is older than 1200-1000=200 and is reclaimed with no emission")
	require.Equal(t, int64(100), staleAccel[0].Timestamp)
}

func TestAccelMagBufferOverflowAutoStop(t *testing.T) {
	opts := DefaultOptions()
	opts.StopWhenFilledBuffer = true

	primary := adapter.NewSimulated[measurement.AccelerometerMeasurement](measurement.SensorType("accelerometer"))
	secondary := adapter.NewSimulated[measurement.MagnetometerMeasurement](measurement.SensorType("magnetometer"))
	s, err := NewAccelerometerAndMagnetometerSyncer(
		primary, 2,
		secondary, 8,
		interpolate.NewDirect[measurement.MagnetometerMeasurement](),
		opts,
	)
	require.NoError(t, err)

	filled := 0
	s.SetBufferFilledListener(func(string) { filled++ })

	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	primary.Emit(measurement.New(accel(1), 10, measurement.AccuracyHigh, "accelerometer"))
	primary.Emit(measurement.New(accel(2), 20, measurement.AccuracyHigh, "accelerometer"))
	require.True(t, s.IsRunning())

	primary.Emit(measurement.New(accel(3), 30, measurement.AccuracyHigh, "accelerometer"))
	require.Equal(t, 1, filled)
	require.False(t, s.IsRunning(), "stop_when_filled_buffer must auto-stop the syncer")
}

func TestAccelMagRestartClearsState(t *testing.T) {
	s, primary, secondary := newTestAccelMagSyncer(t, DefaultOptions())
	var got []measurement.AccelerometerAndMagnetometerSyncedMeasurement
	s.SetSyncedListener(func(m measurement.AccelerometerAndMagnetometerSyncedMeasurement) {
		got = append(got, m)
	})

	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	primary.Emit(measurement.New(accel(1), 100, measurement.AccuracyHigh, "accelerometer"))
	secondary.Emit(measurement.New(mag(1), 99, measurement.AccuracyHigh, "magnetometer"))
	primary.Emit(measurement.New(accel(2), 150, measurement.AccuracyHigh, "accelerometer"))
	require.Len(t, got, 1)

	s.Stop()
	require.False(t, s.IsRunning())
	snaps := s.Snapshots()
	for _, snap := range snaps {
		require.Zero(t, snap.Length)
	}
	require.Zero(t, s.ProcessedCount())
	require.Nil(t, s.MostRecentTimestamp())
	require.Nil(t, s.OldestTimestamp())

	startAt := int64(5000)
	ok, err = s.Start(&startAt)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, startAt, s.StartTimestamp())

	got = nil
	primary.Emit(measurement.New(accel(2), 100, measurement.AccuracyHigh, "accelerometer"))
	require.Empty(t, got, "the stale magnetometer carry from before Stop must not survive a restart")
}

func TestAccelMagSnapshotsCarryCollectorUsage(t *testing.T) {
	s, primary, secondary := newTestAccelMagSyncer(t, DefaultOptions())
	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	primary.Emit(measurement.New(accel(1), 100, measurement.AccuracyHigh, "accelerometer"))
	secondary.Emit(measurement.New(mag(1), 99, measurement.AccuracyHigh, "magnetometer"))

	for _, snap := range s.Snapshots() {
		require.GreaterOrEqual(t, snap.CollectorUsage, 0.0)
		require.LessOrEqual(t, snap.CollectorUsage, 1.0)
	}
}

func TestAccelMagStartWhileRunningIsInvalidState(t *testing.T) {
	s, _, _ := newTestAccelMagSyncer(t, DefaultOptions())
	ok, err := s.Start(nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Start(nil)
	require.ErrorIs(t, err, ErrInvalidState)
	require.False(t, ok)
}

package measurement

// AccelerometerAndMagnetometerSyncedMeasurement is the synced tuple for the
// 2-stream variant: primary = accelerometer, secondary = magnetometer.
type AccelerometerAndMagnetometerSyncedMeasurement struct {
	Timestamp     int64
	Accelerometer Value[AccelerometerMeasurement]
	Magnetometer  Value[MagnetometerMeasurement]
}

// AccelerometerGravityAndGyroscopeSyncedMeasurement is the synced tuple for
// the 3-stream variant: primary = accelerometer, secondaries = gravity and
// gyroscope.
type AccelerometerGravityAndGyroscopeSyncedMeasurement struct {
	Timestamp     int64
	Accelerometer Value[AccelerometerMeasurement]
	Gravity       Value[GravityMeasurement]
	Gyroscope     Value[GyroscopeMeasurement]
}

package measurement

// Value is a single, value-copyable reading from one stream: a payload of
// type P plus the monotonic timestamp, reported accuracy and sensor tag that
// apply to it. The core always works with owned Values, never with
// references into adapter-owned memory (§3).
type Value[P Numeric[P]] struct {
	Payload    P
	Timestamp  int64
	Accuracy   Accuracy
	SensorType SensorType
}

// New builds a Value from its parts; accuracy is stored as given. An adapter
// that reports no accuracy passes AccuracyUnavailable, the zero Accuracy.
func New[P Numeric[P]](payload P, timestamp int64, accuracy Accuracy, sensorType SensorType) Value[P] {
	return Value[P]{Payload: payload, Timestamp: timestamp, Accuracy: accuracy, SensorType: sensorType}
}

// WithTimestamp returns a copy of v with the timestamp replaced; used to
// stamp an interpolated/carried secondary with the primary's timestamp.
func (v Value[P]) WithTimestamp(ts int64) Value[P] {
	v.Timestamp = ts
	return v
}

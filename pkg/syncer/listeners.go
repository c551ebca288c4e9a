package syncer

import "github.com/irurueta-labs/sensorsync/pkg/measurement"

// AccuracyChangedListener is invoked whenever a stream reports a change in
// sensor accuracy. streamID identifies which stream changed.
type AccuracyChangedListener func(streamID string, accuracy measurement.Accuracy)

// BufferFilledListener is invoked whenever a stream's core ring buffer fills
// up and a push had to be rejected, and whenever a stream's adapter reports
// that its own backlog overflowed.
type BufferFilledListener func(streamID string)

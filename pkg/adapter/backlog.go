package adapter

import (
	"sync"

	"github.com/irurueta-labs/sensorsync/pkg/measurement"
	"github.com/irurueta-labs/sensorsync/pkg/synclog"
)

// backlog is the small FIFO every concrete StreamAdapter keeps between "a
// new measurement arrived" and "the core drained it". This is the adapter's
// own buffer, distinct from (and upstream of) the core's ringbuffer.Ring.
// Every concrete adapter keeps one. Shared by SimulatedAdapter and NATSAdapter so the drain/overflow
// bookkeeping is written once.
type backlog[P measurement.Numeric[P]] struct {
	mu         sync.Mutex
	data       []measurement.Value[P]
	position   int
	maxEntries int

	sensorType    measurement.SensorType
	onMeasurement MeasurementCallback
	onBufferFull  BufferFullCallback
}

func newBacklog[P measurement.Numeric[P]](sensorType measurement.SensorType) *backlog[P] {
	return &backlog[P]{sensorType: sensorType, maxEntries: 4096}
}

// push appends v and, with the lock released, fires the measurement-arrived
// callback synchronously, matching the single-threaded, synchronously
// serialized callback contract of §5.
func (b *backlog[P]) push(v measurement.Value[P]) {
	b.mu.Lock()
	if len(b.data) >= b.maxEntries {
		synclog.Warnf("adapter: %s backlog saturated at %d, dropping oldest", b.sensorType, b.maxEntries)
		b.data = b.data[1:]
		if cb := b.onBufferFull; cb != nil {
			b.mu.Unlock()
			cb()
			b.mu.Lock()
		}
	}
	b.data = append(b.data, v)
	b.position++
	position := b.position
	cb := b.onMeasurement
	b.mu.Unlock()

	if cb != nil {
		cb(position)
	}
}

func (b *backlog[P]) drainUpToPosition(position int) []measurement.Value[P] {
	b.mu.Lock()
	defer b.mu.Unlock()
	// data[0] holds position b.position-len(b.data)+1.
	n := position - (b.position - len(b.data))
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	out := append([]measurement.Value[P](nil), b.data[:n]...)
	b.data = b.data[n:]
	return out
}

func (b *backlog[P]) drainBefore(ts int64) []measurement.Value[P] {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := 0
	for i < len(b.data) && b.data[i].Timestamp <= ts {
		i++
	}
	out := append([]measurement.Value[P](nil), b.data[:i]...)
	b.data = b.data[i:]
	return out
}

// usage reports how full the backlog is relative to maxEntries.
func (b *backlog[P]) usage() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maxEntries == 0 {
		return 0
	}
	return float64(len(b.data)) / float64(b.maxEntries)
}

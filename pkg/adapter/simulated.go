package adapter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/irurueta-labs/sensorsync/pkg/measurement"
)

// Generator produces the payload for a synthetic measurement at the given
// timestamp. Supplied by the caller of NewSimulated; it models what a
// platform sensor driver would read off the hardware.
type Generator[P measurement.Numeric[P]] func(timestamp int64) P

// SimulatedAdapter is a test/demo double implementing both PrimaryAdapter and
// SecondaryAdapter. It
// can either be driven manually via Emit (deterministic scenario tests, §8)
// or, when constructed with a Generator and a positive Cadence, produce
// measurements on its own at that cadence using a rate.Limiter, modeling the
// sampling-rate enforcement a real OS sensor driver applies, which the
// construction parameter sensor_delay[S] (§6) describes but the core itself
// never touches.
type SimulatedAdapter[P measurement.Numeric[P]] struct {
	SensorType measurement.SensorType
	Cadence    time.Duration
	Generator  Generator[P]

	backlog *backlog[P]

	mu      sync.Mutex
	running bool
	nextTs  int64
	stopCh  chan struct{}
	wg      sync.WaitGroup

	onAccuracy AccuracyChangedCallback
}

// NewSimulated constructs a SimulatedAdapter tagged with the given sensor
// type. Cadence/Generator may be left zero/nil for adapters driven purely
// via Emit.
func NewSimulated[P measurement.Numeric[P]](sensorType measurement.SensorType) *SimulatedAdapter[P] {
	return &SimulatedAdapter[P]{SensorType: sensorType, backlog: newBacklog[P](sensorType)}
}

func (a *SimulatedAdapter[P]) SetMeasurementArrivedCallback(cb MeasurementCallback) {
	a.backlog.onMeasurement = cb
}

func (a *SimulatedAdapter[P]) SetBufferFullCallback(cb BufferFullCallback) {
	a.backlog.onBufferFull = cb
}

func (a *SimulatedAdapter[P]) SetAccuracyChangedCallback(cb AccuracyChangedCallback) {
	a.onAccuracy = cb
}

// Start marks the adapter running and, if Generator and Cadence are set,
// launches the background production goroutine seeded at startTimestamp.
func (a *SimulatedAdapter[P]) Start(startTimestamp int64) bool {
	a.mu.Lock()
	a.running = true
	a.nextTs = startTimestamp
	a.mu.Unlock()

	if a.Generator == nil || a.Cadence <= 0 {
		return true
	}

	a.stopCh = make(chan struct{})
	a.wg.Add(1)
	go a.produceLoop()
	return true
}

// Stop halts the background production goroutine (if any) and drops the
// running flag. Safe to call even if Start never launched a goroutine.
func (a *SimulatedAdapter[P]) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	stopCh := a.stopCh
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		a.wg.Wait()
		a.stopCh = nil
	}
}

func (a *SimulatedAdapter[P]) produceLoop() {
	defer a.wg.Done()
	limiter := rate.NewLimiter(rate.Every(a.Cadence), 1)
	for {
		select {
		case <-a.stopCh:
			return
		default:
		}
		if err := limiter.Wait(waitContext(a.stopCh)); err != nil {
			return
		}
		a.mu.Lock()
		ts := a.nextTs
		a.nextTs += a.Cadence.Nanoseconds()
		a.mu.Unlock()
		a.Emit(measurement.New(a.Generator(ts), ts, measurement.AccuracyHigh, a.SensorType))
	}
}

// Emit pushes a fully-formed measurement into the adapter's backlog as if a
// real sensor driver had just produced it, then synchronously fires the
// measurement-arrived callback: the entrypoint scenario tests use to
// script out an exact §8 sequence of arrivals.
func (a *SimulatedAdapter[P]) Emit(v measurement.Value[P]) {
	a.backlog.push(v)
}

// SetAccuracy simulates an accuracy-change notification from the underlying
// sensor, e.g. as magnetometer calibration degrades.
func (a *SimulatedAdapter[P]) SetAccuracy(acc measurement.Accuracy) {
	if a.onAccuracy != nil {
		a.onAccuracy(acc)
	}
}

// CollectorUsage implements adapter.Adapter.
func (a *SimulatedAdapter[P]) CollectorUsage() float64 {
	return a.backlog.usage()
}

// DrainUpToPosition implements adapter.PrimaryAdapter.
func (a *SimulatedAdapter[P]) DrainUpToPosition(position int) []measurement.Value[P] {
	return a.backlog.drainUpToPosition(position)
}

// DrainBefore implements adapter.SecondaryAdapter.
func (a *SimulatedAdapter[P]) DrainBefore(ts int64) []measurement.Value[P] {
	return a.backlog.drainBefore(ts)
}

package adapter

import (
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/irurueta-labs/sensorsync/pkg/measurement"
	"github.com/irurueta-labs/sensorsync/pkg/synclog"
)

// Decoder turns one NATS message payload into a measurement.Value. Adapters
// built around a specific wire format (line protocol, JSON, protobuf) supply
// their own.
type Decoder[P measurement.Numeric[P]] func(data []byte) (measurement.Value[P], error)

// NATSAdapter treats a single NATS subject as the "buffered collector" for
// one stream: every message published to Subject is decoded and appended to
// the adapter's own backlog, from which the core drains via
// DrainUpToPosition/DrainBefore. Connection handling (reconnect/error
// logging) mirrors pkg/nats/client.go's NewClient.
type NATSAdapter[P measurement.Numeric[P]] struct {
	URL        string
	Subject    string
	SensorType measurement.SensorType
	Decode     Decoder[P]

	backlog *backlog[P]

	mu   sync.Mutex
	conn *nats.Conn
	sub  *nats.Subscription
}

// NewNATS constructs a NATSAdapter that will connect to url and subscribe to
// subject once Start is called.
func NewNATS[P measurement.Numeric[P]](url, subject string, sensorType measurement.SensorType, decode Decoder[P]) *NATSAdapter[P] {
	return &NATSAdapter[P]{
		URL:        url,
		Subject:    subject,
		SensorType: sensorType,
		Decode:     decode,
		backlog:    newBacklog[P](sensorType),
	}
}

func (a *NATSAdapter[P]) SetMeasurementArrivedCallback(cb MeasurementCallback) {
	a.backlog.onMeasurement = cb
}

func (a *NATSAdapter[P]) SetBufferFullCallback(cb BufferFullCallback) {
	a.backlog.onBufferFull = cb
}

func (a *NATSAdapter[P]) SetAccuracyChangedCallback(cb AccuracyChangedCallback) {
	// The wire format carried over this adapter has no accuracy field of its
	// own; callers wanting accuracy-changed notifications should encode it
	// as a measurement field and report it via Decode instead.
	_ = cb
}

// Start connects to the NATS server and subscribes to Subject. startTimestamp
// is accepted for symmetry with adapter.Adapter but otherwise unused: NATS
// messages already carry their own timestamps.
func (a *NATSAdapter[P]) Start(startTimestamp int64) bool {
	_ = startTimestamp

	opts := []nats.Option{
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				synclog.Warnf("nats adapter %s: disconnected: %v", a.Subject, err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			synclog.Infof("nats adapter %s: reconnected to %s", a.Subject, nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			synclog.Errorf("nats adapter %s: error: %v", a.Subject, err)
		}),
	}

	conn, err := nats.Connect(a.URL, opts...)
	if err != nil {
		synclog.Errorf("nats adapter %s: connect failed: %v", a.Subject, err)
		return false
	}

	sub, err := conn.Subscribe(a.Subject, func(msg *nats.Msg) {
		v, err := a.Decode(msg.Data)
		if err != nil {
			synclog.Warnf("nats adapter %s: decode failed: %v", a.Subject, err)
			return
		}
		a.backlog.push(v)
	})
	if err != nil {
		synclog.Errorf("nats adapter %s: subscribe failed: %v", a.Subject, err)
		conn.Close()
		return false
	}

	a.mu.Lock()
	a.conn, a.sub = conn, sub
	a.mu.Unlock()
	return true
}

// Stop unsubscribes and closes the NATS connection.
func (a *NATSAdapter[P]) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sub != nil {
		if err := a.sub.Unsubscribe(); err != nil {
			synclog.Warnf("nats adapter %s: unsubscribe failed: %v", a.Subject, err)
		}
		a.sub = nil
	}
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
}

// CollectorUsage implements adapter.Adapter.
func (a *NATSAdapter[P]) CollectorUsage() float64 {
	return a.backlog.usage()
}

// DrainUpToPosition implements adapter.PrimaryAdapter.
func (a *NATSAdapter[P]) DrainUpToPosition(position int) []measurement.Value[P] {
	return a.backlog.drainUpToPosition(position)
}

// DrainBefore implements adapter.SecondaryAdapter.
func (a *NATSAdapter[P]) DrainBefore(ts int64) []measurement.Value[P] {
	return a.backlog.drainBefore(ts)
}

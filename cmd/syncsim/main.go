// Command syncsim drives a two-stream accelerometer/magnetometer syncer
// against a pair of simulated adapters and exposes its introspection surface
// over HTTP, as a runnable demonstration of pkg/syncer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irurueta-labs/sensorsync/pkg/adapter"
	"github.com/irurueta-labs/sensorsync/pkg/interpolate"
	"github.com/irurueta-labs/sensorsync/pkg/measurement"
	"github.com/irurueta-labs/sensorsync/pkg/synclog"
	"github.com/irurueta-labs/sensorsync/pkg/syncer"
)

func main() {
	var addr string
	var cadence time.Duration
	var logLevel string
	flag.StringVar(&addr, "addr", ":8090", "address the introspection HTTP server listens on")
	flag.DurationVar(&cadence, "cadence", 20*time.Millisecond, "simulated accelerometer sampling interval")
	flag.StringVar(&logLevel, "log-level", "info", "debug, info, warn or err")
	flag.Parse()

	synclog.SetLevel(logLevel)

	instanceID := uuid.New()
	synclog.Infof("syncsim %s: starting", instanceID)

	// Neither adapter's own Cadence/Generator auto-production is used here:
	// each would drive the shared engine from its own goroutine, and the
	// engine takes no internal locks of its own (§5): it expects exactly
	// one caller driving it at a time. Instead a single ticker goroutine
	// below emits onto both adapters in turn.
	primary := adapter.NewSimulated[measurement.AccelerometerMeasurement](measurement.SensorType("accelerometer"))
	accelGen := func(ts int64) measurement.AccelerometerMeasurement {
		phase := float64(ts) / float64(time.Second)
		return measurement.AccelerometerMeasurement{X: math.Sin(phase), Y: math.Cos(phase), Z: 9.81}
	}

	secondary := adapter.NewSimulated[measurement.MagnetometerMeasurement](measurement.SensorType("magnetometer"))
	magGen := func(ts int64) measurement.MagnetometerMeasurement {
		phase := float64(ts) / float64(time.Second)
		return measurement.MagnetometerMeasurement{X: 20 * math.Sin(phase/2), Y: 20 * math.Cos(phase/2), Z: 40}
	}

	s, err := syncer.NewAccelerometerAndMagnetometerSyncer(
		primary, 64,
		secondary, 64,
		interpolate.NewLinear[measurement.MagnetometerMeasurement](),
		syncer.DefaultOptions(),
	)
	if err != nil {
		synclog.Errorf("syncsim %s: constructing syncer: %v", instanceID, err)
		os.Exit(1)
	}

	s.SetSyncedListener(func(m measurement.AccelerometerAndMagnetometerSyncedMeasurement) {
		synclog.Debugf("syncsim %s: synced @%d accel=%+v mag=%+v", instanceID, m.Timestamp, m.Accelerometer.Payload, m.Magnetometer.Payload)
	})
	s.SetBufferFilledListener(func(streamID string) {
		synclog.Warnf("syncsim %s: stream %q buffer filled", instanceID, streamID)
	})
	s.SetAccuracyChangedListener(func(streamID string, acc measurement.Accuracy) {
		synclog.Infof("syncsim %s: stream %q accuracy now %s", instanceID, streamID, acc)
	})

	if ok, err := s.Start(nil); err != nil || !ok {
		synclog.Errorf("syncsim %s: start failed: ok=%v err=%v", instanceID, ok, err)
		os.Exit(1)
	}

	// commands funnels every external trigger for the syncer (simulated
	// ticks and the periodic accuracy nudge alike) through the one
	// goroutine below, so the non-reentrant engine never sees two calls at
	// once.
	commands := make(chan func(), 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(cadence)
		defer ticker.Stop()
		tick := int64(0)
		for {
			select {
			case cmd, ok := <-commands:
				if !ok {
					return
				}
				cmd()
			case now := <-ticker.C:
				ts := now.UnixNano()
				primary.Emit(measurement.New(accelGen(ts), ts, measurement.AccuracyHigh, measurement.SensorType("accelerometer")))
				if tick%3 == 0 {
					secondary.Emit(measurement.New(magGen(ts), ts, measurement.AccuracyHigh, measurement.SensorType("magnetometer")))
				}
				tick++
			}
		}
	}()

	sched, err := gocron.NewScheduler()
	if err != nil {
		synclog.Errorf("syncsim %s: building scheduler: %v", instanceID, err)
		os.Exit(1)
	}
	// Nudge the magnetometer's accuracy back and forth, the way a real
	// sensor's calibration confidence drifts in and out over time.
	_, err = sched.NewJob(
		gocron.DurationJob(5*time.Second),
		gocron.NewTask(func() {
			commands <- func() { secondary.SetAccuracy(measurement.AccuracyMedium) }
		}),
	)
	if err != nil {
		synclog.Errorf("syncsim %s: scheduling accuracy job: %v", instanceID, err)
		os.Exit(1)
	}
	sched.Start()

	registry := prometheus.NewRegistry()
	if err := registry.Register(s.Collector()); err != nil {
		synclog.Errorf("syncsim %s: registering collector: %v", instanceID, err)
		os.Exit(1)
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"running":   s.IsRunning(),
			"processed": s.ProcessedCount(),
			"streams":   s.Snapshots(),
		})
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.LoggingHandler(synclog.InfoWriter, r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		synclog.Infof("syncsim %s: introspection server listening at %s", instanceID, addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			synclog.Errorf("syncsim %s: server error: %v", instanceID, err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	synclog.Infof("syncsim %s: shutting down", instanceID)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		synclog.Errorf("syncsim %s: graceful shutdown: %v", instanceID, err)
	}
	if err := sched.Shutdown(); err != nil {
		synclog.Warnf("syncsim %s: scheduler shutdown: %v", instanceID, err)
	}
	close(commands)
	<-done
	s.Stop()
	fmt.Println("syncsim: stopped")
}

package syncer

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Options holds the construction-time knobs shared by every syncer variant:
// the parts of §6's construction parameters that don't vary per stream
// (capacities, adapters and interpolators are supplied directly to each
// concrete constructor instead, since their types differ per variant).
type Options struct {
	// StaleDetectionEnabled turns cleanup_stale on or off entirely.
	StaleDetectionEnabled bool
	// StaleOffsetNanos is the staleness window: a sample older than
	// anchor - StaleOffsetNanos is evicted without ever being matched.
	StaleOffsetNanos int64
	// StopWhenFilledBuffer, when true, stops the whole syncer the first
	// time any stream's ring fills up instead of merely notifying.
	StopWhenFilledBuffer bool
}

// DefaultOptions returns the permissive defaults: no staleness eviction, no
// auto-stop on overflow.
func DefaultOptions() Options {
	return Options{
		StaleDetectionEnabled: false,
		StaleOffsetNanos:      0,
		StopWhenFilledBuffer:  false,
	}
}

type optionsDocument struct {
	StaleDetectionEnabled *bool  `json:"stale_detection_enabled"`
	StaleOffsetNanos      *int64 `json:"stale_offset_nanos"`
	StopWhenFilledBuffer  *bool  `json:"stop_when_filled_buffer"`
}

// ParseOptions validates raw against optionsSchema and decodes whatever
// fields it sets on top of DefaultOptions. Fields the document omits keep
// their default value.
func ParseOptions(raw json.RawMessage) (Options, error) {
	sch, err := jsonschema.CompileString("options.schema.json", optionsSchema)
	if err != nil {
		return Options{}, fmt.Errorf("syncer: compiling options schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := sch.Validate(v); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var doc optionsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	opts := DefaultOptions()
	if doc.StaleDetectionEnabled != nil {
		opts.StaleDetectionEnabled = *doc.StaleDetectionEnabled
	}
	if doc.StaleOffsetNanos != nil {
		opts.StaleOffsetNanos = *doc.StaleOffsetNanos
	}
	if doc.StopWhenFilledBuffer != nil {
		opts.StopWhenFilledBuffer = *doc.StopWhenFilledBuffer
	}
	return opts, nil
}

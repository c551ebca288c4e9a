package syncer

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseOptionsDefaults(t *testing.T) {
	opts, err := ParseOptions(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts != DefaultOptions() {
		t.Fatalf("got %+v, want defaults %+v", opts, DefaultOptions())
	}
}

func TestParseOptionsPartialOverride(t *testing.T) {
	opts, err := ParseOptions(json.RawMessage(`{"stale_detection_enabled": true, "stale_offset_nanos": 5000}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.StaleDetectionEnabled {
		t.Fatalf("expected stale detection enabled")
	}
	if opts.StaleOffsetNanos != 5000 {
		t.Fatalf("got offset %d, want 5000", opts.StaleOffsetNanos)
	}
	if opts.StopWhenFilledBuffer {
		t.Fatalf("unset field must keep its default value")
	}
}

func TestParseOptionsRejectsUnknownField(t *testing.T) {
	_, err := ParseOptions(json.RawMessage(`{"bogus": true}`))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestParseOptionsRejectsNegativeOffset(t *testing.T) {
	_, err := ParseOptions(json.RawMessage(`{"stale_offset_nanos": -1}`))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestParseOptionsRejectsMalformedJSON(t *testing.T) {
	_, err := ParseOptions(json.RawMessage(`{`))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

package syncer

// optionsSchema is the JSON Schema a raw Options document is validated
// against before being decoded, mirroring the embedded-schema pattern
// internal/config/validate.go uses for its own configuration documents.
const optionsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "stale_detection_enabled": {
      "type": "boolean"
    },
    "stale_offset_nanos": {
      "type": "integer",
      "minimum": 0
    },
    "stop_when_filled_buffer": {
      "type": "boolean"
    }
  }
}`

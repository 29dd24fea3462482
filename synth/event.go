package synth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shimmur/logspammer/corpus"
)

// TimeFormat is UTC with microseconds and a literal Z
const TimeFormat = "2006-01-02T15:04:05.000000Z"

// Format names one of the two wire schemas
type Format string

const (
	FormatStandard Format = "standard"
	FormatClef     Format = "serilog"
)

// An Event is anything that can be put on the wire
type Event interface {
	Format() Format
	Encode() ([]byte, error)
}

// A StandardEvent is the flat JSON schema
type StandardEvent struct {
	Timestamp time.Time
	Level     corpus.Level
	Service   string
	Message   string
	Metadata  map[string]interface{}
}

func (e *StandardEvent) Format() Format {
	return FormatStandard
}

// Encode serializes the event. Metadata is always an object, even if empty.
func (e *StandardEvent) Encode() ([]byte, error) {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	data, err := encodeJSON(struct {
		Timestamp string                 `json:"timestamp"`
		Level     string                 `json:"level"`
		Service   string                 `json:"service"`
		Message   string                 `json:"message"`
		Metadata  map[string]interface{} `json:"metadata"`
	}{
		Timestamp: formatTime(e.Timestamp),
		Level:     e.Level.Standard(),
		Service:   e.Service,
		Message:   e.Message,
		Metadata:  metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode standard event: %w", err)
	}

	return data, nil
}

// A ClefEvent is a Serilog compact log event. Optional fields are empty
// strings when absent and are then left out of the JSON entirely.
type ClefEvent struct {
	Timestamp     time.Time
	Message       string
	Template      string
	Level         corpus.Level
	SourceContext string
	EventID       string
	Exception     string
	TraceID       string
	SpanID        string
	Properties    corpus.Properties
}

func (e *ClefEvent) Format() Format {
	return FormatClef
}

// Encode writes the fields in a fixed order: @t, @m, @mt, @l, SourceContext,
// then @x, @tr, @sp and @i when set, then the properties in template order.
func (e *ClefEvent) Encode() ([]byte, error) {
	w := &objectWriter{}

	w.field("@t", formatTime(e.Timestamp))
	w.field("@m", e.Message)
	w.field("@mt", e.Template)
	w.field("@l", e.Level.Clef())
	w.field("SourceContext", e.SourceContext)

	if e.Exception != "" {
		w.field("@x", e.Exception)
	}
	if e.TraceID != "" {
		w.field("@tr", e.TraceID)
	}
	if e.SpanID != "" {
		w.field("@sp", e.SpanID)
	}
	if e.EventID != "" {
		w.field("@i", e.EventID)
	}

	for _, prop := range e.Properties {
		w.field(prop.Name, prop.Value)
	}

	data, err := w.finish()
	if err != nil {
		return nil, fmt.Errorf("failed to encode clef event: %w", err)
	}

	return data, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// encodeJSON is json.Marshal without HTML escaping and the trailing newline
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// objectWriter builds a JSON object with keys in insertion order
type objectWriter struct {
	buf bytes.Buffer
	err error
}

func (w *objectWriter) field(key string, value interface{}) {
	if w.err != nil {
		return
	}

	keyData, err := encodeJSON(key)
	if err != nil {
		w.err = err
		return
	}

	valData, err := encodeJSON(value)
	if err != nil {
		w.err = fmt.Errorf("field %s: %w", key, err)
		return
	}

	if w.buf.Len() == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.buf.Write(keyData)
	w.buf.WriteByte(':')
	w.buf.Write(valData)
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}

	if w.buf.Len() == 0 {
		return []byte("{}"), nil
	}

	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

package synth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Shimmur/logspammer/corpus"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedTime = time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC)

func newTestSynthesizer(seed int64) *Synthesizer {
	s := New(corpus.Default(), rand.New(rand.NewSource(seed)))
	s.Clock = func() time.Time { return fixedTime }
	return s
}

func decode(event Event) map[string]interface{} {
	data, err := event.Encode()
	So(err, ShouldBeNil)

	var decoded map[string]interface{}
	So(json.Unmarshal(data, &decoded), ShouldBeNil)
	return decoded
}

// decodeNumbers keeps numbers as written so they print the same as the
// values they were encoded from
func decodeNumbers(event Event) map[string]interface{} {
	data, err := event.Encode()
	So(err, ShouldBeNil)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var decoded map[string]interface{}
	So(dec.Decode(&decoded), ShouldBeNil)
	return decoded
}

func Test_Standard(t *testing.T) {
	Convey("Standard()", t, func() {
		s := newTestSynthesizer(1)

		standardLevels := []interface{}{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

		Convey("always emits a known level and a metadata object", func() {
			sawEmptyMetadata := false

			for i := 0; i < 2000; i++ {
				event := s.Standard()
				decoded := decode(event)

				So(standardLevels, ShouldContain, decoded["level"])
				So(decoded, ShouldContainKey, "metadata")

				metadata, ok := decoded["metadata"].(map[string]interface{})
				So(ok, ShouldBeTrue)
				if len(metadata) == 0 {
					sawEmptyMetadata = true
				}

				if event.Level.IsFailure() {
					So(metadata, ShouldContainKey, "error_code")
				} else {
					So(metadata, ShouldNotContainKey, "error_code")
				}
			}

			So(sawEmptyMetadata, ShouldBeTrue)
		})

		Convey("draws metadata values from the documented ranges", func() {
			requestRe := regexp.MustCompile(`^req-\d{4}$`)
			errorRe := regexp.MustCompile(`^ERR_\d{3}$`)

			for i := 0; i < 2000; i++ {
				event := s.Standard()
				if id, ok := event.Metadata["request_id"]; ok {
					So(requestRe.MatchString(id.(string)), ShouldBeTrue)
				}
				if id, ok := event.Metadata["user_id"]; ok {
					So(id, ShouldBeBetweenOrEqual, 1, 1000)
				}
				if code, ok := event.Metadata["error_code"]; ok {
					So(errorRe.MatchString(code.(string)), ShouldBeTrue)
				}
			}
		})

		Convey("picks messages that belong to the level", func() {
			c := corpus.Default()
			for i := 0; i < 500; i++ {
				event := s.Standard()
				So(c.Messages(event.Level), ShouldContain, event.Message)
				So(c.Services(), ShouldContain, event.Service)
			}
		})

		Convey("stamps UTC with a Z suffix", func() {
			decoded := decode(s.Standard())
			So(decoded["timestamp"], ShouldEqual, "2024-01-15T10:30:00.123456Z")
		})

		Convey("converts other zones to UTC", func() {
			zone := time.FixedZone("UTC+2", 2*60*60)
			s.Clock = func() time.Time { return fixedTime.In(zone) }

			decoded := decode(s.Standard())
			So(decoded["timestamp"], ShouldEqual, "2024-01-15T10:30:00.123456Z")
		})
	})
}

func Test_StandardFor(t *testing.T) {
	Convey("StandardFor() with a forced ERROR", t, func() {
		s := newTestSynthesizer(99)

		// Find a draw where neither optional key fires
		var event *StandardEvent
		for i := 0; i < 100; i++ {
			event = s.StandardFor(corpus.Error, "payment-service", "Failed to process payment: timeout")
			if len(event.Metadata) == 1 {
				break
			}
		}

		data, err := event.Encode()
		So(err, ShouldBeNil)

		So(string(data), ShouldStartWith,
			`{"timestamp":"2024-01-15T10:30:00.123456Z","level":"ERROR","service":"payment-service",`+
				`"message":"Failed to process payment: timeout","metadata":{"error_code":"ERR_`)
		So(regexp.MustCompile(`"metadata":\{"error_code":"ERR_\d{3}"\}\}$`).Match(data), ShouldBeTrue)
	})

	Convey("Encode() on a zero metadata map", t, func() {
		event := &StandardEvent{Timestamp: fixedTime, Level: corpus.Info, Service: "s", Message: "m"}
		data, err := event.Encode()
		So(err, ShouldBeNil)
		So(string(data), ShouldEndWith, `"metadata":{}}`)
	})
}

func Test_Clef(t *testing.T) {
	Convey("Clef()", t, func() {
		s := newTestSynthesizer(3)
		reserved := map[string]bool{
			"@t": true, "@m": true, "@mt": true, "@l": true, "@x": true,
			"@tr": true, "@sp": true, "@i": true, "SourceContext": true,
		}
		leftover := regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

		Convey("holds the CLEF invariants across many events", func() {
			sawTrace, sawNoTrace, sawException := false, false, false

			for i := 0; i < 3000; i++ {
				event := s.Clef()
				decoded := decode(event)

				// Trace and span travel together
				_, hasTrace := decoded["@tr"]
				_, hasSpan := decoded["@sp"]
				So(hasTrace, ShouldEqual, hasSpan)
				if hasTrace {
					sawTrace = true
					So(decoded["@tr"], ShouldHaveLength, 16)
					So(decoded["@sp"], ShouldHaveLength, 8)
				} else {
					sawNoTrace = true
				}

				// Exceptions only on failures
				if _, ok := decoded["@x"]; ok {
					sawException = true
					So(event.Level.IsFailure(), ShouldBeTrue)
				}

				// Properties are exactly the placeholders
				var props []string
				for key := range decoded {
					if !reserved[key] {
						props = append(props, key)
					}
				}
				So(props, ShouldHaveLength, len(corpus.Placeholders(event.Template)))
				exact := decodeNumbers(event)
				for _, name := range corpus.Placeholders(event.Template) {
					So(decoded, ShouldContainKey, name)

					// The property carries the value that was rendered
					value, ok := event.Properties.Get(name)
					So(ok, ShouldBeTrue)
					So(fmt.Sprint(exact[name]), ShouldEqual, fmt.Sprint(value))
					So(decoded["@m"], ShouldContainSubstring, fmt.Sprint(value))
				}

				So(leftover.MatchString(decoded["@m"].(string)), ShouldBeFalse)
				So(decoded["@mt"], ShouldEqual, event.Template)
				So(decoded["@i"], ShouldEqual, EventID(event.Template))
			}

			So(sawTrace, ShouldBeTrue)
			So(sawNoTrace, ShouldBeTrue)
			So(sawException, ShouldBeTrue)
		})

		Convey("keeps randomized values inside their ranges", func() {
			for i := 0; i < 3000; i++ {
				event := s.Clef()
				if v, ok := event.Properties.Get("ElapsedMs"); ok {
					So(v, ShouldBeBetweenOrEqual, ElapsedMsMin, ElapsedMsMax)
				}
				if v, ok := event.Properties.Get("Percentage"); ok {
					So(v, ShouldBeBetweenOrEqual, PercentageMin, PercentageMax)
				}
			}
		})

		Convey("never changes the corpus defaults", func() {
			c := corpus.Default()
			s := New(c, rand.New(rand.NewSource(5)))
			for i := 0; i < 1000; i++ {
				s.Clef()
			}

			for _, tmpl := range c.Templates(corpus.Debug) {
				if v, ok := tmpl.Properties.Get("ElapsedMs"); ok {
					So(v, ShouldEqual, 15)
				}
			}
		})
	})
}

func Test_ClefFor(t *testing.T) {
	Convey("ClefFor()", t, func() {
		s := newTestSynthesizer(11)
		tmpl := corpus.Template{
			Text:       "Order {OrderId} processed successfully",
			Properties: corpus.Properties{{Name: "OrderId", Value: "ORD-12345"}},
		}

		Convey("renders the order template", func() {
			event := s.ClefFor(corpus.Info, "MyApp.Services.OrderService", tmpl)
			decoded := decode(event)

			So(decoded["@m"], ShouldEqual, "Order ORD-12345 processed successfully")
			So(decoded["@mt"], ShouldEqual, "Order {OrderId} processed successfully")
			So(decoded["@l"], ShouldEqual, "Information")
			So(decoded["OrderId"], ShouldEqual, "ORD-12345")
			So(decoded["SourceContext"], ShouldEqual, "MyApp.Services.OrderService")
			So(decoded, ShouldNotContainKey, "@x")
		})

		Convey("writes fields in a stable order", func() {
			event := &ClefEvent{
				Timestamp:     fixedTime,
				Message:       "Order ORD-1 processed successfully",
				Template:      tmpl.Text,
				Level:         corpus.Error,
				SourceContext: "Ctx",
				EventID:       "0000abcd",
				Exception:     "boom",
				TraceID:       "0123456789abcdef",
				SpanID:        "01234567",
				Properties:    corpus.Properties{{Name: "OrderId", Value: "ORD-1"}, {Name: "Count", Value: 3}},
			}

			data, err := event.Encode()
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual,
				`{"@t":"2024-01-15T10:30:00.123456Z","@m":"Order ORD-1 processed successfully",`+
					`"@mt":"Order {OrderId} processed successfully","@l":"Error","SourceContext":"Ctx",`+
					`"@x":"boom","@tr":"0123456789abcdef","@sp":"01234567","@i":"0000abcd",`+
					`"OrderId":"ORD-1","Count":3}`)
		})

		Convey("leaves absent optional fields out", func() {
			event := &ClefEvent{Timestamp: fixedTime, Message: "m", Template: "m", Level: corpus.Debug}
			data, err := event.Encode()
			So(err, ShouldBeNil)
			So(string(data), ShouldNotContainSubstring, "@x")
			So(string(data), ShouldNotContainSubstring, "@tr")
			So(string(data), ShouldNotContainSubstring, "@sp")
		})

		Convey("does not escape HTML characters", func() {
			event := &ClefEvent{Timestamp: fixedTime, Message: "a <b> & c", Template: "a <b> & c"}
			data, err := event.Encode()
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"@m":"a <b> & c"`)
		})
	})
}

func Test_Render(t *testing.T) {
	Convey("Render()", t, func() {
		props := corpus.Properties{
			{Name: "Method", Value: "GET"},
			{Name: "Path", Value: "/api/users"},
			{Name: "StatusCode", Value: 200},
			{Name: "ElapsedMs", Value: 45},
		}
		tmpl := "HTTP {Method} {Path} responded {StatusCode} in {ElapsedMs}ms"

		Convey("substitutes every placeholder", func() {
			So(Render(tmpl, props), ShouldEqual, "HTTP GET /api/users responded 200 in 45ms")
		})

		Convey("is idempotent", func() {
			So(Render(tmpl, props), ShouldEqual, Render(tmpl, props))
		})

		Convey("replaces repeated placeholders", func() {
			So(Render("{A}-{A}", corpus.Properties{{Name: "A", Value: "x"}}), ShouldEqual, "x-x")
		})

		Convey("leaves unknown placeholders alone", func() {
			So(Render("{Known} {Unknown}", corpus.Properties{{Name: "Known", Value: 1}}),
				ShouldEqual, "1 {Unknown}")
			So(Render("{Unknown}", nil), ShouldEqual, "{Unknown}")
		})
	})
}

func Test_EventID(t *testing.T) {
	Convey("EventID()", t, func() {
		id := EventID("Order {OrderId} processed successfully")

		So(id, ShouldHaveLength, 8)
		So(strings.ToLower(id), ShouldEqual, id)
		So(EventID("Order {OrderId} processed successfully"), ShouldEqual, id)
		So(EventID("Order {OrderId} failed"), ShouldNotEqual, id)
	})
}

func Test_Next(t *testing.T) {
	Convey("Next() builds the requested format", t, func() {
		s := newTestSynthesizer(8)

		So(s.Next(FormatStandard).Format(), ShouldEqual, FormatStandard)
		So(s.Next(FormatClef).Format(), ShouldEqual, FormatClef)
	})
}

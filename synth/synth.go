package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Shimmur/logspammer/corpus"
)

// Ranges for the properties that get fresh values on every event
const (
	ElapsedMsMin  = 1
	ElapsedMsMax  = 500
	PercentageMin = 70
	PercentageMax = 95
)

// A Synthesizer fabricates events from a Corpus. It is not safe for
// concurrent use because it owns its random source.
type Synthesizer struct {
	// Clock stamps events; swapped out in tests
	Clock func() time.Time

	corpus *corpus.Corpus
	rnd    *rand.Rand
}

// New returns a Synthesizer drawing from c with the given random source
func New(c *corpus.Corpus, rnd *rand.Rand) *Synthesizer {
	return &Synthesizer{
		Clock:  time.Now,
		corpus: c,
		rnd:    rnd,
	}
}

// Standard picks a level, service and message and builds a standard event
func (s *Synthesizer) Standard() *StandardEvent {
	level := s.corpus.StandardLevel(s.rnd)
	service := s.corpus.Service(s.rnd)
	message := s.corpus.Message(level, s.rnd)

	return s.StandardFor(level, service, message)
}

// StandardFor builds a standard event with the given fields, adding random
// metadata. Error codes are always attached to failure levels.
func (s *Synthesizer) StandardFor(level corpus.Level, service, message string) *StandardEvent {
	metadata := make(map[string]interface{}, 3)

	if s.rnd.Float64() > 0.5 {
		metadata["request_id"] = fmt.Sprintf("req-%d", s.between(1000, 9999))
	}
	if s.rnd.Float64() > 0.7 {
		metadata["user_id"] = s.between(1, 1000)
	}
	if level.IsFailure() {
		metadata["error_code"] = fmt.Sprintf("ERR_%d", s.between(100, 999))
	}

	return &StandardEvent{
		Timestamp: s.Clock().UTC(),
		Level:     level,
		Service:   service,
		Message:   message,
		Metadata:  metadata,
	}
}

// Clef picks a level, source context and template and builds a CLEF event
func (s *Synthesizer) Clef() *ClefEvent {
	level := s.corpus.ClefLevel(s.rnd)
	sourceContext := s.corpus.SourceContext(s.rnd)
	tmpl := s.corpus.Template(level, s.rnd)

	return s.ClefFor(level, sourceContext, tmpl)
}

// ClefFor renders tmpl and builds a CLEF event around it. The template's
// properties are copied before any are randomized.
func (s *Synthesizer) ClefFor(level corpus.Level, sourceContext string, tmpl corpus.Template) *ClefEvent {
	props := tmpl.Properties.Clone()

	if props.Has("ElapsedMs") {
		props = props.Set("ElapsedMs", s.between(ElapsedMsMin, ElapsedMsMax))
	}
	if props.Has("Percentage") {
		props = props.Set("Percentage", s.between(PercentageMin, PercentageMax))
	}

	event := &ClefEvent{
		Timestamp:     s.Clock().UTC(),
		Message:       Render(tmpl.Text, props),
		Template:      tmpl.Text,
		Level:         level,
		SourceContext: sourceContext,
		EventID:       EventID(tmpl.Text),
		Properties:    props,
	}

	// Both or neither
	if s.rnd.Float64() > 0.5 {
		event.TraceID = fmt.Sprintf("%016x", s.rnd.Uint64())
		event.SpanID = fmt.Sprintf("%08x", s.rnd.Uint32())
	}

	if level.IsFailure() && s.rnd.Float64() > 0.5 {
		event.Exception = s.corpus.Exception(s.rnd)
	}

	return event
}

// Next builds an event of the requested format
func (s *Synthesizer) Next(format Format) Event {
	if format == FormatClef {
		return s.Clef()
	}
	return s.Standard()
}

// between returns an int in [min, max]
func (s *Synthesizer) between(min, max int) int {
	return min + s.rnd.Intn(max-min+1)
}

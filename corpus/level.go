package corpus

import (
	"fmt"
	"math/rand"
	"strings"
)

// A Level is the ordinal severity shared by both wire formats. Each format has
// its own vocabulary for it, and the two are never mixed on the wire.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

// AllLevels is every Level in ordinal order
var AllLevels = []Level{Trace, Debug, Info, Warn, Error, Fatal}

var (
	standardNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	clefNames     = [...]string{"Verbose", "Debug", "Information", "Warning", "Error", "Fatal"}
)

func (l Level) valid() bool {
	return l >= Trace && l <= Fatal
}

// Standard returns the name used by the flat JSON format
func (l Level) Standard() string {
	if !l.valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return standardNames[l]
}

// Clef returns the name used by the Serilog compact format
func (l Level) Clef() string {
	if !l.valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return clefNames[l]
}

func (l Level) String() string {
	return l.Standard()
}

// IsFailure is true for the levels that carry error codes and exceptions
func (l Level) IsFailure() bool {
	return l == Error || l == Fatal
}

// ParseLevel accepts a name from either vocabulary, case-insensitively. The
// aliases match what the receiving server accepts.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "verbose":
		return Trace, nil
	case "debug":
		return Debug, nil
	case "info", "information":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	case "fatal":
		return Fatal, nil
	}

	return Trace, fmt.Errorf("unknown level %q", name)
}

// UnmarshalText lets levels appear as names in corpus files
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// A WeightedLevels draws one Level given non-negative integer weights, using a
// cumulative weight table.
type WeightedLevels struct {
	levels     []Level
	weights    []int
	cumulative []int
	total      int
}

// NewWeightedLevels validates the parallel level/weight lists and builds the
// cumulative table.
func NewWeightedLevels(levels []Level, weights []int) (*WeightedLevels, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("weighted levels: no levels given")
	}

	if len(levels) != len(weights) {
		return nil, fmt.Errorf(
			"weighted levels: %d levels but %d weights", len(levels), len(weights),
		)
	}

	w := &WeightedLevels{
		levels:     append([]Level(nil), levels...),
		weights:    append([]int(nil), weights...),
		cumulative: make([]int, len(weights)),
	}

	for i, weight := range weights {
		if weight < 0 {
			return nil, fmt.Errorf("weighted levels: negative weight %d for %s", weight, levels[i])
		}
		if !levels[i].valid() {
			return nil, fmt.Errorf("weighted levels: invalid level %d", int(levels[i]))
		}
		w.total += weight
		w.cumulative[i] = w.total
	}

	if w.total == 0 {
		return nil, fmt.Errorf("weighted levels: weights sum to zero")
	}

	return w, nil
}

// Pick draws a level. Zero-weight levels are never returned.
func (w *WeightedLevels) Pick(rnd *rand.Rand) Level {
	n := rnd.Intn(w.total)
	for i, c := range w.cumulative {
		if n < c {
			return w.levels[i]
		}
	}

	// Unreachable: n < total == last cumulative value
	return w.levels[len(w.levels)-1]
}

// Levels returns a copy of the levels in table order
func (w *WeightedLevels) Levels() []Level {
	return append([]Level(nil), w.levels...)
}

// Weight returns the configured weight for a level, zero when absent
func (w *WeightedLevels) Weight(level Level) int {
	for i, l := range w.levels {
		if l == level {
			return w.weights[i]
		}
	}
	return 0
}

// Total is the sum of all weights
func (w *WeightedLevels) Total() int {
	return w.total
}

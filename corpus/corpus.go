package corpus

import (
	"fmt"
	"math/rand"
	"strings"
)

// A Definition is the plain data a Corpus is built from. It is what corpus
// files decode into.
type Definition struct {
	Standard StandardDefinition `yaml:"standard"`
	Clef     ClefDefinition     `yaml:"clef"`
}

type StandardDefinition struct {
	Weights  map[Level]int      `yaml:"weights"`
	Services []string           `yaml:"services"`
	Messages map[Level][]string `yaml:"messages"`
}

type ClefDefinition struct {
	Weights        map[Level]int        `yaml:"weights"`
	SourceContexts []string             `yaml:"source_contexts"`
	Templates      map[Level][]Template `yaml:"templates"`
	Exceptions     []string             `yaml:"exceptions"`
}

// A Corpus holds the read-only tables events are drawn from. It is built once
// at startup and never modified afterwards, so it is safe to share.
type Corpus struct {
	standardLevels *WeightedLevels
	clefLevels     *WeightedLevels

	services       []string
	sourceContexts []string
	messages       map[Level][]string
	templates      map[Level][]Template
	exceptions     []string
}

// New validates a Definition and copies it into a Corpus
func New(def Definition) (*Corpus, error) {
	standardLevels, err := weightsFor(def.Standard.Weights)
	if err != nil {
		return nil, fmt.Errorf("invalid standard weights: %w", err)
	}

	clefLevels, err := weightsFor(def.Clef.Weights)
	if err != nil {
		return nil, fmt.Errorf("invalid clef weights: %w", err)
	}

	if len(def.Standard.Services) == 0 {
		return nil, fmt.Errorf("corpus has no services")
	}

	if len(def.Clef.SourceContexts) == 0 {
		return nil, fmt.Errorf("corpus has no source contexts")
	}

	c := &Corpus{
		standardLevels: standardLevels,
		clefLevels:     clefLevels,
		services:       append([]string(nil), def.Standard.Services...),
		sourceContexts: append([]string(nil), def.Clef.SourceContexts...),
		messages:       make(map[Level][]string, len(AllLevels)),
		templates:      make(map[Level][]Template, len(AllLevels)),
		exceptions:     append([]string(nil), def.Clef.Exceptions...),
	}

	for _, level := range standardLevels.Levels() {
		msgs := def.Standard.Messages[level]
		if standardLevels.Weight(level) > 0 && len(msgs) == 0 {
			return nil, fmt.Errorf("corpus has no messages for level %s", level.Standard())
		}
		c.messages[level] = append([]string(nil), msgs...)
	}

	for _, level := range clefLevels.Levels() {
		tmpls := def.Clef.Templates[level]
		if clefLevels.Weight(level) > 0 && len(tmpls) == 0 {
			return nil, fmt.Errorf("corpus has no templates for level %s", level.Clef())
		}

		for _, tmpl := range tmpls {
			if err := validateTemplate(tmpl); err != nil {
				return nil, fmt.Errorf("invalid %s template: %w", level.Clef(), err)
			}
			c.templates[level] = append(c.templates[level], tmpl.clone())
		}
	}

	if len(c.exceptions) == 0 && (clefLevels.Weight(Error) > 0 || clefLevels.Weight(Fatal) > 0) {
		return nil, fmt.Errorf("corpus has no exceptions for failure levels")
	}

	return c, nil
}

func weightsFor(weights map[Level]int) (*WeightedLevels, error) {
	var (
		levels []Level
		values []int
	)

	for _, level := range AllLevels {
		if w, ok := weights[level]; ok {
			levels = append(levels, level)
			values = append(values, w)
		}
	}

	return NewWeightedLevels(levels, values)
}

// validateTemplate makes sure the placeholders and the default properties
// name exactly the same set.
func validateTemplate(tmpl Template) error {
	placeholders := tmpl.Placeholders()

	// Would collide with the reserved CLEF field
	if tmpl.Properties.Has("SourceContext") {
		return fmt.Errorf("%q uses the reserved property SourceContext", tmpl.Text)
	}

	var missing []string
	for _, name := range placeholders {
		if !tmpl.Properties.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%q has no default for %s", tmpl.Text, strings.Join(missing, ", "))
	}

	if len(placeholders) != len(tmpl.Properties) {
		return fmt.Errorf(
			"%q has %d placeholders but %d properties",
			tmpl.Text, len(placeholders), len(tmpl.Properties),
		)
	}

	return nil
}

// StandardLevel draws a level from the standard weight table
func (c *Corpus) StandardLevel(rnd *rand.Rand) Level {
	return c.standardLevels.Pick(rnd)
}

// ClefLevel draws a level from the CLEF weight table
func (c *Corpus) ClefLevel(rnd *rand.Rand) Level {
	return c.clefLevels.Pick(rnd)
}

func (c *Corpus) Service(rnd *rand.Rand) string {
	return c.services[rnd.Intn(len(c.services))]
}

func (c *Corpus) SourceContext(rnd *rand.Rand) string {
	return c.sourceContexts[rnd.Intn(len(c.sourceContexts))]
}

// Message picks a plain message for the level
func (c *Corpus) Message(level Level, rnd *rand.Rand) string {
	msgs := c.messages[level]
	return msgs[rnd.Intn(len(msgs))]
}

// Template picks a template for the level. The returned properties are a
// private copy.
func (c *Corpus) Template(level Level, rnd *rand.Rand) Template {
	tmpls := c.templates[level]
	return tmpls[rnd.Intn(len(tmpls))].clone()
}

func (c *Corpus) Exception(rnd *rand.Rand) string {
	return c.exceptions[rnd.Intn(len(c.exceptions))]
}

// StandardWeights exposes the standard weight table
func (c *Corpus) StandardWeights() *WeightedLevels {
	return c.standardLevels
}

// ClefWeights exposes the CLEF weight table
func (c *Corpus) ClefWeights() *WeightedLevels {
	return c.clefLevels
}

func (c *Corpus) Services() []string {
	return append([]string(nil), c.services...)
}

func (c *Corpus) SourceContexts() []string {
	return append([]string(nil), c.sourceContexts...)
}

func (c *Corpus) Messages(level Level) []string {
	return append([]string(nil), c.messages[level]...)
}

func (c *Corpus) Templates(level Level) []Template {
	tmpls := make([]Template, 0, len(c.templates[level]))
	for _, tmpl := range c.templates[level] {
		tmpls = append(tmpls, tmpl.clone())
	}
	return tmpls
}

func (c *Corpus) Exceptions() []string {
	return append([]string(nil), c.exceptions...)
}

package corpus

import (
	"regexp"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// A Property is one named template value. Values are strings or integers.
type Property struct {
	Name  string
	Value interface{}
}

// Properties keeps template values in declaration order, which is also the
// order they are serialized in.
type Properties []Property

// Get returns the value for name
func (p Properties) Get(name string) (interface{}, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for an existing name, or appends it
func (p Properties) Set(name string, value interface{}) Properties {
	for i := range p {
		if p[i].Name == name {
			p[i].Value = value
			return p
		}
	}
	return append(p, Property{Name: name, Value: value})
}

// Has reports whether name is present
func (p Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Names returns the property names in order
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for _, prop := range p {
		names = append(names, prop.Name)
	}
	return names
}

// Clone returns a copy that can be modified without touching the original
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	return append(make(Properties, 0, len(p)), p...)
}

// A Template is a message template paired with default values for each of
// its placeholders.
type Template struct {
	Text       string     `yaml:"template"`
	Properties Properties `yaml:"properties"`
}

// Placeholders lists the distinct {Name} tokens in the template text, in order
// of first appearance.
func (t Template) Placeholders() []string {
	return Placeholders(t.Text)
}

// Placeholders lists the distinct {Name} tokens in text, in order of first
// appearance.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, match := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if seen[match[1]] {
			continue
		}
		seen[match[1]] = true
		names = append(names, match[1])
	}

	return names
}

func (t Template) clone() Template {
	return Template{Text: t.Text, Properties: t.Properties.Clone()}
}

package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML corpus file and builds a Corpus from it
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus from %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus from %s: %w", path, err)
	}

	return c, nil
}

// Parse builds a Corpus from YAML
func Parse(data []byte) (*Corpus, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal corpus: %w", err)
	}

	return New(def)
}

// UnmarshalYAML accepts a level name from either vocabulary
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: level must be a scalar", value.Line)
	}
	return l.UnmarshalText([]byte(value.Value))
}

// UnmarshalYAML decodes a mapping while keeping the key order, since that is
// the order properties are emitted in.
func (p *Properties) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", value.Line)
	}

	props := make(Properties, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]

		var val interface{}
		if err := valNode.Decode(&val); err != nil {
			return fmt.Errorf("line %d: bad value for %s: %w", valNode.Line, keyNode.Value, err)
		}

		switch val.(type) {
		case string, int:
		default:
			return fmt.Errorf(
				"line %d: value for %s must be a string or an integer", valNode.Line, keyNode.Value,
			)
		}

		props = append(props, Property{Name: keyNode.Value, Value: val})
	}

	*p = props
	return nil
}

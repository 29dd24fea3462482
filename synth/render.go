package synth

import (
	"fmt"
	"strings"

	"github.com/Shimmur/logspammer/corpus"
	"github.com/cespare/xxhash/v2"
)

// Render replaces every {Name} in template with the value of Name from props.
// Names with no property are left in place.
func Render(template string, props corpus.Properties) string {
	if len(props) == 0 {
		return template
	}

	pairs := make([]string, 0, len(props)*2)
	for _, prop := range props {
		pairs = append(pairs, "{"+prop.Name+"}", fmt.Sprint(prop.Value))
	}

	return strings.NewReplacer(pairs...).Replace(template)
}

// EventID is the low 32 bits of the xxHash64 of the raw template, as 8 hex
// digits. Receivers only use it for grouping.
func EventID(template string) string {
	return fmt.Sprintf("%08x", uint32(xxhash.Sum64String(template)))
}

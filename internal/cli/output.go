package cli

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jacentio/simpledb/sdb"
)

// itemView is the YAML shape of an item. Null values render as ~.
type itemView struct {
	Name       string               `yaml:"name"`
	Attributes map[string][]*string `yaml:"attributes"`
}

type metadataView struct {
	RequestID string  `yaml:"requestId,omitempty"`
	BoxUsage  float64 `yaml:"boxUsage"`
}

func attributesView(attrs sdb.Attributes) map[string][]*string {
	out := make(map[string][]*string, len(attrs))
	for name, values := range attrs {
		vs := make([]*string, len(values))
		for i, v := range values {
			vs[i] = v.Ptr()
		}
		out[name] = vs
	}
	return out
}

func metaView(m sdb.ResponseMetadata) metadataView {
	return metadataView{RequestID: m.RequestID, BoxUsage: m.BoxUsage}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}

// parseAssignments turns name=value arguments into attributes. With
// allowBare, a bare name yields an attribute without values.
func parseAssignments(assignments []string, nilString string, allowBare bool) (sdb.Attributes, error) {
	attrs := sdb.Attributes{}
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		if name == "" {
			return nil, &usageError{fmt.Errorf("attribute %q: missing name", a)}
		}
		if !ok {
			if !allowBare {
				return nil, &usageError{fmt.Errorf("attribute %q: expected name=value", a)}
			}
			if _, seen := attrs[name]; !seen {
				attrs[name] = nil
			}
			continue
		}
		if value == nilString {
			attrs[name] = append(attrs[name], sdb.Null())
			continue
		}
		attrs.Add(name, value)
	}
	return attrs, nil
}

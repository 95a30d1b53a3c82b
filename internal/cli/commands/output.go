package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// writeDocument prints v as indented JSON or as YAML. YAML output goes
// through the JSON encoding so wire names are kept.
func writeDocument(out io.Writer, v any, format string) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatJSON:
		_, err = fmt.Fprintln(out, string(raw))
		return err
	case formatYAML, "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("convert output to yaml: %w", err)
		}
		styleBlock(&node)
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (want json or yaml)", format)
	}
}

// styleBlock clears the flow style JSON input leaves on every collection so
// the encoder emits block YAML. Key order is preserved.
func styleBlock(node *yaml.Node) {
	if node.Kind == yaml.MappingNode || node.Kind == yaml.SequenceNode {
		node.Style = 0
	}
	if node.Kind == yaml.ScalarNode && node.Style == yaml.DoubleQuotedStyle {
		node.Style = 0
	}
	for _, child := range node.Content {
		styleBlock(child)
	}
}

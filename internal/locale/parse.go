package locale

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// parseTOML decodes top-level tables as locales. Key order comes from the
// decoder metadata since Go maps do not keep it.
func parseTOML(data []byte) (*Table, error) {
	values := make(map[string]map[string]string)
	md, err := toml.Decode(string(data), &values)
	if err != nil {
		return nil, err
	}

	var order []string
	seen := make(map[string]struct{}, len(values))
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		name := key[0]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if typ := md.Type(name); typ != "Hash" {
			return nil, fmt.Errorf("locale %q must be a table of strings, got %s", name, strings.ToLower(typ))
		}
		order = append(order, name)
	}
	if len(order) != len(values) {
		return nil, fmt.Errorf("locale order mismatch: %d declared, %d decoded", len(order), len(values))
	}
	return NewTable(order, values), nil
}

// parseYAML walks the document node so the mapping order is preserved.
func parseYAML(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return NewTable(nil, nil), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must map locales to strings", root.Line)
	}

	order := make([]string, 0, len(root.Content)/2)
	values := make(map[string]map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value
		if name == "" {
			return nil, fmt.Errorf("line %d: empty locale identifier", keyNode.Line)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("line %d: locale %q declared twice", keyNode.Line, name)
		}

		var strs map[string]string
		switch {
		case valNode.Kind == yaml.ScalarNode && valNode.Tag == "!!null":
			// "fr:" with no strings yet
		case valNode.Kind != yaml.MappingNode:
			return nil, fmt.Errorf("line %d: locale %q must map keys to strings", valNode.Line, name)
		default:
			if err := valNode.Decode(&strs); err != nil {
				return nil, fmt.Errorf("locale %q: %w", name, err)
			}
		}
		order = append(order, name)
		values[name] = strs
	}
	return NewTable(order, values), nil
}

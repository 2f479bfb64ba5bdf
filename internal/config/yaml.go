package config

import (
	"fmt"
	"os"

	"github.com/rook-computer/mirror/mirror"
	"gopkg.in/yaml.v3"
)

// parseYAML reads a file shaped like
//
//	mirror:
//	  screen_width: 1200
//	modules:
//	  clock:
//	    source: clock
//
// Module order follows the file. Unquoted strings are coerced, so `yes`
// becomes a bool and `"yes"` stays a string.
func parseYAML(path string) (*document, error) {
	//nolint:gosec // Config path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configCause(err, "path", path)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, configCause(err, "path", path)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, configError("empty config", "path", path)
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, configError("top level must be a mapping", "path", path)
	}

	doc := &document{}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i].Value, top.Content[i+1]
		switch key {
		case globalSectionName:
			values, err := yamlSection(val, key)
			if err != nil {
				return nil, err
			}
			doc.global = values
		case "modules":
			if val.Kind != yaml.MappingNode {
				return nil, configError("modules must be a mapping of name to module", "line", fmt.Sprint(val.Line))
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				name := val.Content[j].Value
				values, err := yamlSection(val.Content[j+1], name)
				if err != nil {
					return nil, err
				}
				doc.modules = append(doc.modules, section{name: name, values: values})
			}
		default:
			return nil, configError("unknown top level key", "key", key, "line", fmt.Sprint(top.Content[i].Line))
		}
	}
	return doc, nil
}

func yamlSection(n *yaml.Node, name string) (map[string]any, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, configError("section must be a mapping", "section", name, "line", fmt.Sprint(n.Line))
	}
	out := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		v, err := yamlValue(n.Content[i+1])
		if err != nil {
			return nil, configCause(err, "section", name, "field", key)
		}
		out[key] = v
	}
	return out, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) == 0 {
		return mirror.Coerce(n.Value), nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return "", nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

package config

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// RenderYAML renders effective fields as nested YAML. Each leaf carries the
// value and its source, e.g. server: {listen: {value: ..., source: env}}.
func RenderYAML(fields []FieldInfo) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		parent := root
		parts := strings.Split(f.Key, ".")
		for _, section := range parts[:len(parts)-1] {
			parent = childMapping(parent, section)
		}
		leaf := childMapping(parent, parts[len(parts)-1])
		leaf.Content = append(leaf.Content,
			scalar("value"), scalar(f.Value),
			scalar("source"), scalar(string(f.Source)),
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func childMapping(parent *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			return parent.Content[i+1]
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	parent.Content = append(parent.Content, scalar(key), child)
	return child
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

package mapping

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// file is the on-disk envelope of a Mapping Document.
type file struct {
	Mappings *Document `yaml:"mappings"`
}

// MarshalYAML emits the document as a mapping node in document order.
func (d *Document) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for column, entry := range d.All() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: column}
		value := &yaml.Node{}

		err := value.Encode(entry)
		if err != nil {
			return nil, fmt.Errorf("encoding entry %q: %w", column, err)
		}

		node.Content = append(node.Content, key, value)
	}

	return node, nil
}

// UnmarshalYAML implements custom YAML unmarshaling for Document.
// Accepts a mapping of source column names to entries; null is an empty
// document. Repeated source columns are rejected.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	*d = Document{entries: map[string]Entry{}}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}

		return fmt.Errorf("line %d: expected a mapping of source columns, got scalar %q", node.Line, node.Value)

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]

			var column string

			err := keyNode.Decode(&column)
			if err != nil {
				return fmt.Errorf("line %d: invalid source column: %w", keyNode.Line, err)
			}

			if _, dup := d.entries[column]; dup {
				return fmt.Errorf("line %d: source column %q is mapped twice", keyNode.Line, column)
			}

			entry, err := decodeEntry(valueNode)
			if err != nil {
				return fmt.Errorf("line %d: entry %q: %w", valueNode.Line, column, err)
			}

			d.columns = append(d.columns, column)
			d.entries[column] = entry
		}

		return nil

	default:
		return fmt.Errorf("line %d: expected a mapping of source columns", node.Line)
	}
}

func decodeEntry(node *yaml.Node) (Entry, error) {
	if node.Kind != yaml.MappingNode {
		return Entry{}, errors.New("expected a mapping with cdm_field")
	}

	var e Entry

	err := node.Decode(&e)
	if err != nil {
		return Entry{}, err
	}

	return e, nil
}

// Package grid expands a declarative parameter grid into the ordered
// list of concrete run configurations.
package grid

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/matzegoebel/run-wrf/internal/namelist"
)

// SubAxis is one sub-parameter of a composite entry.
type SubAxis struct {
	Name   string
	Values []namelist.Value
}

// Entry is one declared grid axis: either a scalar value sequence or a
// composite of sub-parameters varied in lockstep.
type Entry struct {
	Name   string
	Values []namelist.Value // scalar axis (nil for composites)
	Sub    []SubAxis        // composite axis (nil for scalars)
}

// IsComposite reports whether the entry varies several sub-parameters
// in lockstep.
func (e Entry) IsComposite() bool { return len(e.Sub) > 0 }

// ParameterGrid is the ordered set of grid axes. Declaration order is
// preserved so that expansion is deterministic run-to-run.
type ParameterGrid struct {
	Entries []Entry
}

// UnmarshalYAML decodes the grid from a YAML mapping while keeping the
// declaration order, which the generic map decoding would lose.
func (g *ParameterGrid) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("param_grid must be a mapping, got %s", nodeKind(node))
	}
	g.Entries = nil
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.SequenceNode:
			values, err := decodeValueSeq(val)
			if err != nil {
				return fmt.Errorf("param_grid.%s: %w", key, err)
			}
			g.Entries = append(g.Entries, Entry{Name: key, Values: values})
		case yaml.MappingNode:
			var sub []SubAxis
			for j := 0; j < len(val.Content); j += 2 {
				subKey := val.Content[j].Value
				subVal := val.Content[j+1]
				if subVal.Kind != yaml.SequenceNode {
					return fmt.Errorf("param_grid.%s.%s: composite sub-parameters must be sequences", key, subKey)
				}
				values, err := decodeValueSeq(subVal)
				if err != nil {
					return fmt.Errorf("param_grid.%s.%s: %w", key, subKey, err)
				}
				sub = append(sub, SubAxis{Name: subKey, Values: values})
			}
			g.Entries = append(g.Entries, Entry{Name: key, Sub: sub})
		default:
			return fmt.Errorf("param_grid.%s: expected sequence or mapping", key)
		}
	}
	return nil
}

func decodeValueSeq(node *yaml.Node) ([]namelist.Value, error) {
	values := make([]namelist.Value, 0, len(node.Content))
	for _, c := range node.Content {
		if c.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("expected scalar values")
		}
		values = append(values, namelist.Parse(c.Value))
	}
	return values, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	}
	return "unknown"
}

// LabelSet resolves parameter values to human-readable tokens for the
// run identifier: either keyed by the raw value or indexed by position.
type LabelSet struct {
	ByValue map[string]string
	ByIndex []string
}

// UnmarshalYAML accepts either a mapping (value -> label) or a sequence
// (position -> label).
func (l *LabelSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		l.ByValue = make(map[string]string, len(node.Content)/2)
		for i := 0; i < len(node.Content); i += 2 {
			l.ByValue[node.Content[i].Value] = node.Content[i+1].Value
		}
		return nil
	case yaml.SequenceNode:
		l.ByIndex = make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			l.ByIndex = append(l.ByIndex, c.Value)
		}
		return nil
	}
	return fmt.Errorf("label set must be a mapping or a sequence")
}

// Labels maps parameter names to their label sets.
type Labels map[string]LabelSet

// Configuration is one fully-resolved point in the grid's product
// space: the varied assignments merged with the base defaults, plus the
// derived run identifier.
type Configuration struct {
	Name   string           // run identifier, used in file and job names
	Params *namelist.Params // varied parameters followed by base defaults
	Varied *namelist.Params // grid-contributed assignments only (incl. composite indices)
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/canvas/pkg/adapters/memory"
	"github.com/aretw0/canvas/pkg/domain"
	"gopkg.in/yaml.v3"
)

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// ParseTree decodes a component tree from YAML or JSON. The document is
// either a list of items or a mapping with a "tree" key.
func ParseTree(data []byte) (domain.ComponentTree, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid tree document: %w", err)
	}
	if len(root.Content) == 0 {
		return domain.ComponentTree{}, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.MappingNode {
		var wrapped struct {
			Tree domain.ComponentTree `yaml:"tree"`
		}
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("invalid tree document: %w", err)
		}
		return wrapped.Tree, nil
	}

	var t domain.ComponentTree
	if err := doc.Decode(&t); err != nil {
		return nil, fmt.Errorf("invalid tree document: %w", err)
	}
	return t, nil
}

// LoadTree reads and parses a component tree file.
func LoadTree(path string) (domain.ComponentTree, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	return ParseTree(data)
}

type hostDocument struct {
	Type   string               `yaml:"type"`
	ID     string               `yaml:"id"`
	Path   string               `yaml:"path"`
	Fields map[string]any       `yaml:"fields"`
	Tree   domain.ComponentTree `yaml:"tree"`
}

// LoadHosts reads a YAML or JSON list of host entities.
func LoadHosts(path string) ([]*memory.Entity, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hosts: %w", err)
	}
	var docs []hostDocument
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("invalid hosts document: %w", err)
	}
	out := make([]*memory.Entity, 0, len(docs))
	for i, d := range docs {
		if d.Type == "" || d.ID == "" {
			return nil, fmt.Errorf("host %d: type and id are required", i)
		}
		out = append(out, &memory.Entity{Type: d.Type, ID: d.ID, Path: d.Path, Fields: d.Fields, Tree: d.Tree})
	}
	return out, nil
}

// loadHostStore returns a host store seeded from path, or an empty one.
func loadHostStore(path string) (*memory.HostStore, error) {
	if path == "" {
		return memory.NewHostStore(), nil
	}
	hosts, err := LoadHosts(path)
	if err != nil {
		return nil, err
	}
	return memory.NewHostStore(hosts...), nil
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dima09182/depviz/pkg/graph"
)

type document struct {
	Root        string       `json:"root" yaml:"root"`
	RunID       string       `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source      string       `json:"source,omitempty" yaml:"source,omitempty"`
	MaxDepth    int          `json:"max_depth" yaml:"max_depth"`
	Truncated   bool         `json:"truncated" yaml:"truncated"`
	Nodes       []node       `json:"nodes" yaml:"nodes"`
	Edges       []graph.Edge `json:"edges" yaml:"edges"`
	Diagnostics []diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

type node struct {
	Name         string   `json:"name" yaml:"name"`
	Qualified    string   `json:"qualified,omitempty" yaml:"qualified,omitempty"`
	Depth        int      `json:"depth" yaml:"depth"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
}

type diagnostic struct {
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	Kind    string `json:"kind" yaml:"kind"`
	Error   string `json:"error" yaml:"error"`
}

func toDocument(g *graph.Graph) document {
	nodes := g.Nodes()
	diags := g.Diagnostics()
	edges := g.Edges()
	if edges == nil {
		edges = []graph.Edge{}
	}

	out := document{
		Root:        g.Root,
		RunID:       g.RunID,
		Source:      g.Source,
		MaxDepth:    g.MaxDepth,
		Truncated:   g.Truncated,
		Nodes:       make([]node, len(nodes)),
		Edges:       edges,
		Diagnostics: make([]diagnostic, len(diags)),
	}
	for i, n := range nodes {
		out.Nodes[i] = node{Name: n.Name, Qualified: n.Qualified, Depth: n.Depth, Dependencies: n.Dependencies}
	}
	for i, d := range diags {
		out.Diagnostics[i] = diagnostic{Package: d.Package, Kind: string(d.Kind), Error: d.Err.Error()}
	}
	return out
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes g as YAML and writes it to w.
func WriteYAML(g *graph.Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Dima09182/depviz/pkg/graph"
)

// ReadJSON decodes a graph document written by [WriteJSON].
//
// ReadJSON returns an error if the JSON is malformed, a node has no name, or
// two nodes share a name. Edges in the document are ignored; they are derived
// from the node dependency lists. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := graph.New(doc.Root)
	g.RunID = doc.RunID
	g.Source = doc.Source
	g.MaxDepth = doc.MaxDepth
	g.Truncated = doc.Truncated

	for _, n := range doc.Nodes {
		if n.Name == "" {
			return nil, errors.New("node with empty name")
		}
		if n.Depth < 0 {
			return nil, fmt.Errorf("node %s: negative depth %d", n.Name, n.Depth)
		}
		if !g.Add(graph.Node{Name: n.Name, Qualified: n.Qualified, Depth: n.Depth, Dependencies: n.Dependencies}) {
			return nil, fmt.Errorf("node %s: duplicate name", n.Name)
		}
	}
	for _, d := range doc.Diagnostics {
		g.Diagnose(graph.Diagnostic{Package: d.Package, Kind: graph.DiagnosticKind(d.Kind), Err: errors.New(d.Error)})
	}
	return g, nil
}

// ImportJSON reads a JSON graph document from path.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

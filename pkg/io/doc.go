// Package io provides JSON and YAML import and export for dependency graphs.
//
// # Format
//
// A graph document carries the traversal settings, the recorded nodes in
// discovery order, the edges between recorded nodes and every diagnostic:
//
//	{
//	  "root": "busybox",
//	  "run_id": "0b6c5c1e-...",
//	  "source": "live",
//	  "max_depth": 5,
//	  "truncated": false,
//	  "nodes": [
//	    {"name": "busybox", "qualified": "busybox-1.36.1-r29.apk", "depth": 0,
//	     "dependencies": ["so:libc.musl-x86_64.so.1"]}
//	  ],
//	  "edges": [],
//	  "diagnostics": [
//	    {"package": "so:libc.musl-x86_64.so.1", "kind": "unknown-package",
//	     "error": "unknown package: ..."}
//	  ]
//	}
//
// YAML output uses the same field names.
//
// [ReadJSON] restores a [graph.Graph] from the JSON form so a saved traversal
// can be rendered again without touching the repository. Diagnostic errors
// come back as plain errors carrying the original message.
//
// [graph.Graph]: github.com/Dima09182/depviz/pkg/graph.Graph
package io
